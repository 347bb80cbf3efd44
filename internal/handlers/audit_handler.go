package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"assetvault/internal/models"
	"assetvault/internal/utils/logger"
)

// AuditHandler exposes the trail to admins, cursor-paginated by
// timestamp.
type AuditHandler struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuditHandler(db *gorm.DB) *AuditHandler {
	return &AuditHandler{
		db:  db,
		log: logger.New("audit_handler"),
	}
}

func (h *AuditHandler) ListAuditLogs(c echo.Context) error {
	limit := 20
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	query := h.db.Model(&models.AuditLog{}).Order("timestamp DESC, id DESC")

	if before := c.QueryParam("before"); before != "" {
		ts, err := time.Parse(time.RFC3339, before)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "before must be RFC3339")
		}
		query = query.Where("timestamp < ?", ts)
	}

	if search := strings.TrimSpace(c.QueryParam("q")); search != "" {
		like := "%" + search + "%"
		query = query.Where("(action LIKE ? OR entity LIKE ? OR entity_id LIKE ?)", like, like, like)
	}

	var logs []models.AuditLog
	if err := query.Limit(limit + 1).Find(&logs).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list audit logs")
	}

	var nextCursor *string
	if len(logs) > limit {
		cursor := logs[limit-1].Timestamp.Format(time.RFC3339)
		logs = logs[:limit]
		nextCursor = &cursor
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"logs":       logs,
		"nextCursor": nextCursor,
	})
}
