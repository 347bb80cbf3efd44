package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"assetvault/internal/api/middleware"
	"assetvault/internal/services"
	"assetvault/internal/tasks"
	"assetvault/internal/utils/logger"
)

// MaintenanceHandler lets admins kick off background maintenance without
// waiting for the nightly schedule.
type MaintenanceHandler struct {
	client *tasks.TaskClient
	audit  *services.AuditWriter
	log    *logger.Logger
}

func NewMaintenanceHandler(client *tasks.TaskClient, audit *services.AuditWriter) *MaintenanceHandler {
	return &MaintenanceHandler{
		client: client,
		audit:  audit,
		log:    logger.New("maintenance_handler"),
	}
}

// TriggerVersionRepair enqueues one repair pass on the low queue. The
// pass runs asynchronously; 202 only means it was queued.
func (h *MaintenanceHandler) TriggerVersionRepair(c echo.Context) error {
	if err := h.client.EnqueueVersionRepair(); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "failed to enqueue repair")
	}

	h.audit.Log(c.Request().Context(), middleware.GetUserID(c), "TRIGGER_REPAIR", "AssetFile", "", nil)
	return c.JSON(http.StatusAccepted, map[string]interface{}{"queued": true})
}
