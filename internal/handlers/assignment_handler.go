package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"assetvault/internal/api/middleware"
	"assetvault/internal/models"
	"assetvault/internal/services"
	"assetvault/internal/utils/logger"
)

// AssignmentHandler exposes the admin surface for pinning users to
// specific file revisions.
type AssignmentHandler struct {
	assignments *services.AssignmentService
	audit       *services.AuditWriter
	log         *logger.Logger
}

func NewAssignmentHandler(assignments *services.AssignmentService, audit *services.AuditWriter) *AssignmentHandler {
	return &AssignmentHandler{
		assignments: assignments,
		audit:       audit,
		log:         logger.New("assignment_handler"),
	}
}

type assignVersionRequest struct {
	UserID         string  `json:"userId" validate:"required,uuid"`
	AssetFileID    *string `json:"assetFileId" validate:"omitempty,uuid"`
	VersionGroupID string  `json:"versionGroupId" validate:"required,uuid"`
}

// AssignVersion pins a user to a revision, or reverts the pin when
// assetFileId is null.
func (h *AssignmentHandler) AssignVersion(c echo.Context) error {
	var req assignVersionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	actorID := middleware.GetUserID(c)
	assignment, err := h.assignments.Assign(c.Request().Context(), actorID, req.UserID,
		req.AssetFileID, models.VersionGroupID(req.VersionGroupID))
	if err != nil {
		return serviceError(c, err)
	}

	details := map[string]interface{}{
		"targetUserId":   req.UserID,
		"versionGroupId": req.VersionGroupID,
	}
	if assignment == nil {
		details["reverted"] = true
		h.audit.Log(c.Request().Context(), actorID, "REVERT_PIN", "AssetFileAssignment", req.UserID, details)
		return c.JSON(http.StatusOK, map[string]interface{}{"reverted": true})
	}

	details["assetFileId"] = assignment.AssetFileID
	h.audit.Log(c.Request().Context(), actorID, "PIN_VERSION", "AssetFileAssignment", assignment.ID, details)
	return c.JSON(http.StatusCreated, assignment)
}

// ListAssignments returns a user's active pins with the pinned/latest
// version numbers joined in.
func (h *AssignmentHandler) ListAssignments(c echo.Context) error {
	views, err := h.assignments.ListAssignments(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, views)
}
