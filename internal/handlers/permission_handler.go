package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"assetvault/internal/api/middleware"
	"assetvault/internal/services"
	"assetvault/internal/utils/logger"
)

// PermissionHandler manages the two permission axes: per-user asset
// grants and role module-permission sets.
type PermissionHandler struct {
	engine *services.AuthorizationEngine
	audit  *services.AuditWriter
	log    *logger.Logger
}

func NewPermissionHandler(engine *services.AuthorizationEngine, audit *services.AuditWriter) *PermissionHandler {
	return &PermissionHandler{
		engine: engine,
		audit:  audit,
		log:    logger.New("permission_handler"),
	}
}

type permissionIDsRequest struct {
	PermissionIDs []string `json:"permissionIds" validate:"required,dive,uuid"`
}

// GetUserAssetPermissions lists a user's direct asset grants.
func (h *PermissionHandler) GetUserAssetPermissions(c echo.Context) error {
	grants, err := h.engine.ListUserAssetPermissions(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, grants)
}

// SetUserAssetPermissions replaces a user's asset grants with the given
// set in one transaction.
func (h *PermissionHandler) SetUserAssetPermissions(c echo.Context) error {
	var req permissionIDsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	userID := c.Param("id")
	if err := h.engine.ReplaceUserAssetPermissions(c.Request().Context(), userID, req.PermissionIDs); err != nil {
		return serviceError(c, err)
	}

	h.audit.Log(c.Request().Context(), middleware.GetUserID(c), "SET_ASSET_PERMISSIONS", "User", userID,
		map[string]interface{}{"permissionIds": req.PermissionIDs})
	return c.JSON(http.StatusOK, map[string]interface{}{"updated": true})
}

// SetRolePermissions replaces a role's module permission set atomically.
func (h *PermissionHandler) SetRolePermissions(c echo.Context) error {
	var req permissionIDsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	roleID := c.Param("id")
	if err := h.engine.ReplaceRolePermissions(c.Request().Context(), roleID, req.PermissionIDs); err != nil {
		return serviceError(c, err)
	}

	h.audit.Log(c.Request().Context(), middleware.GetUserID(c), "SET_ROLE_PERMISSIONS", "Role", roleID,
		map[string]interface{}{"permissionIds": req.PermissionIDs})
	return c.JSON(http.StatusOK, map[string]interface{}{"updated": true})
}
