package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"assetvault/internal/models"
	"assetvault/internal/services"
)

// RequireModulePermission gates a route on a MODULE_ACTION code from the
// token's permission set. Denials surface only a generic message so
// callers cannot probe which check failed.
func RequireModulePermission(engine *services.AuthorizationEngine, code string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := GetClaims(c)
			if claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authentication")
			}

			decision := engine.CheckModule(claims, code)
			if !decision.Allowed() {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}

// RequireAssetPermission gates asset CRUD routes on the second
// authorization axis: the live per-user grant for (resource type, action).
func RequireAssetPermission(engine *services.AuthorizationEngine, resourceType models.ResourceType, action models.AssetAction) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := GetClaims(c)
			if claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authentication")
			}

			decision := engine.CheckAsset(c.Request().Context(), claims, resourceType, action)
			if !decision.Allowed() {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}
