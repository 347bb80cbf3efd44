package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"assetvault/internal/config"
	"assetvault/internal/utils"
	"assetvault/internal/utils/logger"
)

var log = logger.New("auth_middleware")

// AuthMiddleware authenticates requests with a bearer token. It only
// establishes identity; permission checks happen in the permission
// middleware so the 401/403 split stays clean.
type AuthMiddleware struct {
	jwt config.JWTConfig
}

func NewAuthMiddleware(jwt config.JWTConfig) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

func (m *AuthMiddleware) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			claims, err := utils.ParseJWT(tokenParts[1], m.jwt)
			if err != nil {
				log.Warn("Rejected token: %v", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set("claims", claims)
			c.Set("userID", claims.UserID)
			c.Set("role", claims.Role)

			return next(c)
		}
	}
}

// GetClaims returns the authenticated principal's claims, or nil.
func GetClaims(c echo.Context) *utils.Claims {
	if claims, ok := c.Get("claims").(*utils.Claims); ok {
		return claims
	}
	return nil
}

// GetUserID returns the authenticated user's id, or ""
func GetUserID(c echo.Context) string {
	if id, ok := c.Get("userID").(string); ok {
		return id
	}
	return ""
}
