package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"assetvault/internal/config"
	"assetvault/internal/models"
	"assetvault/internal/services"
	"assetvault/internal/utils"
	"assetvault/internal/utils/logger"
)

type AuthHandler struct {
	db     *gorm.DB
	engine *services.AuthorizationEngine
	audit  *services.AuditWriter
	jwt    config.JWTConfig
	log    *logger.Logger
}

func NewAuthHandler(db *gorm.DB, engine *services.AuthorizationEngine, audit *services.AuditWriter, jwt config.JWTConfig) *AuthHandler {
	return &AuthHandler{
		db:     db,
		engine: engine,
		audit:  audit,
		jwt:    jwt,
		log:    logger.New("auth_handler"),
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and issues the bearer token the
// authorization engine consumes. Module permission codes are computed
// here, once, from the user's role; asset grants are never embedded.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var user models.User
	if err := h.db.Preload("Role").
		Where("email = ? AND is_deleted = ?", req.Email, false).
		First(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	codes, err := h.engine.ModulePermissionCodes(c.Request().Context(), user.RoleID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to resolve permissions")
	}

	token, err := utils.GenerateJWT(user, codes, h.jwt)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to issue token")
	}

	h.audit.Log(c.Request().Context(), user.ID, "LOGIN", "User", user.ID, nil)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}
