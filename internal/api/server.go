package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"assetvault/internal/api/validator"
	"assetvault/internal/config"
	"assetvault/internal/models"
	"assetvault/internal/services"

	console "assetvault/internal/utils/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

type Server struct {
	echo    *echo.Echo
	config  *config.Config
	db      *gorm.DB
	storage services.Storage
}

var log = console.New("API-Server")

func NewServer(cfg *config.Config, db *gorm.DB, storage services.Storage) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Validator = validator.NewValidator()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentLength},
	}))
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())
	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: 30 * time.Second,
	}))
	e.Use(middleware.BodyLimit("60M"))
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(20))))

	e.HTTPErrorHandler = newHTTPErrorHandler(cfg)

	s := &Server{
		echo:    e,
		config:  cfg,
		db:      db,
		storage: storage,
	}

	if err := models.SeedPermissions(db); err != nil {
		log.Warn("Warning: Failed to seed permissions: %v", err)
	} else {
		log.Success("Successfully seeded permissions")
	}

	if err := models.CreateAdminFromEnv(db); err != nil {
		log.Warn("Warning: Failed to bootstrap admin: %v", err)
	}

	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Health check endpoint
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// newHTTPErrorHandler keeps the response shape uniform and sanitizes
// unexpected failures outside development mode.
func newHTTPErrorHandler(cfg *config.Config) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code    = http.StatusInternalServerError
			message interface{}
		)

		switch e := err.(type) {
		case *echo.HTTPError:
			code = e.Code
			message = e.Message
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			message = formatValidationErrors(e)
		default:
			message = http.StatusText(code)
		}

		if code == http.StatusInternalServerError && !cfg.Server.IsDevelopment() {
			message = "internal server error"
		}

		if !c.Response().Committed {
			if c.Request().Method == http.MethodHead {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, map[string]interface{}{
					"error": message,
					"code":  code,
					"time":  time.Now().Format(time.RFC3339),
				})
			}
			if err != nil {
				c.Echo().Logger.Error(err)
			}
		}
	}
}

// formatValidationErrors formats validation errors into a map
func formatValidationErrors(errors validator.ValidationErrors) map[string]string {
	errMap := make(map[string]string)
	for _, err := range errors {
		field := err.Field()
		tag := err.Tag()
		param := err.Param()

		switch tag {
		case "required":
			errMap[field] = fmt.Sprintf("%s is required", field)
		case "email":
			errMap[field] = fmt.Sprintf("%s must be a valid email", field)
		case "min":
			errMap[field] = fmt.Sprintf("%s must be at least %s", field, param)
		case "max":
			errMap[field] = fmt.Sprintf("%s must be at most %s", field, param)
		case "uuid":
			errMap[field] = fmt.Sprintf("%s must be a valid UUID", field)
		case "oneof":
			errMap[field] = fmt.Sprintf("%s must be one of [%s]", field, param)
		case "audience_level":
			errMap[field] = fmt.Sprintf("%s must be one of: INTERNAL, PARTNER, END_USER", field)
		case "sort_order":
			errMap[field] = fmt.Sprintf("%s must be newest or oldest", field)
		default:
			errMap[field] = fmt.Sprintf("%s failed validation: %s", field, tag)
		}
	}
	return errMap
}
