package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"assetvault/internal/services"
)

// serviceErrorStatus maps catalog/assignment service errors onto the HTTP
// taxonomy: input errors 400, missing entities 404, everything else 500.
func serviceErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidVersionGroup),
		errors.Is(err, services.ErrFileTypeNotAllowed),
		errors.Is(err, services.ErrFileTooLarge):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func serviceError(c echo.Context, err error) error {
	status := serviceErrorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		// Detail for 500s is sanitized by the central error handler.
		return echo.NewHTTPError(status, message)
	}
	return c.JSON(status, map[string]string{"error": message})
}
