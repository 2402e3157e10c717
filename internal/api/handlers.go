package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sop-architect/backend/internal/services"
)

// HandleHealth reports service liveness.
func (s *Server) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// httpError translates service errors into echo HTTP errors.
func httpError(err error) error {
	switch {
	case errors.Is(err, services.ErrWorkflowNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrStepNotFound),
		errors.Is(err, services.ErrNoteNotFound),
		errors.Is(err, services.ErrExampleNotFound),
		errors.Is(err, services.ErrBranchNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrStepOrderConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrLLMDisabled):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
