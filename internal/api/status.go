package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sop-architect/backend/pkg/models"
)

// GetWorkflowStatus returns a workflow's current lifecycle position.
func (s *Server) GetWorkflowStatus(c echo.Context) error {
	view, err := s.Status.Status(c.Request().Context(), c.Param("workflowID"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

// TransitionWorkflowStatus moves a workflow to an adjacent status. A
// rejected transition is a business outcome and still answers 200 with
// success set to false.
func (s *Server) TransitionWorkflowStatus(c echo.Context) error {
	var req struct {
		Status models.WorkflowStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "status is required")
	}

	result, err := s.Status.Transition(c.Request().Context(), c.Param("workflowID"), req.Status)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// AdvanceWorkflowStatus moves a workflow one stage forward.
func (s *Server) AdvanceWorkflowStatus(c echo.Context) error {
	result, err := s.Status.Advance(c.Request().Context(), c.Param("workflowID"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// RollbackWorkflowStatus moves a workflow one stage backward.
func (s *Server) RollbackWorkflowStatus(c echo.Context) error {
	result, err := s.Status.Rollback(c.Request().Context(), c.Param("workflowID"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}
