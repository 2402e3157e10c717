package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sop-architect/backend/internal/services"
)

// CreateStep inserts a step at an explicit position in a workflow.
func (s *Server) CreateStep(c echo.Context) error {
	var req services.StepCreate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	step, err := s.Steps.Create(c.Request().Context(), c.Param("workflowID"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, step)
}

// AppendStep adds a step after the workflow's current last step.
func (s *Server) AppendStep(c echo.Context) error {
	var req services.StepCreate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	step, err := s.Steps.Append(c.Request().Context(), c.Param("workflowID"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, step)
}

// ListSteps returns a workflow's steps in step order.
func (s *Server) ListSteps(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))

	steps, err := s.Steps.ListByWorkflow(c.Request().Context(), c.Param("workflowID"), page, pageSize)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, steps)
}

// GetStep returns one step with its examples, branches and notes.
func (s *Server) GetStep(c echo.Context) error {
	step, err := s.Steps.Get(c.Request().Context(), c.Param("stepID"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, step)
}

// UpdateStep applies a partial update to a step.
func (s *Server) UpdateStep(c echo.Context) error {
	var req services.StepUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	step, err := s.Steps.Update(c.Request().Context(), c.Param("stepID"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, step)
}

// DeleteStep removes a step and closes the order gap it leaves.
func (s *Server) DeleteStep(c echo.Context) error {
	if err := s.Steps.Delete(c.Request().Context(), c.Param("stepID")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AddBranch attaches a routing branch to a step.
func (s *Server) AddBranch(c echo.Context) error {
	var req services.BranchCreate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ConditionResult == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "condition_result is required")
	}

	branch, err := s.Steps.AddBranch(c.Request().Context(), c.Param("stepID"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, branch)
}

// DeleteBranch removes a routing branch.
func (s *Server) DeleteBranch(c echo.Context) error {
	if err := s.Steps.DeleteBranch(c.Request().Context(), c.Param("branchID")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
