package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sop-architect/backend/internal/services"
)

// ListWorkflows returns a page of workflows ordered by last update.
func (s *Server) ListWorkflows(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))

	result, err := s.Workflows.List(c.Request().Context(), page, pageSize)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// CreateWorkflow creates a new workflow in draft status.
func (s *Server) CreateWorkflow(c echo.Context) error {
	var req services.WorkflowCreate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	workflow, err := s.Workflows.Create(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, workflow)
}

// GetWorkflow returns one workflow with its tasks and steps.
func (s *Server) GetWorkflow(c echo.Context) error {
	workflow, err := s.Workflows.Get(c.Request().Context(), c.Param("workflowID"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, workflow)
}

// UpdateWorkflow applies a partial update to a workflow.
func (s *Server) UpdateWorkflow(c echo.Context) error {
	var req services.WorkflowUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	workflow, err := s.Workflows.Update(c.Request().Context(), c.Param("workflowID"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, workflow)
}

// DeleteWorkflow removes a workflow and everything under it.
func (s *Server) DeleteWorkflow(c echo.Context) error {
	if err := s.Workflows.Delete(c.Request().Context(), c.Param("workflowID")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
