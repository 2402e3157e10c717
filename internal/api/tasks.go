package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sop-architect/backend/internal/services"
)

// ListTasks returns a workflow's tasks in task order, steps included.
func (s *Server) ListTasks(c echo.Context) error {
	tasks, err := s.Tasks.ListByWorkflow(c.Request().Context(), c.Param("workflowID"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, tasks)
}

// CreateTask appends a new task at the end of a workflow.
func (s *Server) CreateTask(c echo.Context) error {
	var req services.TaskCreate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	task, err := s.Tasks.Create(c.Request().Context(), c.Param("workflowID"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, task)
}

// GetTask returns one task.
func (s *Server) GetTask(c echo.Context) error {
	task, err := s.Tasks.Get(c.Request().Context(), c.Param("taskID"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, task)
}

// UpdateTask applies a partial update to a task.
func (s *Server) UpdateTask(c echo.Context) error {
	var req services.TaskUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	task, err := s.Tasks.Update(c.Request().Context(), c.Param("taskID"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, task)
}

// DeleteTask removes a task and closes the order gap it leaves.
func (s *Server) DeleteTask(c echo.Context) error {
	if err := s.Tasks.Delete(c.Request().Context(), c.Param("taskID")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ReorderTasks renumbers a workflow's tasks to match the given id order.
func (s *Server) ReorderTasks(c echo.Context) error {
	var req struct {
		TaskIDs []string `json:"task_ids"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.TaskIDs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "task_ids is required")
	}

	if err := s.Tasks.Reorder(c.Request().Context(), c.Param("workflowID"), req.TaskIDs); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
