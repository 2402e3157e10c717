package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sop-architect/backend/internal/services"
)

// ListExamples returns a step's few-shot examples.
func (s *Server) ListExamples(c echo.Context) error {
	examples, err := s.Examples.ListByStep(c.Request().Context(), c.Param("stepID"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, examples)
}

// CreateExample attaches a labeled example to a step.
func (s *Server) CreateExample(c echo.Context) error {
	var req services.ExampleCreate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "content is required")
	}

	example, err := s.Examples.Create(c.Request().Context(), c.Param("stepID"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, example)
}

// UpdateExample applies a partial update to an example.
func (s *Server) UpdateExample(c echo.Context) error {
	var req services.ExampleUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	example, err := s.Examples.Update(c.Request().Context(), c.Param("exampleID"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, example)
}

// DeleteExample removes an example.
func (s *Server) DeleteExample(c echo.Context) error {
	if err := s.Examples.Delete(c.Request().Context(), c.Param("exampleID")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
