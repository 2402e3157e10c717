package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ListTemplates returns every workflow marked as a template.
func (s *Server) ListTemplates(c echo.Context) error {
	templates, err := s.Templates.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, templates)
}

// GetTemplate returns one template with its tasks and steps.
func (s *Server) GetTemplate(c echo.Context) error {
	template, err := s.Templates.Get(c.Request().Context(), c.Param("templateID"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, template)
}

// CloneTemplate instantiates a template as a fresh draft workflow.
func (s *Server) CloneTemplate(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	workflow, err := s.Templates.Clone(c.Request().Context(), c.Param("templateID"), req.Name)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, workflow)
}
