package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GetProtocol projects a workflow into its executable protocol document.
func (s *Server) GetProtocol(c echo.Context) error {
	doc, err := s.Protocol.Generate(c.Request().Context(), c.Param("workflowID"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, doc)
}
