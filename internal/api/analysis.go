package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sop-architect/backend/internal/services"
)

// AnalyzeStep asks the LLM to draft the data contract for a step.
func (s *Server) AnalyzeStep(c echo.Context) error {
	var req struct {
		PreviousOutputs []services.DataField `json:"previous_outputs"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := s.Analysis.Analyze(c.Request().Context(), c.Param("stepID"), req.PreviousOutputs)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// AnalysisStatus reports whether step analysis is available and which
// model backs it.
func (s *Server) AnalysisStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"enabled": s.Analysis.Enabled(),
		"model":   s.Analysis.ModelName(),
	})
}
