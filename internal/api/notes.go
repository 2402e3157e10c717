package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sop-architect/backend/internal/services"
)

// ListNotes returns a step's notes in creation order.
func (s *Server) ListNotes(c echo.Context) error {
	notes, err := s.Notes.ListByStep(c.Request().Context(), c.Param("stepID"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, notes)
}

// CreateNote attaches a note to a step.
func (s *Server) CreateNote(c echo.Context) error {
	var req services.NoteCreate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Content == "" && req.VoiceTranscript == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "content or voice_transcript is required")
	}

	note, err := s.Notes.Create(c.Request().Context(), c.Param("stepID"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, note)
}

// GetNote returns one note.
func (s *Server) GetNote(c echo.Context) error {
	note, err := s.Notes.Get(c.Request().Context(), c.Param("noteID"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, note)
}

// UpdateNote applies a partial update to a note.
func (s *Server) UpdateNote(c echo.Context) error {
	var req services.NoteUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	note, err := s.Notes.Update(c.Request().Context(), c.Param("noteID"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, note)
}

// DeleteNote removes a note.
func (s *Server) DeleteNote(c echo.Context) error {
	if err := s.Notes.Delete(c.Request().Context(), c.Param("noteID")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
