package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sop-architect/backend/internal/repository"
	"github.com/sop-architect/backend/pkg/models"
)

// NoteService owns step-note CRUD business logic.
type NoteService struct {
	store repository.NoteStore
	steps repository.StepStore
}

// NewNoteService creates a new NoteService.
func NewNoteService(store repository.NoteStore, steps repository.StepStore) *NoteService {
	return &NoteService{store: store, steps: steps}
}

// NoteCreate carries the fields accepted when attaching a note to a step.
type NoteCreate struct {
	ContentType     models.NoteContentType `json:"content_type"`
	Content         string                 `json:"content"`
	VoiceTranscript string                 `json:"voice_transcript"`
	CreatedBy       models.NoteAuthor      `json:"created_by"`
}

// NoteUpdate carries the optional fields of a partial update.
type NoteUpdate struct {
	Content         *string `json:"content"`
	VoiceTranscript *string `json:"voice_transcript"`
}

// ListByStep returns a step's notes in creation order.
func (s *NoteService) ListByStep(ctx context.Context, stepID string) ([]*models.StepNote, error) {
	if err := s.requireStep(ctx, stepID); err != nil {
		return nil, err
	}
	notes, err := s.store.ListNotesByStep(ctx, stepID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	if notes == nil {
		notes = []*models.StepNote{}
	}
	return notes, nil
}

// Create attaches a note to a step. The author defaults to worker.
func (s *NoteService) Create(ctx context.Context, stepID string, data NoteCreate) (*models.StepNote, error) {
	if err := s.requireStep(ctx, stepID); err != nil {
		return nil, err
	}

	note := &models.StepNote{
		ID:              uuid.New().String(),
		StepID:          stepID,
		ContentType:     data.ContentType,
		Content:         data.Content,
		VoiceTranscript: data.VoiceTranscript,
		CreatedBy:       data.CreatedBy,
	}
	if note.CreatedBy == "" {
		note.CreatedBy = models.AuthorWorker
	}
	if err := s.store.CreateNote(ctx, note); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	return note, nil
}

// Get loads one note.
func (s *NoteService) Get(ctx context.Context, id string) (*models.StepNote, error) {
	note, err := s.store.GetNote(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoteNotFound, id)
		}
		return nil, err
	}
	return note, nil
}

// Update applies a partial update to a note.
func (s *NoteService) Update(ctx context.Context, id string, data NoteUpdate) (*models.StepNote, error) {
	note, err := s.store.GetNote(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoteNotFound, id)
		}
		return nil, err
	}

	if data.Content != nil {
		note.Content = *data.Content
	}
	if data.VoiceTranscript != nil {
		note.VoiceTranscript = *data.VoiceTranscript
	}

	if err := s.store.UpdateNote(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// Delete removes a note.
func (s *NoteService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteNote(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNoteNotFound, id)
		}
		return err
	}
	return nil
}

func (s *NoteService) requireStep(ctx context.Context, stepID string) error {
	exists, err := s.steps.StepExists(ctx, stepID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrStepNotFound, stepID)
	}
	return nil
}
