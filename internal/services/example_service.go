package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sop-architect/backend/internal/repository"
	"github.com/sop-architect/backend/pkg/models"
)

// ExampleService owns few-shot example CRUD business logic.
type ExampleService struct {
	store repository.ExampleStore
	steps repository.StepStore
}

// NewExampleService creates a new ExampleService.
func NewExampleService(store repository.ExampleStore, steps repository.StepStore) *ExampleService {
	return &ExampleService{store: store, steps: steps}
}

// ExampleCreate carries the fields accepted when attaching an example.
type ExampleCreate struct {
	Content     string              `json:"content"`
	ContentType string              `json:"content_type"`
	Label       models.ExampleLabel `json:"label"`
	Description string              `json:"description"`
}

// ExampleUpdate carries the optional fields of a partial update.
type ExampleUpdate struct {
	Content     *string              `json:"content"`
	ContentType *string              `json:"content_type"`
	Label       *models.ExampleLabel `json:"label"`
	Description *string              `json:"description"`
}

// ListByStep returns a step's examples in insertion order.
func (s *ExampleService) ListByStep(ctx context.Context, stepID string) ([]*models.Example, error) {
	if err := s.requireStep(ctx, stepID); err != nil {
		return nil, err
	}
	examples, err := s.store.ListExamplesByStep(ctx, stepID)
	if err != nil {
		return nil, fmt.Errorf("list examples: %w", err)
	}
	if examples == nil {
		examples = []*models.Example{}
	}
	return examples, nil
}

// Create attaches a labeled example to a step.
func (s *ExampleService) Create(ctx context.Context, stepID string, data ExampleCreate) (*models.Example, error) {
	if err := s.requireStep(ctx, stepID); err != nil {
		return nil, err
	}

	example := &models.Example{
		ID:          uuid.New().String(),
		StepID:      stepID,
		Content:     data.Content,
		ContentType: data.ContentType,
		Label:       data.Label,
		Description: data.Description,
	}
	if err := s.store.CreateExample(ctx, example); err != nil {
		return nil, fmt.Errorf("create example: %w", err)
	}
	return example, nil
}

// Update applies a partial update to an example.
func (s *ExampleService) Update(ctx context.Context, id string, data ExampleUpdate) (*models.Example, error) {
	example, err := s.store.GetExample(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrExampleNotFound, id)
		}
		return nil, err
	}

	if data.Content != nil {
		example.Content = *data.Content
	}
	if data.ContentType != nil {
		example.ContentType = *data.ContentType
	}
	if data.Label != nil {
		example.Label = *data.Label
	}
	if data.Description != nil {
		example.Description = *data.Description
	}

	if err := s.store.UpdateExample(ctx, example); err != nil {
		return nil, err
	}
	return example, nil
}

// Delete removes an example.
func (s *ExampleService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteExample(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrExampleNotFound, id)
		}
		return err
	}
	return nil
}

func (s *ExampleService) requireStep(ctx context.Context, stepID string) error {
	exists, err := s.steps.StepExists(ctx, stepID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrStepNotFound, stepID)
	}
	return nil
}
