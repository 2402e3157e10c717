package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sop-architect/backend/internal/repository"
	"github.com/sop-architect/backend/internal/status"
	"github.com/sop-architect/backend/pkg/models"
)

// StatusService mediates workflow lifecycle changes. The transition rules
// themselves live in the status package; this service loads the workflow,
// applies the engine and persists the outcome.
type StatusService struct {
	store repository.WorkflowStore
}

// NewStatusService creates a new StatusService.
func NewStatusService(store repository.WorkflowStore) *StatusService {
	return &StatusService{store: store}
}

// StatusView is the wire shape of a workflow's current status.
type StatusView struct {
	ID                 string                  `json:"id"`
	Status             models.WorkflowStatus   `json:"status"`
	Label              string                  `json:"label"`
	Color              string                  `json:"color"`
	AllowedTransitions []models.WorkflowStatus `json:"allowed_transitions"`
}

// TransitionResult is the wire shape of every status mutation. A rejected
// transition is an expected business outcome, reported with Success=false
// rather than an error.
type TransitionResult struct {
	Success            bool                    `json:"success"`
	ID                 string                  `json:"id,omitempty"`
	Status             models.WorkflowStatus   `json:"status,omitempty"`
	Label              string                  `json:"label,omitempty"`
	Color              string                  `json:"color,omitempty"`
	PreviousStatus     models.WorkflowStatus   `json:"previous_status,omitempty"`
	AllowedTransitions []models.WorkflowStatus `json:"allowed_transitions,omitempty"`
	Error              string                  `json:"error,omitempty"`
}

// Status returns the presentation view of a workflow's current status.
func (s *StatusService) Status(ctx context.Context, workflowID string) (*StatusView, error) {
	workflow, err := s.load(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	info := status.Get(workflow.Status)
	return &StatusView{
		ID:                 workflow.ID,
		Status:             info.Status,
		Label:              info.Label,
		Color:              info.Color,
		AllowedTransitions: info.AllowedTransitions,
	}, nil
}

// Transition moves a workflow to an explicit target status. Any move in
// the bidirectional table is permitted, including backward ones.
func (s *StatusService) Transition(ctx context.Context, workflowID string, target models.WorkflowStatus) (*TransitionResult, error) {
	workflow, err := s.load(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	next, terr := status.Transition(workflow.Status, target)
	if terr != nil {
		var reject *status.TransitionError
		if errors.As(terr, &reject) {
			return &TransitionResult{
				Success:            false,
				Error:              reject.Error(),
				AllowedTransitions: reject.Allowed,
			}, nil
		}
		return nil, terr
	}

	return s.commit(ctx, workflow, next)
}

// Advance moves a workflow strictly forward one step.
func (s *StatusService) Advance(ctx context.Context, workflowID string) (*TransitionResult, error) {
	workflow, err := s.load(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	next, terr := status.Advance(workflow.Status)
	if terr != nil {
		return &TransitionResult{
			Success: false,
			Error:   terr.Error(),
			Status:  workflow.Status,
		}, nil
	}

	return s.commit(ctx, workflow, next)
}

// Rollback moves a workflow strictly backward one step.
func (s *StatusService) Rollback(ctx context.Context, workflowID string) (*TransitionResult, error) {
	workflow, err := s.load(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	prev, terr := status.Rollback(workflow.Status)
	if terr != nil {
		return &TransitionResult{
			Success: false,
			Error:   terr.Error(),
			Status:  workflow.Status,
		}, nil
	}

	return s.commit(ctx, workflow, prev)
}

// commit persists the new status and shapes the success response.
func (s *StatusService) commit(ctx context.Context, workflow *models.Workflow, next models.WorkflowStatus) (*TransitionResult, error) {
	previous := workflow.Status
	if err := s.store.UpdateWorkflowStatus(ctx, workflow.ID, next); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, workflow.ID)
		}
		return nil, err
	}

	return &TransitionResult{
		Success:            true,
		ID:                 workflow.ID,
		PreviousStatus:     previous,
		Status:             next,
		Label:              status.Label(next),
		Color:              status.Color(next),
		AllowedTransitions: status.Allowed(next),
	}, nil
}

func (s *StatusService) load(ctx context.Context, workflowID string) (*models.Workflow, error) {
	workflow, err := s.store.GetWorkflow(ctx, workflowID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, workflowID)
		}
		return nil, err
	}
	return workflow, nil
}
