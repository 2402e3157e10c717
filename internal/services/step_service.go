package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sop-architect/backend/internal/repository"
	"github.com/sop-architect/backend/pkg/models"
)

// StepService owns step CRUD and routing-branch business logic.
type StepService struct {
	store     repository.StepStore
	workflows repository.WorkflowStore
}

// NewStepService creates a new StepService.
func NewStepService(store repository.StepStore, workflows repository.WorkflowStore) *StepService {
	return &StepService{store: store, workflows: workflows}
}

// StepCreate carries the fields accepted when creating a step.
type StepCreate struct {
	TaskID    *string           `json:"task_id"`
	Name      string            `json:"name"`
	StepOrder int               `json:"step_order"`
	Status    models.StepStatus `json:"status"`

	ContextType            models.ContextType `json:"context_type"`
	ContextImageURL        string             `json:"context_image_url"`
	ContextTextContent     string             `json:"context_text_content"`
	ContextVoiceTranscript string             `json:"context_voice_transcript"`
	ContextDescription     string             `json:"context_description"`

	ExtractionKeywords        []string `json:"extraction_keywords"`
	ExtractionVoiceTranscript string   `json:"extraction_voice_transcript"`

	LogicStrategy         models.LogicStrategy `json:"logic_strategy"`
	LogicRuleExpression   string               `json:"logic_rule_expression"`
	LogicEvaluationPrompt string               `json:"logic_evaluation_prompt"`

	RoutingDefaultNext string `json:"routing_default_next"`
	ExpertNotes        string `json:"expert_notes"`
}

// StepUpdate carries the optional fields of a partial update.
type StepUpdate struct {
	TaskID *string            `json:"task_id"`
	Name   *string            `json:"name"`
	Status *models.StepStatus `json:"status"`

	ContextType            *models.ContextType `json:"context_type"`
	ContextImageURL        *string             `json:"context_image_url"`
	ContextTextContent     *string             `json:"context_text_content"`
	ContextVoiceTranscript *string             `json:"context_voice_transcript"`
	ContextDescription     *string             `json:"context_description"`

	ExtractionKeywords        []string `json:"extraction_keywords"`
	ExtractionVoiceTranscript *string  `json:"extraction_voice_transcript"`

	LogicStrategy         *models.LogicStrategy `json:"logic_strategy"`
	LogicRuleExpression   *string               `json:"logic_rule_expression"`
	LogicEvaluationPrompt *string               `json:"logic_evaluation_prompt"`

	RoutingDefaultNext *string `json:"routing_default_next"`
	ExpertNotes        *string `json:"expert_notes"`
}

// BranchCreate carries the fields of a new routing branch.
type BranchCreate struct {
	ConditionResult string `json:"condition_result"`
	ActionType      string `json:"action_type"`
	NextStepID      string `json:"next_step_id"`
}

func (s *StepService) newStep(workflowID string, order int, data StepCreate) *models.WorkflowStep {
	status := data.Status
	if status == "" {
		status = models.StepStatusPending
	}
	return &models.WorkflowStep{
		ID:                        uuid.New().String(),
		WorkflowID:                workflowID,
		TaskID:                    data.TaskID,
		Name:                      data.Name,
		StepOrder:                 order,
		Status:                    status,
		ContextType:               data.ContextType,
		ContextImageURL:           data.ContextImageURL,
		ContextTextContent:        data.ContextTextContent,
		ContextVoiceTranscript:    data.ContextVoiceTranscript,
		ContextDescription:        data.ContextDescription,
		ExtractionKeywords:        data.ExtractionKeywords,
		ExtractionVoiceTranscript: data.ExtractionVoiceTranscript,
		LogicStrategy:             data.LogicStrategy,
		LogicRuleExpression:       data.LogicRuleExpression,
		LogicEvaluationPrompt:     data.LogicEvaluationPrompt,
		RoutingDefaultNext:        data.RoutingDefaultNext,
		ExpertNotes:               data.ExpertNotes,
	}
}

// Create inserts a step at an explicit step_order. The order must be free.
func (s *StepService) Create(ctx context.Context, workflowID string, data StepCreate) (*models.WorkflowStep, error) {
	if err := s.requireWorkflow(ctx, workflowID); err != nil {
		return nil, err
	}

	taken, err := s.store.StepOrderExists(ctx, workflowID, data.StepOrder)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: order %d in workflow %s", ErrStepOrderConflict, data.StepOrder, workflowID)
	}

	step := s.newStep(workflowID, data.StepOrder, data)
	if err := s.store.CreateStep(ctx, step); err != nil {
		return nil, fmt.Errorf("create step: %w", err)
	}
	return step, nil
}

// Append inserts a step at the end of the workflow's sequence.
func (s *StepService) Append(ctx context.Context, workflowID string, data StepCreate) (*models.WorkflowStep, error) {
	if err := s.requireWorkflow(ctx, workflowID); err != nil {
		return nil, err
	}

	max, err := s.store.MaxStepOrder(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	step := s.newStep(workflowID, max+1, data)
	if err := s.store.CreateStep(ctx, step); err != nil {
		return nil, fmt.Errorf("append step: %w", err)
	}
	return step, nil
}

// Get loads a step with its examples, branches and notes.
func (s *StepService) Get(ctx context.Context, id string) (*models.WorkflowStep, error) {
	step, err := s.store.GetStep(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrStepNotFound, id)
		}
		return nil, err
	}
	return step, nil
}

// ListByWorkflow returns a page of a workflow's steps in step_order.
func (s *StepService) ListByWorkflow(ctx context.Context, workflowID string, page, pageSize int) ([]*models.WorkflowStep, error) {
	if err := s.requireWorkflow(ctx, workflowID); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 100
	}

	steps, err := s.store.ListStepsByWorkflow(ctx, workflowID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	if steps == nil {
		steps = []*models.WorkflowStep{}
	}
	return steps, nil
}

// Update applies a partial update to a step.
func (s *StepService) Update(ctx context.Context, id string, data StepUpdate) (*models.WorkflowStep, error) {
	step, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if data.TaskID != nil {
		step.TaskID = data.TaskID
	}
	if data.Name != nil {
		step.Name = *data.Name
	}
	if data.Status != nil {
		step.Status = *data.Status
	}
	if data.ContextType != nil {
		step.ContextType = *data.ContextType
	}
	if data.ContextImageURL != nil {
		step.ContextImageURL = *data.ContextImageURL
	}
	if data.ContextTextContent != nil {
		step.ContextTextContent = *data.ContextTextContent
	}
	if data.ContextVoiceTranscript != nil {
		step.ContextVoiceTranscript = *data.ContextVoiceTranscript
	}
	if data.ContextDescription != nil {
		step.ContextDescription = *data.ContextDescription
	}
	if data.ExtractionKeywords != nil {
		step.ExtractionKeywords = data.ExtractionKeywords
	}
	if data.ExtractionVoiceTranscript != nil {
		step.ExtractionVoiceTranscript = *data.ExtractionVoiceTranscript
	}
	if data.LogicStrategy != nil {
		step.LogicStrategy = *data.LogicStrategy
	}
	if data.LogicRuleExpression != nil {
		step.LogicRuleExpression = *data.LogicRuleExpression
	}
	if data.LogicEvaluationPrompt != nil {
		step.LogicEvaluationPrompt = *data.LogicEvaluationPrompt
	}
	if data.RoutingDefaultNext != nil {
		step.RoutingDefaultNext = *data.RoutingDefaultNext
	}
	if data.ExpertNotes != nil {
		step.ExpertNotes = *data.ExpertNotes
	}

	if err := s.store.UpdateStep(ctx, step); err != nil {
		return nil, err
	}
	return step, nil
}

// Delete removes a step; later siblings shift down to close the order gap.
func (s *StepService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteStep(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrStepNotFound, id)
		}
		return err
	}
	return nil
}

// AddBranch attaches a routing branch to a step.
func (s *StepService) AddBranch(ctx context.Context, stepID string, data BranchCreate) (*models.RoutingBranch, error) {
	exists, err := s.store.StepExists(ctx, stepID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrStepNotFound, stepID)
	}

	branch := &models.RoutingBranch{
		ID:              uuid.New().String(),
		StepID:          stepID,
		ConditionResult: data.ConditionResult,
		ActionType:      data.ActionType,
		NextStepID:      data.NextStepID,
	}
	if err := s.store.AddBranch(ctx, branch); err != nil {
		return nil, fmt.Errorf("add branch: %w", err)
	}
	return branch, nil
}

// DeleteBranch removes a routing branch from a step.
func (s *StepService) DeleteBranch(ctx context.Context, branchID string) error {
	if err := s.store.DeleteBranch(ctx, branchID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrBranchNotFound, branchID)
		}
		return err
	}
	return nil
}

func (s *StepService) requireWorkflow(ctx context.Context, workflowID string) error {
	exists, err := s.workflows.WorkflowExists(ctx, workflowID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrWorkflowNotFound, workflowID)
	}
	return nil
}
