package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sop-architect/backend/internal/repository"
	"github.com/sop-architect/backend/pkg/models"
)

// TemplateService manages preset workflow templates and cloning.
type TemplateService struct {
	workflows repository.WorkflowStore
	tasks     repository.TaskStore
	steps     repository.StepStore
}

// NewTemplateService creates a new TemplateService.
func NewTemplateService(workflows repository.WorkflowStore, tasks repository.TaskStore, steps repository.StepStore) *TemplateService {
	return &TemplateService{workflows: workflows, tasks: tasks, steps: steps}
}

// List returns all workflows flagged as templates.
func (s *TemplateService) List(ctx context.Context) ([]*models.Workflow, error) {
	templates, err := s.workflows.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	if templates == nil {
		templates = []*models.Workflow{}
	}
	return templates, nil
}

// Get loads one template with its tasks and steps. A workflow that is
// not flagged as a template is reported as absent.
func (s *TemplateService) Get(ctx context.Context, id string) (*models.Workflow, error) {
	template, err := s.workflows.GetWorkflow(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
		}
		return nil, err
	}
	if !template.IsTemplate {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
	}
	return template, nil
}

// Clone creates a new draft workflow from a template, copying its tasks
// and steps. The new workflow records the template id as provenance; the
// optional name overrides the template's.
func (s *TemplateService) Clone(ctx context.Context, templateID, name string) (*models.Workflow, error) {
	template, err := s.workflows.GetWorkflow(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, templateID)
		}
		return nil, err
	}

	if name == "" {
		name = template.Name
	}

	workflow := &models.Workflow{
		ID:            uuid.New().String(),
		Name:          name,
		Description:   template.Description,
		CoverImageURL: template.CoverImageURL,
		Status:        models.StatusDraft,
		TemplateID:    &template.ID,
	}
	if err := s.workflows.CreateWorkflow(ctx, workflow); err != nil {
		return nil, fmt.Errorf("clone workflow: %w", err)
	}

	stepOrder := 0
	for _, task := range template.Tasks {
		clonedTask := &models.Task{
			ID:          uuid.New().String(),
			WorkflowID:  workflow.ID,
			Name:        task.Name,
			TaskOrder:   task.TaskOrder,
			Description: task.Description,
			Status:      models.StepStatusPending,
		}
		if err := s.tasks.CreateTask(ctx, clonedTask); err != nil {
			return nil, fmt.Errorf("clone task: %w", err)
		}
		workflow.Tasks = append(workflow.Tasks, clonedTask)

		for _, step := range task.Steps {
			clonedStep := cloneStep(step, workflow.ID, &clonedTask.ID, stepOrder)
			stepOrder++
			if err := s.steps.CreateStep(ctx, clonedStep); err != nil {
				return nil, fmt.Errorf("clone step: %w", err)
			}
			clonedTask.Steps = append(clonedTask.Steps, clonedStep)
			workflow.Steps = append(workflow.Steps, clonedStep)
		}
	}

	// Steps belonging to no task keep their relative order after the rest.
	for _, step := range template.Steps {
		if step.TaskID != nil {
			continue
		}
		clonedStep := cloneStep(step, workflow.ID, nil, stepOrder)
		stepOrder++
		if err := s.steps.CreateStep(ctx, clonedStep); err != nil {
			return nil, fmt.Errorf("clone step: %w", err)
		}
		workflow.Steps = append(workflow.Steps, clonedStep)
	}

	return workflow, nil
}

func cloneStep(step *models.WorkflowStep, workflowID string, taskID *string, order int) *models.WorkflowStep {
	return &models.WorkflowStep{
		ID:                        uuid.New().String(),
		WorkflowID:                workflowID,
		TaskID:                    taskID,
		Name:                      step.Name,
		StepOrder:                 order,
		Status:                    models.StepStatusPending,
		ContextType:               step.ContextType,
		ContextDescription:        step.ContextDescription,
		ExtractionKeywords:        step.ExtractionKeywords,
		LogicStrategy:             step.LogicStrategy,
		LogicRuleExpression:       step.LogicRuleExpression,
		LogicEvaluationPrompt:     step.LogicEvaluationPrompt,
		RoutingDefaultNext:        step.RoutingDefaultNext,
		ExtractionVoiceTranscript: step.ExtractionVoiceTranscript,
	}
}
