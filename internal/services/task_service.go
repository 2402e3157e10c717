package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sop-architect/backend/internal/repository"
	"github.com/sop-architect/backend/pkg/models"
)

// TaskService owns task CRUD business logic.
type TaskService struct {
	store     repository.TaskStore
	workflows repository.WorkflowStore
}

// NewTaskService creates a new TaskService.
func NewTaskService(store repository.TaskStore, workflows repository.WorkflowStore) *TaskService {
	return &TaskService{store: store, workflows: workflows}
}

// TaskCreate carries the fields accepted when creating a task.
type TaskCreate struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TaskUpdate carries the optional fields of a partial update.
type TaskUpdate struct {
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	Status      *models.StepStatus `json:"status"`
}

// ListByWorkflow returns a workflow's tasks in task_order.
func (s *TaskService) ListByWorkflow(ctx context.Context, workflowID string) ([]*models.Task, error) {
	if err := s.requireWorkflow(ctx, workflowID); err != nil {
		return nil, err
	}
	tasks, err := s.store.ListTasks(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}
	return tasks, nil
}

// Create appends a task at the end of the workflow's task sequence.
func (s *TaskService) Create(ctx context.Context, workflowID string, data TaskCreate) (*models.Task, error) {
	if err := s.requireWorkflow(ctx, workflowID); err != nil {
		return nil, err
	}

	max, err := s.store.MaxTaskOrder(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("next task order: %w", err)
	}

	task := &models.Task{
		ID:          uuid.New().String(),
		WorkflowID:  workflowID,
		Name:        data.Name,
		TaskOrder:   max + 1,
		Description: data.Description,
		Status:      models.StepStatusPending,
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// Get loads one task.
func (s *TaskService) Get(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		return nil, err
	}
	return task, nil
}

// Update applies a partial update to a task.
func (s *TaskService) Update(ctx context.Context, id string, data TaskUpdate) (*models.Task, error) {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		return nil, err
	}

	if data.Name != nil {
		task.Name = *data.Name
	}
	if data.Description != nil {
		task.Description = *data.Description
	}
	if data.Status != nil {
		task.Status = *data.Status
	}

	if err := s.store.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes a task; later siblings shift down to close the order gap.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteTask(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		return err
	}
	return nil
}

// Reorder rewrites the workflow's task order to match the given sequence.
func (s *TaskService) Reorder(ctx context.Context, workflowID string, taskIDs []string) error {
	if err := s.requireWorkflow(ctx, workflowID); err != nil {
		return err
	}
	if err := s.store.ReorderTasks(ctx, workflowID, taskIDs); err != nil {
		return fmt.Errorf("reorder tasks: %w", err)
	}
	return nil
}

func (s *TaskService) requireWorkflow(ctx context.Context, workflowID string) error {
	exists, err := s.workflows.WorkflowExists(ctx, workflowID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrWorkflowNotFound, workflowID)
	}
	return nil
}
