package repository

import (
	"context"

	"github.com/sop-architect/backend/pkg/models"
)

// WorkflowStore persists workflows and loads the full aggregate.
type WorkflowStore interface {
	// CreateWorkflow saves a new workflow.
	CreateWorkflow(ctx context.Context, workflow *models.Workflow) error
	// GetWorkflow retrieves a workflow with tasks, steps, examples,
	// branches and notes eagerly loaded. Returns ErrNotFound if absent.
	GetWorkflow(ctx context.Context, id string) (*models.Workflow, error)
	// ListWorkflows returns a page ordered by most recently updated,
	// without child collections, plus the total count.
	ListWorkflows(ctx context.Context, offset, limit int) ([]*models.Workflow, int, error)
	// ListTemplates returns all workflows flagged as templates.
	ListTemplates(ctx context.Context) ([]*models.Workflow, error)
	// UpdateWorkflow overwrites a workflow's own columns and bumps updated_at.
	UpdateWorkflow(ctx context.Context, workflow *models.Workflow) error
	// UpdateWorkflowStatus sets only the status column and bumps updated_at.
	UpdateWorkflowStatus(ctx context.Context, id string, status models.WorkflowStatus) error
	// DeleteWorkflow removes a workflow; children cascade at the database level.
	DeleteWorkflow(ctx context.Context, id string) error
	// WorkflowExists reports whether a workflow id is present.
	WorkflowExists(ctx context.Context, id string) (bool, error)
}

// TaskStore persists the second hierarchy level.
type TaskStore interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	// ListTasks returns a workflow's tasks in task_order with steps attached.
	ListTasks(ctx context.Context, workflowID string) ([]*models.Task, error)
	// MaxTaskOrder returns the highest task_order in a workflow, -1 when empty.
	MaxTaskOrder(ctx context.Context, workflowID string) (int, error)
	UpdateTask(ctx context.Context, task *models.Task) error
	// DeleteTask removes a task and closes the task_order gap.
	DeleteTask(ctx context.Context, id string) error
	// ReorderTasks rewrites task_order to follow the given id sequence.
	ReorderTasks(ctx context.Context, workflowID string, taskIDs []string) error
}

// StepStore persists workflow steps and their routing branches.
type StepStore interface {
	CreateStep(ctx context.Context, step *models.WorkflowStep) error
	// GetStep retrieves a step with examples, branches and notes loaded.
	GetStep(ctx context.Context, id string) (*models.WorkflowStep, error)
	ListStepsByWorkflow(ctx context.Context, workflowID string, offset, limit int) ([]*models.WorkflowStep, error)
	// MaxStepOrder returns the highest step_order in a workflow, -1 when empty.
	MaxStepOrder(ctx context.Context, workflowID string) (int, error)
	// StepOrderExists reports whether a step already occupies step_order.
	StepOrderExists(ctx context.Context, workflowID string, stepOrder int) (bool, error)
	UpdateStep(ctx context.Context, step *models.WorkflowStep) error
	// DeleteStep removes a step and decrements the order of later siblings.
	DeleteStep(ctx context.Context, id string) error
	AddBranch(ctx context.Context, branch *models.RoutingBranch) error
	DeleteBranch(ctx context.Context, branchID string) error
	StepExists(ctx context.Context, id string) (bool, error)
}

// NoteStore persists step notes.
type NoteStore interface {
	CreateNote(ctx context.Context, note *models.StepNote) error
	GetNote(ctx context.Context, id string) (*models.StepNote, error)
	ListNotesByStep(ctx context.Context, stepID string) ([]*models.StepNote, error)
	UpdateNote(ctx context.Context, note *models.StepNote) error
	DeleteNote(ctx context.Context, id string) error
}

// ExampleStore persists few-shot examples.
type ExampleStore interface {
	CreateExample(ctx context.Context, example *models.Example) error
	GetExample(ctx context.Context, id string) (*models.Example, error)
	ListExamplesByStep(ctx context.Context, stepID string) ([]*models.Example, error)
	UpdateExample(ctx context.Context, example *models.Example) error
	DeleteExample(ctx context.Context, id string) error
}
