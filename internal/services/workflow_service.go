package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sop-architect/backend/internal/repository"
	"github.com/sop-architect/backend/pkg/models"
)

// WorkflowService owns workflow CRUD business logic.
type WorkflowService struct {
	store repository.WorkflowStore
}

// NewWorkflowService creates a new WorkflowService.
func NewWorkflowService(store repository.WorkflowStore) *WorkflowService {
	return &WorkflowService{store: store}
}

// WorkflowCreate carries the fields accepted when creating a workflow.
type WorkflowCreate struct {
	Name          string                `json:"name"`
	Description   string                `json:"description"`
	CoverImageURL string                `json:"cover_image_url"`
	Status        models.WorkflowStatus `json:"status"`
}

// WorkflowUpdate carries the optional fields of a partial update. Nil
// fields are left untouched.
type WorkflowUpdate struct {
	Name          *string                `json:"name"`
	Description   *string                `json:"description"`
	CoverImageURL *string                `json:"cover_image_url"`
	Status        *models.WorkflowStatus `json:"status"`
}

// WorkflowPage is one page of a workflow listing.
type WorkflowPage struct {
	Items    []*models.Workflow `json:"items"`
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// Create creates a new workflow. An empty status defaults to draft.
func (s *WorkflowService) Create(ctx context.Context, data WorkflowCreate) (*models.Workflow, error) {
	workflow := &models.Workflow{
		ID:            uuid.New().String(),
		Name:          data.Name,
		Description:   data.Description,
		CoverImageURL: data.CoverImageURL,
		Status:        data.Status,
	}
	if workflow.Status == "" {
		workflow.Status = models.StatusDraft
	}
	if err := s.store.CreateWorkflow(ctx, workflow); err != nil {
		return nil, fmt.Errorf("create workflow: %w", err)
	}
	return workflow, nil
}

// Get loads the full workflow aggregate.
func (s *WorkflowService) Get(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := s.store.GetWorkflow(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
		}
		return nil, err
	}
	return workflow, nil
}

// List returns one page of workflows ordered by most recent update.
func (s *WorkflowService) List(ctx context.Context, page, pageSize int) (*WorkflowPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	items, total, err := s.store.ListWorkflows(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	if items == nil {
		items = []*models.Workflow{}
	}
	return &WorkflowPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// Update applies a partial update and returns the fresh aggregate.
func (s *WorkflowService) Update(ctx context.Context, id string, data WorkflowUpdate) (*models.Workflow, error) {
	workflow, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if data.Name != nil {
		workflow.Name = *data.Name
	}
	if data.Description != nil {
		workflow.Description = *data.Description
	}
	if data.CoverImageURL != nil {
		workflow.CoverImageURL = *data.CoverImageURL
	}
	if data.Status != nil {
		workflow.Status = *data.Status
	}

	if err := s.store.UpdateWorkflow(ctx, workflow); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
		}
		return nil, err
	}
	return workflow, nil
}

// Delete removes a workflow and, through the database, all its children.
func (s *WorkflowService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteWorkflow(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
		}
		return err
	}
	return nil
}
