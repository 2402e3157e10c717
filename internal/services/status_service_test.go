package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sop-architect/backend/internal/repository"
	"github.com/sop-architect/backend/pkg/models"
)

// fakeWorkflowStore keeps workflows in a map, enough for service tests
// that do not need a real database.
type fakeWorkflowStore struct {
	workflows map[string]*models.Workflow
}

func newFakeWorkflowStore(workflows ...*models.Workflow) *fakeWorkflowStore {
	s := &fakeWorkflowStore{workflows: make(map[string]*models.Workflow)}
	for _, w := range workflows {
		s.workflows[w.ID] = w
	}
	return s
}

func (s *fakeWorkflowStore) CreateWorkflow(_ context.Context, w *models.Workflow) error {
	s.workflows[w.ID] = w
	return nil
}

func (s *fakeWorkflowStore) GetWorkflow(_ context.Context, id string) (*models.Workflow, error) {
	w, ok := s.workflows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return w, nil
}

func (s *fakeWorkflowStore) ListWorkflows(_ context.Context, offset, limit int) ([]*models.Workflow, int, error) {
	var all []*models.Workflow
	for _, w := range s.workflows {
		all = append(all, w)
	}
	return all, len(all), nil
}

func (s *fakeWorkflowStore) ListTemplates(_ context.Context) ([]*models.Workflow, error) {
	var templates []*models.Workflow
	for _, w := range s.workflows {
		if w.IsTemplate {
			templates = append(templates, w)
		}
	}
	return templates, nil
}

func (s *fakeWorkflowStore) UpdateWorkflow(_ context.Context, w *models.Workflow) error {
	if _, ok := s.workflows[w.ID]; !ok {
		return repository.ErrNotFound
	}
	s.workflows[w.ID] = w
	return nil
}

func (s *fakeWorkflowStore) UpdateWorkflowStatus(_ context.Context, id string, status models.WorkflowStatus) error {
	w, ok := s.workflows[id]
	if !ok {
		return repository.ErrNotFound
	}
	w.Status = status
	return nil
}

func (s *fakeWorkflowStore) DeleteWorkflow(_ context.Context, id string) error {
	if _, ok := s.workflows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.workflows, id)
	return nil
}

func (s *fakeWorkflowStore) WorkflowExists(_ context.Context, id string) (bool, error) {
	_, ok := s.workflows[id]
	return ok, nil
}

func TestStatusView(t *testing.T) {
	store := newFakeWorkflowStore(&models.Workflow{ID: "wf-1", Name: "inspection", Status: models.StatusAnalyzed})
	svc := NewStatusService(store)

	view, err := svc.Status(context.Background(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "wf-1", view.ID)
	assert.Equal(t, models.StatusAnalyzed, view.Status)
	assert.Equal(t, "待复核", view.Label)
	assert.Equal(t, "purple", view.Color)
	assert.Equal(t, []models.WorkflowStatus{models.StatusExpertDone, models.StatusConfirmed}, view.AllowedTransitions)
}

func TestStatusMissingWorkflow(t *testing.T) {
	svc := NewStatusService(newFakeWorkflowStore())

	_, err := svc.Status(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrWorkflowNotFound)

	_, err = svc.Advance(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestTransitionForward(t *testing.T) {
	store := newFakeWorkflowStore(&models.Workflow{ID: "wf-1", Status: models.StatusExpertDone})
	svc := NewStatusService(store)

	result, err := svc.Transition(context.Background(), "wf-1", models.StatusAnalyzed)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, models.StatusExpertDone, result.PreviousStatus)
	assert.Equal(t, models.StatusAnalyzed, result.Status)
	assert.Equal(t, "待复核", result.Label)
	assert.Equal(t, models.StatusAnalyzed, store.workflows["wf-1"].Status)
}

func TestTransitionRejectsSkip(t *testing.T) {
	store := newFakeWorkflowStore(&models.Workflow{ID: "wf-1", Status: models.StatusExpertDone})
	svc := NewStatusService(store)

	result, err := svc.Transition(context.Background(), "wf-1", models.StatusConfirmed)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	assert.Equal(t, []models.WorkflowStatus{models.StatusWorkerDone, models.StatusAnalyzed}, result.AllowedTransitions)
	// The stored status is untouched.
	assert.Equal(t, models.StatusExpertDone, store.workflows["wf-1"].Status)
}

func TestTransitionBackward(t *testing.T) {
	store := newFakeWorkflowStore(&models.Workflow{ID: "wf-1", Status: models.StatusAnalyzed})
	svc := NewStatusService(store)

	result, err := svc.Transition(context.Background(), "wf-1", models.StatusExpertDone)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, models.StatusExpertDone, result.Status)
}

func TestAdvanceFromDraft(t *testing.T) {
	store := newFakeWorkflowStore(&models.Workflow{ID: "wf-1", Status: models.StatusDraft})
	svc := NewStatusService(store)

	result, err := svc.Advance(context.Background(), "wf-1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, models.StatusDraft, result.PreviousStatus)
	assert.Equal(t, models.StatusWorkerDone, result.Status)
}

func TestAdvanceAtDelivered(t *testing.T) {
	store := newFakeWorkflowStore(&models.Workflow{ID: "wf-1", Status: models.StatusDelivered})
	svc := NewStatusService(store)

	result, err := svc.Advance(context.Background(), "wf-1")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, models.StatusDelivered, result.Status)
	assert.NotEmpty(t, result.Error)
}

func TestRollbackAtDraft(t *testing.T) {
	store := newFakeWorkflowStore(&models.Workflow{ID: "wf-1", Status: models.StatusDraft})
	svc := NewStatusService(store)

	result, err := svc.Rollback(context.Background(), "wf-1")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, models.StatusDraft, result.Status)
}

func TestRollbackFromConfirmed(t *testing.T) {
	store := newFakeWorkflowStore(&models.Workflow{ID: "wf-1", Status: models.StatusConfirmed})
	svc := NewStatusService(store)

	result, err := svc.Rollback(context.Background(), "wf-1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, models.StatusAnalyzed, result.Status)
	assert.Equal(t, models.StatusConfirmed, result.PreviousStatus)
}
