package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sop-architect/backend/pkg/models"
)

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test-db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2)),
	)
	if err != nil {
		t.Skipf("skipping, could not start postgres container: %v", err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()

	store := NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}

	newWorkflow := func(t *testing.T, name string) *models.Workflow {
		t.Helper()
		w := &models.Workflow{
			ID:     uuid.New().String(),
			Name:   name,
			Status: models.StatusDraft,
		}
		require.NoError(t, store.CreateWorkflow(ctx, w))
		return w
	}

	t.Run("workflow round trip", func(t *testing.T) {
		w := newWorkflow(t, "inspection")
		assert.False(t, w.CreatedAt.IsZero())

		got, err := store.GetWorkflow(ctx, w.ID)
		require.NoError(t, err)
		assert.Equal(t, "inspection", got.Name)
		assert.Equal(t, models.StatusDraft, got.Status)
		assert.Empty(t, got.Tasks)
		assert.Empty(t, got.Steps)
	})

	t.Run("get missing workflow", func(t *testing.T) {
		_, err := store.GetWorkflow(ctx, uuid.New().String())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update workflow status", func(t *testing.T) {
		w := newWorkflow(t, "status change")
		require.NoError(t, store.UpdateWorkflowStatus(ctx, w.ID, models.StatusWorkerDone))

		got, err := store.GetWorkflow(ctx, w.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusWorkerDone, got.Status)

		err = store.UpdateWorkflowStatus(ctx, uuid.New().String(), models.StatusWorkerDone)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("task order gap closes on delete", func(t *testing.T) {
		w := newWorkflow(t, "task orders")

		var tasks []*models.Task
		for i := 0; i < 3; i++ {
			task := &models.Task{
				ID:         uuid.New().String(),
				WorkflowID: w.ID,
				Name:       "task",
				TaskOrder:  i,
				Status:     models.StepStatusPending,
			}
			require.NoError(t, store.CreateTask(ctx, task))
			tasks = append(tasks, task)
		}

		require.NoError(t, store.DeleteTask(ctx, tasks[0].ID))

		remaining, err := store.ListTasks(ctx, w.ID)
		require.NoError(t, err)
		require.Len(t, remaining, 2)
		assert.Equal(t, 0, remaining[0].TaskOrder)
		assert.Equal(t, 1, remaining[1].TaskOrder)
		assert.Equal(t, tasks[1].ID, remaining[0].ID)
	})

	t.Run("reorder tasks", func(t *testing.T) {
		w := newWorkflow(t, "reorder")

		ids := make([]string, 3)
		for i := 0; i < 3; i++ {
			task := &models.Task{
				ID:         uuid.New().String(),
				WorkflowID: w.ID,
				Name:       "task",
				TaskOrder:  i,
				Status:     models.StepStatusPending,
			}
			require.NoError(t, store.CreateTask(ctx, task))
			ids[i] = task.ID
		}

		require.NoError(t, store.ReorderTasks(ctx, w.ID, []string{ids[2], ids[0], ids[1]}))

		got, err := store.ListTasks(ctx, w.ID)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, ids[2], got[0].ID)
		assert.Equal(t, ids[0], got[1].ID)
		assert.Equal(t, ids[1], got[2].ID)
	})

	t.Run("step order gap closes on delete", func(t *testing.T) {
		w := newWorkflow(t, "step orders")

		var steps []*models.WorkflowStep
		for i := 0; i < 3; i++ {
			step := &models.WorkflowStep{
				ID:         uuid.New().String(),
				WorkflowID: w.ID,
				Name:       "step",
				StepOrder:  i,
				Status:     models.StepStatusPending,
			}
			require.NoError(t, store.CreateStep(ctx, step))
			steps = append(steps, step)
		}

		exists, err := store.StepOrderExists(ctx, w.ID, 1)
		require.NoError(t, err)
		assert.True(t, exists)

		require.NoError(t, store.DeleteStep(ctx, steps[1].ID))

		remaining, err := store.ListStepsByWorkflow(ctx, w.ID, 0, 0)
		require.NoError(t, err)
		require.Len(t, remaining, 2)
		assert.Equal(t, 0, remaining[0].StepOrder)
		assert.Equal(t, 1, remaining[1].StepOrder)
		assert.Equal(t, steps[2].ID, remaining[1].ID)
	})

	t.Run("step children load with the step", func(t *testing.T) {
		w := newWorkflow(t, "step children")

		step := &models.WorkflowStep{
			ID:                 uuid.New().String(),
			WorkflowID:         w.ID,
			Name:               "read meter",
			StepOrder:          0,
			Status:             models.StepStatusPending,
			ExtractionKeywords: []string{"reading", "unit"},
			LogicStrategy:      models.StrategyFewShot,
		}
		require.NoError(t, store.CreateStep(ctx, step))

		example := &models.Example{
			ID:          uuid.New().String(),
			StepID:      step.ID,
			Content:     "12.5 kWh",
			ContentType: "text",
			Label:       models.LabelPass,
		}
		require.NoError(t, store.CreateExample(ctx, example))

		branch := &models.RoutingBranch{
			ID:              uuid.New().String(),
			StepID:          step.ID,
			ConditionResult: "abnormal",
			ActionType:      "jump",
			NextStepID:      "step-x",
		}
		require.NoError(t, store.AddBranch(ctx, branch))

		note := &models.StepNote{
			ID:          uuid.New().String(),
			StepID:      step.ID,
			ContentType: models.NoteContentText,
			Content:     "watch the decimal point",
			CreatedBy:   models.AuthorWorker,
		}
		require.NoError(t, store.CreateNote(ctx, note))

		got, err := store.GetStep(ctx, step.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"reading", "unit"}, got.ExtractionKeywords)
		require.Len(t, got.Examples, 1)
		assert.Equal(t, "12.5 kWh", got.Examples[0].Content)
		require.Len(t, got.RoutingBranches, 1)
		assert.Equal(t, "abnormal", got.RoutingBranches[0].ConditionResult)
		require.Len(t, got.Notes, 1)
		assert.Equal(t, "watch the decimal point", got.Notes[0].Content)

		full, err := store.GetWorkflow(ctx, w.ID)
		require.NoError(t, err)
		require.Len(t, full.Steps, 1)
		assert.Len(t, full.Steps[0].Examples, 1)
		assert.Len(t, full.Steps[0].RoutingBranches, 1)
		assert.Len(t, full.Steps[0].Notes, 1)
	})

	t.Run("delete workflow cascades", func(t *testing.T) {
		w := newWorkflow(t, "cascade")

		step := &models.WorkflowStep{
			ID:         uuid.New().String(),
			WorkflowID: w.ID,
			Name:       "step",
			StepOrder:  0,
			Status:     models.StepStatusPending,
		}
		require.NoError(t, store.CreateStep(ctx, step))

		require.NoError(t, store.DeleteWorkflow(ctx, w.ID))

		_, err := store.GetStep(ctx, step.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("templates listed separately", func(t *testing.T) {
		template := &models.Workflow{
			ID:         uuid.New().String(),
			Name:       "preset",
			Status:     models.StatusDraft,
			IsTemplate: true,
		}
		require.NoError(t, store.CreateWorkflow(ctx, template))

		templates, err := store.ListTemplates(ctx)
		require.NoError(t, err)

		found := false
		for _, tpl := range templates {
			if tpl.ID == template.ID {
				found = true
				assert.True(t, tpl.IsTemplate)
			}
		}
		assert.True(t, found)
	})
}
