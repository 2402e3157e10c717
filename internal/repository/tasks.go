package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/sop-architect/backend/pkg/models"
)

const taskColumns = `id, workflow_id, name, task_order, description, status, created_at, updated_at`

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	err := row.Scan(
		&t.ID, &t.WorkflowID, &t.Name, &t.TaskOrder, &t.Description,
		&t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// CreateTask saves a new task.
func (s *PostgresStore) CreateTask(ctx context.Context, task *models.Task) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO tasks (id, workflow_id, name, task_order, description, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`,
		task.ID, task.WorkflowID, task.Name, task.TaskOrder, task.Description, task.Status,
	).Scan(&task.CreatedAt, &task.UpdatedAt)
}

// GetTask retrieves a task by id.
func (s *PostgresStore) GetTask(ctx context.Context, id string) (*models.Task, error) {
	return scanTask(s.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
}

// listTasks loads a workflow's tasks in task_order, without steps.
func (s *PostgresStore) listTasks(ctx context.Context, workflowID string) ([]*models.Task, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE workflow_id = $1 ORDER BY task_order`, workflowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// ListTasks returns a workflow's tasks in task_order with steps attached.
func (s *PostgresStore) ListTasks(ctx context.Context, workflowID string) ([]*models.Task, error) {
	tasks, err := s.listTasks(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	steps, err := s.listSteps(ctx, workflowID, 0, 0)
	if err != nil {
		return nil, err
	}

	byTask := make(map[string][]*models.WorkflowStep)
	for _, step := range steps {
		if step.TaskID != nil {
			byTask[*step.TaskID] = append(byTask[*step.TaskID], step)
		}
	}
	for _, task := range tasks {
		task.Steps = byTask[task.ID]
	}
	return tasks, nil
}

// MaxTaskOrder returns the highest task_order in a workflow, -1 when empty.
func (s *PostgresStore) MaxTaskOrder(ctx context.Context, workflowID string) (int, error) {
	var max int
	err := s.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(task_order), -1) FROM tasks WHERE workflow_id = $1`,
		workflowID).Scan(&max)
	return max, err
}

// UpdateTask overwrites a task's mutable columns and bumps updated_at.
func (s *PostgresStore) UpdateTask(ctx context.Context, task *models.Task) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE tasks SET name = $1, description = $2, status = $3, updated_at = now()
		 WHERE id = $4`,
		task.Name, task.Description, task.Status, task.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTask removes a task and decrements task_order on later siblings so
// the sequence stays gapless. Steps owned by the task cascade away.
func (s *PostgresStore) DeleteTask(ctx context.Context, id string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var workflowID string
	var taskOrder int
	err = tx.QueryRow(ctx,
		`DELETE FROM tasks WHERE id = $1 RETURNING workflow_id, task_order`, id,
	).Scan(&workflowID, &taskOrder)
	if err != nil {
		return notFound(err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE tasks SET task_order = task_order - 1, updated_at = now()
		 WHERE workflow_id = $1 AND task_order > $2`,
		workflowID, taskOrder)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ReorderTasks rewrites task_order to follow the given id sequence. Ids not
// belonging to the workflow are ignored by the WHERE clause.
func (s *PostgresStore) ReorderTasks(ctx context.Context, workflowID string, taskIDs []string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Park the orders out of range first so the unique constraint cannot
	// trip on intermediate states.
	_, err = tx.Exec(ctx,
		`UPDATE tasks SET task_order = -task_order - 1 WHERE workflow_id = $1`,
		workflowID)
	if err != nil {
		return err
	}

	for i, taskID := range taskIDs {
		_, err = tx.Exec(ctx,
			`UPDATE tasks SET task_order = $1, updated_at = now()
			 WHERE id = $2 AND workflow_id = $3`,
			i+1, taskID, workflowID)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
