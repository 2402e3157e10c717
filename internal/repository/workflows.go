package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/sop-architect/backend/pkg/models"
)

const workflowColumns = `id, name, description, cover_image_url, status, is_template, template_id, created_at, updated_at`

func scanWorkflow(row pgx.Row) (*models.Workflow, error) {
	var w models.Workflow
	err := row.Scan(
		&w.ID, &w.Name, &w.Description, &w.CoverImageURL, &w.Status,
		&w.IsTemplate, &w.TemplateID, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &w, nil
}

// CreateWorkflow saves a new workflow.
func (s *PostgresStore) CreateWorkflow(ctx context.Context, workflow *models.Workflow) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO workflows (id, name, description, cover_image_url, status, is_template, template_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at`,
		workflow.ID, workflow.Name, workflow.Description, workflow.CoverImageURL,
		workflow.Status, workflow.IsTemplate, workflow.TemplateID,
	).Scan(&workflow.CreatedAt, &workflow.UpdatedAt)
}

// GetWorkflow retrieves a workflow with its full aggregate eagerly loaded:
// tasks in task_order, steps in step_order, and each step's examples,
// routing branches and notes in insertion order.
func (s *PostgresStore) GetWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := scanWorkflow(s.db.QueryRow(ctx,
		`SELECT `+workflowColumns+` FROM workflows WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}

	workflow.Tasks, err = s.listTasks(ctx, id)
	if err != nil {
		return nil, err
	}

	workflow.Steps, err = s.listSteps(ctx, id, 0, 0)
	if err != nil {
		return nil, err
	}
	if err := s.attachStepChildren(ctx, id, workflow.Steps); err != nil {
		return nil, err
	}

	// Hang each step off its owning task as well.
	byTask := make(map[string][]*models.WorkflowStep)
	for _, step := range workflow.Steps {
		if step.TaskID != nil {
			byTask[*step.TaskID] = append(byTask[*step.TaskID], step)
		}
	}
	for _, task := range workflow.Tasks {
		task.Steps = byTask[task.ID]
	}

	return workflow, nil
}

// ListWorkflows returns a page ordered by most recent update, plus the
// total count. Child collections are not loaded.
func (s *PostgresStore) ListWorkflows(ctx context.Context, offset, limit int) ([]*models.Workflow, int, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+workflowColumns+` FROM workflows
		 ORDER BY updated_at DESC OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var workflows []*models.Workflow
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, 0, err
		}
		workflows = append(workflows, w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM workflows`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return workflows, total, nil
}

// ListTemplates returns all template workflows with tasks and steps attached.
func (s *PostgresStore) ListTemplates(ctx context.Context) ([]*models.Workflow, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+workflowColumns+` FROM workflows
		 WHERE is_template ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*models.Workflow
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, template := range templates {
		if template.Tasks, err = s.listTasks(ctx, template.ID); err != nil {
			return nil, err
		}
		if template.Steps, err = s.listSteps(ctx, template.ID, 0, 0); err != nil {
			return nil, err
		}
	}
	return templates, nil
}

// UpdateWorkflow overwrites a workflow's own columns and bumps updated_at.
func (s *PostgresStore) UpdateWorkflow(ctx context.Context, workflow *models.Workflow) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE workflows
		 SET name = $1, description = $2, cover_image_url = $3, status = $4,
		     is_template = $5, updated_at = now()
		 WHERE id = $6`,
		workflow.Name, workflow.Description, workflow.CoverImageURL,
		workflow.Status, workflow.IsTemplate, workflow.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateWorkflowStatus sets only the status column and bumps updated_at.
func (s *PostgresStore) UpdateWorkflowStatus(ctx context.Context, id string, status models.WorkflowStatus) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE workflows SET status = $1, updated_at = now() WHERE id = $2`,
		status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWorkflow removes a workflow. Tasks, steps, notes, examples and
// branches cascade at the database level.
func (s *PostgresStore) DeleteWorkflow(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// WorkflowExists reports whether a workflow id is present.
func (s *PostgresStore) WorkflowExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM workflows WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
