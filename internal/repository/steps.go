package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/sop-architect/backend/pkg/models"
)

const stepColumns = `id, workflow_id, task_id, name, step_order, status,
	context_type, context_image_url, context_text_content, context_voice_transcript, context_description,
	extraction_keywords, extraction_voice_transcript,
	logic_strategy, logic_rule_expression, logic_evaluation_prompt,
	routing_default_next, expert_notes, created_at, updated_at`

func scanStep(row pgx.Row) (*models.WorkflowStep, error) {
	var st models.WorkflowStep
	err := row.Scan(
		&st.ID, &st.WorkflowID, &st.TaskID, &st.Name, &st.StepOrder, &st.Status,
		&st.ContextType, &st.ContextImageURL, &st.ContextTextContent,
		&st.ContextVoiceTranscript, &st.ContextDescription,
		&st.ExtractionKeywords, &st.ExtractionVoiceTranscript,
		&st.LogicStrategy, &st.LogicRuleExpression, &st.LogicEvaluationPrompt,
		&st.RoutingDefaultNext, &st.ExpertNotes, &st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &st, nil
}

// CreateStep saves a new step.
func (s *PostgresStore) CreateStep(ctx context.Context, step *models.WorkflowStep) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO workflow_steps (
			id, workflow_id, task_id, name, step_order, status,
			context_type, context_image_url, context_text_content, context_voice_transcript, context_description,
			extraction_keywords, extraction_voice_transcript,
			logic_strategy, logic_rule_expression, logic_evaluation_prompt,
			routing_default_next, expert_notes
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		 RETURNING created_at, updated_at`,
		step.ID, step.WorkflowID, step.TaskID, step.Name, step.StepOrder, step.Status,
		step.ContextType, step.ContextImageURL, step.ContextTextContent,
		step.ContextVoiceTranscript, step.ContextDescription,
		step.ExtractionKeywords, step.ExtractionVoiceTranscript,
		step.LogicStrategy, step.LogicRuleExpression, step.LogicEvaluationPrompt,
		step.RoutingDefaultNext, step.ExpertNotes,
	).Scan(&step.CreatedAt, &step.UpdatedAt)
}

// GetStep retrieves a step with examples, branches and notes loaded.
func (s *PostgresStore) GetStep(ctx context.Context, id string) (*models.WorkflowStep, error) {
	step, err := scanStep(s.db.QueryRow(ctx,
		`SELECT `+stepColumns+` FROM workflow_steps WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}

	if step.Examples, err = s.ListExamplesByStep(ctx, id); err != nil {
		return nil, err
	}
	if step.RoutingBranches, err = s.listBranchesByStep(ctx, id); err != nil {
		return nil, err
	}
	if step.Notes, err = s.ListNotesByStep(ctx, id); err != nil {
		return nil, err
	}
	return step, nil
}

// listSteps loads a workflow's steps in step_order without children.
// limit <= 0 means no limit.
func (s *PostgresStore) listSteps(ctx context.Context, workflowID string, offset, limit int) ([]*models.WorkflowStep, error) {
	query := `SELECT ` + stepColumns + ` FROM workflow_steps
		 WHERE workflow_id = $1 ORDER BY step_order OFFSET $2`
	args := []any{workflowID, offset}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []*models.WorkflowStep
	for rows.Next() {
		st, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		steps = append(steps, st)
	}
	return steps, rows.Err()
}

// ListStepsByWorkflow returns a page of steps with children attached.
func (s *PostgresStore) ListStepsByWorkflow(ctx context.Context, workflowID string, offset, limit int) ([]*models.WorkflowStep, error) {
	steps, err := s.listSteps(ctx, workflowID, offset, limit)
	if err != nil {
		return nil, err
	}
	if err := s.attachStepChildren(ctx, workflowID, steps); err != nil {
		return nil, err
	}
	return steps, nil
}

// attachStepChildren loads every example, routing branch and note of a
// workflow in three queries and hangs them off the matching steps.
func (s *PostgresStore) attachStepChildren(ctx context.Context, workflowID string, steps []*models.WorkflowStep) error {
	if len(steps) == 0 {
		return nil
	}
	byID := make(map[string]*models.WorkflowStep, len(steps))
	for _, step := range steps {
		byID[step.ID] = step
	}

	rows, err := s.db.Query(ctx,
		`SELECT e.id, e.step_id, e.content, e.content_type, e.label, e.description, e.created_at, e.updated_at
		 FROM examples e JOIN workflow_steps ws ON e.step_id = ws.id
		 WHERE ws.workflow_id = $1 ORDER BY e.created_at`, workflowID)
	if err != nil {
		return err
	}
	for rows.Next() {
		example, err := scanExample(rows)
		if err != nil {
			rows.Close()
			return err
		}
		if step, ok := byID[example.StepID]; ok {
			step.Examples = append(step.Examples, example)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.Query(ctx,
		`SELECT b.id, b.step_id, b.condition_result, b.action_type, b.next_step_id, b.created_at, b.updated_at
		 FROM routing_branches b JOIN workflow_steps ws ON b.step_id = ws.id
		 WHERE ws.workflow_id = $1 ORDER BY b.created_at`, workflowID)
	if err != nil {
		return err
	}
	for rows.Next() {
		branch, err := scanBranch(rows)
		if err != nil {
			rows.Close()
			return err
		}
		if step, ok := byID[branch.StepID]; ok {
			step.RoutingBranches = append(step.RoutingBranches, branch)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.Query(ctx,
		`SELECT n.id, n.step_id, n.content_type, n.content, n.voice_transcript, n.created_by, n.created_at, n.updated_at
		 FROM step_notes n JOIN workflow_steps ws ON n.step_id = ws.id
		 WHERE ws.workflow_id = $1 ORDER BY n.created_at`, workflowID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return err
		}
		if step, ok := byID[note.StepID]; ok {
			step.Notes = append(step.Notes, note)
		}
	}
	return rows.Err()
}

// MaxStepOrder returns the highest step_order in a workflow, -1 when empty.
func (s *PostgresStore) MaxStepOrder(ctx context.Context, workflowID string) (int, error) {
	var max int
	err := s.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(step_order), -1) FROM workflow_steps WHERE workflow_id = $1`,
		workflowID).Scan(&max)
	return max, err
}

// StepOrderExists reports whether a step already occupies step_order.
func (s *PostgresStore) StepOrderExists(ctx context.Context, workflowID string, stepOrder int) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM workflow_steps WHERE workflow_id = $1 AND step_order = $2)`,
		workflowID, stepOrder).Scan(&exists)
	return exists, err
}

// UpdateStep overwrites a step's mutable columns and bumps updated_at.
func (s *PostgresStore) UpdateStep(ctx context.Context, step *models.WorkflowStep) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE workflow_steps SET
			task_id = $1, name = $2, status = $3,
			context_type = $4, context_image_url = $5, context_text_content = $6,
			context_voice_transcript = $7, context_description = $8,
			extraction_keywords = $9, extraction_voice_transcript = $10,
			logic_strategy = $11, logic_rule_expression = $12, logic_evaluation_prompt = $13,
			routing_default_next = $14, expert_notes = $15, updated_at = now()
		 WHERE id = $16`,
		step.TaskID, step.Name, step.Status,
		step.ContextType, step.ContextImageURL, step.ContextTextContent,
		step.ContextVoiceTranscript, step.ContextDescription,
		step.ExtractionKeywords, step.ExtractionVoiceTranscript,
		step.LogicStrategy, step.LogicRuleExpression, step.LogicEvaluationPrompt,
		step.RoutingDefaultNext, step.ExpertNotes, step.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteStep removes a step and closes the step_order gap by decrementing
// every later sibling in the same workflow.
func (s *PostgresStore) DeleteStep(ctx context.Context, id string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var workflowID string
	var stepOrder int
	err = tx.QueryRow(ctx,
		`DELETE FROM workflow_steps WHERE id = $1 RETURNING workflow_id, step_order`, id,
	).Scan(&workflowID, &stepOrder)
	if err != nil {
		return notFound(err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE workflow_steps SET step_order = step_order - 1, updated_at = now()
		 WHERE workflow_id = $1 AND step_order > $2`,
		workflowID, stepOrder)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// StepExists reports whether a step id is present.
func (s *PostgresStore) StepExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM workflow_steps WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func scanBranch(row pgx.Row) (*models.RoutingBranch, error) {
	var b models.RoutingBranch
	err := row.Scan(
		&b.ID, &b.StepID, &b.ConditionResult, &b.ActionType, &b.NextStepID,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (s *PostgresStore) listBranchesByStep(ctx context.Context, stepID string) ([]*models.RoutingBranch, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, step_id, condition_result, action_type, next_step_id, created_at, updated_at
		 FROM routing_branches WHERE step_id = $1 ORDER BY created_at`, stepID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branches []*models.RoutingBranch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

// AddBranch attaches a routing branch to a step.
func (s *PostgresStore) AddBranch(ctx context.Context, branch *models.RoutingBranch) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO routing_branches (id, step_id, condition_result, action_type, next_step_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`,
		branch.ID, branch.StepID, branch.ConditionResult, branch.ActionType, branch.NextStepID,
	).Scan(&branch.CreatedAt, &branch.UpdatedAt)
}

// DeleteBranch removes a routing branch.
func (s *PostgresStore) DeleteBranch(ctx context.Context, branchID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM routing_branches WHERE id = $1`, branchID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
