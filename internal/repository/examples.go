package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/sop-architect/backend/pkg/models"
)

func scanExample(row pgx.Row) (*models.Example, error) {
	var e models.Example
	err := row.Scan(
		&e.ID, &e.StepID, &e.Content, &e.ContentType, &e.Label,
		&e.Description, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

// CreateExample saves a new few-shot example.
func (s *PostgresStore) CreateExample(ctx context.Context, example *models.Example) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO examples (id, step_id, content, content_type, label, description)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`,
		example.ID, example.StepID, example.Content, example.ContentType,
		example.Label, example.Description,
	).Scan(&example.CreatedAt, &example.UpdatedAt)
}

// GetExample retrieves an example by id.
func (s *PostgresStore) GetExample(ctx context.Context, id string) (*models.Example, error) {
	return scanExample(s.db.QueryRow(ctx,
		`SELECT id, step_id, content, content_type, label, description, created_at, updated_at
		 FROM examples WHERE id = $1`, id))
}

// ListExamplesByStep returns a step's examples in insertion order.
func (s *PostgresStore) ListExamplesByStep(ctx context.Context, stepID string) ([]*models.Example, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, step_id, content, content_type, label, description, created_at, updated_at
		 FROM examples WHERE step_id = $1 ORDER BY created_at`, stepID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var examples []*models.Example
	for rows.Next() {
		e, err := scanExample(rows)
		if err != nil {
			return nil, err
		}
		examples = append(examples, e)
	}
	return examples, rows.Err()
}

// UpdateExample overwrites an example's mutable columns.
func (s *PostgresStore) UpdateExample(ctx context.Context, example *models.Example) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE examples SET content = $1, content_type = $2, label = $3,
		     description = $4, updated_at = now()
		 WHERE id = $5`,
		example.Content, example.ContentType, example.Label, example.Description, example.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExample removes an example.
func (s *PostgresStore) DeleteExample(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM examples WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
