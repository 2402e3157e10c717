package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/sop-architect/backend/pkg/models"
)

func scanNote(row pgx.Row) (*models.StepNote, error) {
	var n models.StepNote
	err := row.Scan(
		&n.ID, &n.StepID, &n.ContentType, &n.Content, &n.VoiceTranscript,
		&n.CreatedBy, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &n, nil
}

// CreateNote saves a new step note.
func (s *PostgresStore) CreateNote(ctx context.Context, note *models.StepNote) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO step_notes (id, step_id, content_type, content, voice_transcript, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`,
		note.ID, note.StepID, note.ContentType, note.Content,
		note.VoiceTranscript, note.CreatedBy,
	).Scan(&note.CreatedAt, &note.UpdatedAt)
}

// GetNote retrieves a note by id.
func (s *PostgresStore) GetNote(ctx context.Context, id string) (*models.StepNote, error) {
	return scanNote(s.db.QueryRow(ctx,
		`SELECT id, step_id, content_type, content, voice_transcript, created_by, created_at, updated_at
		 FROM step_notes WHERE id = $1`, id))
}

// ListNotesByStep returns a step's notes ordered by creation time.
func (s *PostgresStore) ListNotesByStep(ctx context.Context, stepID string) ([]*models.StepNote, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, step_id, content_type, content, voice_transcript, created_by, created_at, updated_at
		 FROM step_notes WHERE step_id = $1 ORDER BY created_at`, stepID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*models.StepNote
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// UpdateNote overwrites a note's content and transcript.
func (s *PostgresStore) UpdateNote(ctx context.Context, note *models.StepNote) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE step_notes SET content = $1, voice_transcript = $2, updated_at = now()
		 WHERE id = $3`,
		note.Content, note.VoiceTranscript, note.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteNote removes a note.
func (s *PostgresStore) DeleteNote(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM step_notes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
