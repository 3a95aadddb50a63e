package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"resume-importer/internal/resume"
)

// PGRepo implements Repo using a Postgres JSONB column.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Get(ctx context.Context, userID string) (Document, error) {
	const query = `
SELECT user_id, data, created_at, updated_at
FROM resumes
WHERE user_id = $1`
	var doc Document
	var payload []byte
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&doc.UserID, &payload, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	data, err := resume.Decode(payload)
	if err != nil {
		return Document{}, fmt.Errorf("decode resume user=%s: %w", userID, err)
	}
	doc.Data = data
	return doc, nil
}

func (r *PGRepo) Save(ctx context.Context, userID string, data resume.ResumeData) (Document, error) {
	const query = `
INSERT INTO resumes (user_id, data, created_at, updated_at)
VALUES ($1, $2::jsonb, now(), now())
ON CONFLICT (user_id) DO UPDATE SET
  data = EXCLUDED.data,
  updated_at = now()
RETURNING created_at, updated_at`
	payload, err := json.Marshal(data)
	if err != nil {
		return Document{}, fmt.Errorf("encode resume: %w", err)
	}
	doc := Document{UserID: userID, Data: data}
	if err := r.DB.QueryRowContext(ctx, query, userID, string(payload)).Scan(&doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (r *PGRepo) Delete(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM resumes WHERE user_id = $1`, userID)
	return err
}

func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (bool, error) {
	const query = `
UPDATE resumes
SET user_id = $1, updated_at = now()
WHERE user_id = $2
  AND NOT EXISTS (SELECT 1 FROM resumes WHERE user_id = $1)`
	res, err := r.DB.ExecContext(ctx, query, authedUserID, guestUserID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

var _ Repo = (*PGRepo)(nil)
