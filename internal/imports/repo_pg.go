package imports

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resume-importer/internal/resume"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, user_id, file_name, mime_type, size_bytes, sha256, storage_provider, storage_key,
status, extraction_path, error_code, error_message, result, created_at, updated_at, started_at, completed_at`

// Create inserts a new import.
func (r *PGRepo) Create(ctx context.Context, imp Import) error {
	const query = `
INSERT INTO imports (
    id,
    user_id,
    file_name,
    mime_type,
    size_bytes,
    sha256,
    storage_provider,
    storage_key,
    status,
    extraction_path,
    error_code,
    error_message,
    result,
    created_at,
    updated_at,
    started_at,
    completed_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13::jsonb, $14, $14, $15, $16)`

	result, err := encodeResult(imp.Result)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		imp.ID,
		imp.UserID,
		imp.FileName,
		imp.MimeType,
		imp.SizeBytes,
		nullableString(imp.SHA256),
		nullableString(imp.StorageProvider),
		nullableString(imp.StorageKey),
		imp.Status,
		nullableString(imp.ExtractionPath),
		nullableString(imp.ErrorCode),
		nullableString(imp.ErrorMessage),
		result,
		imp.CreatedAt,
		nullableTime(imp.StartedAt),
		nullableTime(imp.CompletedAt),
	)
	return err
}

// GetByID fetches an import by ID.
func (r *PGRepo) GetByID(ctx context.Context, importID string) (Import, error) {
	query := `SELECT ` + selectColumns + `
FROM imports
WHERE id = $1
LIMIT 1`
	imp, err := scanImport(r.DB.QueryRowContext(ctx, query, importID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Import{}, ErrNotFound
		}
		return Import{}, err
	}
	return imp, nil
}

// ListByUser lists imports ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Import, error) {
	limit, offset = clampPage(limit, offset)
	query := `SELECT ` + selectColumns + `
FROM imports
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Import, 0)
	for rows.Next() {
		imp, err := scanImport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, imp)
	}
	return out, rows.Err()
}

// Update persists status, outcome and timestamps of an import.
func (r *PGRepo) Update(ctx context.Context, imp Import) error {
	const query = `
UPDATE imports
SET status = $2,
    extraction_path = $3,
    error_code = $4,
    error_message = $5,
    result = $6::jsonb,
    started_at = $7,
    completed_at = $8,
    updated_at = now()
WHERE id = $1`

	result, err := encodeResult(imp.Result)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query,
		imp.ID,
		imp.Status,
		nullableString(imp.ExtractionPath),
		nullableString(imp.ErrorCode),
		nullableString(imp.ErrorMessage),
		result,
		nullableTime(imp.StartedAt),
		nullableTime(imp.CompletedAt),
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ClaimGuest reassigns imports owned by a guest user to an authenticated user.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	const query = `
UPDATE imports
SET user_id = $1, updated_at = now()
WHERE user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	updated, _ := res.RowsAffected()
	return int(updated), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanImport(row rowScanner) (Import, error) {
	var imp Import
	var sha, provider, storageKey sql.NullString
	var extractionPath, errorCode, errorMessage sql.NullString
	var result []byte
	var updatedAt, startedAt, completedAt sql.NullTime
	if err := row.Scan(
		&imp.ID,
		&imp.UserID,
		&imp.FileName,
		&imp.MimeType,
		&imp.SizeBytes,
		&sha,
		&provider,
		&storageKey,
		&imp.Status,
		&extractionPath,
		&errorCode,
		&errorMessage,
		&result,
		&imp.CreatedAt,
		&updatedAt,
		&startedAt,
		&completedAt,
	); err != nil {
		return Import{}, err
	}
	imp.SHA256 = sha.String
	imp.StorageProvider = provider.String
	imp.StorageKey = storageKey.String
	imp.ExtractionPath = extractionPath.String
	imp.ErrorCode = errorCode.String
	imp.ErrorMessage = errorMessage.String
	if updatedAt.Valid {
		imp.UpdatedAt = updatedAt.Time
	} else {
		imp.UpdatedAt = imp.CreatedAt
	}
	if startedAt.Valid {
		t := startedAt.Time
		imp.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		imp.CompletedAt = &t
	}
	if len(result) > 0 {
		data, err := resume.Decode(result)
		if err != nil {
			return Import{}, fmt.Errorf("decode import result id=%s: %w", imp.ID, err)
		}
		imp.Result = &data
	}
	return imp, nil
}

func encodeResult(result *resume.ResumeData) (any, error) {
	if result == nil {
		return nil, nil
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode import result: %w", err)
	}
	return string(payload), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

var _ Repo = (*PGRepo)(nil)
