package users

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo persists users in Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Upsert(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, email, full_name, given_name, family_name, picture_url, last_login_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
ON CONFLICT (id) DO UPDATE SET
  email = EXCLUDED.email,
  full_name = EXCLUDED.full_name,
  given_name = EXCLUDED.given_name,
  family_name = EXCLUDED.family_name,
  picture_url = EXCLUDED.picture_url,
  last_login_at = COALESCE(EXCLUDED.last_login_at, users.last_login_at),
  updated_at = now()`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		nullableString(user.FullName),
		nullableString(user.GivenName),
		nullableString(user.FamilyName),
		nullableString(user.PictureURL),
		nullableTime(user.LastLoginAt),
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = `
SELECT id, email, full_name, given_name, family_name, picture_url, last_login_at, created_at, updated_at
FROM users
WHERE id = $1
LIMIT 1`
	var (
		user                                        User
		fullName, givenName, familyName, pictureURL sql.NullString
		lastLoginAt, updatedAt                      sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&user.ID, &user.Email, &fullName, &givenName, &familyName, &pictureURL,
		&lastLoginAt, &user.CreatedAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	user.FullName = fullName.String
	user.GivenName = givenName.String
	user.FamilyName = familyName.String
	user.PictureURL = pictureURL.String
	if lastLoginAt.Valid {
		at := lastLoginAt.Time
		user.LastLoginAt = &at
	}
	user.UpdatedAt = user.CreatedAt
	if updatedAt.Valid {
		user.UpdatedAt = updatedAt.Time
	}
	return user, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return *value
}

var _ Repo = (*PGRepo)(nil)
