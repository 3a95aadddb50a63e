package users

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no user has the requested id.
	ErrNotFound = errors.New("user not found")
	// ErrInvalidUser is returned when an identity lacks its id or email.
	ErrInvalidUser = errors.New("user id and email are required")
	// ErrNotConfigured is returned by a Service without a backing Repo.
	ErrNotConfigured = errors.New("users service not configured")
)

// Repo stores signed-in users. Upsert keeps the first created time and
// the previous last login when the new record carries none.
type Repo interface {
	Upsert(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
}
