package imports

import "context"

// Repo defines persistence operations for imports.
type Repo interface {
	Create(ctx context.Context, imp Import) error
	GetByID(ctx context.Context, importID string) (Import, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Import, error)
	// Update persists the mutable processing fields of an import.
	Update(ctx context.Context, imp Import) error
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)
