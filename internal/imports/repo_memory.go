package imports

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores imports in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Import
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Import)}
}

// Create stores the import.
func (r *MemoryRepo) Create(ctx context.Context, imp Import) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if imp.UpdatedAt.IsZero() {
		imp.UpdatedAt = imp.CreatedAt
	}
	r.byID[imp.ID] = cloneImport(imp)
	return nil
}

// GetByID returns an import by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, importID string) (Import, error) {
	if err := ctx.Err(); err != nil {
		return Import{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	imp, ok := r.byID[importID]
	if !ok {
		return Import{}, ErrNotFound
	}
	return cloneImport(imp), nil
}

// ListByUser lists a user's imports newest-first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Import, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit, offset = clampPage(limit, offset)

	r.mu.RLock()
	out := make([]Import, 0)
	for _, imp := range r.byID {
		if imp.UserID == userID {
			out = append(out, cloneImport(imp))
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset >= len(out) {
		return []Import{}, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

// Update replaces the processing fields of an existing import.
func (r *MemoryRepo) Update(ctx context.Context, imp Import) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[imp.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Status = imp.Status
	existing.ExtractionPath = imp.ExtractionPath
	existing.ErrorCode = imp.ErrorCode
	existing.ErrorMessage = imp.ErrorMessage
	existing.Result = imp.Result
	existing.StartedAt = imp.StartedAt
	existing.CompletedAt = imp.CompletedAt
	existing.UpdatedAt = time.Now().UTC()
	r.byID[imp.ID] = cloneImport(existing)
	return nil
}

// ClaimGuest reassigns imports owned by a guest user to an authenticated user.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	moved := 0
	for id, imp := range r.byID {
		if imp.UserID != guestUserID {
			continue
		}
		imp.UserID = authedUserID
		r.byID[id] = imp
		moved++
	}
	return moved, nil
}

func cloneImport(imp Import) Import {
	if imp.Result != nil {
		res := *imp.Result
		imp.Result = &res
	}
	return imp
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

var _ Repo = (*MemoryRepo)(nil)
