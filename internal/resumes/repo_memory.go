package resumes

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"resume-importer/internal/resume"
)

// MemoryRepo stores documents in memory as encoded JSON, mirroring the JSONB column.
type MemoryRepo struct {
	mu   sync.RWMutex
	docs map[string]memoryDoc
}

type memoryDoc struct {
	payload   []byte
	createdAt time.Time
	updatedAt time.Time
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{docs: make(map[string]memoryDoc)}
}

func (r *MemoryRepo) Get(ctx context.Context, userID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	doc, ok := r.docs[userID]
	r.mu.RUnlock()
	if !ok {
		return Document{}, ErrNotFound
	}
	data, err := resume.Decode(doc.payload)
	if err != nil {
		return Document{}, err
	}
	return Document{UserID: userID, Data: data, CreatedAt: doc.createdAt, UpdatedAt: doc.updatedAt}, nil
}

func (r *MemoryRepo) Save(ctx context.Context, userID string, data resume.ResumeData) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return Document{}, err
	}
	now := time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[userID]
	if !ok {
		doc.createdAt = now
	}
	doc.payload = payload
	doc.updatedAt = now
	r.docs[userID] = doc
	return Document{UserID: userID, Data: data, CreatedAt: doc.createdAt, UpdatedAt: now}, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, userID)
	return nil
}

func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	guest, ok := r.docs[guestUserID]
	if !ok {
		return false, nil
	}
	if _, exists := r.docs[authedUserID]; exists {
		return false, nil
	}
	r.docs[authedUserID] = guest
	delete(r.docs, guestUserID)
	return true, nil
}

var _ Repo = (*MemoryRepo)(nil)
