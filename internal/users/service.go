package users

import (
	"context"
	"strings"
	"time"
)

// Service records identities returned by the OAuth flow and serves profile reads.
type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// UpsertFromAuth saves the identity and stamps the login time when unset.
func (s *Service) UpsertFromAuth(ctx context.Context, user User) error {
	if s == nil || s.Repo == nil {
		return ErrNotConfigured
	}
	user.ID = strings.TrimSpace(user.ID)
	user.Email = strings.TrimSpace(user.Email)
	if user.ID == "" || user.Email == "" {
		return ErrInvalidUser
	}
	if user.LastLoginAt == nil {
		at := time.Now().UTC()
		user.LastLoginAt = &at
	}
	return s.Repo.Upsert(ctx, user)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, ErrNotConfigured
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return User{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userID)
}
