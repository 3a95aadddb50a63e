package resumes

import (
	"context"

	"resume-importer/internal/resume"
)

// Repo persists one résumé document per user.
type Repo interface {
	Get(ctx context.Context, userID string) (Document, error)
	Save(ctx context.Context, userID string, data resume.ResumeData) (Document, error)
	Delete(ctx context.Context, userID string) error
	// ClaimGuest moves the guest's document to authedUserID unless that user already has one.
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (bool, error)
}
