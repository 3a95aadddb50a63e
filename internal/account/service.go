package account

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"resume-importer/internal/imports"
	"resume-importer/internal/resumes"
	"resume-importer/internal/shared/telemetry"
)

// Service moves guest-owned data onto an authenticated account.
type Service struct {
	ImportRepo imports.Repo
	ResumeRepo resumes.Repo
}

// ClaimResult reports what a claim moved.
type ClaimResult struct {
	MigratedImports int  `json:"migratedImports"`
	MigratedResume  bool `json:"migratedResume"`
}

func NewService(importRepo imports.Repo, resumeRepo resumes.Repo) *Service {
	return &Service{ImportRepo: importRepo, ResumeRepo: resumeRepo}
}

// ClaimGuest reassigns the guest's imports and résumé record. Repeating a claim is a no-op.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(authedUserID) == "" {
		return ClaimResult{}, errors.New("guestUserID and authedUserID are required")
	}
	if s.ImportRepo == nil || s.ResumeRepo == nil {
		return ClaimResult{}, errors.New("account service not configured")
	}

	var (
		result ClaimResult
		err    error
	)
	importPG, okImports := s.ImportRepo.(*imports.PGRepo)
	resumePG, okResumes := s.ResumeRepo.(*resumes.PGRepo)
	if okImports && okResumes && importPG != nil && importPG.DB != nil && resumePG != nil && resumePG.DB != nil {
		result, err = claimWithTx(ctx, importPG.DB, guestUserID, authedUserID)
	} else {
		result, err = s.claimSeparately(ctx, guestUserID, authedUserID)
	}
	if err != nil {
		return ClaimResult{}, err
	}

	telemetry.Info("account.guest_claimed", map[string]any{
		"user_id":          authedUserID,
		"migrated_imports": result.MigratedImports,
		"migrated_resume":  result.MigratedResume,
	})
	return result, nil
}

func (s *Service) claimSeparately(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	importCount, err := s.ImportRepo.ClaimGuest(ctx, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	moved, err := s.ResumeRepo.ClaimGuest(ctx, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{MigratedImports: importCount, MigratedResume: moved}, nil
}

func claimWithTx(ctx context.Context, db *sql.DB, guestUserID, authedUserID string) (ClaimResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ClaimResult{}, err
	}
	defer tx.Rollback()

	importRes, err := tx.ExecContext(ctx, `UPDATE imports SET user_id = $1, updated_at = now() WHERE user_id = $2`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	importCount, _ := importRes.RowsAffected()

	resumeRes, err := tx.ExecContext(ctx, `UPDATE resumes SET user_id = $1, updated_at = now() WHERE user_id = $2 AND NOT EXISTS (SELECT 1 FROM resumes WHERE user_id = $1)`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	resumeCount, _ := resumeRes.RowsAffected()

	if err := tx.Commit(); err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{MigratedImports: int(importCount), MigratedResume: resumeCount > 0}, nil
}
