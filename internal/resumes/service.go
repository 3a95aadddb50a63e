package resumes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"resume-importer/internal/ats"
	"resume-importer/internal/imports"
	"resume-importer/internal/resume"
	"resume-importer/internal/shared/telemetry"
)

// ImportSource resolves a caller's import.
type ImportSource interface {
	Get(ctx context.Context, userID, importID string) (imports.Import, error)
}

// Service manages the user's editable résumé document.
type Service struct {
	Repo    Repo
	Imports ImportSource
}

// NewService constructs a Service.
func NewService(repo Repo, source ImportSource) *Service {
	return &Service{Repo: repo, Imports: source}
}

// Current returns the stored document, or the empty record when none exists.
func (s *Service) Current(ctx context.Context, userID string) (resume.ResumeData, error) {
	if strings.TrimSpace(userID) == "" {
		return resume.ResumeData{}, fmt.Errorf("%w: userID is required", ErrInvalidInput)
	}
	doc, err := s.Repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return resume.New(), nil
		}
		return resume.ResumeData{}, err
	}
	return doc.Data, nil
}

// ReplaceSection overwrites one top-level section with the given JSON payload.
func (s *Service) ReplaceSection(ctx context.Context, userID, section string, payload json.RawMessage) (resume.ResumeData, error) {
	data, err := s.Current(ctx, userID)
	if err != nil {
		return resume.ResumeData{}, err
	}

	var target any
	switch section {
	case SectionPersonalInfo:
		data.PersonalInfo = resume.PersonalInfo{}
		target = &data.PersonalInfo
	case SectionExperience:
		data.Experience = nil
		target = &data.Experience
	case SectionSkills:
		data.Skills = resume.Skills{}
		target = &data.Skills
	case SectionEducation:
		data.Education = nil
		target = &data.Education
	case SectionProjects:
		data.Projects = nil
		target = &data.Projects
	case SectionCertificates:
		data.Certificates = nil
		target = &data.Certificates
	default:
		return resume.ResumeData{}, fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	if err := validateSection(section, payload); err != nil {
		return resume.ResumeData{}, err
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return resume.ResumeData{}, fmt.Errorf("%w: %s: %v", ErrInvalidInput, section, err)
	}
	data.Normalize()

	doc, err := s.Repo.Save(ctx, userID, data)
	if err != nil {
		return resume.ResumeData{}, err
	}
	return doc.Data, nil
}

// ApplyImport merges a completed import into the stored document.
func (s *Service) ApplyImport(ctx context.Context, userID, importID string) (resume.ResumeData, error) {
	if s.Imports == nil {
		return resume.ResumeData{}, errors.New("import source not configured")
	}
	imp, err := s.Imports.Get(ctx, userID, importID)
	if err != nil {
		return resume.ResumeData{}, err
	}
	if imp.Status != imports.StatusCompleted || imp.Result == nil {
		return resume.ResumeData{}, ErrImportNotReady
	}

	current, err := s.Current(ctx, userID)
	if err != nil {
		return resume.ResumeData{}, err
	}
	merged := resume.ApplyImport(current, *imp.Result)
	doc, err := s.Repo.Save(ctx, userID, merged)
	if err != nil {
		return resume.ResumeData{}, err
	}
	telemetry.Info("resume.import_applied", map[string]any{
		"user_id":   userID,
		"import_id": importID,
	})
	return doc.Data, nil
}

// Clear deletes the stored document.
func (s *Service) Clear(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: userID is required", ErrInvalidInput)
	}
	return s.Repo.Delete(ctx, userID)
}

// Score computes the ATS report of the stored document.
func (s *Service) Score(ctx context.Context, userID string) (ats.Report, error) {
	data, err := s.Current(ctx, userID)
	if err != nil {
		return ats.Report{}, err
	}
	return ats.Score(data), nil
}
