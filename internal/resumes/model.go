package resumes

import (
	"errors"
	"time"

	"resume-importer/internal/resume"
)

var (
	ErrNotFound       = errors.New("resume not found")
	ErrUnknownSection = errors.New("unknown resume section")
	ErrInvalidInput   = errors.New("invalid input")
	ErrImportNotReady = errors.New("import has no result to apply")
)

// Document is the stored résumé of one user.
type Document struct {
	UserID    string
	Data      resume.ResumeData
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Sections that PUT /resume/:section may replace.
const (
	SectionPersonalInfo = "personalInfo"
	SectionExperience   = "experience"
	SectionSkills       = "skills"
	SectionEducation    = "education"
	SectionProjects     = "projects"
	SectionCertificates = "certificates"
)

var sections = []string{
	SectionPersonalInfo,
	SectionExperience,
	SectionSkills,
	SectionEducation,
	SectionProjects,
	SectionCertificates,
}
