package imports

import (
	"time"

	"resume-importer/internal/resume"
)

const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Import is one attempt to turn an uploaded PDF into a résumé record.
type Import struct {
	ID              string
	UserID          string
	FileName        string
	MimeType        string
	SizeBytes       int64
	SHA256          string
	StorageProvider string
	StorageKey      string
	Status          string
	ExtractionPath  string
	ErrorCode       string
	ErrorMessage    string
	Result          *resume.ResumeData
	CreatedAt       time.Time
	UpdatedAt       time.Time
	StartedAt       *time.Time
	CompletedAt     *time.Time
}

// Terminal reports whether the import reached completed or failed.
func (i Import) Terminal() bool {
	return i.Status == StatusCompleted || i.Status == StatusFailed
}
