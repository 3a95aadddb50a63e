package imports

import (
	"time"

	"resume-importer/internal/resume"
)

// ImportResponse is the outward-facing representation of an import.
type ImportResponse struct {
	ImportID       string             `json:"importId"`
	Status         string             `json:"status"`
	FileName       string             `json:"fileName"`
	MimeType       string             `json:"mimeType"`
	SizeBytes      int64              `json:"sizeBytes"`
	ExtractionPath string             `json:"extractionPath,omitempty"`
	ErrorCode      string             `json:"errorCode,omitempty"`
	Result         *resume.ResumeData `json:"result,omitempty"`
	Notification   *Notification      `json:"notification,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	StartedAt      *time.Time         `json:"startedAt,omitempty"`
	CompletedAt    *time.Time         `json:"completedAt,omitempty"`
}

func toResponse(imp Import) ImportResponse {
	resp := ImportResponse{
		ImportID:       imp.ID,
		Status:         imp.Status,
		FileName:       imp.FileName,
		MimeType:       imp.MimeType,
		SizeBytes:      imp.SizeBytes,
		ExtractionPath: imp.ExtractionPath,
		ErrorCode:      imp.ErrorCode,
		Result:         imp.Result,
		CreatedAt:      imp.CreatedAt,
		StartedAt:      imp.StartedAt,
		CompletedAt:    imp.CompletedAt,
	}
	if n := NotificationForImport(imp); n.Title != "" {
		resp.Notification = &n
	}
	return resp
}
