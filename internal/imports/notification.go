package imports

import (
	"errors"

	"resume-importer/internal/extract"
)

// Kind is the presentation variant of a Notification.
type Kind string

const (
	KindSuccess     Kind = "default"
	KindDestructive Kind = "destructive"
)

// Notification is the user-facing outcome of an import attempt.
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Kind        Kind   `json:"kind"`
}

var (
	notifyInvalidType = Notification{
		Title:       "Invalid file type",
		Description: "Please select a PDF file",
		Kind:        KindDestructive,
	}
	notifyTooLarge = Notification{
		Title:       "File too large",
		Description: "Please select a PDF smaller than 10MB",
		Kind:        KindDestructive,
	}
	notifySuccess = Notification{
		Title:       "PDF imported successfully",
		Description: "Resume data has been extracted and populated",
		Kind:        KindSuccess,
	}
	notifyFailed = Notification{
		Title:       "Import failed",
		Description: "Could not extract data from PDF. Please try a different file or enter details manually.",
		Kind:        KindDestructive,
	}
)

// NotificationFor maps an import outcome to one of the four user-visible categories.
func NotificationFor(err error) Notification {
	if err == nil {
		return notifySuccess
	}
	if rejected, ok := extract.IsInputRejected(err); ok {
		switch rejected.Reason {
		case extract.ReasonInvalidFileType:
			return notifyInvalidType
		case extract.ReasonFileTooLarge:
			return notifyTooLarge
		}
	}
	return notifyFailed
}

// NotificationForImport reports the notification matching a stored import's status.
func NotificationForImport(imp Import) Notification {
	switch imp.Status {
	case StatusCompleted:
		return notifySuccess
	case StatusFailed:
		return notifyFailed
	}
	return Notification{}
}

// ErrorCodeFor returns the public error code for an import error.
func ErrorCodeFor(err error) string {
	if rejected, ok := extract.IsInputRejected(err); ok {
		return rejected.Reason
	}
	if errors.Is(err, extract.ErrExtractionFailed) {
		return ErrorCodeImportFailed
	}
	return ErrorCodeStorage
}
