package imports

import "errors"

var (
	ErrNotFound             = errors.New("import not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrNotCompleted         = errors.New("import not completed")
	ErrQueueNotConfigured   = errors.New("import queue not configured")
	ErrUploadsNotConfigured = errors.New("uploads bucket not configured")
	ErrStoreNotConfigured   = errors.New("object store not configured")
	ErrUploadKeyNotOwned    = errors.New("upload key does not belong to caller")
)

const (
	ErrorCodeInvalidFileType = "invalid_file_type"
	ErrorCodeFileTooLarge    = "file_too_large"
	ErrorCodeImportFailed    = "import_failed"
	ErrorCodeStorage         = "storage_error"
)
