package imports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-importer/internal/ats"
	"resume-importer/internal/extract"
	"resume-importer/internal/queue"
	"resume-importer/internal/resume"
	"resume-importer/internal/shared/metrics"
	"resume-importer/internal/shared/storage/object"
	"resume-importer/internal/shared/telemetry"
	"resume-importer/internal/shared/util"
)

// Extractor turns PDF bytes into plain text.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (extract.Result, error)
}

// Inferrer maps extracted text onto a résumé record.
type Inferrer interface {
	Infer(text string) resume.ResumeData
}

// Upload describes a file handed to the service.
type Upload struct {
	UserID    string
	FileName  string
	MimeType  string
	SizeBytes int64
	Body      io.Reader
}

// Service runs the import pipeline: validate, store, extract, infer, persist.
type Service struct {
	Repo            Repo
	Store           object.ObjectStore
	StorageProvider string
	Uploads         object.ObjectStore
	UploadsPrefix   string
	Extractor       Extractor
	Inferrer        Inferrer
	Queue           queue.Client
	Now             func() time.Time
}

// Import runs the whole pipeline synchronously. Extraction failures are recorded on the
// returned import and reported as an error wrapping extract.ErrExtractionFailed.
func (s *Service) Import(ctx context.Context, up Upload) (Import, error) {
	data, err := s.readUpload(up)
	if err != nil {
		return Import{}, err
	}
	imp, err := s.store(ctx, up, data, StatusProcessing)
	if err != nil {
		return Import{}, err
	}
	return s.run(ctx, imp, data)
}

// Enqueue stores the file, creates a queued import and hands it to the worker queue.
func (s *Service) Enqueue(ctx context.Context, up Upload) (Import, error) {
	if s.Queue == nil {
		return Import{}, ErrQueueNotConfigured
	}
	if s.Store == nil {
		return Import{}, ErrStoreNotConfigured
	}
	data, err := s.readUpload(up)
	if err != nil {
		return Import{}, err
	}
	imp, err := s.store(ctx, up, data, StatusQueued)
	if err != nil {
		return Import{}, err
	}

	requestID := requestIDFromContext(ctx)
	msg := queue.NewMessage(imp.ID, requestID, s.now())
	if err := s.Queue.Send(ctx, msg); err != nil {
		err = fmt.Errorf("enqueue import: %w", err)
		s.fail(ctx, &imp, ErrorCodeFor(err), err)
		return imp, err
	}
	telemetry.Info("import.status", map[string]any{
		"request_id": requestID,
		"user_id":    imp.UserID,
		"import_id":  imp.ID,
		"status":     StatusQueued,
	})
	return imp, nil
}

// ProcessImport runs extraction and inference for a queued import. Imports already in a
// terminal state are left untouched so redelivered messages are harmless.
func (s *Service) ProcessImport(ctx context.Context, importID string) error {
	imp, err := s.Repo.GetByID(ctx, importID)
	if err != nil {
		return fmt.Errorf("import lookup id=%s: %w", importID, err)
	}
	if imp.Terminal() {
		telemetry.Info("import.skip_terminal", map[string]any{
			"request_id": requestIDFromContext(ctx),
			"import_id":  imp.ID,
			"status":     imp.Status,
		})
		return nil
	}
	if s.Store == nil {
		return ErrStoreNotConfigured
	}

	data, err := s.load(ctx, s.Store, imp.StorageKey)
	if err != nil {
		if _, ok := extract.IsInputRejected(err); ok {
			s.fail(ctx, &imp, ErrorCodeFor(err), err)
			return nil
		}
		return fmt.Errorf("load import object id=%s: %w", imp.ID, err)
	}

	startedAt := s.now()
	imp.Status = StatusProcessing
	imp.StartedAt = &startedAt
	if err := s.Repo.Update(ctx, imp); err != nil {
		return fmt.Errorf("mark import processing id=%s: %w", imp.ID, err)
	}
	if _, err := s.run(ctx, imp, data); err != nil && !errors.Is(err, extract.ErrExtractionFailed) {
		return err
	}
	return nil
}

// ImportFromObject imports a file the caller uploaded through a presigned URL.
func (s *Service) ImportFromObject(ctx context.Context, userID, key, fileName, mimeType string, sizeBytes int64) (Import, error) {
	if err := s.validate(mimeType, sizeBytes); err != nil {
		return Import{}, err
	}
	if s.Uploads == nil {
		return Import{}, ErrUploadsNotConfigured
	}
	key = strings.TrimSpace(key)
	if key == "" || strings.TrimSpace(fileName) == "" {
		return Import{}, fmt.Errorf("%w: key and fileName are required", ErrInvalidInput)
	}
	if !s.ownsUploadKey(userID, key) {
		return Import{}, ErrUploadKeyNotOwned
	}

	data, err := s.load(ctx, s.Uploads, key)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return Import{}, fmt.Errorf("%w: upload not found", ErrInvalidInput)
		}
		return Import{}, fmt.Errorf("load upload: %w", err)
	}
	return s.Import(ctx, Upload{
		UserID:    userID,
		FileName:  fileName,
		MimeType:  mimeType,
		SizeBytes: int64(len(data)),
		Body:      bytes.NewReader(data),
	})
}

// Get returns an import owned by userID.
func (s *Service) Get(ctx context.Context, userID, importID string) (Import, error) {
	if strings.TrimSpace(importID) == "" {
		return Import{}, fmt.Errorf("%w: importID is required", ErrInvalidInput)
	}
	imp, err := s.Repo.GetByID(ctx, importID)
	if err != nil {
		return Import{}, err
	}
	if imp.UserID != userID {
		return Import{}, ErrNotFound
	}
	return imp, nil
}

// List returns a user's imports newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Import, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: userID is required", ErrInvalidInput)
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Score computes the ATS report for a completed import.
func (s *Service) Score(ctx context.Context, userID, importID string) (ats.Report, error) {
	imp, err := s.Get(ctx, userID, importID)
	if err != nil {
		return ats.Report{}, err
	}
	if imp.Status != StatusCompleted || imp.Result == nil {
		return ats.Report{}, ErrNotCompleted
	}
	return ats.Score(*imp.Result), nil
}

// Infer runs field inference on already-extracted text.
func (s *Service) Infer(text string) resume.ResumeData {
	return s.Inferrer.Infer(text)
}

func (s *Service) validate(mimeType string, sizeBytes int64) error {
	if err := extract.Validate(mimeType, sizeBytes); err != nil {
		if rejected, ok := extract.IsInputRejected(err); ok {
			metrics.IncImportRejected(rejected.Reason)
		}
		return err
	}
	return nil
}

// readUpload validates the declared metadata, then reads at most MaxFileBytes.
func (s *Service) readUpload(up Upload) ([]byte, error) {
	if strings.TrimSpace(up.UserID) == "" {
		return nil, fmt.Errorf("%w: userID is required", ErrInvalidInput)
	}
	if up.Body == nil {
		return nil, fmt.Errorf("%w: file is required", ErrInvalidInput)
	}
	if err := s.validate(up.MimeType, up.SizeBytes); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(up.Body, extract.MaxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if err := s.validate(up.MimeType, int64(len(data))); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Service) store(ctx context.Context, up Upload, data []byte, status string) (Import, error) {
	fileName := strings.TrimSpace(up.FileName)
	if fileName == "" {
		fileName = "resume.pdf"
	}
	now := s.now()
	imp := Import{
		ID:        uuid.NewString(),
		UserID:    up.UserID,
		FileName:  fileName,
		MimeType:  extract.NormalizeMimeType(up.MimeType),
		SizeBytes: int64(len(data)),
		SHA256:    util.ContentSHA256(data),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if status == StatusProcessing {
		imp.StartedAt = &now
	}

	if s.Store != nil {
		saved, err := s.Store.Save(ctx, up.UserID, fileName, bytes.NewReader(data))
		if err != nil {
			return Import{}, fmt.Errorf("store import file: %w", err)
		}
		imp.StorageKey = saved.Key
		imp.StorageProvider = s.StorageProvider
	}

	if err := s.Repo.Create(ctx, imp); err != nil {
		return Import{}, fmt.Errorf("create import: %w", err)
	}
	return imp, nil
}

// run executes extraction then inference and records the outcome.
func (s *Service) run(ctx context.Context, imp Import, data []byte) (Import, error) {
	requestID := requestIDFromContext(ctx)
	startedAt := s.now()
	if imp.StartedAt == nil {
		imp.StartedAt = &startedAt
	} else {
		startedAt = *imp.StartedAt
	}
	metrics.IncImportStarted()
	telemetry.Info("import.status", map[string]any{
		"request_id": requestID,
		"user_id":    imp.UserID,
		"import_id":  imp.ID,
		"status":     StatusProcessing,
	})

	extracted, err := s.Extractor.Extract(ctx, data)
	if err != nil {
		s.fail(ctx, &imp, ErrorCodeFor(err), err)
		return imp, err
	}
	if extracted.PrimaryErr != nil {
		telemetry.Warn("import.primary_decoder_failed", map[string]any{
			"request_id": requestID,
			"import_id":  imp.ID,
			"error":      extracted.PrimaryErr,
		})
	}

	result := s.Inferrer.Infer(extracted.Text)
	completedAt := s.now()
	imp.Status = StatusCompleted
	imp.ExtractionPath = string(extracted.Path)
	imp.ErrorCode = ""
	imp.ErrorMessage = ""
	imp.Result = &result
	imp.CompletedAt = &completedAt
	if err := s.Repo.Update(ctx, imp); err != nil {
		return imp, fmt.Errorf("persist import result: %w", err)
	}

	duration := durationMs(startedAt, completedAt)
	metrics.IncImportCompleted(string(extracted.Path))
	metrics.ObserveImportDurationMs(duration)
	telemetry.Info("import.status", map[string]any{
		"request_id":        requestID,
		"user_id":           imp.UserID,
		"import_id":         imp.ID,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
		"extraction_path":   imp.ExtractionPath,
		"duration_ms":       duration,
	})
	return imp, nil
}

// fail records a failed import. The cause is logged but only the code reaches clients.
func (s *Service) fail(ctx context.Context, imp *Import, code string, cause error) {
	completedAt := s.now()
	imp.Status = StatusFailed
	imp.ErrorCode = code
	imp.ErrorMessage = NotificationFor(cause).Description
	imp.Result = nil
	imp.CompletedAt = &completedAt
	if err := s.Repo.Update(context.WithoutCancel(ctx), *imp); err != nil {
		telemetry.Error("import.fail_update", map[string]any{
			"import_id": imp.ID,
			"error":     err,
			"cause":     cause,
		})
	}
	var duration float64
	if imp.StartedAt != nil {
		duration = durationMs(*imp.StartedAt, completedAt)
		metrics.ObserveImportDurationMs(duration)
	}
	metrics.IncImportFailed()
	telemetry.Error("import.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           imp.UserID,
		"import_id":         imp.ID,
		"status":            StatusFailed,
		"status_transition": "processing->failed",
		"error_code":        code,
		"error":             cause,
		"duration_ms":       duration,
	})
}

func (s *Service) load(ctx context.Context, store object.ObjectStore, key string) ([]byte, error) {
	body, err := store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	data, err := io.ReadAll(io.LimitReader(body, extract.MaxFileBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > extract.MaxFileBytes {
		return nil, &extract.InputRejectedError{Reason: extract.ReasonFileTooLarge, MimeType: extract.MimePDF, SizeBytes: int64(len(data))}
	}
	return data, nil
}

// ownsUploadKey reports whether key lives under the caller's presigned upload namespace.
func (s *Service) ownsUploadKey(userID, key string) bool {
	return object.Owns(s.UploadsPrefix, userID, strings.TrimLeft(key, "/"))
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func durationMs(startedAt, completedAt time.Time) float64 {
	return float64(completedAt.Sub(startedAt).Microseconds()) / 1000.0
}
