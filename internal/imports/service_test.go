package imports

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"resume-importer/internal/extract"
	"resume-importer/internal/inference"
	"resume-importer/internal/queue"
	localstore "resume-importer/internal/shared/storage/object/local"
	"resume-importer/internal/shared/util"
)

const samplePDF = "%PDF-1.4\n" +
	"(Jane Doe) Tj\n" +
	"(jane.doe@example.com) Tj\n" +
	"(555-123-4567) Tj\n" +
	"(San Francisco, CA) Tj\n" +
	"(React Docker PostgreSQL) Tj\n"

type fakeQueue struct {
	mu   sync.Mutex
	sent []queue.Message
	err  error
}

func (q *fakeQueue) Send(ctx context.Context, msg queue.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.sent = append(q.sent, msg)
	return nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	return &Service{
		Repo:            NewMemoryRepo(),
		Store:           localstore.New(t.TempDir()),
		StorageProvider: "local",
		Extractor:       extract.NewEngine(nil),
		Inferrer:        inference.NewEngine(nil),
		Now:             func() time.Time { return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func pdfUpload(userID, body string) Upload {
	return Upload{
		UserID:    userID,
		FileName:  "resume.pdf",
		MimeType:  "application/pdf",
		SizeBytes: int64(len(body)),
		Body:      strings.NewReader(body),
	}
}

func TestImportCompletesAndPersists(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	imp, err := svc.Import(ctx, pdfUpload("guest:a", samplePDF))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if imp.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", imp.Status)
	}
	if imp.ExtractionPath != string(extract.PathFallback) {
		t.Fatalf("expected fallback path, got %q", imp.ExtractionPath)
	}
	if imp.Result == nil || imp.Result.PersonalInfo.Email != "jane.doe@example.com" {
		t.Fatalf("unexpected result %+v", imp.Result)
	}
	if imp.SHA256 != util.ContentSHA256([]byte(samplePDF)) {
		t.Fatalf("unexpected sha %s", imp.SHA256)
	}
	if imp.StorageKey == "" || imp.StorageProvider != "local" {
		t.Fatalf("expected stored object, got key=%q provider=%q", imp.StorageKey, imp.StorageProvider)
	}

	stored, err := svc.Get(ctx, "guest:a", imp.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Status != StatusCompleted || stored.CompletedAt == nil {
		t.Fatalf("unexpected stored import %+v", stored)
	}
	if _, err := svc.Get(ctx, "guest:b", imp.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}
}

func TestImportRejectsBeforeReading(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Import(context.Background(), Upload{
		UserID:    "guest:a",
		FileName:  "photo.png",
		MimeType:  "image/png",
		SizeBytes: 10,
		Body:      failingReader{},
	})
	rejected, ok := extract.IsInputRejected(err)
	if !ok || rejected.Reason != extract.ReasonInvalidFileType {
		t.Fatalf("expected invalid_file_type, got %v", err)
	}

	items, _ := svc.List(context.Background(), "guest:a", 10, 0)
	if len(items) != 0 {
		t.Fatalf("expected no import records, got %d", len(items))
	}
}

func TestImportRejectsBodyLargerThanDeclared(t *testing.T) {
	svc := newTestService(t)
	body := bytes.Repeat([]byte("a"), int(extract.MaxFileBytes)+1)

	_, err := svc.Import(context.Background(), Upload{
		UserID:    "guest:a",
		FileName:  "big.pdf",
		MimeType:  "application/pdf",
		SizeBytes: 100,
		Body:      bytes.NewReader(body),
	})
	rejected, ok := extract.IsInputRejected(err)
	if !ok || rejected.Reason != extract.ReasonFileTooLarge {
		t.Fatalf("expected file_too_large, got %v", err)
	}
}

func TestImportRecordsExtractionFailure(t *testing.T) {
	svc := newTestService(t)

	imp, err := svc.Import(context.Background(), pdfUpload("guest:a", "%PDF-1.7\n\x00\x01 no text operators"))
	if !errors.Is(err, extract.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
	if imp.ID == "" || imp.Status != StatusFailed || imp.ErrorCode != ErrorCodeImportFailed {
		t.Fatalf("unexpected failed import %+v", imp)
	}
	if strings.Contains(imp.ErrorMessage, "selectable") {
		t.Fatalf("internal cause leaked into error message: %q", imp.ErrorMessage)
	}
	if NotificationFor(err).Title != "Import failed" {
		t.Fatalf("unexpected notification %+v", NotificationFor(err))
	}
}

func TestEnqueueThenProcess(t *testing.T) {
	svc := newTestService(t)
	q := &fakeQueue{}
	svc.Queue = q
	ctx := WithRequestID(context.Background(), "req-1")

	imp, err := svc.Enqueue(ctx, pdfUpload("guest:a", samplePDF))
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if imp.Status != StatusQueued {
		t.Fatalf("expected queued, got %s", imp.Status)
	}
	if len(q.sent) != 1 || q.sent[0].ImportID != imp.ID || q.sent[0].RequestID != "req-1" {
		t.Fatalf("unexpected queue messages %+v", q.sent)
	}

	if err := svc.ProcessImport(ctx, imp.ID); err != nil {
		t.Fatalf("ProcessImport: %v", err)
	}
	done, err := svc.Get(ctx, "guest:a", imp.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if done.Status != StatusCompleted || done.Result == nil || done.Result.PersonalInfo.FullName != "Jane Doe" {
		t.Fatalf("unexpected processed import %+v", done)
	}

	// redelivery of a finished import is a no-op
	if err := svc.ProcessImport(ctx, imp.ID); err != nil {
		t.Fatalf("ProcessImport redelivery: %v", err)
	}
}

func TestEnqueueWithoutQueue(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Enqueue(context.Background(), pdfUpload("guest:a", samplePDF)); !errors.Is(err, ErrQueueNotConfigured) {
		t.Fatalf("expected ErrQueueNotConfigured, got %v", err)
	}
}

func TestEnqueueSendFailureMarksImportFailed(t *testing.T) {
	svc := newTestService(t)
	svc.Queue = &fakeQueue{err: errors.New("sqs down")}

	imp, err := svc.Enqueue(context.Background(), pdfUpload("guest:a", samplePDF))
	if err == nil {
		t.Fatalf("expected enqueue error")
	}
	stored, getErr := svc.Repo.GetByID(context.Background(), imp.ID)
	if getErr != nil {
		t.Fatalf("GetByID: %v", getErr)
	}
	if stored.Status != StatusFailed || stored.ErrorCode != ErrorCodeStorage {
		t.Fatalf("unexpected stored import %+v", stored)
	}
}

func TestImportFromObjectChecksOwnership(t *testing.T) {
	svc := newTestService(t)
	uploadsDir := t.TempDir()
	uploads := localstore.New(uploadsDir)
	svc.Uploads = uploads
	svc.UploadsPrefix = ""
	ctx := context.Background()

	saved, err := uploads.Save(ctx, "guest:a", "resume.pdf", strings.NewReader(samplePDF))
	if err != nil {
		t.Fatalf("seed upload: %v", err)
	}

	if _, err := svc.ImportFromObject(ctx, "guest:b", saved.Key, "resume.pdf", "application/pdf", int64(len(samplePDF))); !errors.Is(err, ErrUploadKeyNotOwned) {
		t.Fatalf("expected ErrUploadKeyNotOwned, got %v", err)
	}

	imp, err := svc.ImportFromObject(ctx, "guest:a", saved.Key, "resume.pdf", "application/pdf", int64(len(samplePDF)))
	if err != nil {
		t.Fatalf("ImportFromObject: %v", err)
	}
	if imp.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", imp.Status)
	}
}

func TestScoreRequiresCompletedImport(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	failed, _ := svc.Import(ctx, pdfUpload("guest:a", "%PDF-1.7 nothing"))
	if _, err := svc.Score(ctx, "guest:a", failed.ID); !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("expected ErrNotCompleted, got %v", err)
	}

	ok, err := svc.Import(ctx, pdfUpload("guest:a", samplePDF))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	report, err := svc.Score(ctx, "guest:a", ok.ID)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if report.Score != 15 {
		t.Fatalf("expected contact-only score 15, got %d", report.Score)
	}
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("body must not be read")
}
