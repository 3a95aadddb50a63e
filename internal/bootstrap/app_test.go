package bootstrap

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resume-importer/internal/imports"
	"resume-importer/internal/resume"
	"resume-importer/internal/shared/config"
)

const guestID = "33333333-3333-3333-3333-333333333333"

const scannedPDF = "%PDF-1.4\n" +
	"(Jane Doe) Tj\n" +
	"(jane.doe@example.com) Tj\n" +
	"(555-123-4567) Tj\n" +
	"(React Docker PostgreSQL) Tj\n"

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := Build(config.Config{
		Env:               "dev",
		ObjectStoreType:   "local",
		LocalStoreDir:     t.TempDir(),
		PDFPrimaryDecoder: true,
		UploadsPrefix:     "imports/",
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return app
}

func multipartPDF(t *testing.T, name, contentType, body string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write([]byte(body)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return buf, w.FormDataContentType()
}

func do(app *App, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Guest-Id", guestID)
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	return w
}

func TestBuildFallsBackToMemoryInDev(t *testing.T) {
	app := newTestApp(t)
	if app.DB != nil {
		t.Fatalf("expected no database in dev without DATABASE_URL")
	}
	if _, ok := app.ImportsRepo.(*imports.MemoryRepo); !ok {
		t.Fatalf("expected memory imports repo, got %T", app.ImportsRepo)
	}
	if app.Queue != nil {
		t.Fatalf("expected no queue without IMPORT_QUEUE_URL")
	}
}

func TestBuildRequiresDatabaseOutsideDev(t *testing.T) {
	if _, err := Build(config.Config{Env: "production", LocalStoreDir: t.TempDir()}); err == nil {
		t.Fatalf("expected error without DATABASE_URL in production")
	}
}

func TestHealthAndMetricsSkipAuth(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/api/v1/health", "/metrics"} {
		w := httptest.NewRecorder()
		app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
	}

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/imports", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", w.Code)
	}
}

func TestImportThenApplyToResume(t *testing.T) {
	app := newTestApp(t)

	body, ct := multipartPDF(t, "cv.pdf", "application/pdf", scannedPDF)
	w := do(app, http.MethodPost, "/api/v1/imports", body, ct)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created imports.ImportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode import: %v", err)
	}
	if created.Status != imports.StatusCompleted || created.Result == nil {
		t.Fatalf("unexpected import %+v", created)
	}
	if created.ExtractionPath != "fallback" {
		t.Fatalf("expected fallback extraction, got %q", created.ExtractionPath)
	}
	if created.Result.PersonalInfo.Email != "jane.doe@example.com" {
		t.Fatalf("unexpected email %q", created.Result.PersonalInfo.Email)
	}
	if created.Notification == nil || created.Notification.Kind != imports.KindSuccess {
		t.Fatalf("expected success notification, got %+v", created.Notification)
	}

	w = do(app, http.MethodGet, "/api/v1/imports/"+created.ImportID, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on get, got %d", w.Code)
	}

	w = do(app, http.MethodPost, "/api/v1/resume/apply-import/"+created.ImportID, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on apply, got %d: %s", w.Code, w.Body.String())
	}

	w = do(app, http.MethodGet, "/api/v1/resume", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on resume, got %d", w.Code)
	}
	var current resume.ResumeData
	if err := json.Unmarshal(w.Body.Bytes(), &current); err != nil {
		t.Fatalf("decode resume: %v", err)
	}
	if current.PersonalInfo.Email != "jane.doe@example.com" {
		t.Fatalf("expected applied email, got %q", current.PersonalInfo.Email)
	}
}

func TestImportRejectsNonPDF(t *testing.T) {
	app := newTestApp(t)

	body, ct := multipartPDF(t, "cv.txt", "text/plain", "hello")
	w := do(app, http.MethodPost, "/api/v1/imports", body, ct)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "invalid_file_type") {
		t.Fatalf("expected invalid_file_type, got %s", w.Body.String())
	}
}

func TestImportReportsTypeBeforeSize(t *testing.T) {
	app := newTestApp(t)

	body, ct := multipartPDF(t, "notes.txt", "text/plain", strings.Repeat("a", 12<<20))
	w := do(app, http.MethodPost, "/api/v1/imports", body, ct)
	if w.Code != http.StatusUnsupportedMediaType || !strings.Contains(w.Body.String(), "invalid_file_type") {
		t.Fatalf("expected 415 invalid_file_type, got %d: %.200s", w.Code, w.Body.String())
	}
}

func TestAsyncImportWithoutQueueIsUnavailable(t *testing.T) {
	app := newTestApp(t)

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="cv.pdf"`)
	header.Set("Content-Type", "application/pdf")
	part, _ := w.CreatePart(header)
	_, _ = part.Write([]byte(scannedPDF))
	_ = w.WriteField("async", "true")
	_ = w.Close()

	resp := do(app, http.MethodPost, "/api/v1/imports", buf, w.FormDataContentType())
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestPresignWithoutBucketIsUnavailable(t *testing.T) {
	app := newTestApp(t)

	w := do(app, http.MethodPost, "/api/v1/uploads/presign",
		bytes.NewBufferString(`{"fileName":"cv.pdf","contentType":"application/pdf","sizeBytes":100}`), "application/json")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestBuildRejectsIncompleteMinIOConfig(t *testing.T) {
	_, err := Build(config.Config{Env: "dev", ObjectStoreType: "minio", MinIOBucket: "resumes"})
	missing := config.InvalidSettings(err)
	if err == nil || len(missing) == 0 || missing[0] != "MINIO_ENDPOINT" {
		t.Fatalf("expected MINIO_ENDPOINT to be reported, got %v", err)
	}
}

func TestBuildLoadsSkillsCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skills.yaml")
	if err := os.WriteFile(path, []byte("categories:\n  - name: tools\n    keywords: [Docker]\n"), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	app, err := Build(config.Config{Env: "dev", LocalStoreDir: dir, SkillsCatalogFile: path})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	got := app.ImportsService.Infer("React and Docker")
	if len(got.Skills.Technical.Frontend) != 0 || len(got.Skills.Technical.Tools) != 1 {
		t.Fatalf("expected catalog-only skills, got %+v", got.Skills.Technical)
	}

	if _, err := Build(config.Config{Env: "dev", LocalStoreDir: dir, SkillsCatalogFile: filepath.Join(dir, "nope.yaml")}); err == nil {
		t.Fatalf("expected missing catalog to fail the build")
	}
}
