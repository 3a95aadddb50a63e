package resumes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"resume-importer/internal/resume"
)

func TestPGRepoSaveUpsertsJSON(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO resumes").
		WithArgs("google:1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	repo := &PGRepo{DB: db}
	doc, err := repo.Save(context.Background(), "google:1", resume.New())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !doc.UpdatedAt.Equal(now) {
		t.Fatalf("unexpected updatedAt %v", doc.UpdatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetMigratesLegacySkills(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	legacy := []byte(`{"personalInfo":{"fullName":"Jane"},"skills":{"technical":["Go","Rust"],"soft":["Mentoring"]}}`)
	mock.ExpectQuery("SELECT user_id, data").
		WithArgs("google:1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "data", "created_at", "updated_at"}).AddRow("google:1", legacy, now, now))

	repo := &PGRepo{DB: db}
	doc, err := repo.Get(context.Background(), "google:1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := doc.Data.Skills.Technical.Other; len(got) != 2 || got[0] != "Go" {
		t.Fatalf("expected legacy skills in other, got %v", got)
	}
	if got := doc.Data.Skills.Soft; len(got) != 1 {
		t.Fatalf("expected soft skills preserved, got %v", got)
	}
}

func TestPGRepoGetMissingIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT user_id, data").
		WithArgs("guest:x").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "data", "created_at", "updated_at"}))

	repo := &PGRepo{DB: db}
	if _, err := repo.Get(context.Background(), "guest:x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
