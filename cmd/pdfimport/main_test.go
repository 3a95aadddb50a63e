package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"resume-importer/internal/extract"
	"resume-importer/internal/inference"
)

const scanned = "%PDF-1.4\n(Jane Doe) Tj\n(jane.doe@example.com) Tj\n(React Docker) Tj\n"

func TestRunScanOnly(t *testing.T) {
	out, err := run(context.Background(), []byte(scanned), options{withScore: true, withText: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.ExtractionPath != string(extract.PathFallback) {
		t.Fatalf("expected fallback path, got %q", out.ExtractionPath)
	}
	if out.Result.PersonalInfo.Email != "jane.doe@example.com" {
		t.Fatalf("unexpected email %q", out.Result.PersonalInfo.Email)
	}
	if out.ATS == nil {
		t.Fatalf("expected ATS report")
	}
	if !strings.Contains(out.Text, "Jane Doe") {
		t.Fatalf("expected text to be included, got %q", out.Text)
	}
}

func TestRunRecordsPrimaryFailure(t *testing.T) {
	out, err := run(context.Background(), []byte(scanned), options{usePrimary: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.PrimaryError == "" {
		t.Fatalf("expected primary decoder error for a non-structured pdf")
	}
	if out.Text != "" || out.ATS != nil {
		t.Fatalf("expected optional sections omitted")
	}
}

func TestRunUnreadable(t *testing.T) {
	_, err := run(context.Background(), []byte("%PDF-1.4\nno text here"), options{})
	if !errors.Is(err, extract.ErrExtractionFailed) {
		t.Fatalf("expected extraction failure, got %v", err)
	}
}

func TestRunUsesCustomCatalog(t *testing.T) {
	catalog := inference.Catalog{{Name: "tools", Keywords: []string{"Docker"}}}
	out, err := run(context.Background(), []byte(scanned), options{catalog: catalog})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	tech := out.Result.Skills.Technical
	if len(tech.Frontend) != 0 || len(tech.Cloud) != 0 {
		t.Fatalf("expected only catalog categories, got %+v", tech)
	}
	if len(tech.Tools) != 1 || tech.Tools[0] != "Docker" {
		t.Fatalf("unexpected tools %v", tech.Tools)
	}
}
