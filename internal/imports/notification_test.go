package imports

import (
	"errors"
	"fmt"
	"testing"

	"resume-importer/internal/extract"
)

func TestNotificationForCoversFourCategories(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		title string
		kind  Kind
		code  string
	}{
		{name: "success", err: nil, title: "PDF imported successfully", kind: KindSuccess},
		{name: "wrong type", err: extract.Validate("text/plain", 1), title: "Invalid file type", kind: KindDestructive, code: ErrorCodeInvalidFileType},
		{name: "too large", err: extract.Validate("application/pdf", extract.MaxFileBytes+1), title: "File too large", kind: KindDestructive, code: ErrorCodeFileTooLarge},
		{name: "extraction", err: fmt.Errorf("%w: %w", extract.ErrExtractionFailed, extract.ErrNoReadableText), title: "Import failed", kind: KindDestructive, code: ErrorCodeImportFailed},
		{name: "anything else", err: errors.New("disk full"), title: "Import failed", kind: KindDestructive, code: ErrorCodeStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NotificationFor(tt.err)
			if n.Title != tt.title || n.Kind != tt.kind || n.Description == "" {
				t.Fatalf("unexpected notification %+v", n)
			}
			if tt.err != nil {
				if got := ErrorCodeFor(tt.err); got != tt.code {
					t.Fatalf("ErrorCodeFor = %q, want %q", got, tt.code)
				}
			}
		})
	}
}
