package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	MimePDF = "application/pdf"

	// MaxFileBytes is the largest file accepted for import.
	MaxFileBytes int64 = 10 << 20
)

// Rejection reasons reported before any byte is read.
const (
	ReasonInvalidFileType = "invalid_file_type"
	ReasonFileTooLarge    = "file_too_large"
)

var (
	// ErrExtractionFailed wraps every failure of the decode paths.
	ErrExtractionFailed = errors.New("could not extract text from pdf")
	// ErrNoReadableText means the byte scan found no selectable text.
	ErrNoReadableText = errors.New("no readable text found in pdf; ensure the pdf contains selectable text")
)

// InputRejectedError reports a file rejected on its declared type or size.
type InputRejectedError struct {
	Reason    string
	MimeType  string
	SizeBytes int64
}

func (e *InputRejectedError) Error() string {
	switch e.Reason {
	case ReasonFileTooLarge:
		return fmt.Sprintf("file too large: %d bytes exceeds %d", e.SizeBytes, MaxFileBytes)
	default:
		return fmt.Sprintf("invalid file type: %q", e.MimeType)
	}
}

// IsInputRejected reports whether err carries an InputRejectedError and returns it.
func IsInputRejected(err error) (*InputRejectedError, bool) {
	var rejected *InputRejectedError
	if errors.As(err, &rejected) {
		return rejected, true
	}
	return nil, false
}

// Validate checks the declared MIME type and size of an upload.
func Validate(mimeType string, sizeBytes int64) error {
	if NormalizeMimeType(mimeType) != MimePDF {
		return &InputRejectedError{Reason: ReasonInvalidFileType, MimeType: mimeType, SizeBytes: sizeBytes}
	}
	if sizeBytes > MaxFileBytes {
		return &InputRejectedError{Reason: ReasonFileTooLarge, MimeType: mimeType, SizeBytes: sizeBytes}
	}
	return nil
}

// NormalizeMimeType lowercases a content type and strips its parameters.
func NormalizeMimeType(mimeType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
}

// Path identifies which decode path produced the text.
type Path string

const (
	PathPrimary  Path = "primary"
	PathFallback Path = "fallback"
)

// Result is the plain text of a document and the path that produced it.
type Result struct {
	Text string
	Path Path
	// PrimaryErr is set when the primary decoder was attempted and failed.
	PrimaryErr error
}

// Engine turns PDF bytes into plain text: the primary decoder when one is
// registered, the byte scan otherwise or when the primary decoder fails.
type Engine struct {
	Primary PageDecoder
}

// NewEngine returns an Engine backed by the given decoder. A nil decoder leaves
// only the fallback scan.
func NewEngine(primary PageDecoder) *Engine {
	return &Engine{Primary: primary}
}

// Extract returns the best available text for data.
func (e *Engine) Extract(ctx context.Context, data []byte) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var primaryErr error
	if e != nil && e.Primary != nil {
		pages, err := e.Primary.DecodePages(ctx, data)
		switch {
		case err == nil:
			text := strings.Join(pages, "\n")
			if strings.TrimSpace(text) != "" {
				return Result{Text: text, Path: PathPrimary}, nil
			}
			primaryErr = errEmptyPrimary
		case errors.Is(err, ErrUnavailable):
		case ctx.Err() != nil:
			return Result{}, ctx.Err()
		default:
			primaryErr = err
		}
	}

	text, err := ScanText(data)
	if err != nil {
		if primaryErr != nil {
			return Result{PrimaryErr: primaryErr}, fmt.Errorf("%w: primary: %v: fallback: %w", ErrExtractionFailed, primaryErr, err)
		}
		return Result{}, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}
	return Result{Text: text, Path: PathFallback, PrimaryErr: primaryErr}, nil
}

var errEmptyPrimary = errors.New("primary decoder returned no text")
