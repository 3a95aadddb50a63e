package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// ErrUnavailable is returned by a PageDecoder that cannot serve the request at all.
var ErrUnavailable = errors.New("pdf page decoder unavailable")

// PageDecoder is a full PDF parser returning the text of every page in order.
type PageDecoder interface {
	DecodePages(ctx context.Context, data []byte) ([]string, error)
}

// LedongthucDecoder decodes pages with github.com/ledongthuc/pdf.
type LedongthucDecoder struct{}

// DecodePages returns one string per page. A malformed document that makes the
// parser panic is reported as an error.
func (LedongthucDecoder) DecodePages(ctx context.Context, data []byte) (pages []string, err error) {
	if len(data) == 0 {
		return nil, errors.New("empty pdf data")
	}
	defer func() {
		if rec := recover(); rec != nil {
			pages = nil
			err = fmt.Errorf("pdf parser panic: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	n := reader.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

var _ PageDecoder = LedongthucDecoder{}
