package imports

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"resume-importer/internal/extract"
)

var errNoFile = errors.New("file is required")

// uploadForm is a parsed multipart import request.
type uploadForm struct {
	FileName string
	MimeType string
	Data     []byte
	Async    bool
}

func (f uploadForm) upload(userID string) Upload {
	return Upload{
		UserID:    userID,
		FileName:  f.FileName,
		MimeType:  f.MimeType,
		SizeBytes: int64(len(f.Data)),
		Body:      bytes.NewReader(f.Data),
	}
}

// readUploadForm streams a multipart import form. The file part's declared type
// is checked before its body is read, and at most one byte past MaxFileBytes is
// buffered. Only the first file part counts.
func readUploadForm(r *http.Request) (uploadForm, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return uploadForm{}, errNoFile
	}

	var form uploadForm
	haveFile := false
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return uploadForm{}, formReadError(err)
		}

		switch {
		case part.FormName() == "file" && !haveFile:
			mimeType := part.Header.Get("Content-Type")
			if err := extract.Validate(mimeType, 0); err != nil {
				_ = part.Close()
				return uploadForm{}, err
			}
			data, err := io.ReadAll(io.LimitReader(part, extract.MaxFileBytes+1))
			if err != nil {
				_ = part.Close()
				return uploadForm{}, formReadError(err)
			}
			if int64(len(data)) > extract.MaxFileBytes {
				_ = part.Close()
				return uploadForm{}, &extract.InputRejectedError{
					Reason:    extract.ReasonFileTooLarge,
					MimeType:  mimeType,
					SizeBytes: int64(len(data)),
				}
			}
			form.FileName, form.MimeType, form.Data = part.FileName(), mimeType, data
			haveFile = true
		case part.FormName() == "async":
			raw, _ := io.ReadAll(io.LimitReader(part, 16))
			form.Async, _ = strconv.ParseBool(strings.TrimSpace(string(raw)))
		}
		_ = part.Close()
	}

	if !haveFile {
		return uploadForm{}, errNoFile
	}
	return form, nil
}

func formReadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &extract.InputRejectedError{Reason: extract.ReasonFileTooLarge, SizeBytes: tooLarge.Limit}
	}
	return errNoFile
}
