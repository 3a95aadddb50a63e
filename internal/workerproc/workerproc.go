// Package workerproc turns raw queue bodies into import jobs and runs them.
// Both the long-poll worker and the Lambda worker go through it.
package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"resume-importer/internal/imports"
	"resume-importer/internal/queue"
)

// Processor runs a queued import.
type Processor interface {
	ProcessImport(ctx context.Context, importID string) error
}

// Reasons a message body cannot become a job.
const (
	ReasonEmptyBody   = "empty_body"
	ReasonUndecodable = "undecodable"
	ReasonMissingID   = "missing_import_id"
	ReasonVersion     = "unsupported_version"
)

// MessageError means the body can never be processed, however often it is
// redelivered.
type MessageError struct {
	Reason    string
	RequestID string
	BodyLen   int
	BodySHA   string
	Err       error
}

func (e *MessageError) Error() string {
	if e.Err == nil {
		return "queue message " + e.Reason
	}
	return "queue message " + e.Reason + ": " + e.Err.Error()
}

func (e *MessageError) Unwrap() error { return e.Err }

// Fields returns log fields describing the rejected body without its content.
func (e *MessageError) Fields() map[string]any {
	fields := map[string]any{"reason": e.Reason, "body_len": e.BodyLen}
	if e.BodySHA != "" {
		fields["body_sha256"] = e.BodySHA
	}
	if e.RequestID != "" {
		fields["request_id"] = e.RequestID
	}
	if e.Err != nil {
		fields["error"] = e.Err.Error()
	}
	return fields
}

// ProcessError means the import itself failed and the message may be retried.
type ProcessError struct {
	ImportID  string
	RequestID string
	Err       error
}

func (e *ProcessError) Error() string { return "process import " + e.ImportID + ": " + e.Err.Error() }

func (e *ProcessError) Unwrap() error { return e.Err }

// IsUnrecoverable reports whether redelivering the message can never succeed.
func IsUnrecoverable(err error) bool {
	var msgErr *MessageError
	return errors.As(err, &msgErr)
}

// Job is a validated import message.
type Job struct {
	queue.Message
}

// Parse validates a queue body.
func Parse(body string) (Job, error) {
	reject := func(reason string, msg queue.Message, err error) (Job, error) {
		e := &MessageError{Reason: reason, RequestID: msg.RequestID, BodyLen: len(body), Err: err}
		if body != "" {
			sum := sha256.Sum256([]byte(body))
			e.BodySHA = hex.EncodeToString(sum[:])
		}
		return Job{}, e
	}

	if strings.TrimSpace(body) == "" {
		return reject(ReasonEmptyBody, queue.Message{}, nil)
	}
	msg, err := queue.DecodeMessage([]byte(body))
	switch {
	case errors.Is(err, queue.ErrMissingImportID):
		return reject(ReasonMissingID, msg, nil)
	case errors.Is(err, queue.ErrUnsupportedVersion):
		return reject(ReasonVersion, msg, err)
	case err != nil:
		return reject(ReasonUndecodable, queue.Message{}, err)
	}
	return Job{Message: msg}, nil
}

// Fields returns log fields for the job.
func (j Job) Fields(now time.Time) map[string]any {
	fields := map[string]any{
		"import_id":     j.ImportID,
		"queue_wait_ms": j.Wait(now).Milliseconds(),
	}
	if j.RequestID != "" {
		fields["request_id"] = j.RequestID
	}
	return fields
}

// Run processes the job with the producer's request id in context.
func (j Job) Run(ctx context.Context, proc Processor) error {
	if proc == nil {
		return errors.New("import processor not configured")
	}
	if err := proc.ProcessImport(imports.WithRequestID(ctx, j.RequestID), j.ImportID); err != nil {
		return &ProcessError{ImportID: j.ImportID, RequestID: j.RequestID, Err: err}
	}
	return nil
}

// HandleMessage parses body and runs the resulting job.
func HandleMessage(ctx context.Context, proc Processor, body string) error {
	job, err := Parse(body)
	if err != nil {
		return err
	}
	return job.Run(ctx, proc)
}
