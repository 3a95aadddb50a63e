package workerproc

import (
	"context"
	"errors"
	"testing"
	"time"

	"resume-importer/internal/imports"
	"resume-importer/internal/queue"
)

type recordingProcessor struct {
	ids []string
	err error
}

func (p *recordingProcessor) ProcessImport(ctx context.Context, importID string) error {
	p.ids = append(p.ids, importID)
	return p.err
}

func TestParseClassifiesBadBodies(t *testing.T) {
	cases := []struct {
		body   string
		reason string
	}{
		{"   ", ReasonEmptyBody},
		{"{oops", ReasonUndecodable},
		{`{"requestId":"req-1","version":1}`, ReasonMissingID},
		{`{"importId":"imp-1","version":9}`, ReasonVersion},
	}
	for _, tc := range cases {
		_, err := Parse(tc.body)
		var msgErr *MessageError
		if !errors.As(err, &msgErr) || msgErr.Reason != tc.reason {
			t.Fatalf("%q: expected %s, got %v", tc.body, tc.reason, err)
		}
		if !IsUnrecoverable(err) {
			t.Fatalf("%q: expected unrecoverable", tc.body)
		}
		if msgErr.BodyLen != len(tc.body) || msgErr.BodySHA == "" {
			t.Fatalf("%q: unexpected body meta %+v", tc.body, msgErr)
		}
	}
}

func TestMessageErrorFieldsCarryRequestID(t *testing.T) {
	_, err := Parse(`{"requestId":"req-1"}`)
	var msgErr *MessageError
	if !errors.As(err, &msgErr) {
		t.Fatalf("expected MessageError, got %v", err)
	}
	fields := msgErr.Fields()
	if fields["request_id"] != "req-1" || fields["reason"] != ReasonMissingID {
		t.Fatalf("unexpected fields %+v", fields)
	}
	if _, ok := fields["error"]; ok {
		t.Fatalf("missing id carries no cause, got %+v", fields)
	}
}

func TestJobFieldsReportQueueWait(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	job := Job{Message: queue.NewMessage("imp-1", "req-1", at)}

	fields := job.Fields(at.Add(1500 * time.Millisecond))
	if fields["import_id"] != "imp-1" || fields["request_id"] != "req-1" || fields["queue_wait_ms"] != int64(1500) {
		t.Fatalf("unexpected fields %+v", fields)
	}
}

func TestHandleMessageRunsProcessor(t *testing.T) {
	proc := &recordingProcessor{}
	body, _ := queue.EncodeMessage(queue.NewMessage("imp-1", "req-1", time.Now()))

	if err := HandleMessage(context.Background(), proc, string(body)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(proc.ids) != 1 || proc.ids[0] != "imp-1" {
		t.Fatalf("unexpected processed ids %v", proc.ids)
	}
}

func TestHandleMessageWrapsProcessError(t *testing.T) {
	boom := errors.New("boom")
	proc := &recordingProcessor{err: boom}
	body, _ := queue.EncodeMessage(queue.NewMessage("imp-2", "", time.Now()))

	err := HandleMessage(context.Background(), proc, string(body))
	var procErr *ProcessError
	if !errors.As(err, &procErr) || procErr.ImportID != "imp-2" {
		t.Fatalf("expected ProcessError for imp-2, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected cause to unwrap")
	}
	if IsUnrecoverable(err) {
		t.Fatalf("processing errors must stay retryable")
	}
}

func TestHandleMessageSkipsProcessorForBadBody(t *testing.T) {
	proc := &recordingProcessor{}
	if err := HandleMessage(context.Background(), proc, ""); !IsUnrecoverable(err) {
		t.Fatalf("expected unrecoverable error, got %v", err)
	}
	if len(proc.ids) != 0 {
		t.Fatalf("processor must not run, got %v", proc.ids)
	}
}

func TestRunWithoutProcessor(t *testing.T) {
	job := Job{Message: queue.NewMessage("x", "", time.Now())}
	if err := job.Run(context.Background(), nil); err == nil || IsUnrecoverable(err) {
		t.Fatalf("expected retryable configuration error, got %v", err)
	}
}

var _ Processor = (*imports.Service)(nil)
