package queue

import (
	"errors"
	"testing"
	"time"
)

func TestNewMessageEncodes(t *testing.T) {
	at := time.Date(2026, 1, 30, 22, 0, 0, 500, time.FixedZone("x", 3600))
	payload, err := EncodeMessage(NewMessage("import-123", "request-456", at))
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}
	want := `{"importId":"import-123","requestId":"request-456","enqueuedAt":"2026-01-30T21:00:00Z","version":1}`
	if string(payload) != want {
		t.Fatalf("unexpected payload %s", payload)
	}
}

func TestDecodeMessageDefaultsVersion(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"importId":" imp-1 "}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.ImportID != "imp-1" || msg.Version != 1 {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestDecodeMessageRejects(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    error
	}{
		{"blank id", `{"importId":"  ","version":1}`, ErrMissingImportID},
		{"newer version", `{"importId":"imp-1","version":2}`, ErrUnsupportedVersion},
		{"negative version", `{"importId":"imp-1","version":-1}`, ErrUnsupportedVersion},
	}
	for _, tc := range cases {
		if _, err := DecodeMessage([]byte(tc.payload)); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
	if _, err := DecodeMessage([]byte(`{"importId":`)); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}

func TestMessageWait(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	msg := NewMessage("imp", "", at)
	if got := msg.Wait(at.Add(3 * time.Second)); got != 3*time.Second {
		t.Fatalf("expected 3s, got %v", got)
	}
	if got := msg.Wait(at.Add(-time.Second)); got != 0 {
		t.Fatalf("expected clock skew to yield 0, got %v", got)
	}
	if got := (Message{}).Wait(at); got != 0 {
		t.Fatalf("expected unknown enqueue time to yield 0, got %v", got)
	}
}
