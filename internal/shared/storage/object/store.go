package object

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a storage key has no object behind it.
var ErrNotFound = errors.New("object not found")

// ErrInvalidKey is returned for keys that escape the store namespace.
var ErrInvalidKey = errors.New("invalid storage key")

// Saved describes an object written by Save.
type Saved struct {
	Key      string
	Size     int64
	MimeType string
}

// ObjectStore defines the contract for saving and retrieving binary objects.
type ObjectStore interface {
	// Save writes r under the owner's namespace. MimeType is sniffed from the leading bytes.
	Save(ctx context.Context, ownerID, fileName string, r io.Reader) (Saved, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}

// SniffLen is the number of leading bytes inspected for content type detection.
const SniffLen = 512
