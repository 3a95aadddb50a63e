package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"resume-importer/internal/shared/storage/object"
)

// Store implements ObjectStore using the local filesystem.
type Store struct {
	baseDir string
}

// New creates a new local object store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Save writes the reader to disk under the owner's namespace. The file appears
// under its final name only once fully written.
func (s *Store) Save(ctx context.Context, ownerID string, fileName string, r io.Reader) (object.Saved, error) {
	key, err := object.NewKey(ownerID, fileName)
	if err != nil {
		return object.Saved{}, err
	}
	if err := ctx.Err(); err != nil {
		return object.Saved{}, err
	}
	mimeType, body, err := object.Sniff(r)
	if err != nil {
		return object.Saved{}, err
	}

	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return object.Saved{}, fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return object.Saved{}, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	size, err := io.Copy(tmp, body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return object.Saved{}, fmt.Errorf("write body: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return object.Saved{}, fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return object.Saved{}, fmt.Errorf("rename: %w", err)
	}
	return object.Saved{Key: key, Size: size, MimeType: mimeType}, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath, err := s.resolve(storageKey)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, object.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Delete removes a stored object. Missing objects are not an error.
func (s *Store) Delete(ctx context.Context, storageKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath, err := s.resolve(storageKey)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) resolve(storageKey string) (string, error) {
	if err := object.CheckKey(storageKey); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(storageKey)), nil
}

var _ object.ObjectStore = (*Store)(nil)
