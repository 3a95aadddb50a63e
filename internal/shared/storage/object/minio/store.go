package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"resume-importer/internal/shared/storage/object"
)

// Config points the store at an S3-compatible endpoint such as a local MinIO.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	Region    string
	UseSSL    bool
}

// Store implements object.ObjectStore on top of minio-go.
type Store struct {
	client *miniogo.Client
	bucket string
	prefix string
}

// New connects to the endpoint and creates the bucket when it does not exist yet.
func New(ctx context.Context, cfg Config) (*Store, error) {
	switch {
	case strings.TrimSpace(cfg.Endpoint) == "":
		return nil, errors.New("minio endpoint is required")
	case cfg.AccessKey == "" || cfg.SecretKey == "":
		return nil, errors.New("minio credentials are required")
	case strings.TrimSpace(cfg.Bucket) == "":
		return nil, errors.New("minio bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, miniogo.MakeBucketOptions{Region: region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}
	return &Store{client: client, bucket: cfg.Bucket, prefix: object.CleanPrefix(cfg.Prefix)}, nil
}

// Save buffers the upload, sniffs its content type and writes it under the owner's namespace.
func (s *Store) Save(ctx context.Context, ownerID, fileName string, r io.Reader) (object.Saved, error) {
	key, err := object.NewKey(ownerID, fileName)
	if err != nil {
		return object.Saved{}, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return object.Saved{}, fmt.Errorf("read upload: %w", err)
	}
	mimeType := http.DetectContentType(data[:min(len(data), object.SniffLen)])

	_, err = s.client.PutObject(ctx, s.bucket, s.objectName(key), bytes.NewReader(data), int64(len(data)),
		miniogo.PutObjectOptions{ContentType: mimeType})
	if err != nil {
		return object.Saved{}, fmt.Errorf("minio put bucket=%s key=%s: %w", s.bucket, key, err)
	}
	return object.Saved{Key: key, Size: int64(len(data)), MimeType: mimeType}, nil
}

// Open streams a stored object. Missing keys map to object.ErrNotFound.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := object.CheckKey(storageKey); err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, s.objectName(storageKey), miniogo.GetObjectOptions{})
	if err != nil {
		return nil, s.wrap("get", storageKey, err)
	}
	// GetObject is lazy; Stat issues the request so a missing key fails here.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, s.wrap("get", storageKey, err)
	}
	return obj, nil
}

func (s *Store) Delete(ctx context.Context, storageKey string) error {
	if err := object.CheckKey(storageKey); err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, s.objectName(storageKey), miniogo.RemoveObjectOptions{}); err != nil {
		return s.wrap("delete", storageKey, err)
	}
	return nil
}

func (s *Store) objectName(key string) string {
	return object.WithPrefix(s.prefix, key)
}

func (s *Store) wrap(op, key string, err error) error {
	if code := miniogo.ToErrorResponse(err).Code; code == "NoSuchKey" || code == "NoSuchBucket" {
		return object.ErrNotFound
	}
	return fmt.Errorf("minio %s bucket=%s key=%s: %w", op, s.bucket, key, err)
}

var _ object.ObjectStore = (*Store)(nil)
