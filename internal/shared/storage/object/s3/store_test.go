package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"resume-importer/internal/shared/storage/object"
)

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	bodies  map[string][]byte
	deleted []string
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.bodies == nil {
		f.bodies = map[string][]byte{}
	}
	f.puts = append(f.puts, in)
	f.bodies[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.bodies[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	delete(f.bodies, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestStoreSaveOpenDeleteWithPrefix(t *testing.T) {
	client := &fakeS3{}
	store := NewWithClient(client, "bucket", "/imports/", "kms-key")
	ctx := context.Background()

	saved, err := store.Save(ctx, "google:1", "resume.pdf", strings.NewReader("%PDF-1.7 body"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.Size != int64(len("%PDF-1.7 body")) || saved.MimeType != "application/pdf" {
		t.Fatalf("unexpected saved object %+v", saved)
	}
	if len(client.puts) != 1 {
		t.Fatalf("expected one put, got %d", len(client.puts))
	}
	put := client.puts[0]
	if !strings.HasPrefix(aws.ToString(put.Key), "imports/") {
		t.Fatalf("expected prefixed key, got %q", aws.ToString(put.Key))
	}
	if put.ServerSideEncryption != s3types.ServerSideEncryptionAwsKms || aws.ToString(put.SSEKMSKeyId) != "kms-key" {
		t.Fatalf("expected kms encryption, got %v", put.ServerSideEncryption)
	}

	rc, err := store.Open(ctx, saved.Key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if string(body) != "%PDF-1.7 body" {
		t.Fatalf("unexpected body %q", body)
	}

	if err := store.Delete(ctx, saved.Key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Open(ctx, saved.Key); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreDefaultsToS3ManagedEncryption(t *testing.T) {
	client := &fakeS3{}
	store := NewWithClient(client, "bucket", "", " ")

	saved, err := store.Save(context.Background(), "guest:1", "cv.pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	put := client.puts[0]
	if put.ServerSideEncryption != s3types.ServerSideEncryptionAes256 || put.SSEKMSKeyId != nil {
		t.Fatalf("expected AES256, got %v", put.ServerSideEncryption)
	}
	if aws.ToString(put.Key) != saved.Key {
		t.Fatalf("expected unprefixed key %q, got %q", saved.Key, aws.ToString(put.Key))
	}
}

func TestStoreRejectsEscapingKeys(t *testing.T) {
	store := NewWithClient(&fakeS3{}, "bucket", "imports", "")
	for _, key := range []string{"", "/etc/passwd", "owner/../other/cv.pdf"} {
		if _, err := store.Open(context.Background(), key); !errors.Is(err, object.ErrInvalidKey) {
			t.Fatalf("Open(%q): expected ErrInvalidKey, got %v", key, err)
		}
		if err := store.Delete(context.Background(), key); !errors.Is(err, object.ErrInvalidKey) {
			t.Fatalf("Delete(%q): expected ErrInvalidKey, got %v", key, err)
		}
	}
}
