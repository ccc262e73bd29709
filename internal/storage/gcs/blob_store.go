// Package gcs uploads CSV snapshots to Google Cloud Storage.
package gcs

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/JakeFAU/jobs-observatory/internal/apperr"
)

// Config captures the parameters required to connect to GCS.
type Config struct {
	Bucket string `mapstructure:"gcs_bucket"`
}

// BlobStore writes artifacts to a configured GCS bucket.
type BlobStore struct {
	client *storage.Client
	bucket string
}

// New creates a GCS-backed blob store.
func New(client *storage.Client, cfg Config) (*BlobStore, error) {
	if client == nil {
		return nil, apperr.Config("storage client is required", nil)
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, apperr.Config("export.gcs_bucket is required", nil)
	}
	return &BlobStore{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// PutObject uploads r to the configured bucket and returns a gs:// URI.
func (s *BlobStore) PutObject(ctx context.Context, path string, contentType string, r io.Reader) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", apperr.Internal("object path is required", nil)
	}
	writer := s.client.Bucket(s.bucket).Object(path).NewWriter(ctx)
	if contentType != "" {
		writer.ContentType = contentType
	}
	if _, err := io.Copy(writer, r); err != nil {
		if closeErr := writer.Close(); closeErr != nil {
			return "", apperr.Storage("upload "+path, fmt.Errorf("copy object: %w (close writer: %v)", err, closeErr))
		}
		return "", apperr.Storage("upload "+path, err)
	}
	if err := writer.Close(); err != nil {
		return "", apperr.Storage("finalize "+path, err)
	}
	return fmt.Sprintf("gs://%s/%s", s.bucket, path), nil
}
