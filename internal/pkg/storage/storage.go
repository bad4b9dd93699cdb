// Package storage is a thin object store abstraction over S3, GCS and MinIO.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by GetObject when the key does not exist.
var ErrNotFound = errors.New("storage: object not found")

// Storage defines the object operations the application needs.
type Storage interface {
	io.Closer

	PutObject(ctx context.Context, bucket, key string, r io.Reader, opts PutOptions) error
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	DeleteObject(ctx context.Context, bucket, key string) error
}

// PutOptions configures an upload. Size is required by MinIO for
// non-streaming uploads and may be -1 when unknown.
type PutOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}
