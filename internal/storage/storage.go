package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotExist is returned by Get when the named object is absent.
var ErrNotExist = errors.New("object does not exist")

// ObjectStorage is the upload store: profile images and CVs are written
// and read through this interface regardless of the configured backend.
type ObjectStorage interface {
	// EnsureBucket creates the backing bucket or directory if missing.
	// Called once at startup; must be a no-op when it already exists.
	EnsureBucket(ctx context.Context) error
	// Put stores an object under key. Keys are flat filenames, never paths.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Get opens a reader for the object stored under key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the object stored under key.
	Delete(ctx context.Context, key string) error
	// Bucket returns the bucket name or directory path in use.
	Bucket() string
}
