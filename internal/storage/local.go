package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalClient stores uploads as plain files in a single directory.
// It is the default backend; the directory doubles as the "bucket".
type LocalClient struct {
	dir string
}

// NewLocalClient constructs a local-disk backend rooted at dir.
func NewLocalClient(dir string) (*LocalClient, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("uploads directory is required")
	}
	return &LocalClient{dir: dir}, nil
}

// EnsureBucket creates the upload directory if it is missing.
func (l *LocalClient) EnsureBucket(_ context.Context) error {
	return os.MkdirAll(l.dir, 0o755)
}

// Put writes the object to <dir>/<key>. The size and content type are
// recorded by the caller in the database, not here.
func (l *LocalClient) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	path, err := l.objectPath(key)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

// Get opens the file stored under key.
func (l *LocalClient) Get(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := l.objectPath(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, err
	}
	return f, nil
}

// Delete removes the file stored under key. Deleting a missing file
// is not an error.
func (l *LocalClient) Delete(_ context.Context, key string) error {
	path, err := l.objectPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Bucket returns the upload directory path.
func (l *LocalClient) Bucket() string {
	return l.dir
}

// objectPath maps a key to a path inside the upload directory and
// rejects anything that could escape it.
func (l *LocalClient) objectPath(key string) (string, error) {
	if key == "" || key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return "", ErrNotExist
	}
	return filepath.Join(l.dir, key), nil
}
