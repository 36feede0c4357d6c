// Package storage is the filesystem abstraction behind the catalog's JSON
// documents and uploaded images.
//
// Two drivers are available:
//   - "local": a directory on the local filesystem (default)
//   - "s3": S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
// Both drivers replace a path's content in one step: readers observe either
// the previous or the new content, never a partial write.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when the requested path does not exist.
var ErrNotFound = errors.New("storage: file not found")

// Disk is the driver interface.
type Disk interface {
	// Put replaces the content at path, creating parent directories as needed.
	Put(ctx context.Context, path string, content []byte) error

	// PutStream writes from r to path.
	PutStream(ctx context.Context, path string, r io.Reader) error

	// Get returns the full content of path.
	Get(ctx context.Context, path string) ([]byte, error)

	// GetStream returns a ReadCloser for path. Caller must close it.
	GetStream(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists reports whether path exists.
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes path. Deleting a missing path is not an error.
	Delete(ctx context.Context, path string) error

	// Files lists file names directly inside directory.
	Files(ctx context.Context, directory string) ([]string, error)

	// URL returns the driver's public URL for path.
	URL(path string) string
}
