// Package source abstracts where embedding collections are read from.
//
// A Source resolves a name to a sequential stream. Implementations must be
// safe for concurrent use.
//
// # Built-in Implementations
//
//   - Local: files under a root directory
//   - Memory: in-memory objects, mainly for tests
//   - s3.Source: Amazon S3 objects
//   - minio.Source: MinIO and S3-compatible object stores
package source

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a named object does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Source resolves names to readable objects.
type Source interface {
	// Open opens the named object for sequential reading.
	Open(ctx context.Context, name string) (Reader, error)
}

// Reader is a read-only handle to an object.
type Reader interface {
	io.ReadCloser
	// Size returns the size of the object in bytes, or -1 if unknown.
	Size() int64
}
