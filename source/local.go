package source

import (
	"context"
	"os"
	"path/filepath"
)

// Local reads objects from the local file system, rooted at a directory.
type Local struct {
	root string
}

// NewLocal creates a Local source rooted at the given directory.
func NewLocal(root string) *Local {
	return &Local{root: root}
}

// Open opens the named file for reading. A missing file satisfies
// errors.Is(err, ErrNotFound) through the returned *fs.PathError.
func (s *Local) Open(_ context.Context, name string) (Reader, error) {
	f, err := os.Open(filepath.Join(s.root, name))
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return &localReader{File: f, size: info.Size()}, nil
}

type localReader struct {
	*os.File
	size int64
}

func (r *localReader) Size() int64 {
	return r.size
}
