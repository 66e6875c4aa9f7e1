package source

import (
	"bytes"
	"context"
	"sync"
)

// Memory is an in-memory Source implementation for testing.
// Thread-safe for concurrent reads and writes.
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemory creates a new in-memory source.
func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string][]byte),
	}
}

// Put stores an object under the given name, replacing any previous content.
func (m *Memory) Put(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Copy to prevent external mutation
	copied := make([]byte, len(data))
	copy(copied, data)
	m.objects[name] = copied
}

// Open opens the named object for reading.
func (m *Memory) Open(_ context.Context, name string) (Reader, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[name]
	if !ok {
		return nil, ErrNotFound
	}

	return memoryReader{bytes.NewReader(data)}, nil
}

type memoryReader struct {
	*bytes.Reader
}

func (memoryReader) Close() error {
	return nil
}
