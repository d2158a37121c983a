package git

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/go-git/go-git/v5/plumbing"
)

// MockObjectStore is an in-memory ObjectStore for tests.
// It counts content reads so tests can assert that nothing was loaded.
type MockObjectStore struct {
	Blobs   map[plumbing.Hash][]byte
	Changes []RawChange
	Error   error

	mu    sync.Mutex
	reads int
	opens int
}

// NewMockObjectStore creates a new MockObjectStore with the given changes.
func NewMockObjectStore(changes []RawChange, err error) *MockObjectStore {
	return &MockObjectStore{
		Blobs:   make(map[plumbing.Hash][]byte),
		Changes: changes,
		Error:   err,
	}
}

// AddBlob stores content and returns its git blob hash.
func (m *MockObjectStore) AddBlob(content string) plumbing.Hash {
	data := []byte(content)
	h := plumbing.ComputeHash(plumbing.BlobObject, data)
	m.Blobs[h] = data
	return h
}

// Blob returns the stored content.
func (m *MockObjectStore) Blob(hash plumbing.Hash) ([]byte, error) {
	m.mu.Lock()
	m.reads++
	m.mu.Unlock()

	data, ok := m.Blobs[hash]
	if !ok {
		return nil, fmt.Errorf("blob %s: %w", hash, ErrObjectNotFound)
	}
	return data, nil
}

// OpenBlob streams the stored content.
func (m *MockObjectStore) OpenBlob(hash plumbing.Hash) (io.ReadCloser, error) {
	m.mu.Lock()
	m.opens++
	m.mu.Unlock()

	data, ok := m.Blobs[hash]
	if !ok {
		return nil, fmt.Errorf("blob %s: %w", hash, ErrObjectNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// HasBlob reports whether the blob is stored.
func (m *MockObjectStore) HasBlob(hash plumbing.Hash) bool {
	_, ok := m.Blobs[hash]
	return ok
}

// TreeChanges returns the predefined changes or error.
func (m *MockObjectStore) TreeChanges(_ context.Context, _, _ plumbing.Hash) ([]RawChange, error) {
	return m.Changes, m.Error
}

// Reads returns how many times Blob was called.
func (m *MockObjectStore) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// Opens returns how many times OpenBlob was called.
func (m *MockObjectStore) Opens() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opens
}
