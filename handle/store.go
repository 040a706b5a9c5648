package handle

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Load when no handle is stored.
var ErrNotFound = errors.New("refresh handle not found")

// Store is durable storage for exactly one refresh handle. Writes are
// last-writer-wins: under the pipeline's single-flight discipline there is at
// most one legitimate writer at any instant.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, handle string) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps the handle in process memory. Suitable for tests and for
// hosts that manage durability themselves.
type MemoryStore struct {
	mu     sync.Mutex
	handle string
	set    bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the stored handle or ErrNotFound.
func (s *MemoryStore) Load(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return "", ErrNotFound
	}
	return s.handle, nil
}

// Save replaces the stored handle.
func (s *MemoryStore) Save(_ context.Context, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handle = handle
	s.set = true
	return nil
}

// Clear removes the stored handle. Idempotent.
func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handle = ""
	s.set = false
	return nil
}
