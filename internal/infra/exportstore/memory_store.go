package exportstore

import (
	"context"
	"sync"

	"github.com/yanqian/dreamvision/internal/domain/dream"
)

// MemoryStore keeps exports in memory for tests/dev. It cannot serve
// downloads, so callers receive the payload inline.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore constructs storage.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// SaveExport records the payload and returns an empty URL.
func (s *MemoryStore) SaveExport(_ context.Context, key string, payload []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), payload...)
	return "", nil
}

// Get returns a stored payload.
func (s *MemoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[key]
	return blob, ok
}

var _ dream.ExportStore = (*MemoryStore)(nil)
