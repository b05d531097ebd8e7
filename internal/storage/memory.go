package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps values in process memory. A positive quota caps the total
// number of bytes held across all keys.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string][]byte
	quota  int
}

func NewMemoryStore(quota int) *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte), quota: quota}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quota > 0 {
		used := 0
		for k, v := range s.values {
			if k != key {
				used += len(k) + len(v)
			}
		}
		if used+len(key)+len(value) > s.quota {
			return ErrQuotaExceeded
		}
	}

	cp := make([]byte, len(value))
	copy(cp, value)
	s.values[key] = cp
	return nil
}
