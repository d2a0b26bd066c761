package settings

import (
	"context"
	"sync"

	"domainfactor/pkg/platform/sentinel"
)

// InMemoryStore keeps settings in process memory. Used when Redis is not configured.
type InMemoryStore struct {
	mu  sync.RWMutex
	raw *Raw
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Get returns a copy of the stored settings or sentinel.ErrNotFound.
func (s *InMemoryStore) Get(_ context.Context) (*Raw, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.raw == nil {
		return nil, sentinel.ErrNotFound
	}
	raw := *s.raw
	return &raw, nil
}

func (s *InMemoryStore) Put(_ context.Context, raw Raw) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = &raw
	return nil
}
