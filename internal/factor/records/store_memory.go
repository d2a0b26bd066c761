package records

import (
	"context"
	"fmt"
	"sync"
)

type userFactorKey struct {
	userID string
	factor string
}

// InMemoryStore keeps records in process memory. Used when no database is configured.
type InMemoryStore struct {
	// txMu serializes RunInTx callers so list-then-insert is atomic.
	txMu    sync.Mutex
	mu      sync.RWMutex
	records map[userFactorKey][]*Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[userFactorKey][]*Record)}
}

func (s *InMemoryStore) ListByUserFactor(_ context.Context, userID, factor string) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.records[userFactorKey{userID: userID, factor: factor}]
	out := make([]*Record, 0, len(stored))
	for _, r := range stored {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemoryStore) Insert(_ context.Context, record *Record) error {
	if record == nil {
		return fmt.Errorf("record is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userFactorKey{userID: record.UserID, factor: record.Factor}
	cp := *record
	s.records[key] = append(s.records[key], &cp)
	return nil
}

// RunInTx runs fn while holding the store's transaction lock.
func (s *InMemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(ctx)
}
