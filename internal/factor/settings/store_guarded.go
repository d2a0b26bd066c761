package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"domainfactor/pkg/platform/circuit"
	"domainfactor/pkg/platform/sentinel"
)

// Store is the settings persistence contract shared by the implementations.
type Store interface {
	Get(ctx context.Context) (*Raw, error)
	Put(ctx context.Context, raw Raw) error
}

// GuardedStore wraps a remote store with a circuit breaker. While the
// breaker is open reads fail immediately with sentinel.ErrUnavailable, so a
// check evaluates to neutral without waiting on a dead backend.
type GuardedStore struct {
	inner   Store
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewGuardedStore(inner Store, breaker *circuit.Breaker, logger *slog.Logger) *GuardedStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &GuardedStore{inner: inner, breaker: breaker, logger: logger}
}

func (s *GuardedStore) Get(ctx context.Context) (*Raw, error) {
	if !s.breaker.Allow() {
		return nil, fmt.Errorf("settings store %s: %w", s.breaker.Name(), sentinel.ErrUnavailable)
	}
	raw, err := s.inner.Get(ctx)
	s.record(ctx, err)
	return raw, err
}

// Put is never short-circuited: an administrator should see the real error.
func (s *GuardedStore) Put(ctx context.Context, raw Raw) error {
	err := s.inner.Put(ctx, raw)
	s.record(ctx, err)
	return err
}

func (s *GuardedStore) record(ctx context.Context, err error) {
	if err == nil || errors.Is(err, sentinel.ErrNotFound) {
		if _, change := s.breaker.RecordSuccess(); change.Closed {
			s.logger.InfoContext(ctx, "settings store circuit closed", "breaker", s.breaker.Name())
		}
		return
	}
	if _, change := s.breaker.RecordFailure(); change.Opened {
		s.logger.WarnContext(ctx, "settings store circuit opened", "breaker", s.breaker.Name(), "error", err)
	}
}
