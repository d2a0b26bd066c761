package settings

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"domainfactor/pkg/platform/sentinel"
)

const (
	// Redis hash holding the factor settings, one field per setting.
	settingsKey = "factor_domain:settings"

	fieldEnabled        = "enabled"
	fieldWeight         = "weight"
	fieldAllowedDomains = "alloweddomains"
)

// RedisStore persists settings in a Redis hash so every instance reads the
// same administrator configuration.
type RedisStore struct {
	client *redis.Client
	key    string
}

// RedisStoreOption configures a RedisStore instance.
type RedisStoreOption func(*RedisStore)

// WithKey overrides the hash key, e.g. to namespace per tenant.
func WithKey(key string) RedisStoreOption {
	return func(s *RedisStore) {
		if key != "" {
			s.key = key
		}
	}
}

func NewRedisStore(client *redis.Client, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{client: client, key: settingsKey}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Get returns the stored settings or sentinel.ErrNotFound when the hash is absent.
func (s *RedisStore) Get(ctx context.Context) (*Raw, error) {
	values, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if len(values) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return &Raw{
		Enabled:        values[fieldEnabled],
		Weight:         values[fieldWeight],
		AllowedDomains: values[fieldAllowedDomains],
	}, nil
}

func (s *RedisStore) Put(ctx context.Context, raw Raw) error {
	err := s.client.HSet(ctx, s.key,
		fieldEnabled, raw.Enabled,
		fieldWeight, raw.Weight,
		fieldAllowedDomains, raw.AllowedDomains,
	).Err()
	if err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
