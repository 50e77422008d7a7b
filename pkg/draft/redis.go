package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-formflow/pkg/engine"
)

// RedisStore persists the draft as a JSON blob under a single key, letting
// multiple processes share one user's in-progress state.
type RedisStore struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// RedisOption customises the store.
type RedisOption func(*RedisStore)

// WithTTL expires the stored draft after the given duration. Zero means no
// expiry.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewRedisStore returns a store writing to the given key.
func NewRedisStore(client redis.UniversalClient, key string, opts ...RedisOption) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("draft: redis client is required")
	}
	if key == "" {
		return nil, errors.New("draft: redis key is required")
	}
	s := &RedisStore{client: client, key: key}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Save stores the draft, refreshing the TTL when one is configured.
func (s *RedisStore) Save(ctx context.Context, d engine.Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("draft: encode: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("draft: redis set: %w", err)
	}
	return nil
}

// Load fetches the stored draft; a missing key means no draft.
func (s *RedisStore) Load(ctx context.Context) (engine.Draft, bool, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return engine.Draft{}, false, nil
	}
	if err != nil {
		return engine.Draft{}, false, fmt.Errorf("draft: redis get: %w", err)
	}
	var d engine.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return engine.Draft{}, false, fmt.Errorf("draft: decode: %w", err)
	}
	return d, true, nil
}

// Clear removes the stored draft.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("draft: redis del: %w", err)
	}
	return nil
}
