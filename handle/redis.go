package handle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the single durable key holding the refresh handle.
const DefaultRedisKey = "sessionkit:refresh_handle"

// RedisStore persists the refresh handle under one Redis key, optionally with
// a TTL matching the handle's server-side lifetime.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore creates a store writing to key with the given TTL.
// A zero ttl stores the handle without expiry. An empty key falls back to
// DefaultRedisKey.
func NewRedisStore(client *redis.Client, key string, ttl time.Duration) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key, ttl: ttl}
}

// Load returns the stored handle or ErrNotFound.
func (s *RedisStore) Load(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load refresh handle: %w", err)
	}
	return val, nil
}

// Save replaces the stored handle.
func (s *RedisStore) Save(ctx context.Context, handle string) error {
	if err := s.client.Set(ctx, s.key, handle, s.ttl).Err(); err != nil {
		return fmt.Errorf("save refresh handle: %w", err)
	}
	return nil
}

// Clear removes the stored handle. Idempotent.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear refresh handle: %w", err)
	}
	return nil
}
