package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"playfinder/pkg/platform/sentinel"
)

// Redis key prefix for search result entries.
const searchKeyPrefix = "search:q:"

// RedisStore is the shared-cache backend for multi-instance deployments.
// Expiry is delegated to Redis TTLs, so entries vanish rather than report
// ErrExpired; both read as misses to the cache.
type RedisStore struct {
	client *redis.Client
}

var _ EntryStore = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, searchKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, searchKeyPrefix+key, value, ttl).Err()
}
