// Package cache fronts provider calls with a TTL-keyed result cache.
//
// The cache guarantees at most one outstanding compute per key: concurrent
// requests for the same key share the in-flight result or serialize behind
// it, so identical concurrent searches cost one upstream call.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"playfinder/internal/place/models"
)

// EntryStore persists serialized cache entries. Reads after expiry behave as
// misses; implementations may evict lazily.
type EntryStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ComputeFunc produces the places for a cache key on miss.
type ComputeFunc func(ctx context.Context) ([]models.Place, error)

// Cache combines an entry store with single-flight execution.
type Cache struct {
	entries EntryStore
	group   singleflight.Group
	logger  *slog.Logger
}

func New(entries EntryStore, logger *slog.Logger) *Cache {
	return &Cache{entries: entries, logger: logger}
}

// GetOrCompute returns the cached places for key, or runs compute and caches
// its result for ttl. The boolean reports a cache hit.
//
// Compute failures populate nothing and propagate to every waiter of that
// flight; the next call retries from scratch. The computation runs on a
// context detached from the caller: one abandoned request must not cancel a
// result other waiters (and the cache) are going to use.
func (c *Cache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute ComputeFunc) ([]models.Place, bool, error) {
	if cached, err := c.lookup(ctx, key); err == nil {
		return cached, true, nil
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check under the flight: a previous flight may have filled the
		// entry between our miss and acquiring the slot.
		if cached, err := c.lookup(ctx, key); err == nil {
			return cached, nil
		}

		places, err := compute(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		if err := c.store(context.WithoutCancel(ctx), key, ttl, places); err != nil {
			c.logger.Warn("failed to populate search cache", "key", key, "error", err)
		}
		return places, nil
	})
	if err != nil {
		return nil, false, err
	}
	return result.([]models.Place), false, nil
}

func (c *Cache) lookup(ctx context.Context, key string) ([]models.Place, error) {
	raw, err := c.entries.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var places []models.Place
	if err := json.Unmarshal(raw, &places); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	if places == nil {
		places = []models.Place{}
	}
	return places, nil
}

func (c *Cache) store(ctx context.Context, key string, ttl time.Duration, places []models.Place) error {
	if places == nil {
		places = []models.Place{}
	}
	raw, err := json.Marshal(places)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	return c.entries.Set(ctx, key, raw, ttl)
}
