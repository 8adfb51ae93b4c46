package cache

import (
	"context"
	"sync"
	"time"

	"playfinder/pkg/platform/sentinel"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// InMemoryStore keeps cache entries in a map with lazy expiry: reads past
// expiresAt are misses and evict the entry. Correctness needs no background
// sweep; memory bounds come from TTLs being short.
type InMemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	// now is swappable for tests.
	now func() time.Time
}

var _ EntryStore = (*InMemoryStore)(nil)

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *InMemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return nil, sentinel.ErrExpired
	}
	return entry.value, nil
}

func (s *InMemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}
