package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gobwas/glob"
)

// cacheEntry holds a cached value with its timestamp.
type cacheEntry struct {
	value     []byte
	timestamp time.Time
}

// InMemoryStore is a thread-safe in-process store with optional TTL.
// It backs the "memory" driver and stands in for Redis in tests.
type InMemoryStore struct {
	cache map[string]cacheEntry
	mu    sync.RWMutex
	ttl   time.Duration
}

// NewInMemoryStore creates a new in-memory store with the specified TTL.
// If ttl is 0 or negative, entries never expire.
func NewInMemoryStore(ttl time.Duration) *InMemoryStore {
	if ttl < 0 {
		ttl = 0 // No expiration
	}
	return &InMemoryStore{
		cache: make(map[string]cacheEntry),
		ttl:   ttl,
	}
}

// Get retrieves a value from the store.
func (s *InMemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	entry, ok := s.cache[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	if s.expired(entry, time.Now()) {
		s.mu.Lock()
		delete(s.cache, key)
		s.mu.Unlock()
		return nil, false, nil
	}

	return append([]byte(nil), entry.value...), true, nil
}

// Set stores a copy of value.
func (s *InMemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache[key] = cacheEntry{
		value:     append([]byte(nil), value...),
		timestamp: time.Now(),
	}
	return nil
}

// Flush removes all entries from the store.
func (s *InMemoryStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]cacheEntry)
	return nil
}

// Len returns the number of entries in the store (including expired ones).
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

// Info reports the approximate payload size held in memory.
func (s *InMemoryStore) Info(ctx context.Context) (*Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var used uint64
	for key, entry := range s.cache {
		used += uint64(len(key) + len(entry.value))
	}

	return &Info{Endpoint: "memory", MemoryUsed: used}, nil
}

// Keys returns the sorted non-expired keys matching a glob pattern.
func (s *InMemoryStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	// No separators: "*" spans any character, as with SCAN MATCH.
	matcher, err := glob.Compile(pattern)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	var keys []string
	for key, entry := range s.cache {
		if s.expired(entry, now) {
			continue
		}
		if matcher.Match(key) {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)
	return keys, nil
}

func (s *InMemoryStore) expired(entry cacheEntry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(entry.timestamp) > s.ttl
}

// Verify InMemoryStore implements Store and Inspector
var (
	_ Store     = (*InMemoryStore)(nil)
	_ Inspector = (*InMemoryStore)(nil)
)
