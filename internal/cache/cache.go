// Package cache provides a small in-process TTL store used to memoize
// upstream lookups. Entries are reused until their age reaches the TTL;
// only successful results should be stored, so upstream failures are
// retried on the next request.
package cache

import (
	"sync"
	"time"

	"weatherdash/internal/types"
)

// entry pairs a cached value with the instant it was stored.
type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Store is a concurrency-safe TTL map keyed by the exact argument string
// of the lookup it memoizes. A non-positive TTL disables reuse entirely.
type Store[V any] struct {
	mu     sync.RWMutex
	ttl    time.Duration
	clock  types.Clock
	items  map[string]entry[V]
	hits   int64
	misses int64
}

// New creates a Store with the given TTL. The clock is injectable for tests;
// pass types.RealClock{} in production.
func New[V any](ttl time.Duration, clock types.Clock) *Store[V] {
	return &Store[V]{
		ttl:   ttl,
		clock: clock,
		items: make(map[string]entry[V]),
	}
}

// Get returns the cached value for key if one exists and is still fresh.
// Expired entries are dropped lazily on access and count as misses. The
// whole lookup holds the write lock so the freshness check and the lazy
// delete stay atomic with respect to a concurrent Set.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, found := s.items[key]
	if found && s.clock.Now().Sub(e.storedAt) < s.ttl {
		s.hits++
		return e.value, true
	}

	s.misses++
	if found {
		delete(s.items, key)
	}

	var zero V
	return zero, false
}

// Set stores a value under key, replacing any previous entry.
func (s *Store[V]) Set(key string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = entry[V]{
		value:    value,
		storedAt: s.clock.Now(),
	}
}

// Len returns the number of entries currently held, including any expired
// entries that have not been touched since expiry.
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Stats returns the cumulative hit and miss counts.
func (s *Store[V]) Stats() (hits, misses int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hits, s.misses
}
