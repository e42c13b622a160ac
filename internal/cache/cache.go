// Package cache is an in-process TTL memoization store. Records live for
// one cache interval or until a manual refresh invalidates them; nothing
// survives a restart.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value      V
	insertedAt time.Time
}

type Store[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	now     func() time.Time // overridable in tests
}

func New[V any]() *Store[V] {
	return &Store[V]{
		entries: make(map[string]entry[V]),
		now:     time.Now,
	}
}

// GetOrFetch returns the cached value for key if it is younger than ttl,
// otherwise calls fetch and caches the result. A failed fetch caches
// nothing, so the next call retries.
func (s *Store[V]) GetOrFetch(key string, ttl time.Duration, fetch func() (V, error)) (V, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok && s.now().Sub(e.insertedAt) <= ttl {
		return e.value, nil
	}

	value, err := fetch()
	if err != nil {
		var zero V
		return zero, err
	}
	s.entries[key] = entry[V]{value: value, insertedAt: s.now()}
	return value, nil
}

// Invalidate drops the entry for key so the next GetOrFetch re-fetches.
func (s *Store[V]) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// InsertedAt reports when the entry for key was cached.
func (s *Store[V]) InsertedAt(key string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	return e.insertedAt, ok
}
