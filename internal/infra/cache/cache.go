// Package cache provides the principal cache used by the auth guard:
// an in-memory TTL cache for single instances and a Redis-backed one
// shared across replicas.
package cache

import (
	"sync"
	"time"
)

// DefaultMaxEntries bounds an InMemory cache created without WithMaxEntries.
const DefaultMaxEntries = 10_000

type item[T any] struct {
	value     T
	expiresAt time.Time
}

func (i item[T]) expired(now time.Time) bool {
	return !now.Before(i.expiresAt)
}

type settings struct {
	maxEntries int
	now        func() time.Time
}

// Option tunes an InMemory cache.
type Option func(*settings)

// WithMaxEntries caps the number of live entries.
func WithMaxEntries(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// InMemory is a bounded TTL cache local to one API instance. Expired
// entries are dropped when read; a full cache first sweeps expired entries
// and then evicts the one closest to expiry.
type InMemory[T any] struct {
	mu    sync.Mutex
	items map[string]item[T]
	ttl   time.Duration
	settings
}

// New creates an in-memory cache whose entries live for ttl.
func New[T any](ttl time.Duration, opts ...Option) *InMemory[T] {
	s := settings{maxEntries: DefaultMaxEntries, now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	return &InMemory[T]{
		items:    make(map[string]item[T]),
		ttl:      ttl,
		settings: s,
	}
}

// Get returns the value under key, or false when missing or expired.
func (c *InMemory[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.items[key]
	if !ok {
		var zero T
		return zero, false
	}
	if it.expired(c.now()) {
		delete(c.items, key)
		var zero T
		return zero, false
	}
	return it.value, true
}

// Set stores value under key for the configured TTL.
func (c *InMemory[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxEntries {
		c.makeRoom(now)
	}
	c.items[key] = item[T]{value: value, expiresAt: now.Add(c.ttl)}
}

// Delete removes key. Missing keys are ignored.
func (c *InMemory[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Len counts the entries that have not expired yet.
func (c *InMemory[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for _, it := range c.items {
		if !it.expired(now) {
			n++
		}
	}
	return n
}

// makeRoom must be called with mu held.
func (c *InMemory[T]) makeRoom(now time.Time) {
	for k, it := range c.items {
		if it.expired(now) {
			delete(c.items, k)
		}
	}
	if len(c.items) < c.maxEntries {
		return
	}

	var (
		victim string
		oldest time.Time
	)
	for k, it := range c.items {
		if victim == "" || it.expiresAt.Before(oldest) {
			victim, oldest = k, it.expiresAt
		}
	}
	delete(c.items, victim)
}
