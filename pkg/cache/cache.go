// Package cache memoises compiled schemas by canonical definition key.
//
// Entries are held in a fixed-size LRU; reading an entry refreshes its
// recency. Concurrent misses for the same key are coalesced so a definition is
// compiled at most once at a time. Failed compilations are never stored.
package cache

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-formcompiler/pkg/schema"
)

// Observer receives cache events. pkg/metrics provides a Prometheus backed
// implementation.
type Observer interface {
	RecordHit()
	RecordMiss()
	RecordEviction()
	UpdateSize(size int)
}

type nopObserver struct{}

func (nopObserver) RecordHit()      {}
func (nopObserver) RecordMiss()     {}
func (nopObserver) RecordEviction() {}
func (nopObserver) UpdateSize(int)  {}

// Option customises a Cache.
type Option func(*Cache)

// WithObserver registers an Observer for hit, miss, eviction and size events.
func WithObserver(o Observer) Option {
	return func(c *Cache) {
		if o != nil {
			c.observer = o
		}
	}
}

// CompileFunc produces the schema for a key on a cache miss.
type CompileFunc func() (*schema.Schema, error)

// Cache is a thread-safe LRU of compiled schemas.
type Cache struct {
	entries    *lru.Cache[string, *schema.Schema]
	flights    singleflight.Group
	observer   Observer
	maxEntries int
}

// New constructs a Cache holding at most maxEntries schemas.
func New(maxEntries int, options ...Option) (*Cache, error) {
	if maxEntries <= 0 {
		return nil, fmt.Errorf("cache: max entries must be positive, got %d", maxEntries)
	}
	entries, err := lru.New[string, *schema.Schema](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}

	c := &Cache{
		entries:    entries,
		observer:   nopObserver{},
		maxEntries: maxEntries,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

// MaxEntries returns the configured capacity.
func (c *Cache) MaxEntries() int {
	return c.maxEntries
}

// Get returns the schema stored under key and marks it most recently used.
func (c *Cache) Get(key string) (*schema.Schema, bool) {
	compiled, ok := c.entries.Get(key)
	if ok {
		c.observer.RecordHit()
	} else {
		c.observer.RecordMiss()
	}
	return compiled, ok
}

// Put stores compiled under key, evicting the least recently used entry when
// the cache is full. A nil schema is ignored.
func (c *Cache) Put(key string, compiled *schema.Schema) {
	if compiled == nil {
		return
	}
	if evicted := c.entries.Add(key, compiled); evicted {
		c.observer.RecordEviction()
	}
	c.observer.UpdateSize(c.entries.Len())
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.entries.Purge()
	c.observer.UpdateSize(0)
}

// Len returns the number of stored schemas.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Keys returns the stored keys from least to most recently used.
func (c *Cache) Keys() []string {
	return c.entries.Keys()
}

// GetOrCompile returns the schema for key, running compile on a miss. While a
// compilation for key is in flight, other callers for the same key wait for
// its result instead of compiling again. hit reports whether the schema came
// straight from the cache.
func (c *Cache) GetOrCompile(key string, compile CompileFunc) (compiled *schema.Schema, hit bool, err error) {
	if cached, ok := c.Get(key); ok {
		return cached, true, nil
	}
	if compile == nil {
		return nil, false, errors.New("cache: compile function is required")
	}

	value, err, _ := c.flights.Do(key, func() (any, error) {
		// A flight that finished between our Get and Do may already have
		// stored the schema.
		if existing, ok := c.entries.Peek(key); ok {
			return existing, nil
		}
		built, err := compile()
		if err != nil {
			return nil, err
		}
		if built == nil {
			return nil, fmt.Errorf("cache: compile returned no schema for key %s", key)
		}
		c.Put(key, built)
		return built, nil
	})
	if err != nil {
		return nil, false, err
	}
	return value.(*schema.Schema), false, nil
}
