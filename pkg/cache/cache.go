// Package cache is an in-process key/value store whose entries expire by
// age, checked at read time. Concurrent loads for one key are coalesced.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type Options struct {
	TTL        time.Duration
	MaxEntries int // FIFO bound on stored keys; 0 means unbounded
}

type MetricsHooks struct {
	OnHit   func(key string)
	OnMiss  func(key string)
	OnStore func(key string)
}

// Entry is a stored value and the time it was written.
type Entry[V any] struct {
	Key       string
	Value     V
	Timestamp time.Time
}

type Cache[V any] struct {
	mu      sync.RWMutex
	items   map[string]*Entry[V]
	order   []string
	opts    Options
	metrics MetricsHooks
	now     func() time.Time
	sf      singleflight.Group
}

type Option func(*config)

type config struct {
	now     func() time.Time
	metrics MetricsHooks
}

// WithClock replaces time.Now, for tests that need to step past the TTL.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

func WithMetrics(hooks MetricsHooks) Option {
	return func(c *config) { c.metrics = hooks }
}

func New[V any](opts Options, options ...Option) *Cache[V] {
	cfg := config{now: time.Now}
	for _, opt := range options {
		opt(&cfg)
	}
	return &Cache[V]{
		items:   make(map[string]*Entry[V]),
		order:   make([]string, 0, 128),
		opts:    opts,
		metrics: cfg.metrics,
		now:     cfg.now,
	}
}

// Loader produces the value for a missing key. Returning store=false keeps
// the value out of the cache (the caller still receives it).
type Loader[V any] func(ctx context.Context, key string) (val V, store bool, err error)

type loadResult[V any] struct {
	val V
	err error
}

// Lookup returns the entry for key if it is younger than the TTL.
func (c *Cache[V]) Lookup(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if ok && c.fresh(e) {
		if c.metrics.OnHit != nil {
			c.metrics.OnHit(key)
		}
		return e.Value, true
	}
	var zero V
	return zero, false
}

// Get returns the fresh cached value for key, or runs loader once per key
// across concurrent callers and stores what it returns.
func (c *Cache[V]) Get(ctx context.Context, key string, loader Loader[V]) (V, bool, error) {
	if val, ok := c.Lookup(key); ok {
		return val, true, nil
	}
	if c.metrics.OnMiss != nil {
		c.metrics.OnMiss(key)
	}
	res, _, _ := c.sf.Do(key, func() (interface{}, error) {
		val, store, err := loader(ctx, key)
		if store {
			c.Set(key, val)
		}
		return loadResult[V]{val: val, err: err}, nil
	})
	out := res.(loadResult[V])
	return out.val, false, out.err
}

// Set stores val under key, replacing any previous entry (last write wins).
func (c *Cache[V]) Set(key string, val V) {
	e := &Entry[V]{Key: key, Value: val, Timestamp: c.now()}
	c.mu.Lock()
	if _, exists := c.items[key]; !exists {
		c.order = append(c.order, key)
	}
	c.items[key] = e
	c.evictIfNeeded()
	c.mu.Unlock()
	if c.metrics.OnStore != nil {
		c.metrics.OnStore(key)
	}
}

// Snapshot returns a copy of current entries, expired ones included.
func (c *Cache[V]) Snapshot() []Entry[V] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry[V], 0, len(c.items))
	for _, key := range c.order {
		if e, ok := c.items[key]; ok {
			out = append(out, *e)
		}
	}
	return out
}

func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache[V]) fresh(e *Entry[V]) bool {
	if c.opts.TTL <= 0 {
		return false
	}
	return c.now().Sub(e.Timestamp) < c.opts.TTL
}

func (c *Cache[V]) evictIfNeeded() {
	if c.opts.MaxEntries <= 0 || len(c.items) <= c.opts.MaxEntries {
		return
	}
	excess := len(c.items) - c.opts.MaxEntries
	for excess > 0 && len(c.order) > 0 {
		victim := c.order[0]
		c.order = c.order[1:]
		delete(c.items, victim)
		excess--
	}
}
