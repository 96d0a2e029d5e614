package memory

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kdramahub/kdramahub/internal/cache"
)

// entry is one memoized response. It is valid iff now - timestamp < ttl.
type entry struct {
	data      json.RawMessage
	timestamp time.Time
	ttl       time.Duration
}

// Cache implements cache.ResponseCache with an in-memory TTL map and
// single-flight request coalescing. Single-flight semantics hold within
// one process only; separate instances do not coordinate.
type Cache struct {
	fetcher cache.Fetcher
	now     func() time.Time
	metrics cache.Metrics

	mu       sync.Mutex
	entries  map[string]*entry
	inflight map[string]struct{}
	// gen is bumped by Clear so that flights started before the clear
	// cannot repopulate the emptied cache when they settle.
	gen uint64

	sf singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithMetrics attaches a metrics sink.
func WithMetrics(m cache.Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// New creates an in-memory response cache in front of fetcher.
func New(fetcher cache.Fetcher, opts ...Option) *Cache {
	c := &Cache{
		fetcher:  fetcher,
		now:      time.Now,
		metrics:  cache.NoopMetrics{},
		entries:  make(map[string]*entry),
		inflight: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached response for path, joining or starting a fetch
// when no valid entry exists. The executing caller's ttl and context
// govern the shared flight.
func (c *Cache) Get(ctx context.Context, path string, ttl time.Duration) (json.RawMessage, error) {
	c.mu.Lock()
	if ent, ok := c.entries[path]; ok {
		if c.now().Sub(ent.timestamp) < ent.ttl {
			data := ent.data
			c.mu.Unlock()
			c.metrics.Hit()
			return data, nil
		}
		// Expired entries are never returned, only dropped.
		delete(c.entries, path)
		c.metrics.Expire()
	}
	gen := c.gen
	_, joining := c.inflight[path]
	c.inflight[path] = struct{}{}
	c.mu.Unlock()

	if joining {
		c.metrics.SharedFlight()
	} else {
		c.metrics.Miss()
	}

	v, err, _ := c.sf.Do(path, func() (interface{}, error) {
		data, fetchErr := c.fetcher.Fetch(ctx, path)

		c.mu.Lock()
		delete(c.inflight, path)
		if fetchErr == nil && ttl > 0 && gen == c.gen {
			c.entries[path] = &entry{
				data:      data,
				timestamp: c.now(),
				ttl:       ttl,
			}
		}
		c.mu.Unlock()

		if fetchErr != nil {
			return nil, fetchErr
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(json.RawMessage), nil
}

// Clear empties the cache and forgets every pending flight. In-flight
// fetches are not cancelled; their settlement will not populate the
// cleared cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
	c.gen++
	for path := range c.inflight {
		c.sf.Forget(path)
	}
	c.inflight = make(map[string]struct{})
}

// ClearByPattern removes entries whose path contains substring. Pending
// flights are untouched and may repopulate their keys when they settle.
func (c *Cache) ClearByPattern(substring string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for path := range c.entries {
		if strings.Contains(path, substring) {
			delete(c.entries, path)
		}
	}
}

// Len returns the number of entries currently held, valid or expired.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

var _ cache.ResponseCache = (*Cache)(nil)
