// Package memory implements the in-process result cache: LRU recency with
// lazy TTL expiry, keyed by the normalized query string.
package memory

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/hsnnrn/hasandocai-sub002/internal/domain/result"
)

// Default cache sizing.
const (
	DefaultCapacity = 100
	DefaultTTL      = 5 * time.Minute
)

type entry struct {
	key       string
	timestamp time.Time
	ttl       time.Duration
	results   []result.Result
}

// Cache is a mutex-guarded LRU+TTL map. The engine calls Invalidate on every
// document mutation; the cache cannot detect staleness on its own.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	order    *list.List // front = LRU, back = MRU
	entries  map[string]*list.Element
	now      func() time.Time
}

// New creates a cache. Non-positive capacity or TTL fall back to defaults.
func New(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		capacity: capacity,
		ttl:      ttl,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
		now:      time.Now,
	}
}

// Get returns the cached results for a normalized query. An expired entry is
// removed lazily and reported as a miss; a hit refreshes the entry's
// recency. The returned slice is a copy.
func (c *Cache) Get(_ context.Context, key string) ([]result.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	e := el.Value.(*entry)
	if c.now().Sub(e.timestamp) > e.ttl {
		c.removeLocked(el)
		return nil, false
	}
	c.order.MoveToBack(el)
	return append([]result.Result(nil), e.results...), true
}

// Set stores a snapshot of the results under the key with the default TTL.
func (c *Cache) Set(ctx context.Context, key string, results []result.Result) {
	c.SetWithTTL(ctx, key, results, c.ttl)
}

// SetWithTTL stores a snapshot with an explicit TTL. When the cache is at
// capacity and the key is new, the least recently used entry is evicted.
func (c *Cache) SetWithTTL(_ context.Context, key string, results []result.Result, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := append([]result.Result(nil), results...)

	if el, ok := c.entries[key]; ok {
		e := el.Value.(*entry)
		e.timestamp = c.now()
		e.ttl = ttl
		e.results = snapshot
		c.order.MoveToBack(el)
		return
	}

	if c.order.Len() >= c.capacity {
		if oldest := c.order.Front(); oldest != nil {
			c.removeLocked(oldest)
		}
	}

	el := c.order.PushBack(&entry{
		key:       key,
		timestamp: c.now(),
		ttl:       ttl,
		results:   snapshot,
	})
	c.entries[key] = el
}

// Invalidate drops every entry. Called whenever the document set mutates.
func (c *Cache) Invalidate(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = make(map[string]*list.Element, c.capacity)
}

// Len returns the number of live entries (expired entries included until
// their lazy removal).
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache) removeLocked(el *list.Element) {
	e := el.Value.(*entry)
	c.order.Remove(el)
	delete(c.entries, e.key)
}
