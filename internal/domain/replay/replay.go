// Package replay remembers replies already produced for a turn so that a
// redelivered webhook call is answered identically without touching the store.
package replay

import (
	"context"
	"sync"
	"sync/atomic"
)

// Cache maps a turn identifier to the reply produced for it.
type Cache[V any] interface {
	// Lookup returns the reply recorded for id, if any.
	Lookup(ctx context.Context, id string) (V, bool)

	// Record stores the reply for id unless one is already present.
	// Returns false if id was already recorded.
	Record(ctx context.Context, id string, v V) bool

	Size() int64
}

// node is one recorded reply; the list runs from oldest to newest.
type node[V any] struct {
	id    string
	value V
	next  *node[V]
}

// memoryCache keeps entries in a linked list with oldest-first eviction.
// For bounded mode (maxSize > 0) the oldest entry is dropped on overflow.
// For unbounded mode (maxSize <= 0) nothing is ever evicted.
type memoryCache[V any] struct {
	mu      sync.Mutex
	entries map[string]*node[V]
	oldest  *node[V]
	newest  *node[V]
	maxSize int
	size    atomic.Int64
	onEvict func(id string)
}

// New returns an in-memory Cache.
func New[V any](opts ...Option) Cache[V] {
	s := settings{maxSize: 10_000}
	for _, opt := range opts {
		opt(&s)
	}
	return &memoryCache[V]{
		entries: make(map[string]*node[V]),
		maxSize: s.maxSize,
		onEvict: s.onEvict,
	}
}

func (c *memoryCache[V]) Lookup(_ context.Context, id string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.entries[id]
	if !ok {
		var zero V
		return zero, false
	}
	return n.value, true
}

func (c *memoryCache[V]) Record(_ context.Context, id string, v V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[id]; exists {
		return false
	}
	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	n := &node[V]{id: id, value: v}
	if c.newest == nil {
		c.oldest = n
	} else {
		c.newest.next = n
	}
	c.newest = n
	c.entries[id] = n
	c.size.Add(1)
	return true
}

// evictOldest drops the head of the list. Must be called with c.mu held.
func (c *memoryCache[V]) evictOldest() {
	n := c.oldest
	if n == nil {
		return
	}
	c.oldest = n.next
	if c.oldest == nil {
		c.newest = nil
	}
	delete(c.entries, n.id)
	c.size.Add(-1)
	if c.onEvict != nil {
		c.onEvict(n.id)
	}
}

func (c *memoryCache[V]) Size() int64 {
	return c.size.Load()
}
