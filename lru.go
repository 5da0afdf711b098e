// SPDX-License-Identifier: Apache-2.0

package dynarray

import (
	"sync"
)

// LRU is a small, capacity-bounded cache that constructs values on miss, so
// lookup is a single call for the caller. A global mutex guards all
// operations; every operation is O(1), so the lock is never held long.
// When the cache is full, inserting a new value evicts the least recently
// used one.
type LRU[K comparable, V any] struct {
	mu        sync.Mutex
	construct func(K) (*V, error)
	entries   map[K]*lruEntry[K, V]
	head      *lruEntry[K, V] // most recently used
	tail      *lruEntry[K, V] // least recently used
	capacity  int
}

type lruEntry[K comparable, V any] struct {
	key        K
	val        *V
	prev, next *lruEntry[K, V]
}

// NewLRU creates a cache holding at most capacity values. construct builds
// the value for a key on miss; it may be nil when only GetFunc is used.
// A non-positive capacity panics, there is nothing sensible to cache into.
func NewLRU[K comparable, V any](capacity int, construct func(K) (*V, error)) *LRU[K, V] {
	if capacity <= 0 {
		panic("dynarray: LRU capacity must be positive")
	}
	return &LRU[K, V]{
		construct: construct,
		entries:   make(map[K]*lruEntry[K, V], capacity),
		capacity:  capacity,
	}
}

// Get returns the cached value for key, constructing and caching it through
// the cache's constructor on miss. A hit marks the entry most recently used.
// Construction failures propagate and leave the cache unchanged, so a later
// Get retries.
func (c *LRU[K, V]) Get(key K) (*V, error) {
	return c.GetFunc(key, func() (*V, error) { return c.construct(key) })
}

// GetFunc is Get with a per-call constructor, for values whose construction
// needs more than the key.
func (c *LRU[K, V]) GetFunc(key K, construct func() (*V, error)) (*V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.toFront(e)
		return e.val, nil
	}

	v, err := construct()
	if err != nil {
		return nil, err
	}
	if len(c.entries) == c.capacity {
		c.evict()
	}
	e := &lruEntry[K, V]{key: key, val: v}
	c.entries[key] = e
	c.pushFront(e)
	return v, nil
}

// Len returns the number of cached values.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evict drops the least recently used entry.
func (c *LRU[K, V]) evict() {
	e := c.tail
	delete(c.entries, e.key)
	c.unlink(e)
}

func (c *LRU[K, V]) toFront(e *lruEntry[K, V]) {
	if c.head == e {
		return
	}
	c.unlink(e)
	c.pushFront(e)
}

func (c *LRU[K, V]) pushFront(e *lruEntry[K, V]) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *LRU[K, V]) unlink(e *lruEntry[K, V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev, e.next = nil, nil
}
