// SPDX-License-Identifier: Apache-2.0

package dynarray

import (
	"sync"
	"weak"
)

// Pool hands out arena-backed allocators for burst workloads: acquire one,
// build the arrays for a request, release it, and the whole region is
// recycled in one Reset. Pooled entries are held through weak pointers, so
// under memory pressure the garbage collector can claim idle arenas and the
// pool shrinks on its own.
//
// The key passed to Acquire identifies a use case; the pool tracks the peak
// arena usage per key over a sliding window and sizes fresh arenas to match.
type Pool struct {
	mu    sync.Mutex
	idle  []weak.Pointer[PoolItem]
	sizes map[uint64]*poolSizeEstimate
}

// PoolItem is a pooled arena allocator together with the key it was acquired
// under.
type PoolItem struct {
	Allocator *ArenaAllocator
	Key       uint64
}

// poolSizeEstimate averages the peak usage of the last poolSizeWindow
// releases for one key.
type poolSizeEstimate struct {
	count      int
	totalBytes int
}

const (
	poolSizeWindow  = 50
	poolDefaultSize = 1024 * 1024
)

// NewPool creates an empty Pool.
func NewPool() *Pool {
	return &Pool{sizes: make(map[uint64]*poolSizeEstimate)}
}

// Acquire returns an idle item or creates one sized for the given key.
func (p *Pool) Acquire(key uint64) *PoolItem {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.idle) > 0 {
		last := len(p.idle) - 1
		wp := p.idle[last]
		p.idle = p.idle[:last]
		if item := wp.Value(); item != nil {
			item.Key = key
			return item
		}
		// Collected by the GC, try the next one.
	}

	arena := NewMonotonicArena(WithMinBufferSize(p.arenaSize(key)))
	return &PoolItem{
		Allocator: NewArenaAllocator(arena),
		Key:       key,
	}
}

// Release resets the item's arena, records its peak usage for future sizing
// and returns it to the pool. Every pointer obtained through the item's
// allocator becomes invalid.
func (p *Pool) Release(item *PoolItem) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.releaseLocked(item)
}

// ReleaseMany releases a batch of items under a single lock acquisition.
func (p *Pool) ReleaseMany(items []*PoolItem) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, item := range items {
		p.releaseLocked(item)
	}
}

func (p *Pool) releaseLocked(item *PoolItem) {
	arena := item.Allocator.Arena()
	peak := arena.Peak()
	arena.Reset()

	est, ok := p.sizes[item.Key]
	if !ok {
		est = &poolSizeEstimate{}
		p.sizes[item.Key] = est
	}
	if est.count == poolSizeWindow {
		est.count = 1
		est.totalBytes /= poolSizeWindow
	}
	est.count++
	est.totalBytes += peak

	item.Key = 0
	p.idle = append(p.idle, weak.Make(item))
}

func (p *Pool) arenaSize(key uint64) int {
	if est, ok := p.sizes[key]; ok && est.count > 0 {
		return est.totalBytes / est.count
	}
	return poolDefaultSize
}
