// SPDX-License-Identifier: Apache-2.0

package dynarray

import (
	"sync"
	"unsafe"
)

type concurrentAllocator struct {
	mtx sync.Mutex
	a   Allocator
}

// NewConcurrentAllocator wraps an allocator so it can be shared by multiple
// goroutines. The arrays built on top of it remain single-owner; only the
// allocation and deallocation calls are serialized.
func NewConcurrentAllocator(a Allocator) Allocator {
	return &concurrentAllocator{a: a}
}

// Allocate satisfies the Allocator interface.
func (c *concurrentAllocator) Allocate(size, alignment uintptr) (unsafe.Pointer, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.a.Allocate(size, alignment)
}

// Deallocate satisfies the Allocator interface.
func (c *concurrentAllocator) Deallocate(p unsafe.Pointer, size uintptr) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.a.Deallocate(p, size)
}

// Equal satisfies the Allocator interface. The wrapper is only
// interchangeable with itself; serialization is part of its identity.
func (c *concurrentAllocator) Equal(other Allocator) bool {
	return other == Allocator(c)
}
