// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package dynarray

import (
	"os"
	"unsafe"
)

// MmapAllocator falls back to page-aligned, GC-owned heap blocks on
// platforms without anonymous mappings. The alignment guarantee holds; the
// eager-unmap behavior of the unix implementation does not.
//
// The page size field is carried per instance so distinct allocators have
// distinct addresses; a zero-size struct would let the runtime fold them
// together and break instance-identity equality.
type MmapAllocator struct {
	pageSize uintptr
}

// NewMmapAllocator returns a page-alignment-preserving fallback allocator.
func NewMmapAllocator() *MmapAllocator {
	return &MmapAllocator{pageSize: uintptr(os.Getpagesize())}
}

// Allocate satisfies the Allocator interface.
func (a *MmapAllocator) Allocate(size, alignment uintptr) (unsafe.Pointer, error) {
	if alignment < a.pageSize {
		alignment = a.pageSize
	}
	return heapAlloc(size, alignment)
}

// Deallocate satisfies the Allocator interface.
func (a *MmapAllocator) Deallocate(p unsafe.Pointer, size uintptr) {}

// Equal satisfies the Allocator interface.
func (a *MmapAllocator) Equal(other Allocator) bool {
	o, ok := other.(*MmapAllocator)
	return ok && o == a
}
