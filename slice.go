// SPDX-License-Identifier: Apache-2.0

package dynarray

import (
	"unsafe"
)

const growThreshold = 256

// AllocateSlice creates a []T with the given length and capacity, drawing
// the backing block from a. A nil allocator, a zero-size element type or an
// allocation failure fall back to the built-in make, so the returned slice
// is always usable. The pointer-bearing element caveat of the Allocator docs
// applies.
func AllocateSlice[T any](a Allocator, len, cap int) []T {
	if a != nil && cap > 0 {
		var x T
		if size := unsafe.Sizeof(x); size > 0 && uintptr(cap) <= maxAllocSize/size {
			if p, err := a.Allocate(uintptr(cap)*size, unsafe.Alignof(x)); err == nil && p != nil {
				return unsafe.Slice((*T)(p), cap)[:len]
			}
		}
	}
	return make([]T, len, cap)
}

// SliceAppend appends data to s, growing the slice through a when the
// capacity runs out. Replaced blocks are not individually deallocated - the
// incoming slice's provenance is unknown here (it may be a caller slice or a
// make fallback), and Deallocate is only defined for blocks the allocator
// handed out. Region and GC allocators reclaim them through their own
// lifecycle; allocators that free eagerly, like MmapAllocator, should size
// the slice up front with AllocateSlice instead of growing through here.
func SliceAppend[T any](a Allocator, s []T, data ...T) []T {
	if a == nil {
		return append(s, data...)
	}
	return append(growSlice(a, s, len(data)), data...)
}

func growSlice[T any](a Allocator, s []T, extra int) []T {
	need := len(s) + extra
	newCap := cap(s)
	if newCap == 0 {
		newCap = extra
	}
	for need > newCap {
		if newCap < growThreshold {
			newCap *= 2
		} else {
			newCap += newCap / 4
		}
	}
	if newCap == cap(s) {
		return s
	}
	grown := AllocateSlice[T](a, len(s), newCap)
	copy(grown, s)
	return grown
}
