// SPDX-License-Identifier: Apache-2.0

package dynarray

import (
	"unsafe"
)

// Arena is a region allocator: individual blocks cannot be freed, the whole
// region is reclaimed at once. Wrap one in an ArenaAllocator to use it as the
// backing store of a DynArray.
type Arena interface {
	// Alloc returns zeroed memory of the given size and alignment, or nil
	// when the arena cannot satisfy the request.
	Alloc(size, alignment uintptr) unsafe.Pointer

	// Reset invalidates every pointer previously returned by Alloc while
	// keeping the underlying memory for reuse.
	Reset()

	// Release returns the arena's memory to the system. The arena must not
	// be used afterwards.
	Release()

	// Len returns the number of bytes currently allocated.
	Len() int

	// Cap returns the total number of bytes the arena can hold.
	Cap() int

	// Peak returns the high-water mark of allocated bytes. Unlike Len it
	// survives Reset, which makes it usable for sizing future arenas.
	Peak() int
}
