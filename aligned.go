// SPDX-License-Identifier: Apache-2.0

package dynarray

import (
	"fmt"
	"math"
	"unsafe"
)

// maxNativeAlign is the strongest alignment the Go heap guarantees for a
// plain allocation. Anything above it needs the over-allocate-and-shift path.
const maxNativeAlign = unsafe.Alignof(complex128(0))

// maxAllocSize caps a single block request.
const maxAllocSize = uintptr(math.MaxInt)

// AlignedAllocator hands out blocks whose address is a multiple of a fixed,
// caller-chosen alignment. Identity is the alignment constant alone: two
// instances with the same alignment are interchangeable no matter what
// element types they have served. It holds no other state and its blocks are
// GC-owned, so Deallocate is a no-op.
type AlignedAllocator struct {
	alignment uintptr
}

// NewAlignedAllocator returns an allocator guaranteeing the given byte
// alignment, which must be a power of two. It panics otherwise; a bad
// alignment is a construction bug, not a runtime condition.
func NewAlignedAllocator(alignment uintptr) *AlignedAllocator {
	if !isPowerOfTwo(alignment) {
		panic(fmt.Sprintf("dynarray: alignment %d is not a power of two", alignment))
	}
	return &AlignedAllocator{alignment: alignment}
}

// Alignment returns the alignment constant this allocator guarantees.
func (a *AlignedAllocator) Alignment() uintptr { return a.alignment }

// Allocate satisfies the Allocator interface. The stronger of the
// allocator's own alignment and the caller's requested alignment wins.
func (a *AlignedAllocator) Allocate(size, alignment uintptr) (unsafe.Pointer, error) {
	if a.alignment > alignment {
		alignment = a.alignment
	}
	return heapAlloc(size, alignment)
}

// Deallocate satisfies the Allocator interface.
func (a *AlignedAllocator) Deallocate(p unsafe.Pointer, size uintptr) {}

// Equal satisfies the Allocator interface. Equality is defined by the
// alignment constant only.
func (a *AlignedAllocator) Equal(other Allocator) bool {
	o, ok := other.(*AlignedAllocator)
	return ok && o.alignment == a.alignment
}

func isPowerOfTwo(n uintptr) bool {
	return n != 0 && n&(n-1) == 0
}

func errInvalidAlignment(alignment uintptr) error {
	return fmt.Errorf("%w: alignment %d is not a power of two", ErrAllocation, alignment)
}

func errSizeOverflow(size uintptr) error {
	return fmt.Errorf("%w: size %d exceeds the representable maximum", ErrAllocation, size)
}
