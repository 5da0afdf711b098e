// SPDX-License-Identifier: Apache-2.0

package dynarray

import (
	"unsafe"
)

// Allocator is a capability object that hands out and reclaims raw element
// blocks. It is byte-oriented on purpose: a single instance serves any element
// type, which is what lets a DynArray of one type and a DynArray of another
// share the same allocator without conversion.
//
// Memory returned by Allocate is zeroed. Blocks obtained from any allocator
// other than GoAllocator are invisible to the garbage collector's pointer
// maps, so element types containing Go pointers (strings, slices, maps,
// pointers) must only be stored in blocks from the default allocator.
type Allocator interface {
	// Allocate returns zeroed storage of the given size whose address is a
	// multiple of alignment. It fails with an error wrapping ErrAllocation
	// when the request cannot be satisfied.
	Allocate(size, alignment uintptr) (unsafe.Pointer, error)

	// Deallocate releases a block previously returned by Allocate with the
	// same size. Passing any other pointer/size pair is undefined. Allocators
	// whose memory is reclaimed elsewhere (GC, arena reset) treat this as a
	// no-op.
	Deallocate(p unsafe.Pointer, size uintptr)

	// Equal reports whether the two allocators are interchangeable: a block
	// allocated by one may be deallocated by the other.
	Equal(other Allocator) bool
}

// GoAllocator is the default allocator. Its storage is ordinary GC-owned
// heap memory, so Deallocate is a no-op and a block lives for as long as a
// pointer into it does.
type GoAllocator struct{}

// NewGoAllocator returns the default garbage-collected allocator.
func NewGoAllocator() *GoAllocator { return &GoAllocator{} }

// Allocate satisfies the Allocator interface.
func (a *GoAllocator) Allocate(size, alignment uintptr) (unsafe.Pointer, error) {
	return heapAlloc(size, alignment)
}

// Deallocate satisfies the Allocator interface. The garbage collector owns
// the block, so nothing happens here.
func (a *GoAllocator) Deallocate(p unsafe.Pointer, size uintptr) {}

// Equal satisfies the Allocator interface. All GoAllocator instances are
// interchangeable.
func (a *GoAllocator) Equal(other Allocator) bool {
	_, ok := other.(*GoAllocator)
	return ok
}

// defaultAllocator is shared by every DynArray constructed without an
// explicit allocator. DynArray recognizes it and uses typed allocation so
// pointer-bearing element types stay visible to the garbage collector.
var defaultAllocator = NewGoAllocator()

// tinyBlockSize is the runtime's tiny-allocator threshold: pointer-free
// allocations below it are packed together and get no alignment guarantee
// beyond their own size parity.
const tinyBlockSize = 16

// heapAlloc obtains a zeroed block from the Go heap. The plain-make path is
// only taken when the runtime's own placement guarantees the requested
// alignment: blocks of at least tinyBlockSize, whose size the size-class
// rounding keeps a multiple of the alignment, up to maxNativeAlign. Every
// other request over-allocates and shifts the returned pointer to the next
// boundary. The interior pointer keeps the backing array live.
func heapAlloc(size, alignment uintptr) (unsafe.Pointer, error) {
	if size == 0 {
		return nil, nil
	}
	if !isPowerOfTwo(alignment) {
		return nil, errInvalidAlignment(alignment)
	}
	if alignment <= maxNativeAlign && size >= tinyBlockSize && size%alignment == 0 {
		buf := make([]byte, size)
		return unsafe.Pointer(unsafe.SliceData(buf)), nil
	}
	if size > maxAllocSize-alignment {
		return nil, errSizeOverflow(size)
	}
	buf := make([]byte, size+alignment)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	shift := (alignment - base%alignment) % alignment
	return unsafe.Add(unsafe.Pointer(unsafe.SliceData(buf)), shift), nil
}

// Allocate obtains a zeroed *T from the given allocator. A nil allocator
// falls back to Go's built-in new.
func Allocate[T any](a Allocator) (*T, error) {
	if a == nil {
		return new(T), nil
	}
	var x T
	ptr, err := a.Allocate(unsafe.Sizeof(x), unsafe.Alignof(x))
	if err != nil {
		return nil, err
	}
	if ptr == nil {
		return new(T), nil
	}
	return (*T)(ptr), nil
}
