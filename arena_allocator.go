// SPDX-License-Identifier: Apache-2.0

package dynarray

import (
	"fmt"
	"unsafe"
)

// ArenaAllocator adapts an Arena to the Allocator contract so a DynArray can
// live inside a region. Per-block Deallocate is a no-op; the memory comes
// back when the arena itself is Reset or Released, at which point every array
// allocated from it is invalid.
type ArenaAllocator struct {
	arena Arena
}

// NewArenaAllocator returns an Allocator drawing from the given arena.
func NewArenaAllocator(arena Arena) *ArenaAllocator {
	return &ArenaAllocator{arena: arena}
}

// Arena returns the underlying region.
func (a *ArenaAllocator) Arena() Arena { return a.arena }

// Allocate satisfies the Allocator interface.
func (a *ArenaAllocator) Allocate(size, alignment uintptr) (unsafe.Pointer, error) {
	if size == 0 {
		return nil, nil
	}
	p := a.arena.Alloc(size, alignment)
	if p == nil {
		return nil, fmt.Errorf("%w: arena cannot satisfy %d bytes aligned to %d", ErrAllocation, size, alignment)
	}
	return p, nil
}

// Deallocate satisfies the Allocator interface. Individual arena blocks
// cannot be freed.
func (a *ArenaAllocator) Deallocate(p unsafe.Pointer, size uintptr) {}

// Equal satisfies the Allocator interface: two arena allocators are
// interchangeable only when they draw from the same arena.
func (a *ArenaAllocator) Equal(other Allocator) bool {
	o, ok := other.(*ArenaAllocator)
	return ok && o.arena == a.arena
}
