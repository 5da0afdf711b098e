// SPDX-License-Identifier: Apache-2.0

//go:build unix

package dynarray

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// MmapAllocator serves blocks from anonymous memory mappings. Every block
// starts on a page boundary, so any alignment up to the page size is
// satisfied for free, and Deallocate genuinely returns the pages to the
// kernel. Useful for large arrays that should not churn the Go heap.
type MmapAllocator struct {
	mtx      sync.Mutex
	mappings map[unsafe.Pointer][]byte
}

// NewMmapAllocator returns an allocator backed by anonymous mappings.
func NewMmapAllocator() *MmapAllocator {
	return &MmapAllocator{mappings: make(map[unsafe.Pointer][]byte)}
}

// Allocate satisfies the Allocator interface. Alignments beyond the page
// size cannot be honored and fail with ErrAllocation.
func (a *MmapAllocator) Allocate(size, alignment uintptr) (unsafe.Pointer, error) {
	if size == 0 {
		return nil, nil
	}
	pageSize := uintptr(unix.Getpagesize())
	if !isPowerOfTwo(alignment) {
		return nil, errInvalidAlignment(alignment)
	}
	if alignment > pageSize {
		return nil, fmt.Errorf("%w: alignment %d exceeds the page size %d", ErrAllocation, alignment, pageSize)
	}
	if size > maxAllocSize-pageSize {
		return nil, errSizeOverflow(size)
	}
	length := (size + pageSize - 1) &^ (pageSize - 1)

	buf, err := unix.Mmap(-1, 0, int(length), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap of %d bytes: %v", ErrAllocation, length, err)
	}
	p := unsafe.Pointer(unsafe.SliceData(buf))

	a.mtx.Lock()
	a.mappings[p] = buf
	a.mtx.Unlock()
	return p, nil
}

// Deallocate satisfies the Allocator interface and unmaps the block. Munmap
// failures on a mapping this allocator created would mean corrupted
// bookkeeping, so they panic rather than leak silently.
func (a *MmapAllocator) Deallocate(p unsafe.Pointer, size uintptr) {
	if p == nil {
		return
	}
	a.mtx.Lock()
	buf, ok := a.mappings[p]
	delete(a.mappings, p)
	a.mtx.Unlock()
	if !ok {
		return
	}
	if err := unix.Munmap(buf); err != nil {
		panic(fmt.Sprintf("dynarray: munmap: %v", err))
	}
}

// Equal satisfies the Allocator interface. Mappings are tracked per
// instance, so only the same instance is interchangeable.
func (a *MmapAllocator) Equal(other Allocator) bool {
	o, ok := other.(*MmapAllocator)
	return ok && o == a
}
