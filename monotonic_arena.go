// SPDX-License-Identifier: Apache-2.0

package dynarray

import (
	"unsafe"
)

const defaultArenaBufferSize = 32 * 1024

// MonotonicArenaOption configures a monotonic arena.
type MonotonicArenaOption func(*monotonicArena)

// WithMinBufferSize sets the minimum size of each buffer the arena creates.
func WithMinBufferSize(size int) MonotonicArenaOption {
	return func(a *monotonicArena) {
		a.minBufferSize = uintptr(size)
	}
}

// WithInitialBufferCount sets how many buffers the arena starts with.
func WithInitialBufferCount(count int) MonotonicArenaOption {
	return func(a *monotonicArena) {
		a.initialBufferCount = count
	}
}

// NewMonotonicArena creates a bump-pointer arena that grows by appending
// buffers and never reuses space until Reset. Defaults: one buffer of 32KB.
func NewMonotonicArena(opts ...MonotonicArenaOption) Arena {
	a := &monotonicArena{
		minBufferSize:      defaultArenaBufferSize,
		initialBufferCount: 1,
	}
	for _, opt := range opts {
		opt(a)
	}
	for range a.initialBufferCount {
		a.buffers = append(a.buffers, &arenaBuffer{size: a.minBufferSize})
	}
	return a
}

type monotonicArena struct {
	buffers            []*arenaBuffer
	peak               uintptr
	minBufferSize      uintptr
	initialBufferCount int
}

type arenaBuffer struct {
	base   unsafe.Pointer
	offset uintptr
	size   uintptr
}

func (b *arenaBuffer) alloc(size, alignment uintptr) (unsafe.Pointer, bool) {
	if b.base == nil {
		// The backing slice is created lazily so unused buffers cost nothing.
		buf := make([]byte, b.size)
		b.base = unsafe.Pointer(unsafe.SliceData(buf))
	}
	pos := uintptr(b.base) + b.offset
	padding := (alignment - pos%alignment) % alignment
	if b.size-b.offset < size+padding {
		return nil, false
	}
	p := unsafe.Add(b.base, b.offset+padding)
	b.offset += size + padding

	// Reused space must come back zeroed; this loop compiles down to an
	// optimized memclr.
	cleared := unsafe.Slice((*byte)(p), size)
	for i := range cleared {
		cleared[i] = 0
	}
	return p, true
}

// Alloc satisfies the Arena interface. When no existing buffer fits, a new
// buffer large enough for the request is appended, so Alloc only returns nil
// on an invalid alignment.
func (a *monotonicArena) Alloc(size, alignment uintptr) unsafe.Pointer {
	if !isPowerOfTwo(alignment) {
		return nil
	}
	for _, b := range a.buffers {
		if p, ok := b.alloc(size, alignment); ok {
			a.trackPeak()
			return p
		}
	}

	grown := max(size+alignment, a.minBufferSize)
	b := &arenaBuffer{size: grown}
	a.buffers = append(a.buffers, b)
	p, ok := b.alloc(size, alignment)
	if !ok {
		panic("dynarray: freshly grown arena buffer cannot fit its own request")
	}
	a.trackPeak()
	return p
}

// Reset satisfies the Arena interface.
func (a *monotonicArena) Reset() {
	for _, b := range a.buffers {
		b.offset = 0
	}
}

// Release satisfies the Arena interface.
func (a *monotonicArena) Release() {
	for _, b := range a.buffers {
		b.offset = 0
		b.base = nil
	}
}

// Len satisfies the Arena interface.
func (a *monotonicArena) Len() int {
	return int(a.allocated())
}

// Cap satisfies the Arena interface.
func (a *monotonicArena) Cap() int {
	var total uintptr
	for _, b := range a.buffers {
		total += b.size
	}
	return int(total)
}

// Peak satisfies the Arena interface.
func (a *monotonicArena) Peak() int {
	return int(a.peak)
}

func (a *monotonicArena) allocated() uintptr {
	var total uintptr
	for _, b := range a.buffers {
		total += b.offset
	}
	return total
}

func (a *monotonicArena) trackPeak() {
	if n := a.allocated(); n > a.peak {
		a.peak = n
	}
}
