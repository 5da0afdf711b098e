// SPDX-License-Identifier: Apache-2.0

package dynarray

import (
	"fmt"
	"iter"
	"slices"
	"unsafe"
)

// DynArray is an array whose element count is fixed at construction time
// instead of compile time, and stays constant afterwards (unlike a slice
// grown through append). The trade is deliberate: exactly one allocation at
// construction, exactly one deallocation at Release, no amortized growth in
// between. Reset is the only way to change the length, and it rebuilds the
// array from scratch.
//
// Every array owns exactly one block, obtained from its Allocator. An array
// that has been moved from or Released is in the empty state: nil block,
// zero length, safe to Release again. Element accessors on the empty state
// fail with ErrUninitialized rather than ErrOutOfRange. The zero value of
// DynArray is an empty-state array on the default allocator; Reset gives it
// contents.
//
// Instances are single-owner: concurrent readers are fine, any mutation must
// be serialized externally. Element types containing Go pointers require the
// default allocator; see the Allocator docs.
type DynArray[T any] struct {
	alloc   Allocator
	items   []T
	release func(*T)
}

// Option configures a DynArray at construction time.
type Option[T any] func(*DynArray[T])

// WithAllocator makes the array obtain and return its block through a. The
// default is the shared GoAllocator.
func WithAllocator[T any](a Allocator) Option[T] {
	return func(d *DynArray[T]) {
		d.alloc = a
	}
}

// WithRelease registers a hook invoked on each element, in index order, when
// the element is discarded (Release, Reset, CopyFrom, mid-construction
// rollback). This is the destruction half of element lifecycle tracking; the
// construction half is the NewFunc constructor.
func WithRelease[T any](fn func(*T)) Option[T] {
	return func(d *DynArray[T]) {
		d.release = fn
	}
}

// New creates an array of n zero-valued elements.
func New[T any](n int, opts ...Option[T]) (*DynArray[T], error) {
	d := newArray(opts)
	items, err := allocateBlock[T](d.alloc, n)
	if err != nil {
		return nil, err
	}
	d.items = items
	return d, nil
}

// NewFunc creates an array of n elements, each produced by an independent
// call to fn with its index. When fn fails or panics partway through, every
// element constructed so far is released, the block is deallocated, and the
// original failure propagates - a partially built array is never observable.
func NewFunc[T any](n int, fn func(i int) (T, error), opts ...Option[T]) (*DynArray[T], error) {
	d := newArray(opts)
	items, err := allocateBlock[T](d.alloc, n)
	if err != nil {
		return nil, err
	}
	d.items = items

	constructed := 0
	defer func() {
		if r := recover(); r != nil {
			d.destroy(constructed)
			d.deallocate()
			panic(r)
		}
	}()
	for i := range d.items {
		v, err := fn(i)
		if err != nil {
			d.destroy(constructed)
			d.deallocate()
			return nil, fmt.Errorf("dynarray: constructing element %d: %w", i, err)
		}
		d.items[i] = v
		constructed++
	}
	return d, nil
}

// NewFill creates an array of n copies of v.
func NewFill[T any](n int, v T, opts ...Option[T]) (*DynArray[T], error) {
	d, err := New(n, opts...)
	if err != nil {
		return nil, err
	}
	d.Fill(v)
	return d, nil
}

// FromSlice creates an array of len(s) elements copied from s in order.
func FromSlice[T any](s []T, opts ...Option[T]) (*DynArray[T], error) {
	d := newArray(opts)
	items, err := allocateBlock[T](d.alloc, len(s))
	if err != nil {
		return nil, err
	}
	copy(items, s)
	d.items = items
	return d, nil
}

// FromSeq creates an array holding the values of seq in yield order.
func FromSeq[T any](seq iter.Seq[T], opts ...Option[T]) (*DynArray[T], error) {
	return FromSlice(slices.Collect(seq), opts...)
}

// Len returns the element count.
func (d *DynArray[T]) Len() int { return len(d.items) }

// Empty reports whether the array holds no elements.
func (d *DynArray[T]) Empty() bool { return len(d.items) == 0 }

// Allocator returns the allocator owning the array's block.
func (d *DynArray[T]) Allocator() Allocator { return d.alloc }

// Data returns the raw block pointer, nil in the empty state.
func (d *DynArray[T]) Data() *T { return unsafe.SliceData(d.items) }

// Slice returns the array's elements as a slice sharing the block. The slice
// is valid until the next Release, Reset, CopyFrom or MoveFrom.
func (d *DynArray[T]) Slice() []T { return d.items }

// At returns a pointer to element i. It fails with ErrUninitialized in the
// empty state and with an OutOfRangeError when i is outside [0, Len).
func (d *DynArray[T]) At(i int) (*T, error) {
	if d.items == nil {
		return nil, ErrUninitialized
	}
	if i < 0 || i >= len(d.items) {
		return nil, &OutOfRangeError{Index: i, Len: len(d.items)}
	}
	return &d.items[i], nil
}

// Front returns a pointer to the first element, failing with
// ErrUninitialized when the array holds no elements.
func (d *DynArray[T]) Front() (*T, error) {
	if len(d.items) == 0 {
		return nil, ErrUninitialized
	}
	return &d.items[0], nil
}

// Back returns a pointer to the last element, failing with ErrUninitialized
// when the array holds no elements.
func (d *DynArray[T]) Back() (*T, error) {
	if len(d.items) == 0 {
		return nil, ErrUninitialized
	}
	return &d.items[len(d.items)-1], nil
}

// All returns a forward index/value iterator.
func (d *DynArray[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range d.items {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Backward returns a reverse index/value iterator.
func (d *DynArray[T]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := len(d.items) - 1; i >= 0; i-- {
			if !yield(i, d.items[i]) {
				return
			}
		}
	}
}

// Values returns a forward value iterator.
func (d *DynArray[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range d.items {
			if !yield(v) {
				return
			}
		}
	}
}

// Fill assigns v to every element in index order. No-op on an empty array.
func (d *DynArray[T]) Fill(v T) {
	for i := range d.items {
		d.items[i] = v
	}
}

// Reset discards the current contents, releasing every element and the
// block, then allocates n fresh zero-valued elements. This is the only
// post-construction way to change the array's length.
func (d *DynArray[T]) Reset(n int) error {
	d.Release()
	items, err := allocateBlock[T](d.alloc, n)
	if err != nil {
		return err
	}
	d.items = items
	return nil
}

// Clone returns a deep copy sharing the source's allocator instance: the
// elements are copied into a freshly allocated block, so mutating the clone
// never affects the source.
func (d *DynArray[T]) Clone() (*DynArray[T], error) {
	return d.CloneWith(d.alloc)
}

// CloneWith is Clone with an explicit allocator for the copy's block.
func (d *DynArray[T]) CloneWith(a Allocator) (*DynArray[T], error) {
	c := &DynArray[T]{alloc: a, release: d.release}
	if c.alloc == nil {
		c.alloc = defaultAllocator
	}
	if d.items == nil {
		return c, nil
	}
	items, err := allocateBlock[T](c.alloc, len(d.items))
	if err != nil {
		return nil, err
	}
	copy(items, d.items)
	c.items = items
	return c, nil
}

// CopyFrom replaces the array's contents with a deep copy of that, adopting
// that's allocator and release hook. The copy always goes into a freshly
// allocated block, never aliasing that's block. On allocation failure the
// receiver is left unchanged. Self-copy is a no-op.
func (d *DynArray[T]) CopyFrom(that *DynArray[T]) error {
	if d == that {
		return nil
	}
	var items []T
	if that.items != nil {
		var err error
		items, err = allocateBlock[T](that.alloc, len(that.items))
		if err != nil {
			return err
		}
		copy(items, that.items)
	}
	d.Release()
	d.alloc = that.alloc
	d.release = that.release
	d.items = items
	return nil
}

// MoveFrom transfers that's allocator, block and elements into the receiver,
// discarding the receiver's previous contents. The source is left in the
// empty state: zero length, nil block, Release on it is a no-op, so the
// block can never be freed twice. Self-move is a no-op.
func (d *DynArray[T]) MoveFrom(that *DynArray[T]) {
	if d == that {
		return
	}
	d.Release()
	d.alloc = that.alloc
	d.release = that.release
	d.items = that.items
	that.items = nil
}

// Release destroys all elements in index order, returns the block to the
// allocator and leaves the array in the empty state. Idempotent.
func (d *DynArray[T]) Release() {
	if d.items == nil {
		return
	}
	d.destroy(len(d.items))
	d.deallocate()
}

// Equal reports whether a and b have the same length and elementwise equal
// contents in order. A nil array compares as empty.
func Equal[T comparable](a, b *DynArray[T]) bool {
	return EqualFunc(a, b, func(x, y T) bool { return x == y })
}

// EqualFunc is Equal with a caller-supplied element comparison.
func EqualFunc[T any](a, b *DynArray[T], eq func(T, T) bool) bool {
	var as, bs []T
	if a != nil {
		as = a.items
	}
	if b != nil {
		bs = b.items
	}
	return slices.EqualFunc(as, bs, eq)
}

func newArray[T any](opts []Option[T]) *DynArray[T] {
	d := &DynArray[T]{alloc: defaultAllocator}
	for _, opt := range opts {
		opt(d)
	}
	if d.alloc == nil {
		d.alloc = defaultAllocator
	}
	return d
}

// allocateBlock obtains zeroed storage for n elements. GoAllocator blocks
// are allocated as typed slices so the garbage collector sees any pointers
// the elements carry; other allocators get a raw byte request.
func allocateBlock[T any](a Allocator, n int) ([]T, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative count %d", ErrAllocation, n)
	}
	if a == nil {
		a = defaultAllocator
	}
	var zero T
	elemSize := unsafe.Sizeof(zero)
	if elemSize > 0 && uintptr(n) > maxAllocSize/elemSize {
		return nil, fmt.Errorf("%w: count %d exceeds the maximum for %d-byte elements", ErrAllocation, n, elemSize)
	}
	if n == 0 || elemSize == 0 {
		return make([]T, n), nil
	}
	if _, ok := a.(*GoAllocator); ok {
		return make([]T, n), nil
	}
	p, err := a.Allocate(uintptr(n)*elemSize, unsafe.Alignof(zero))
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*T)(p), n), nil
}

// destroy applies the release hook to the first n elements.
func (d *DynArray[T]) destroy(n int) {
	if d.release == nil {
		return
	}
	for i := 0; i < n; i++ {
		d.release(&d.items[i])
	}
}

// deallocate returns the block and enters the empty state.
func (d *DynArray[T]) deallocate() {
	if n := len(d.items); n > 0 && d.alloc != nil {
		var zero T
		if size := uintptr(n) * unsafe.Sizeof(zero); size > 0 {
			d.alloc.Deallocate(unsafe.Pointer(unsafe.SliceData(d.items)), size)
		}
	}
	d.items = nil
}
