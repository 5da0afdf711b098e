// SPDX-License-Identifier: Apache-2.0

package dynarray

import (
	"errors"
	"fmt"
)

var (
	// ErrAllocation is returned when an allocator cannot satisfy a request,
	// either because the requested size overflows or because the underlying
	// allocation failed.
	ErrAllocation = errors.New("dynarray: allocation failed")

	// ErrUninitialized is returned by element accessors on an array in the
	// empty state (nil block, reachable via move-from or Release). It is
	// deliberately distinct from ErrOutOfRange so callers can tell "nothing
	// was ever put here" apart from "index too large".
	ErrUninitialized = errors.New("dynarray: uninitialized array")

	// ErrOutOfRange is the sentinel matched by OutOfRangeError via errors.Is.
	ErrOutOfRange = errors.New("dynarray: index out of range")
)

// OutOfRangeError reports an index outside [0, Len) on a non-empty array.
type OutOfRangeError struct {
	Index int
	Len   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("dynarray: index %d out of range, size %d", e.Index, e.Len)
}

func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}
