// SPDX-License-Identifier: Apache-2.0

package dynarray

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLRUConstructsOnMiss(t *testing.T) {
	constructed := 0
	cache := NewLRU(4, func(k int) (*string, error) {
		constructed++
		s := fmt.Sprintf("value-%d", k)
		return &s, nil
	})

	v, err := cache.Get(7)
	require.NoError(t, err)
	require.Equal(t, "value-7", *v)
	require.Equal(t, 1, constructed)

	// A hit returns the same value without reconstructing.
	w, err := cache.Get(7)
	require.NoError(t, err)
	require.Same(t, v, w)
	require.Equal(t, 1, constructed)
	require.Equal(t, 1, cache.Len())
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	constructed := make(map[int]int)
	cache := NewLRU(2, func(k int) (*int, error) {
		constructed[k]++
		return &k, nil
	})

	_, err := cache.Get(1)
	require.NoError(t, err)
	_, err = cache.Get(2)
	require.NoError(t, err)

	// Touch 1 so 2 becomes the eviction candidate.
	_, err = cache.Get(1)
	require.NoError(t, err)

	_, err = cache.Get(3)
	require.NoError(t, err)
	require.Equal(t, 2, cache.Len())

	// 1 survived, 2 was evicted and gets rebuilt.
	_, err = cache.Get(1)
	require.NoError(t, err)
	require.Equal(t, 1, constructed[1])
	_, err = cache.Get(2)
	require.NoError(t, err)
	require.Equal(t, 2, constructed[2])
}

func TestLRUConstructionFailureNotCached(t *testing.T) {
	errBoom := errors.New("boom")
	fail := true
	cache := NewLRU(2, func(k int) (*int, error) {
		if fail {
			return nil, errBoom
		}
		return &k, nil
	})

	_, err := cache.Get(1)
	require.ErrorIs(t, err, errBoom)
	require.Equal(t, 0, cache.Len())

	// The failure was not cached; the next lookup retries.
	fail = false
	v, err := cache.Get(1)
	require.NoError(t, err)
	require.Equal(t, 1, *v)
}

func TestLRUGetFunc(t *testing.T) {
	cache := NewLRU[string, int](2, nil)

	v, err := cache.GetFunc("a", func() (*int, error) {
		n := 41 + 1
		return &n, nil
	})
	require.NoError(t, err)
	require.Equal(t, 42, *v)

	// Hits never run the per-call constructor.
	w, err := cache.GetFunc("a", func() (*int, error) {
		t.Fatal("constructor ran on a hit")
		return nil, nil
	})
	require.NoError(t, err)
	require.Same(t, v, w)
}

func TestLRUInvalidCapacity(t *testing.T) {
	require.Panics(t, func() { NewLRU[int, int](0, nil) })
}

func TestLRUCachedArrays(t *testing.T) {
	// The construct-on-miss API composes with DynArray: one allocation per
	// distinct size, reused on every later lookup.
	cache := NewLRU(8, func(n int) (*DynArray[int64], error) {
		return NewFill(n, int64(n))
	})

	arr, err := cache.Get(16)
	require.NoError(t, err)
	require.Equal(t, 16, arr.Len())

	again, err := cache.Get(16)
	require.NoError(t, err)
	require.Same(t, arr, again)
}
