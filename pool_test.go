// SPDX-License-Identifier: Apache-2.0

package dynarray

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoolAcquireRelease(t *testing.T) {
	p := NewPool()

	item := p.Acquire(1)
	require.NotNil(t, item)
	require.Equal(t, uint64(1), item.Key)

	arr, err := NewFill(32, int64(5), WithAllocator[int64](item.Allocator))
	require.NoError(t, err)
	require.Equal(t, 32, arr.Len())
	require.Greater(t, item.Allocator.Arena().Len(), 0)

	// Release recycles the region.
	p.Release(item)
	require.Equal(t, 0, item.Allocator.Arena().Len())
}

func TestPoolSizesFromPeakUsage(t *testing.T) {
	p := NewPool()

	// Unknown keys get the default size.
	require.Equal(t, poolDefaultSize, p.arenaSize(7))

	item := p.Acquire(7)
	_, err := New(1000, WithAllocator[byte](item.Allocator))
	require.NoError(t, err)
	p.Release(item)

	// Fresh arenas for the key are now sized from the recorded peak.
	require.Equal(t, 1000, p.arenaSize(7))

	// The released item itself comes back first.
	next := p.Acquire(7)
	require.Same(t, item, next)
	require.Equal(t, uint64(7), next.Key)
}

func TestPoolReleaseMany(t *testing.T) {
	p := NewPool()

	items := []*PoolItem{p.Acquire(1), p.Acquire(2), p.Acquire(3)}
	for _, item := range items {
		_, err := New(64, WithAllocator[byte](item.Allocator))
		require.NoError(t, err)
	}
	p.ReleaseMany(items)
	for _, item := range items {
		require.Equal(t, 0, item.Allocator.Arena().Len())
		require.Equal(t, uint64(0), item.Key)
	}
}
