package voxchunk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// checkOccupancyInvariants verifies spec §8's chunk occupancy consistency
// property by rescanning from scratch and comparing against the chunk's
// incrementally maintained bitmaps.
func checkOccupancyInvariants(t *testing.T, c *Chunk) {
	t.Helper()
	want := &Chunk{X: c.X, Y: c.Y, Z: c.Z}
	want.materials = c.materials
	want.RebuildOccupancy()

	require.Equal(t, want.level0, c.level0, "level0 mismatch")
	require.Equal(t, want.level1, c.level1, "level1 mismatch")
	require.Equal(t, want.hasAny, c.hasAny, "hasAny mismatch")
	require.Equal(t, want.solidCount, c.solidCount, "solidCount mismatch")
	require.Equal(t, c.solidCount > 0, c.hasAny, "hasAny = solidCount>0 invariant")
}

func TestSetSingleVoxel(t *testing.T) {
	c := New(0, 0, 0)
	c.SetState(StateActive)
	require.True(t, c.Set(5, 5, 5, 1))
	require.Equal(t, Material(1), c.Get(5, 5, 5))
	require.Equal(t, 1, c.SolidCount())
	require.Equal(t, StateDirty, c.State())
	checkOccupancyInvariants(t, c)
}

func TestSetNoChangeReturnsFalse(t *testing.T) {
	c := New(0, 0, 0)
	c.Set(1, 1, 1, 3)
	require.False(t, c.Set(1, 1, 1, 3))
}

func TestSetOutOfRangeIgnored(t *testing.T) {
	c := New(0, 0, 0)
	require.False(t, c.Set(-1, 0, 0, 1))
	require.False(t, c.Set(Size, 0, 0, 1))
	require.Equal(t, 0, c.SolidCount())
}

func TestFillBoxIncremental(t *testing.T) {
	c := New(0, 0, 0)
	n := c.FillBox(0, 0, 0, 7, 7, 7, 2)
	require.Equal(t, 8*8*8, n)
	checkOccupancyInvariants(t, c)

	// Remove a corner and re-check.
	c.FillBox(0, 0, 0, 1, 1, 1, MaterialEmpty)
	checkOccupancyInvariants(t, c)
}

func TestFillSphereFillsCenterVoxel(t *testing.T) {
	c := New(0, 0, 0)
	n := c.FillSphere(16, 16, 16, 3, 5)
	require.Greater(t, n, 0)
	checkOccupancyInvariants(t, c)
	// Center voxel must be filled.
	require.Equal(t, Material(5), c.Get(16, 16, 16))
}

func TestRebuildOccupancyAfterBulkPopulation(t *testing.T) {
	c := New(0, 0, 0)
	for z := 0; z < Size; z += 4 {
		for y := 0; y < Size; y += 4 {
			for x := 0; x < Size; x += 4 {
				c.materials[index(x, y, z)] = 7
			}
		}
	}
	c.RebuildOccupancy()
	checkOccupancyInvariants(t, c)
	require.True(t, c.HasAny())
}

func TestLifecycleTransitions(t *testing.T) {
	c := New(0, 0, 0)
	require.Equal(t, StateEmpty, c.State())
	c.SetState(StateLoading)
	require.Equal(t, StateLoading, c.State())
	c.SetState(StateActive)
	require.Equal(t, StateActive, c.State())
	c.Set(0, 0, 0, 1)
	require.Equal(t, StateDirty, c.State())
	c.SetState(StateUploading)
	require.Equal(t, StateUploading, c.State())
	c.SetState(StateActive)
	require.Equal(t, StateActive, c.State())
}

func TestEmptyChunkHasNoRegionBitsSet(t *testing.T) {
	c := New(0, 0, 0)
	require.False(t, c.HasAny())
	for r0 := 0; r0 < 64; r0++ {
		require.False(t, c.Level0Bit(r0))
	}
	for r1 := 0; r1 < 8; r1++ {
		require.False(t, c.Level1Bit(r1))
	}
}
