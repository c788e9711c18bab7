package voxconnect

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/voxcore/voxcore/voxconfig"
	"github.com/voxcore/voxcore/voxvolume"
)

func TestS1FloatingCube(t *testing.T) {
	v := buildVolume(t)
	v.FillBox(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{2, 12, 2}, 1)

	w := NewWork(v)
	result := AnalyzeVolume(v, w, Params{AnchorY: 0.1})

	require.Len(t, result.Islands, 1)
	require.Equal(t, 1, result.FloatingCount)
	require.True(t, result.Islands[0].IsFloating())
}

func TestS2TwoIslandsMixedAnchoring(t *testing.T) {
	v := buildVolume(t)
	v.FillBox(mgl32.Vec3{-8, 0, -2}, mgl32.Vec3{-4, 4, 2}, 1)
	v.FillBox(mgl32.Vec3{4, 10, -2}, mgl32.Vec3{8, 14, 2}, 2)

	w := NewWork(v)
	result := AnalyzeVolume(v, w, Params{AnchorY: 0.1})

	require.Len(t, result.Islands, 2)
	require.Equal(t, 1, result.AnchoredCount)
	require.Equal(t, 1, result.FloatingCount)

	var sawFloor, sawFloating bool
	for _, isl := range result.Islands {
		if isl.Anchor == AnchorFloor {
			sawFloor = true
		}
		if isl.IsFloating() {
			sawFloating = true
		}
	}
	require.True(t, sawFloor)
	require.True(t, sawFloating)
}

func TestS3SingleAnchoredBlock(t *testing.T) {
	v := buildVolume(t)
	v.FillBox(mgl32.Vec3{-2, 0, -2}, mgl32.Vec3{2, 4, 2}, 1)

	w := NewWork(v)
	result := AnalyzeVolume(v, w, Params{AnchorY: 0.1})

	require.Len(t, result.Islands, 1)
	require.Equal(t, 1, result.AnchoredCount)
	require.Equal(t, AnchorFloor, result.Islands[0].Anchor)
}

func TestConnectivityDeterministic(t *testing.T) {
	v := buildVolume(t)
	v.FillBox(mgl32.Vec3{-8, 0, -2}, mgl32.Vec3{-4, 4, 2}, 1)
	v.FillBox(mgl32.Vec3{4, 10, -2}, mgl32.Vec3{8, 14, 2}, 2)
	w := NewWork(v)

	first := AnalyzeVolume(v, w, Params{AnchorY: 0.1})
	for i := 0; i < 5; i++ {
		again := AnalyzeVolume(v, w, Params{AnchorY: 0.1})
		require.Equal(t, first.Islands, again.Islands)
		require.Equal(t, first.FloatingCount, again.FloatingCount)
		require.Equal(t, first.AnchoredCount, again.AnchoredCount)
	}
}

func TestExtractionRoundTrip(t *testing.T) {
	v := buildVolume(t)
	v.FillBox(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{2, 12, 2}, 5)

	w := NewWork(v)
	result := AnalyzeVolume(v, w, Params{AnchorY: 0.1})
	require.Len(t, result.Islands, 1)
	island := result.Islands[0]

	extracted := Extract(v, w, island)
	require.Equal(t, island.VoxelMax[0]-island.VoxelMin[0]+1, extracted.SizeX)

	for z := 0; z < extracted.SizeZ; z++ {
		for y := 0; y < extracted.SizeY; y++ {
			for x := 0; x < extracted.SizeX; x++ {
				vx, vy, vz := island.VoxelMin[0]+x, island.VoxelMin[1]+y, island.VoxelMin[2]+z
				require.Equal(t, v.MaterialAtVoxel(vx, vy, vz), extracted.At(x, y, z))
			}
		}
	}
}

func TestRemoveIslandClearsOnlyItsVoxels(t *testing.T) {
	v := buildVolume(t)
	v.FillBox(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{2, 12, 2}, 5)
	v.FillBox(mgl32.Vec3{-8, 0, -2}, mgl32.Vec3{-4, 4, 2}, 1)

	w := NewWork(v)
	result := AnalyzeVolume(v, w, Params{AnchorY: 0.1})
	require.Len(t, result.Islands, 2)

	var floating IslandInfo
	for _, isl := range result.Islands {
		if isl.IsFloating() {
			floating = isl
		}
	}
	require.True(t, floating.IsFloating())

	before := v.TotalSolidVoxels()
	Remove(v, w, floating)
	after := v.TotalSolidVoxels()
	require.Less(t, after, before)
	require.Equal(t, before-floating.VoxelCount, after)

	require.False(t, v.IsSolidAtVoxel(floating.VoxelMin[0], floating.VoxelMin[1], floating.VoxelMin[2]))
	require.True(t, v.IsSolid(mgl32.Vec3{-6, 2, 0}))
}

func TestStackOverflowForceAnchorsFloor(t *testing.T) {
	voxconfig.SetMaxFloodStackDepth(64)
	defer voxconfig.SetMaxFloodStackDepth(1 << 20)

	v := buildVolume(t)
	v.FillBox(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{6, 16, 6}, 1)

	w := NewWork(v)
	result := AnalyzeVolume(v, w, Params{AnchorY: 0.1})

	var anyAnchored bool
	for _, isl := range result.Islands {
		if isl.Anchor == AnchorFloor {
			anyAnchored = true
		}
	}
	require.True(t, anyAnchored, "force-anchor policy should anchor at least one fragment when the flood stack overflows")
}

func buildVolume(t *testing.T) *voxvolume.Volume {
	t.Helper()
	return voxvolume.NewFromVoxelSize(2, 2, 2, mgl32.Vec3{-16, 0, -16}, 0.5)
}
