package voxcore

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/voxcore/voxcore/voxchunk"
	"github.com/voxcore/voxcore/voxmath"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	return NewWorld(2, 2, 2, mgl32.Vec3{-16, 0, -16}, 1, 16, 8, 8, 0)
}

func TestNewWorldWiresAllComponents(t *testing.T) {
	w := newTestWorld(t)
	require.NotNil(t, w.Volume)
	require.NotNil(t, w.Work)
	require.NotNil(t, w.Bodies)
	require.NotNil(t, w.Proxies)
	require.NotNil(t, w.BVH)
	require.True(t, w.BVH.Empty())
}

func TestTickRebuildsBVHWhenBodyCountChanges(t *testing.T) {
	w := newTestWorld(t)
	rng := voxmath.NewRand(7)

	w.Tick(1.0/60, rng, false, mgl32.Vec3{}, false)
	require.True(t, w.BVH.Empty())

	slot := w.Bodies.AddSphere(mgl32.Vec3{0, 20, 0}, 1, voxchunk.Material(1))
	require.GreaterOrEqual(t, slot, int32(0))

	w.Tick(1.0/60, rng, false, mgl32.Vec3{}, false)
	require.False(t, w.BVH.Empty())
	require.Equal(t, 1, w.lastBodyCount)
}

func TestTickRefitsBVHWhenBodyCountStable(t *testing.T) {
	w := newTestWorld(t)
	rng := voxmath.NewRand(7)
	w.Bodies.AddSphere(mgl32.Vec3{0, 20, 0}, 1, voxchunk.Material(1))

	w.Tick(1.0/60, rng, false, mgl32.Vec3{}, false)
	hits := w.BVH.SphereOverlap(mgl32.Vec3{0, 20, 0}, 5, nil)
	require.NotEmpty(t, hits)

	for i := 0; i < 30; i++ {
		w.Tick(1.0/60, rng, false, mgl32.Vec3{}, false)
	}

	hits = w.BVH.SphereOverlap(mgl32.Vec3{0, 20, 0}, 30, nil)
	require.NotEmpty(t, hits)
}

func TestTickRunsTerrainDetachWhenRequested(t *testing.T) {
	w := newTestWorld(t)
	w.Volume.FillBox(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{2, 12, 2}, voxchunk.Material(1))
	w.Volume.RebuildAllOccupancy()
	w.DetachConfig.MaxIslandsPerTick = 8
	w.DetachConfig.MaxVoxelsPerIsland = 4096
	w.DetachConfig.MinVoxelsPerIsland = 1
	w.DetachConfig.MaxBodiesAlive = 16
	w.DetachConfig.InitialImpulseScale = mgl32.Vec3{1, 3, 1}
	w.DetachConfig.Enabled = true

	rng := voxmath.NewRand(3)
	result := w.Tick(1.0/60, rng, true, mgl32.Vec3{0, 11, 0}, true)

	require.Equal(t, 1, result.BodiesSpawned)
	require.Equal(t, 1, w.Bodies.ActiveCount())
}

func TestTickWithoutDetachReturnsZeroResult(t *testing.T) {
	w := newTestWorld(t)
	rng := voxmath.NewRand(1)
	result := w.Tick(1.0/60, rng, false, mgl32.Vec3{}, false)
	require.Equal(t, 0, result.BodiesSpawned)
}

func TestRaycastSceneHitsBodyAndMissesEmptyTerrain(t *testing.T) {
	w := newTestWorld(t)
	w.Bodies.AddSphere(mgl32.Vec3{0, 5, 0}, 1, voxchunk.Material(1))

	terrain, bodySlot, bodyDist := w.RaycastScene(mgl32.Vec3{0, 5, -10}, mgl32.Vec3{0, 0, 1}, 50)

	require.False(t, terrain.Hit)
	require.GreaterOrEqual(t, bodySlot, int32(0))
	require.Greater(t, bodyDist, float32(0))
}
