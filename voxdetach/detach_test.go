package voxdetach

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/voxcore/voxcore/voxbody"
	"github.com/voxcore/voxcore/voxchunk"
	"github.com/voxcore/voxcore/voxconnect"
	"github.com/voxcore/voxcore/voxmath"
	"github.com/voxcore/voxcore/voxvolume"
)

func buildTestVolume(t *testing.T) *voxvolume.Volume {
	t.Helper()
	return voxvolume.NewFromVoxelSize(2, 2, 2, mgl32.Vec3{-16, 0, -16}, 1)
}

func baseConfig() Config {
	return Config{
		Enabled:             true,
		MaxIslandsPerTick:   8,
		MaxVoxelsPerIsland:  4096,
		MinVoxelsPerIsland:  4,
		MaxBodiesAlive:      4096,
		AnchorYOffset:       0.1,
		InitialImpulseScale: mgl32.Vec3{1, 3, 1},
	}
}

func TestTerrainDetachSpawnsBodyForFloatingIsland(t *testing.T) {
	vol := buildTestVolume(t)
	vol.FillBox(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{2, 12, 2}, voxchunk.Material(1))
	vol.RebuildAllOccupancy()

	work := voxconnect.NewWork(vol)
	rng := voxmath.NewRand(1)

	result := TerrainDetachProcess(vol, voxbody.NewWorld(8, 1), work, baseConfig(), mgl32.Vec3{0, 0, 0}, rng, true)
	require.GreaterOrEqual(t, result.BodiesSpawned, 1)
	require.Greater(t, result.VoxelsRemoved, 0)
}

func TestTerrainDetachSkipsAnchoredIsland(t *testing.T) {
	vol := buildTestVolume(t)
	vol.FillBox(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{2, 4, 2}, voxchunk.Material(1))
	vol.RebuildAllOccupancy()

	work := voxconnect.NewWork(vol)
	rng := voxmath.NewRand(1)

	bodies := voxbody.NewWorld(8, 1)
	result := TerrainDetachProcess(vol, bodies, work, baseConfig(), mgl32.Vec3{0, 0, 0}, rng, true)
	require.Equal(t, 0, result.BodiesSpawned)
	require.Equal(t, 0, bodies.ActiveCount())
}

func TestTerrainDetachDeletesTooSmallIsland(t *testing.T) {
	vol := buildTestVolume(t)
	vol.Set(mgl32.Vec3{0.5, 10.5, 0.5}, voxchunk.Material(1))
	vol.RebuildAllOccupancy()

	work := voxconnect.NewWork(vol)
	rng := voxmath.NewRand(1)

	cfg := baseConfig()
	cfg.MinVoxelsPerIsland = 4

	bodies := voxbody.NewWorld(8, 1)
	result := TerrainDetachProcess(vol, bodies, work, cfg, mgl32.Vec3{0, 0, 0}, rng, true)
	require.Equal(t, 0, result.BodiesSpawned)
	require.Equal(t, 1, result.VoxelsRemoved)
	require.False(t, vol.IsSolid(mgl32.Vec3{0.5, 10.5, 0.5}))
}

func TestTerrainDetachDisabledDoesNothing(t *testing.T) {
	vol := buildTestVolume(t)
	vol.FillBox(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{2, 12, 2}, voxchunk.Material(1))
	vol.RebuildAllOccupancy()

	work := voxconnect.NewWork(vol)
	rng := voxmath.NewRand(1)

	cfg := baseConfig()
	cfg.Enabled = false

	result := TerrainDetachProcess(vol, voxbody.NewWorld(8, 1), work, cfg, mgl32.Vec3{0, 0, 0}, rng, true)
	require.Equal(t, Result{}, result)
}

func TestDestroyAtPointDelegatesToBodyWorld(t *testing.T) {
	bodies := voxbody.NewWorld(4, 0.5)
	slot := bodies.AddBox(mgl32.Vec3{0, 20, 0}, mgl32.Vec3{6, 6, 6}, 1)
	obj := bodies.Get(slot)

	removed := DestroyAtPoint(bodies, slot, obj.Position, 3)
	require.Greater(t, removed, 0)
	require.True(t, bodies.Get(slot).SplitQueued)
}
