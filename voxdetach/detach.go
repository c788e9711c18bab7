// Package voxdetach orchestrates the two ways terrain turns into bodies
// (spec §4.7): destroying a sphere out of an existing body's local grid,
// and the per-tick terrain-detach pass that finds newly-floating islands
// in the volume and spawns voxel bodies from them.
//
// Grounded on no direct teacher analogue — mini-mc-go has no destructible
// terrain — but the phase-sequencing style (count state, analyze, apply a
// per-item policy, return an aggregate counts struct) follows the
// teacher's internal/game tick loop's "count, act, report" shape.
package voxdetach

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxcore/voxcore/voxbody"
	"github.com/voxcore/voxcore/voxconnect"
	"github.com/voxcore/voxcore/voxmath"
	"github.com/voxcore/voxcore/voxvolume"
)

// Config is the caller-provided terrain-detach policy (spec §4.7: "The
// caller provides a configuration struct enumerating...").
type Config struct {
	Enabled             bool
	MaxIslandsPerTick   int
	MaxVoxelsPerIsland  int
	MinVoxelsPerIsland  int
	MaxBodiesAlive      int
	AnchorYOffset       float32
	InitialImpulseScale mgl32.Vec3
}

// Result aggregates one terrain-detach pass's effect.
type Result struct {
	IslandsProcessed int
	BodiesSpawned    int
	VoxelsRemoved    int
	IslandsSkipped   int
}

// DestroyAtPoint carves a sphere of voxels out of a body's local grid,
// marking its shape dirty and queuing a split (spec §4.7 "object destruction
// at a point"). It is a thin facade over voxbody.World's own implementation,
// which owns the body-local carve/split-queue bookkeeping.
func DestroyAtPoint(bodies *voxbody.World, slot int32, worldPoint mgl32.Vec3, radius float32) int {
	return bodies.DestroyAtPoint(slot, worldPoint, radius)
}

// horizontalJitter scales the random horizontal spread added to a spawned
// body's initial velocity, relative to InitialImpulseScale.
const horizontalJitter = 0.35

// verticalKick is the fraction of InitialImpulseScale.Y added unconditionally
// upward, so a spawned island always has some positive vertical motion even
// when the impact-to-center vector is purely horizontal.
const verticalKick = 0.5

// TerrainDetachProcess runs one tick of the terrain-detach pass (spec §4.7):
// dirty-region connectivity by default, or a full-volume scan when
// forceFullScan is set (the volume had no edits this tick but the caller
// wants a scan anyway — "only on demand"). Each discovered floating island
// is then either deleted (too small), skipped (too large, or at body
// capacity), or extracted into a newly-spawned body with an initial
// velocity derived from the impact point and the island's center of mass.
func TerrainDetachProcess(
	vol *voxvolume.Volume,
	bodies *voxbody.World,
	work *voxconnect.Work,
	cfg Config,
	impactPoint mgl32.Vec3,
	rng *voxmath.Rand,
	forceFullScan bool,
) Result {
	var out Result
	if !cfg.Enabled {
		return out
	}

	params := voxconnect.Params{AnchorY: vol.Origin().Y() + cfg.AnchorYOffset}
	result := voxconnect.AnalyzeDirty(vol, work, params)
	if result.TotalVoxelsChecked == 0 && forceFullScan {
		result = voxconnect.AnalyzeVolume(vol, work, params)
	}

	processed := 0
	for _, island := range result.Islands {
		if !island.IsFloating() {
			continue
		}
		if processed >= cfg.MaxIslandsPerTick {
			out.IslandsSkipped++
			continue
		}

		sx := island.VoxelMax[0] - island.VoxelMin[0] + 1
		sy := island.VoxelMax[1] - island.VoxelMin[1] + 1
		sz := island.VoxelMax[2] - island.VoxelMin[2] + 1
		tooLarge := island.VoxelCount > cfg.MaxVoxelsPerIsland ||
			sx > voxbody.GridSize || sy > voxbody.GridSize || sz > voxbody.GridSize

		switch {
		case island.VoxelCount < cfg.MinVoxelsPerIsland:
			voxconnect.Remove(vol, work, island)
			out.VoxelsRemoved += island.VoxelCount
			out.IslandsProcessed++
			processed++

		case tooLarge:
			out.IslandsSkipped++

		case bodies.ActiveCount() >= cfg.MaxBodiesAlive:
			out.IslandsSkipped++

		default:
			extracted := voxconnect.Extract(vol, work, island)
			center := extracted.WorldOrigin.Add(mgl32.Vec3{
				float32(sx) * 0.5, float32(sy) * 0.5, float32(sz) * 0.5,
			}.Mul(vol.VoxelSize()))

			slot := bodies.AddFromVoxels(center, sx, sy, sz, extracted.Materials)
			if slot < 0 {
				out.IslandsSkipped++
				continue
			}
			obj := bodies.Get(slot)
			obj.LinVel = spawnVelocity(impactPoint, island.CenterOfMass, cfg.InitialImpulseScale, rng)

			voxconnect.Remove(vol, work, island)
			out.VoxelsRemoved += island.VoxelCount
			out.BodiesSpawned++
			out.IslandsProcessed++
			processed++
		}
	}

	return out
}

func spawnVelocity(impactPoint, islandCOM mgl32.Vec3, scale mgl32.Vec3, rng *voxmath.Rand) mgl32.Vec3 {
	dir := islandCOM.Sub(impactPoint)
	if dir.LenSqr() < 1e-9 {
		dir = mgl32.Vec3{0, 1, 0}
	} else {
		dir = dir.Normalize()
	}
	v := mgl32.Vec3{dir.X() * scale.X(), dir.Y() * scale.Y(), dir.Z() * scale.Z()}
	v = v.Add(mgl32.Vec3{
		rng.Float32Range(-horizontalJitter, horizontalJitter) * scale.X(),
		verticalKick * scale.Y(),
		rng.Float32Range(-horizontalJitter, horizontalJitter) * scale.Z(),
	})
	return v
}
