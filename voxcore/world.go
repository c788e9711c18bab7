// Package voxcore is the top-level embedding surface (spec §6): it wires
// the terrain volume (voxvolume), connectivity (voxconnect), voxel bodies
// (voxbody), their broadphase-accelerated hierarchy (voxbvh), terrain
// detach (voxdetach), and generic proxy physics (voxproxy) into one tick
// entry point in the spec's dataflow order: edit → dirty occupancy →
// connectivity/detach → body integrate → BVH refit → proxy step.
//
// Grounded on internal/game/app.go's and session.go's tick sequencing
// (count state, run phases in a fixed order, hand results back to the
// caller), adapted to this spec's phase list. Each component remains a
// public field rather than being wrapped in redundant pass-through
// methods — World.Volume.Get/Set/FillSphere, World.Bodies.AddSphere, and
// so on are the embedding surface for everything that isn't cross-
// component orchestration; voxcore itself only owns the parts that need
// more than one component at once (the tick order, BVH lifecycle,
// combined raycast).
package voxcore

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxcore/voxcore/voxbody"
	"github.com/voxcore/voxcore/voxbvh"
	"github.com/voxcore/voxcore/voxconnect"
	"github.com/voxcore/voxcore/voxdetach"
	"github.com/voxcore/voxcore/voxmath"
	"github.com/voxcore/voxcore/voxproxy"
	"github.com/voxcore/voxcore/voxvolume"
)

// World is the single top-level handle a host creates once at setup and
// reuses for the process lifetime (spec §5: no allocation after setup
// beyond the bounded rebuild paths this file documents).
type World struct {
	Volume  *voxvolume.Volume
	Work    *voxconnect.Work
	Bodies  *voxbody.World
	Proxies *voxproxy.State
	BVH     *voxbvh.BVH

	FloorY       float32
	DetachConfig voxdetach.Config

	lastBodyCount int
}

// NewWorld constructs every component for one scene (spec §6 "create").
// There is no corresponding Destroy: every component is plain
// garbage-collected Go state with no external resources to release.
func NewWorld(chunksX, chunksY, chunksZ int, origin mgl32.Vec3, voxelSize float32, bodyCapacity, proxyCapacity, fragmentCapacity int, floorY float32) *World {
	vol := voxvolume.NewFromVoxelSize(chunksX, chunksY, chunksZ, origin, voxelSize)
	return &World{
		Volume:  vol,
		Work:    voxconnect.NewWork(vol),
		Bodies:  voxbody.NewWorld(bodyCapacity, voxelSize),
		Proxies: voxproxy.StateInit(proxyCapacity, fragmentCapacity),
		BVH:     &voxbvh.BVH{},
		FloorY:  floorY,
	}
}

// Tick runs one full simulation step: brings chunk occupancy up to date
// with any edits the caller made since the last tick, optionally runs
// terrain detach, advances voxel bodies and refreshes their BVH, then
// steps generic proxies. runDetach/impactPoint/forceFullScan are the
// caller's per-tick terrain-detach decision (spec §4.7: detach runs "per
// tick" but needs an impact point, which only the caller — e.g. an
// explosion or a dig action — knows about).
func (w *World) Tick(dt float32, rng *voxmath.Rand, runDetach bool, impactPoint mgl32.Vec3, forceFullScan bool) voxdetach.Result {
	w.Volume.RebuildDirtyOccupancy()

	var detachResult voxdetach.Result
	if runDetach {
		detachResult = voxdetach.TerrainDetachProcess(w.Volume, w.Bodies, w.Work, w.DetachConfig, impactPoint, rng, forceFullScan)
	}

	w.Bodies.Update(dt, w.FloorY, w.Volume)
	w.refreshBVH()
	w.Proxies.Step(dt, w.FloorY, w.Volume, rng)

	return detachResult
}

func (w *World) bvhItems() []voxbvh.Item {
	slots := w.Bodies.LiveSlots()
	items := make([]voxbvh.Item, 0, len(slots))
	for _, slot := range slots {
		o := w.Bodies.Get(slot)
		if o == nil {
			continue
		}
		items = append(items, voxbvh.Item{WorldIndex: slot, Center: o.Position, Radius: o.BoundingRadius()})
	}
	return items
}

// refreshBVH rebuilds the tree when the active-body count has changed
// since the last tick, otherwise refits in place; a refit that reports a
// stale leaf (a body referenced by the tree is gone, even though the
// overall count happens to match — e.g. one removed and one added in the
// same tick) also triggers a rebuild (spec §4.6's rebuild triggers).
func (w *World) refreshBVH() {
	count := w.Bodies.ActiveCount()
	if w.BVH.Empty() || count != w.lastBodyCount {
		w.BVH = voxbvh.Build(w.bvhItems())
		w.lastBodyCount = count
		return
	}
	stale := w.BVH.Refit(func(slot int32) (voxmath.AABB, bool) {
		o := w.Bodies.Get(slot)
		if o == nil {
			return voxmath.AABB{}, false
		}
		min, max := o.WorldBounds()
		return voxmath.AABB{Min: min, Max: max}, true
	})
	if stale {
		w.BVH = voxbvh.Build(w.bvhItems())
		w.lastBodyCount = w.Bodies.ActiveCount()
	}
}

// RaycastScene runs both of the spec's independently-named raycasts (the
// terrain volume's and the body world's) against one ray, so a caller
// doesn't need to know there happen to be two systems to query.
func (w *World) RaycastScene(origin, dir mgl32.Vec3, maxDistance float32) (terrain voxvolume.RayHit, bodySlot int32, bodyDistance float32) {
	terrain = w.Volume.Raycast(origin, dir, maxDistance)
	bodySlot, bodyDistance = w.Bodies.Raycast(origin, dir, maxDistance)
	return
}
