package voxbody

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxcore/voxcore/voxchunk"
	"github.com/voxcore/voxcore/voxconfig"
)

// DestroyAtPoint carves a sphere of voxels out of a body's local grid
// (worldPoint converted to local-grid coordinates), marks the shape dirty,
// and queues the body for a deferred split (spec §4.7: "Object destruction
// at a point").
func (w *World) DestroyAtPoint(slot int32, worldPoint mgl32.Vec3, radius float32) int {
	o := w.Get(slot)
	if o == nil {
		return 0
	}
	local := worldToLocalGrid(o, worldPoint)
	removed := CarveSphere(&o.Grid, local, radius/o.voxelSize)
	if removed > 0 {
		o.ShapeDirty = true
		w.queueSplit(slot)
	}
	return removed
}

func worldToLocalGrid(o *VoxelObject, worldPoint mgl32.Vec3) mgl32.Vec3 {
	rel := worldPoint.Sub(o.Position)
	invR := o.Orientation.Inverse().Mat4().Mat3()
	lx := invR[0]*rel.X() + invR[3]*rel.Y() + invR[6]*rel.Z()
	ly := invR[1]*rel.X() + invR[4]*rel.Y() + invR[7]*rel.Z()
	lz := invR[2]*rel.X() + invR[5]*rel.Y() + invR[8]*rel.Z()
	local := mgl32.Vec3{lx, ly, lz}.Mul(1 / o.voxelSize)
	return local.Add(mgl32.Vec3{GridSize / 2, GridSize / 2, GridSize / 2})
}

func (w *World) queueSplit(slot int32) {
	for _, s := range w.splitQueue {
		if s == slot {
			return
		}
	}
	w.splitQueue = append(w.splitQueue, slot)
	o := w.Get(slot)
	if o != nil {
		o.SplitQueued = true
	}
}

func (w *World) queueRecalc(slot int32) {
	for _, s := range w.recalcQueue {
		if s == slot {
			return
		}
	}
	w.recalcQueue = append(w.recalcQueue, slot)
	o := w.Get(slot)
	if o != nil {
		o.RecalcQueued = true
	}
}

// processSplitQueue dequeues up to voxconfig.GetMaxSplitsPerTick bodies and
// re-runs connectivity on their own 16³ grid with no anchor (everything is
// floating); each connected component becomes its own body, with a
// deterministic rule (largest component by voxel count, ties broken by
// lowest component id) picking which one inherits the original slot (spec
// §4.5.5).
func (w *World) processSplitQueue() {
	maxPerTick := voxconfig.GetMaxSplitsPerTick()
	processed := 0
	for processed < maxPerTick && len(w.splitQueue) > 0 {
		slot := w.splitQueue[0]
		w.splitQueue = w.splitQueue[1:]
		processed++
		o := w.Get(slot)
		if o == nil {
			continue
		}
		o.SplitQueued = false
		w.splitOne(slot, o)
	}
}

func (w *World) splitOne(slot int32, o *VoxelObject) {
	comps := localComponents(&o.Grid)
	if len(comps) <= 1 {
		if len(comps) == 1 {
			o.RefreshShape(Density)
		}
		return
	}

	best := 0
	for i, c := range comps {
		if len(c.voxels) > len(comps[best].voxels) {
			best = i
		}
	}

	worldSize := o.voxelSize
	baseOrientation := o.Orientation
	baseLinVel := o.LinVel
	baseAngVel := o.AngVel
	basePos := o.Position

	for i, c := range comps {
		grid := buildComponentGrid(o, c)
		if i == best {
			o.Grid = grid
			o.RefreshShape(Density)
			continue
		}
		childSlot := w.allocSlot()
		if childSlot < 0 {
			continue
		}
		childPos := basePos.Add(componentOffsetWorld(o, c, worldSize))
		child := newVoxelObject(childPos, worldSize)
		child.Orientation = baseOrientation
		child.LinVel = baseLinVel
		child.AngVel = baseAngVel
		child.Grid = grid
		child.RefreshShape(Density)
		w.slots[childSlot] = *child
		w.insertLive(childSlot)
	}
}

type localComponent struct {
	voxels [][3]int
}

// localComponents runs a flood fill over the body's dense 16³ grid using
// an explicit stack, in the same iterative idiom as voxconnect's volume
// flood fill, adapted to a single dense array with no chunking.
func localComponents(g *Grid) []localComponent {
	var visited [GridSize * GridSize * GridSize]bool
	var comps []localComponent
	var stack [][3]int

	for z := 0; z < GridSize; z++ {
		for y := 0; y < GridSize; y++ {
			for x := 0; x < GridSize; x++ {
				if g.Get(x, y, z) == voxchunk.MaterialEmpty {
					continue
				}
				idx := gridIndex(x, y, z)
				if visited[idx] {
					continue
				}
				var comp localComponent
				stack = stack[:0]
				stack = append(stack, [3]int{x, y, z})
				visited[idx] = true
				for len(stack) > 0 {
					p := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					comp.voxels = append(comp.voxels, p)
					for _, off := range neighborOffsets {
						nx, ny, nz := p[0]+off[0], p[1]+off[1], p[2]+off[2]
						if !gridInBounds(nx, ny, nz) {
							continue
						}
						nidx := gridIndex(nx, ny, nz)
						if visited[nidx] || g.Get(nx, ny, nz) == voxchunk.MaterialEmpty {
							continue
						}
						visited[nidx] = true
						stack = append(stack, [3]int{nx, ny, nz})
					}
				}
				comps = append(comps, comp)
			}
		}
	}
	return comps
}

var neighborOffsets = [6][3]int{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

func buildComponentGrid(o *VoxelObject, c localComponent) Grid {
	var g Grid
	for _, p := range c.voxels {
		g.Set(p[0], p[1], p[2], o.Grid.Get(p[0], p[1], p[2]))
	}
	return g
}

// componentOffsetWorld returns the world-space offset from the parent
// body's center to a split-off component's voxel centroid, rotated by the
// parent's current orientation.
func componentOffsetWorld(o *VoxelObject, c localComponent, voxelSize float32) mgl32.Vec3 {
	var sum mgl32.Vec3
	for _, p := range c.voxels {
		sum = sum.Add(mgl32.Vec3{float32(p[0]), float32(p[1]), float32(p[2])})
	}
	centroid := sum.Mul(1 / float32(len(c.voxels)))
	localOffset := centroid.Sub(mgl32.Vec3{GridSize / 2, GridSize / 2, GridSize / 2}).Mul(voxelSize)
	r := o.Orientation.Mat4().Mat3()
	return mgl32.Vec3{
		r[0]*localOffset.X() + r[3]*localOffset.Y() + r[6]*localOffset.Z(),
		r[1]*localOffset.X() + r[4]*localOffset.Y() + r[7]*localOffset.Z(),
		r[2]*localOffset.X() + r[5]*localOffset.Y() + r[8]*localOffset.Z(),
	}
}

// processRecalcQueue re-measures up to voxconfig.GetMaxRecalcsPerTick
// shape-dirty bodies (spec §4.5.5).
func (w *World) processRecalcQueue() {
	maxPerTick := voxconfig.GetMaxRecalcsPerTick()
	processed := 0
	for processed < maxPerTick && len(w.recalcQueue) > 0 {
		slot := w.recalcQueue[0]
		w.recalcQueue = w.recalcQueue[1:]
		processed++
		o := w.Get(slot)
		if o == nil {
			continue
		}
		o.RecalcQueued = false
		if o.ShapeDirty {
			o.RefreshShape(Density)
		}
	}
}
