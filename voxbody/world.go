package voxbody

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxcore/voxcore/voxbroad"
	"github.com/voxcore/voxcore/voxchunk"
	"github.com/voxcore/voxcore/voxvolume"
)

// Density is the uniform per-voxel mass density used by RefreshShape.
const Density = 1.0

// World owns a fixed-capacity array of VoxelObjects addressed by a stable
// world slot index (never reused while a body is alive), a live-slot list
// for iteration, and the spatial hash used for object-object pair
// generation (spec §4.5.4 step 1). Grounded on
// other_examples/f3d23b2c_gazed-vu__body.go.go's dense-array-plus-index-set
// bookkeeping, adapted so the BVH (voxbvh) can refer to bodies by this same
// stable slot index rather than a compacted position (spec §4.6 bug note).
type World struct {
	slots    []VoxelObject
	alive    []bool
	live     []int32 // world-slot indices of currently-alive bodies, sorted ascending
	freeHint int

	spatial *voxbroad.SpatialHash

	voxelSize float32

	splitQueue  []int32
	recalcQueue []int32
}

// NewWorld allocates a body world with a fixed capacity.
func NewWorld(capacity int, voxelSize float32) *World {
	return &World{
		slots:     make([]VoxelObject, capacity),
		alive:     make([]bool, capacity),
		live:      make([]int32, 0, capacity),
		spatial:   voxbroad.NewSpatialHash(4, capacity),
		voxelSize: voxelSize,
	}
}

// Capacity returns the fixed maximum number of simultaneously alive bodies.
func (w *World) Capacity() int { return len(w.slots) }

// ActiveCount returns the number of currently alive bodies.
func (w *World) ActiveCount() int { return len(w.live) }

// LiveSlots returns the world-slot indices of currently-alive bodies in
// ascending order, shared with the caller's backing array (treat as
// read-only) — used by voxbvh/voxcore to build BVH leaves by stable slot
// rather than a compacted position.
func (w *World) LiveSlots() []int32 { return w.live }

// Get returns the body at a world slot, or nil if that slot is not alive.
func (w *World) Get(slot int32) *VoxelObject {
	if slot < 0 || int(slot) >= len(w.slots) || !w.alive[slot] {
		return nil
	}
	return &w.slots[slot]
}

func (w *World) allocSlot() int32 {
	n := len(w.slots)
	for i := 0; i < n; i++ {
		idx := (w.freeHint + i) % n
		if !w.alive[idx] {
			w.freeHint = (idx + 1) % n
			return int32(idx)
		}
	}
	return -1
}

func (w *World) insertLive(slot int32) {
	w.alive[slot] = true
	// keep live ascending so iteration and the spec's "increasing by slot
	// index" ordering guarantee (§5) holds without a separate sort.
	i := 0
	for i < len(w.live) && w.live[i] < slot {
		i++
	}
	w.live = append(w.live, 0)
	copy(w.live[i+1:], w.live[i:])
	w.live[i] = slot
}

// AddSphere allocates a body whose grid is filled with a solid sphere.
// Returns -1 if the pool is full (spec §7: factories return -1 when full).
func (w *World) AddSphere(pos mgl32.Vec3, radius float32, mat voxchunk.Material) int32 {
	slot := w.allocSlot()
	if slot < 0 {
		return -1
	}
	obj := newVoxelObject(pos, w.voxelSize)
	center := mgl32.Vec3{GridSize / 2, GridSize / 2, GridSize / 2}
	FillSphere(&obj.Grid, center, radius, mat)
	obj.RefreshShape(Density)
	w.slots[slot] = *obj
	w.insertLive(slot)
	return slot
}

// AddBox allocates a body whose grid is filled with a solid box given by
// local-grid half-extents (in voxels).
func (w *World) AddBox(pos mgl32.Vec3, halfExtents mgl32.Vec3, mat voxchunk.Material) int32 {
	slot := w.allocSlot()
	if slot < 0 {
		return -1
	}
	obj := newVoxelObject(pos, w.voxelSize)
	center := mgl32.Vec3{GridSize / 2, GridSize / 2, GridSize / 2}
	FillBox(&obj.Grid, center.Sub(halfExtents), center.Add(halfExtents), mat)
	obj.RefreshShape(Density)
	w.slots[slot] = *obj
	w.insertLive(slot)
	return slot
}

// AddFromVoxels allocates a body whose grid is populated from an extracted
// dense voxel buffer (spec §4.7 step 3: "extract voxels into a
// size_x×size_y×size_z buffer (must fit in the body grid)").
func (w *World) AddFromVoxels(pos mgl32.Vec3, sizeX, sizeY, sizeZ int, materials []voxchunk.Material) int32 {
	if sizeX > GridSize || sizeY > GridSize || sizeZ > GridSize {
		return -1
	}
	slot := w.allocSlot()
	if slot < 0 {
		return -1
	}
	obj := newVoxelObject(pos, w.voxelSize)
	FillFromMaterials(&obj.Grid, sizeX, sizeY, sizeZ, materials)
	obj.RefreshShape(Density)
	w.slots[slot] = *obj
	w.insertLive(slot)
	return slot
}

// Wake clears a body's sleep state (grounded on physics_body_wake in the
// C original), for callers that apply an impulse to a resting body and
// need it to resume simulating this tick rather than next.
func (w *World) Wake(slot int32) {
	o := w.Get(slot)
	if o == nil {
		return
	}
	o.Sleeping = false
	o.settleTimer = 0
}

// Remove deactivates a body's slot, making it immediately available for
// reuse by a later Add call.
func (w *World) Remove(slot int32) {
	if slot < 0 || int(slot) >= len(w.slots) || !w.alive[slot] {
		return
	}
	w.alive[slot] = false
	for i, s := range w.live {
		if s == slot {
			w.live = append(w.live[:i], w.live[i+1:]...)
			break
		}
	}
}

// Raycast returns the nearest hit body slot along the ray, or -1 on miss,
// using a coarse bounding-sphere test per live body (a full BVH-accelerated
// version is provided by voxbvh for larger worlds).
func (w *World) Raycast(origin, dir mgl32.Vec3, maxDistance float32) (int32, float32) {
	best := int32(-1)
	bestDist := maxDistance
	length := dir.Len()
	if length < 1e-9 {
		return -1, -1
	}
	unit := dir.Mul(1 / length)
	for _, slot := range w.live {
		o := &w.slots[slot]
		r := o.BoundingRadius()
		toCenter := o.Position.Sub(origin)
		tca := toCenter.Dot(unit)
		if tca < 0 {
			continue
		}
		d2 := toCenter.LenSqr() - tca*tca
		if d2 > r*r {
			continue
		}
		thc := sqrtf(r*r - d2)
		t := tca - thc
		if t < 0 || t > bestDist {
			continue
		}
		bestDist = t
		best = slot
	}
	return best, bestDist
}

func sqrtf(v float32) float32 {
	if v <= 0 {
		return 0
	}
	lo, hi := float32(0), v
	if v < 1 {
		hi = 1
	}
	for i := 0; i < 30; i++ {
		mid := (lo + hi) / 2
		if mid*mid > v {
			hi = mid
		} else {
			lo = mid
		}
	}
	return (lo + hi) / 2
}

// Update runs one tick of the body pipeline (spec §4.5) for every active
// non-sleeping body: inertia init, gravity + topple, damping, CCD floor
// clamp, integration, floor/terrain/object collision, sleep detection, then
// deactivates bodies that fell far below the floor and processes the
// bounded split/recalc queues.
func (w *World) Update(dt float32, floorY float32, terrain *voxvolume.Volume) {
	for _, slot := range w.live {
		o := &w.slots[slot]
		if o.Sleeping {
			continue
		}
		o.ensureInertia()
		w.integrateOne(o, dt, floorY)
	}

	w.resolveObjectPairs(dt)

	for pass := 0; pass < 3; pass++ {
		for _, slot := range w.live {
			o := &w.slots[slot]
			if o.Sleeping {
				continue
			}
			w.enforceFloor(o, floorY)
		}
	}

	if terrain != nil {
		for _, slot := range w.live {
			o := &w.slots[slot]
			if o.Sleeping {
				continue
			}
			w.resolveTerrain(o, terrain)
		}
	}

	for _, slot := range w.live {
		o := &w.slots[slot]
		if o.Sleeping {
			continue
		}
		w.detectSleep(o, dt)
	}

	w.deactivateFallen(floorY)
	w.processSplitQueue()
	w.processRecalcQueue()
}

// deactivateFallen removes bodies that have fallen far below the floor
// (spec §4.5: "bodies that fall too far below the floor are deactivated
// and the array compacted at tick end" — compaction here is the live-slot
// list removal, not a physical memmove, since the BVH indexes by slot).
func (w *World) deactivateFallen(floorY float32) {
	const fallMargin = 64
	for i := 0; i < len(w.live); {
		slot := w.live[i]
		o := &w.slots[slot]
		if o.Position.Y() < floorY-fallMargin {
			w.alive[slot] = false
			w.live = append(w.live[:i], w.live[i+1:]...)
			continue
		}
		i++
	}
}
