// Package voxvolume implements the chunked sparse voxel volume: the
// world<->voxel coordinate mapping, batched edits, dirty-chunk tracking,
// raycasting, and shadow-pyramid packing described in spec §4.2. It
// generalizes the teacher's map-based, unbounded ChunkStore
// (mini-mc's internal/world/chunk_store.go) into a bounded, fixed-size
// chunk array addressed by integer chunk coordinates, matching spec §3.
package voxvolume

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxcore/voxcore/voxchunk"
	"github.com/voxcore/voxcore/voxconfig"
	"github.com/voxcore/voxcore/voxmath"
)

// ChunkCoord identifies a chunk within a volume.
type ChunkCoord struct {
	X, Y, Z int
}

// Volume owns a 3-D array of chunks and the dirty-tracking/edit-batch state
// that surrounds it (spec §3 Volume).
type Volume struct {
	chunksX, chunksY, chunksZ int
	chunks                    []*voxchunk.Chunk // len chunksX*chunksY*chunksZ

	origin    mgl32.Vec3 // world-space min corner
	voxelSize float32
	bounds    voxmath.AABB

	dirty  dirtyTracker
	shadow shadowTracker

	frameQueue []int

	editActive     bool
	touched        []int
	touchedBitmap  []bool
	editBudget     int
	editCount      int
	lastEditChunks []ChunkCoord

	frameCounter     uint64
	totalSolidVoxels int
	activeChunkCount int

	logFn func(string)
}

// New constructs a Volume from a chunk-grid extent and axis-aligned world
// bounds. Voxel size is derived as the minimum of the three per-axis voxel
// sizes (spec §4.2 Construct variant 1).
func New(chunksX, chunksY, chunksZ int, bounds voxmath.AABB) *Volume {
	size := bounds.Max.Sub(bounds.Min)
	vx := size.X() / float32(chunksX*voxchunk.Size)
	vy := size.Y() / float32(chunksY*voxchunk.Size)
	vz := size.Z() / float32(chunksZ*voxchunk.Size)
	voxelSize := vx
	if vy < voxelSize {
		voxelSize = vy
	}
	if vz < voxelSize {
		voxelSize = vz
	}
	return newVolume(chunksX, chunksY, chunksZ, bounds.Min, voxelSize, bounds)
}

// NewFromVoxelSize constructs a Volume from a chunk-grid extent, a world
// origin, and an explicit voxel size; world bounds are derived (spec §4.2
// Construct variant 2).
func NewFromVoxelSize(chunksX, chunksY, chunksZ int, origin mgl32.Vec3, voxelSize float32) *Volume {
	extent := mgl32.Vec3{
		float32(chunksX*voxchunk.Size) * voxelSize,
		float32(chunksY*voxchunk.Size) * voxelSize,
		float32(chunksZ*voxchunk.Size) * voxelSize,
	}
	bounds := voxmath.AABB{Min: origin, Max: origin.Add(extent)}
	return newVolume(chunksX, chunksY, chunksZ, origin, voxelSize, bounds)
}

func newVolume(chunksX, chunksY, chunksZ int, origin mgl32.Vec3, voxelSize float32, bounds voxmath.AABB) *Volume {
	n := chunksX * chunksY * chunksZ
	v := &Volume{
		chunksX: chunksX, chunksY: chunksY, chunksZ: chunksZ,
		chunks:    make([]*voxchunk.Chunk, n),
		origin:    origin,
		voxelSize: voxelSize,
		bounds:    bounds,
	}
	for cz := 0; cz < chunksZ; cz++ {
		for cy := 0; cy < chunksY; cy++ {
			for cx := 0; cx < chunksX; cx++ {
				v.chunks[v.chunkLinearIndex(cx, cy, cz)] = voxchunk.New(cx, cy, cz)
			}
		}
	}
	v.dirty = newDirtyTracker(voxconfig.GetDirtyRingCapacity(), n)
	v.shadow = newShadowTracker(n, chunksX, chunksY, chunksZ)
	v.editBudget = voxconfig.GetEditBudgetPerTick()
	v.touchedBitmap = make([]bool, n)
	return v
}

// SetLogger installs a callback used only for the two documented
// recoverable conditions (dirty-ring overflow, flood-fill stack overflow
// is reported by voxconnect instead). Passing nil disables logging.
func (v *Volume) SetLogger(fn func(string)) { v.logFn = fn }

func (v *Volume) log(msg string) {
	if v.logFn != nil {
		v.logFn(msg)
	}
}

func (v *Volume) chunkLinearIndex(cx, cy, cz int) int {
	return (cz*v.chunksY+cy)*v.chunksX + cx
}

func (v *Volume) inChunkBounds(cx, cy, cz int) bool {
	return cx >= 0 && cx < v.chunksX && cy >= 0 && cy < v.chunksY && cz >= 0 && cz < v.chunksZ
}

// VoxelSize returns the volume's edge length per voxel.
func (v *Volume) VoxelSize() float32 { return v.voxelSize }

// Bounds returns the volume's world-space axis-aligned bounds.
func (v *Volume) Bounds() voxmath.AABB { return v.bounds }

// ChunkCounts returns the chunk-grid extent.
func (v *Volume) ChunkCounts() (int, int, int) { return v.chunksX, v.chunksY, v.chunksZ }

// TotalSolidVoxels returns the sum over all chunks of solid voxel counts.
func (v *Volume) TotalSolidVoxels() int { return v.totalSolidVoxels }

// ActiveChunkCount returns the number of chunks currently in the Active state.
func (v *Volume) ActiveChunkCount() int { return v.activeChunkCount }

// ActivateChunk transitions a freshly populated chunk (Empty/Loading) to
// Active and maintains the active-chunk counter; hosts call this after
// placing initial content in a chunk outside the Set/Fill edit path.
func (v *Volume) ActivateChunk(cx, cy, cz int) {
	ch := v.ChunkAt(cx, cy, cz)
	if ch == nil || ch.State() == voxchunk.StateActive {
		return
	}
	ch.SetState(voxchunk.StateLoading)
	ch.SetState(voxchunk.StateActive)
	if ch.State() == voxchunk.StateActive {
		v.activeChunkCount++
	}
}

// ChunkAt returns the chunk at the given chunk coordinates, or nil if out of
// range.
func (v *Volume) ChunkAt(cx, cy, cz int) *voxchunk.Chunk {
	if !v.inChunkBounds(cx, cy, cz) {
		return nil
	}
	return v.chunks[v.chunkLinearIndex(cx, cy, cz)]
}

// worldToVoxel converts a world-space point to integer voxel coordinates
// using floor-based conversion, correct at negative coordinates.
func (v *Volume) worldToVoxel(p mgl32.Vec3) (int, int, int) {
	local := p.Sub(v.origin)
	vx := int(floorf(local.X() / v.voxelSize))
	vy := int(floorf(local.Y() / v.voxelSize))
	vz := int(floorf(local.Z() / v.voxelSize))
	return vx, vy, vz
}

func floorf(f float32) float32 {
	i := float32(int(f))
	if f < 0 && f != i {
		return i - 1
	}
	return i
}

// voxelToChunkLocal splits absolute voxel coordinates into a chunk
// coordinate and the local coordinate within that chunk.
func voxelToChunkLocal(vx, vy, vz int) (cx, cy, cz, lx, ly, lz int) {
	cx = voxmath.FloorDiv(vx, voxchunk.Size)
	cy = voxmath.FloorDiv(vy, voxchunk.Size)
	cz = voxmath.FloorDiv(vz, voxchunk.Size)
	lx = voxmath.FloorMod(vx, voxchunk.Size)
	ly = voxmath.FloorMod(vy, voxchunk.Size)
	lz = voxmath.FloorMod(vz, voxchunk.Size)
	return
}

// Get returns the material at a world-space point. Out-of-bounds reads
// return empty.
func (v *Volume) Get(p mgl32.Vec3) voxchunk.Material {
	vx, vy, vz := v.worldToVoxel(p)
	cx, cy, cz, lx, ly, lz := voxelToChunkLocal(vx, vy, vz)
	ch := v.ChunkAt(cx, cy, cz)
	if ch == nil {
		return voxchunk.MaterialEmpty
	}
	return ch.Get(lx, ly, lz)
}

// IsSolid reports whether the voxel at a world-space point is non-empty.
func (v *Volume) IsSolid(p mgl32.Vec3) bool {
	return v.Get(p) != voxchunk.MaterialEmpty
}

// Set writes the material at a world-space point. Out-of-bounds writes are
// ignored. Updates total solid count, enqueues the touched chunk to the
// dirty ring and shadow ring, and records it in the active edit batch if
// one is open.
func (v *Volume) Set(p mgl32.Vec3, mat voxchunk.Material) {
	vx, vy, vz := v.worldToVoxel(p)
	v.setVoxel(vx, vy, vz, mat)
}

func (v *Volume) setVoxel(vx, vy, vz int, mat voxchunk.Material) bool {
	cx, cy, cz, lx, ly, lz := voxelToChunkLocal(vx, vy, vz)
	if !v.inChunkBounds(cx, cy, cz) {
		return false
	}
	idx := v.chunkLinearIndex(cx, cy, cz)
	ch := v.chunks[idx]
	before := ch.SolidCount()
	wasActive := ch.State() == voxchunk.StateActive
	if !ch.Set(lx, ly, lz, mat) {
		return false
	}
	v.totalSolidVoxels += ch.SolidCount() - before
	if wasActive {
		v.activeChunkCount--
	}
	v.markChunkTouched(idx, cx, cy, cz)
	return true
}

// markChunkTouched enqueues idx to the dirty ring and shadow ring, and
// records it in the open edit batch if any.
func (v *Volume) markChunkTouched(idx, cx, cy, cz int) {
	if v.dirty.Mark(idx) {
		v.log("dirty ring overflow, falling back to bitmap scan")
	}
	v.shadow.MarkChunkDirty(cx, cy, cz)
	if v.editActive {
		if !v.touchedBitmap[idx] {
			v.touchedBitmap[idx] = true
			v.touched = append(v.touched, idx)
		}
		v.editCount++
	}
}

// FillSphere fills a world-space sphere (centre, radius) with mat, clamped
// to the volume, and returns the total number of voxels modified.
func (v *Volume) FillSphere(center mgl32.Vec3, radius float32, mat voxchunk.Material) int {
	minP := center.Sub(mgl32.Vec3{radius, radius, radius})
	maxP := center.Add(mgl32.Vec3{radius, radius, radius})
	minVX, minVY, minVZ := v.worldToVoxel(minP)
	maxVX, maxVY, maxVZ := v.worldToVoxel(maxP)

	localCenter := center.Sub(v.origin).Mul(1 / v.voxelSize)
	r := radius / v.voxelSize
	r2 := r * r

	modified := 0
	for vz := minVZ; vz <= maxVZ; vz++ {
		for vy := minVY; vy <= maxVY; vy++ {
			for vx := minVX; vx <= maxVX; vx++ {
				dx := float32(vx) + 0.5 - localCenter.X()
				dy := float32(vy) + 0.5 - localCenter.Y()
				dz := float32(vz) + 0.5 - localCenter.Z()
				if dx*dx+dy*dy+dz*dz > r2 {
					continue
				}
				if v.setVoxel(vx, vy, vz, mat) {
					modified++
				}
			}
		}
	}
	return modified
}

// FillBox fills a world-space inclusive box [minP,maxP] with mat, clamped
// to the volume, and returns the total number of voxels modified.
func (v *Volume) FillBox(minP, maxP mgl32.Vec3, mat voxchunk.Material) int {
	minVX, minVY, minVZ := v.worldToVoxel(minP)
	maxVX, maxVY, maxVZ := v.worldToVoxel(maxP)

	modified := 0
	for vz := minVZ; vz <= maxVZ; vz++ {
		for vy := minVY; vy <= maxVY; vy++ {
			for vx := minVX; vx <= maxVX; vx++ {
				if v.setVoxel(vx, vy, vz, mat) {
					modified++
				}
			}
		}
	}
	return modified
}

// Clear resets every chunk to Empty with no voxels; used mainly by tests
// and by hosts that want to recycle a Volume without reallocating it.
func (v *Volume) Clear() {
	for cz := 0; cz < v.chunksZ; cz++ {
		for cy := 0; cy < v.chunksY; cy++ {
			for cx := 0; cx < v.chunksX; cx++ {
				v.chunks[v.chunkLinearIndex(cx, cy, cz)] = voxchunk.New(cx, cy, cz)
			}
		}
	}
	v.totalSolidVoxels = 0
	v.activeChunkCount = 0
	v.dirty = newDirtyTracker(voxconfig.GetDirtyRingCapacity(), len(v.chunks))
	v.shadow = newShadowTracker(len(v.chunks), v.chunksX, v.chunksY, v.chunksZ)
	v.frameQueue = nil
}

// RebuildAllOccupancy rebuilds hierarchical occupancy for every chunk from
// scratch (spec embedding surface rebuild_all_occupancy).
func (v *Volume) RebuildAllOccupancy() {
	total := 0
	active := 0
	for _, ch := range v.chunks {
		ch.RebuildOccupancy()
		total += ch.SolidCount()
		if ch.State() == voxchunk.StateActive {
			active++
		}
	}
	v.totalSolidVoxels = total
	v.activeChunkCount = active
}

// RebuildDirtyOccupancy rebuilds occupancy only for chunks currently marked
// dirty in the tracker's bitmap, without draining the ring (spec embedding
// surface rebuild_dirty_occupancy).
func (v *Volume) RebuildDirtyOccupancy() {
	for idx, dirty := range v.dirty.bitmap {
		if !dirty {
			continue
		}
		v.chunks[idx].RebuildOccupancy()
	}
}
