package voxvolume

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxcore/voxcore/voxchunk"
)

// VoxelDims returns the volume's total extent in voxels along each axis,
// used by connectivity to size its per-voxel work buffers.
func (v *Volume) VoxelDims() (int, int, int) {
	return v.chunksX * voxchunk.Size, v.chunksY * voxchunk.Size, v.chunksZ * voxchunk.Size
}

// Origin returns the volume's world-space minimum corner.
func (v *Volume) Origin() mgl32.Vec3 { return v.origin }

// WorldToVoxel converts a world-space point to absolute voxel coordinates
// using floor-based conversion (exported wrapper for contact/connectivity
// callers that need to map world queries into voxel-index space).
func (v *Volume) WorldToVoxel(p mgl32.Vec3) (int, int, int) {
	return v.worldToVoxel(p)
}

// SplitVoxel converts absolute voxel coordinates into chunk coordinates and
// the local coordinate within that chunk (exported wrapper over the
// package-internal conversion, for callers working in voxel-index space
// rather than world points — connectivity, contact primitives).
func (v *Volume) SplitVoxel(vx, vy, vz int) (cx, cy, cz, lx, ly, lz int) {
	return voxelToChunkLocal(vx, vy, vz)
}

// MaterialAtVoxel returns the material at absolute voxel coordinates.
// Out-of-bounds coordinates return empty.
func (v *Volume) MaterialAtVoxel(vx, vy, vz int) voxchunk.Material {
	cx, cy, cz, lx, ly, lz := voxelToChunkLocal(vx, vy, vz)
	ch := v.ChunkAt(cx, cy, cz)
	if ch == nil {
		return voxchunk.MaterialEmpty
	}
	return ch.Get(lx, ly, lz)
}

// IsSolidAtVoxel reports whether the voxel at absolute voxel coordinates is
// non-empty.
func (v *Volume) IsSolidAtVoxel(vx, vy, vz int) bool {
	return v.MaterialAtVoxel(vx, vy, vz) != voxchunk.MaterialEmpty
}

// WorldPointOfVoxel returns the world-space lowest corner of an absolute
// voxel coordinate.
func (v *Volume) WorldPointOfVoxel(vx, vy, vz int) mgl32.Vec3 {
	return v.origin.Add(mgl32.Vec3{float32(vx), float32(vy), float32(vz)}.Mul(v.voxelSize))
}

// SetAtVoxel writes a material at absolute voxel coordinates, outside of an
// edit batch. Used by callers (island removal) that want the normal
// incremental Set path rather than the deferred-rebuild edit-batch path.
func (v *Volume) SetAtVoxel(vx, vy, vz int, mat voxchunk.Material) bool {
	return v.setVoxel(vx, vy, vz, mat)
}

// EditSetAtVoxel performs a single-voxel write at absolute voxel
// coordinates within an open edit batch (the voxel-index-space counterpart
// to EditSet, used by island removal so many voxel writes across possibly
// many chunks share one deferred occupancy rebuild per chunk).
func (v *Volume) EditSetAtVoxel(vx, vy, vz int, mat voxchunk.Material) bool {
	if !v.editActive || v.editCount >= v.editBudget {
		return false
	}
	cx, cy, cz, lx, ly, lz := voxelToChunkLocal(vx, vy, vz)
	if !v.inChunkBounds(cx, cy, cz) {
		return false
	}
	idx := v.chunkLinearIndex(cx, cy, cz)
	ch := v.chunks[idx]
	before := ch.SolidCount()
	if !ch.SetRaw(lx, ly, lz, mat) {
		return false
	}
	v.totalSolidVoxels += ch.SolidCount() - before
	if !v.touchedBitmap[idx] {
		v.touchedBitmap[idx] = true
		v.touched = append(v.touched, idx)
	}
	v.editCount++
	return true
}

// ChunkGridSize returns the volume's chunk-grid extent and chunk edge
// length in voxels, used to classify lateral-edge chunks for VolumeEdge
// anchoring.
func (v *Volume) ChunkGridSize() (chunksX, chunksY, chunksZ, chunkSize int) {
	return v.chunksX, v.chunksY, v.chunksZ, voxchunk.Size
}
