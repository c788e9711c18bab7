package voxvolume

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxcore/voxcore/voxchunk"
)

// EditBegin opens an edit batch, clearing the touched-chunk set and its
// dedup bitmap and arming the budget. Batches are non-reentrant; callers
// must pair EditBegin with EditEnd around all mutating calls in a tick
// (spec §4.2).
func (v *Volume) EditBegin(budget int) {
	v.editActive = true
	// Defensively clear every bit rather than just the previously-touched
	// set: a prior batch that never reached EditEnd (host crash, early
	// return) could leave bits set with no corresponding touched entry.
	for i := range v.touchedBitmap {
		v.touchedBitmap[i] = false
	}
	v.touched = v.touched[:0]
	v.editBudget = budget
	v.editCount = 0
}

// EditSet performs a single-voxel write within an open edit batch,
// respecting the batch's edit budget. Returns false if the batch is not
// open, the budget is exhausted, or the point is out of bounds.
func (v *Volume) EditSet(p mgl32.Vec3, mat voxchunk.Material) bool {
	if !v.editActive || v.editCount >= v.editBudget {
		return false
	}
	vx, vy, vz := v.worldToVoxel(p)
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

// EditEnd closes the current edit batch: it rebuilds occupancy exactly for
// every touched chunk (paying one full rebuild per chunk rather than one
// incremental recompute per edit — the dense bulk-edit path this batch
// mode exists for), marks each touched chunk Dirty and shadow-dirty and
// enqueues it, snapshots the touched set as the volume's last-edit-chunks
// list (consumed by connectivity), and returns the total edit count.
func (v *Volume) EditEnd() int {
	count := v.editCount
	v.editActive = false // before the loop: markChunkTouched must not re-record these as new edits
	v.lastEditChunks = v.lastEditChunks[:0]
	for _, idx := range v.touched {
		ch := v.chunks[idx]
		wasActive := ch.State() == voxchunk.StateActive
		ch.RebuildOccupancy()
		ch.SetState(voxchunk.StateDirty)
		if wasActive {
			v.activeChunkCount--
		}
		v.markChunkTouched(idx, ch.X, ch.Y, ch.Z)
		v.lastEditChunks = append(v.lastEditChunks, ChunkCoord{X: ch.X, Y: ch.Y, Z: ch.Z})
		v.touchedBitmap[idx] = false
	}
	v.touched = v.touched[:0]
	v.editCount = 0
	return count
}

// LastEditChunks returns the chunks touched by the most recently closed
// edit batch, consumed by connectivity's dirty-region analysis. Set and
// Fill* calls made outside an edit batch do not change this list.
func (v *Volume) LastEditChunks() []ChunkCoord {
	return v.lastEditChunks
}
