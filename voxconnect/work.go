package voxconnect

import "github.com/voxcore/voxcore/voxvolume"

// Work is a reusable per-voxel work buffer: a generation stamp per voxel
// (so "clear" is an O(1) generation bump, not a memory wipe) and the
// island id assigned to each visited voxel during the most recent analysis
// run (spec §4.3). Callers own a Work's lifetime and should reuse it across
// ticks rather than reallocate.
type Work struct {
	dimX, dimY, dimZ int

	generation []uint32
	currentGen uint32
	islandID   []IslandID
}

// NewWork allocates a work buffer sized to v's full voxel extent.
func NewWork(v *voxvolume.Volume) *Work {
	dx, dy, dz := v.VoxelDims()
	n := dx * dy * dz
	return &Work{
		dimX: dx, dimY: dy, dimZ: dz,
		generation: make([]uint32, n),
		islandID:   make([]IslandID, n),
		currentGen: 1,
	}
}

// Clear invalidates every previous stamp in O(1) by bumping the current
// generation; voxel generation entries left over from the prior run no
// longer match and are treated as unvisited.
func (w *Work) Clear() {
	w.currentGen++
	if w.currentGen == 0 {
		// Wrapped after 2^32 runs: force a real reset so stale zero-valued
		// generations do not appear spuriously current.
		for i := range w.generation {
			w.generation[i] = 0
		}
		w.currentGen = 1
	}
}

func (w *Work) index(vx, vy, vz int) int {
	return (vz*w.dimY+vy)*w.dimX + vx
}

func (w *Work) inBounds(vx, vy, vz int) bool {
	return vx >= 0 && vx < w.dimX && vy >= 0 && vy < w.dimY && vz >= 0 && vz < w.dimZ
}

func (w *Work) visited(idx int) bool {
	return w.generation[idx] == w.currentGen
}

func (w *Work) markVisited(idx int, id IslandID) {
	w.generation[idx] = w.currentGen
	w.islandID[idx] = id
}

// IslandIDAt returns the island id stamped on a voxel by the most recent
// analysis run, or 0 if the voxel was not visited (empty or unreachable).
func (w *Work) IslandIDAt(vx, vy, vz int) IslandID {
	if !w.inBounds(vx, vy, vz) {
		return 0
	}
	idx := w.index(vx, vy, vz)
	if !w.visited(idx) {
		return 0
	}
	return w.islandID[idx]
}
