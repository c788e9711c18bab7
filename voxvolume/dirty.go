package voxvolume

import "github.com/voxcore/voxcore/voxchunk"

// dirtyTracker implements the ring + bitmap dirty-chunk tracking described
// in spec §4.2.1: a fixed-capacity ring gives O(1) enqueue/drain in the
// common case; a side bitmap dedups ring membership and, once the ring
// overflows, becomes the sole source of truth until it drains empty.
type dirtyTracker struct {
	ring []int
	head int
	tail int
	size int

	bitmap       []bool
	bitmapSetCnt int

	overflowed bool
	scanPos    int
}

func newDirtyTracker(capacity, numChunks int) dirtyTracker {
	return dirtyTracker{
		ring:   make([]int, capacity),
		bitmap: make([]bool, numChunks),
	}
}

// Mark records idx as dirty. Returns true if this call caused the tracker
// to enter (or remain in) overflow state.
func (d *dirtyTracker) Mark(idx int) bool {
	if d.bitmap[idx] {
		// Already pending, either in the ring or (if overflowed) recorded
		// solely by the bitmap bit.
		return d.overflowed
	}
	d.bitmap[idx] = true
	d.bitmapSetCnt++

	if d.overflowed {
		return true
	}

	if d.size == len(d.ring) {
		// Ring is full: enter overflow mode. Drop the ring's contents —
		// every entry it held already has its bitmap bit set, so nothing
		// is lost; the bitmap becomes authoritative until it drains empty.
		d.head, d.tail, d.size = 0, 0, 0
		d.overflowed = true
		d.scanPos = 0
		return true
	}

	d.ring[d.tail] = idx
	d.tail = (d.tail + 1) % len(d.ring)
	d.size++
	return false
}

// DrainUpTo removes up to n dirty chunk indices and clears their bitmap
// bit, returning the drained indices. In overflow mode it scans the
// bitmap from a saved position, resuming on the next call; once the
// bitmap is fully drained it exits overflow mode.
func (d *dirtyTracker) DrainUpTo(n int) []int {
	if n <= 0 {
		return nil
	}
	out := make([]int, 0, n)

	if !d.overflowed {
		for len(out) < n && d.size > 0 {
			idx := d.ring[d.head]
			d.head = (d.head + 1) % len(d.ring)
			d.size--
			d.bitmap[idx] = false
			d.bitmapSetCnt--
			out = append(out, idx)
		}
		return out
	}

	numChunks := len(d.bitmap)
	if numChunks == 0 {
		return out
	}
	scanned := 0
	pos := d.scanPos
	for len(out) < n && scanned < numChunks {
		if d.bitmap[pos] {
			d.bitmap[pos] = false
			d.bitmapSetCnt--
			out = append(out, pos)
		}
		pos = (pos + 1) % numChunks
		scanned++
	}
	d.scanPos = pos

	if d.bitmapSetCnt == 0 {
		d.overflowed = false
		d.scanPos = 0
	}
	return out
}

// Overflowed reports whether the tracker is currently in bitmap-scan mode.
func (d *dirtyTracker) Overflowed() bool { return d.overflowed }

// BeginFrame promotes up to maxPerFrame dirty chunks (callers typically pass
// voxconfig.GetDirtyPerFrame) from the tracker into the volume's per-frame queue (spec embedding surface
// begin_frame), and transitions each promoted chunk Dirty->Uploading.
func (v *Volume) BeginFrame(maxPerFrame int) {
	v.frameCounter++
	drained := v.dirty.DrainUpTo(maxPerFrame)
	v.frameQueue = v.frameQueue[:0]
	for _, idx := range drained {
		ch := v.chunks[idx]
		if ch.State() != voxchunk.StateDirty {
			// Re-verify: a chunk promoted from the bitmap scan may already
			// have been acknowledged or re-emptied; only surface chunks
			// still genuinely dirty.
			continue
		}
		ch.SetState(voxchunk.StateUploading)
		v.frameQueue = append(v.frameQueue, idx)
	}
}

// GetDirtyChunks returns the current frame's promoted dirty-chunk queue as
// chunk coordinates.
func (v *Volume) GetDirtyChunks() []ChunkCoord {
	out := make([]ChunkCoord, 0, len(v.frameQueue))
	for _, idx := range v.frameQueue {
		ch := v.chunks[idx]
		out = append(out, ChunkCoord{X: ch.X, Y: ch.Y, Z: ch.Z})
	}
	return out
}

// MarkChunksUploaded acknowledges the current frame's dirty-chunk queue,
// transitioning each chunk Uploading->Active, and clears the queue.
func (v *Volume) MarkChunksUploaded() {
	for _, idx := range v.frameQueue {
		ch := v.chunks[idx]
		if ch.State() == voxchunk.StateUploading {
			ch.SetState(voxchunk.StateActive)
			v.activeChunkCount++
		}
	}
	v.frameQueue = v.frameQueue[:0]
}

// FrameCounter returns the number of BeginFrame calls so far.
func (v *Volume) FrameCounter() uint64 { return v.frameCounter }
