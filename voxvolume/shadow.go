package voxvolume

import "github.com/voxcore/voxcore/voxchunk"

// shadowTracker packs a three-level coarsened occupancy pyramid per chunk,
// used by hosts to render contact shadows without walking full-resolution
// voxel data (spec §4.2.2). mip0 packs 8 voxels per byte at half
// resolution over 2x2x2 source bricks (16^3 bytes per chunk); mip1 and
// mip2 are further 8x coarsenings, one byte per cell (8^3 and 4^3 bytes).
// Packing is lazy: a chunk's mip data is only rebuilt when MarkChunkDirty
// has touched it and a Pack* call is made.
type shadowTracker struct {
	chunksX, chunksY, chunksZ int

	mip0 [][]byte // per chunk, 16*16*16 bytes
	mip1 [][]byte // per chunk, 8*8*8 bytes
	mip2 [][]byte // per chunk, 4*4*4 bytes

	chunkDirty   []bool
	needsRebuild bool
}

const (
	mip0Span = 16
	mip1Span = 8
	mip2Span = 4
)

func newShadowTracker(numChunks, chunksX, chunksY, chunksZ int) shadowTracker {
	s := shadowTracker{
		chunksX: chunksX, chunksY: chunksY, chunksZ: chunksZ,
		mip0:       make([][]byte, numChunks),
		mip1:       make([][]byte, numChunks),
		mip2:       make([][]byte, numChunks),
		chunkDirty: make([]bool, numChunks),
	}
	for i := 0; i < numChunks; i++ {
		s.mip0[i] = make([]byte, mip0Span*mip0Span*mip0Span)
		s.mip1[i] = make([]byte, mip1Span*mip1Span*mip1Span)
		s.mip2[i] = make([]byte, mip2Span*mip2Span*mip2Span)
		s.chunkDirty[i] = true
	}
	s.needsRebuild = true
	return s
}

func (s *shadowTracker) linearIndex(cx, cy, cz int) int {
	return (cz*s.chunksY+cy)*s.chunksX + cx
}

// MarkChunkDirty records that a chunk's packed shadow mips are stale.
func (s *shadowTracker) MarkChunkDirty(cx, cy, cz int) {
	if cx < 0 || cx >= s.chunksX || cy < 0 || cy >= s.chunksY || cz < 0 || cz >= s.chunksZ {
		return
	}
	idx := s.linearIndex(cx, cy, cz)
	s.chunkDirty[idx] = true
	s.needsRebuild = true
}

// NeedsFullRebuild reports whether any chunk's shadow pyramid is stale.
func (v *Volume) NeedsFullRebuild() bool { return v.shadow.needsRebuild }

// PackChunkShadow rebuilds the shadow pyramid for one chunk if it is marked
// dirty, and returns its three mip levels. Safe to call every frame; it is
// a no-op when the chunk is already packed.
func (v *Volume) PackChunkShadow(cx, cy, cz int) (mip0, mip1, mip2 []byte) {
	ch := v.ChunkAt(cx, cy, cz)
	if ch == nil {
		return nil, nil, nil
	}
	idx := v.shadow.linearIndex(cx, cy, cz)
	if v.shadow.chunkDirty[idx] {
		v.packChunkShadowAt(idx, ch)
	}
	return v.shadow.mip0[idx], v.shadow.mip1[idx], v.shadow.mip2[idx]
}

// PackAllShadow rebuilds every chunk's shadow pyramid, including chunks not
// marked dirty, and clears the full-rebuild flag.
func (v *Volume) PackAllShadow() {
	for cz := 0; cz < v.chunksZ; cz++ {
		for cy := 0; cy < v.chunksY; cy++ {
			for cx := 0; cx < v.chunksX; cx++ {
				idx := v.chunkLinearIndex(cx, cy, cz)
				v.packChunkShadowAt(idx, v.chunks[idx])
			}
		}
	}
	v.shadow.needsRebuild = false
}

func (v *Volume) packChunkShadowAt(idx int, ch *voxchunk.Chunk) {
	mip0 := v.shadow.mip0[idx]
	for by := 0; by < mip0Span; by++ {
		for bz := 0; bz < mip0Span; bz++ {
			for bx := 0; bx < mip0Span; bx++ {
				var bits byte
				sx, sy, sz := bx*2, by*2, bz*2
				bit := byte(1)
				for dz := 0; dz < 2; dz++ {
					for dy := 0; dy < 2; dy++ {
						for dx := 0; dx < 2; dx++ {
							if ch.IsSolid(sx+dx, sy+dy, sz+dz) {
								bits |= bit
							}
							bit <<= 1
						}
					}
				}
				mip0[(bz*mip0Span+by)*mip0Span+bx] = bits
			}
		}
	}

	mip1 := v.shadow.mip1[idx]
	for by := 0; by < mip1Span; by++ {
		for bz := 0; bz < mip1Span; bz++ {
			for bx := 0; bx < mip1Span; bx++ {
				mip1[(bz*mip1Span+by)*mip1Span+bx] = coarsenMip(mip0, mip0Span, bx, by, bz)
			}
		}
	}

	mip2 := v.shadow.mip2[idx]
	for by := 0; by < mip2Span; by++ {
		for bz := 0; bz < mip2Span; bz++ {
			for bx := 0; bx < mip2Span; bx++ {
				mip2[(bz*mip2Span+by)*mip2Span+bx] = coarsenMip(mip1, mip1Span, bx, by, bz)
			}
		}
	}

	v.shadow.chunkDirty[idx] = false
}

// coarsenMip ORs together the occupancy of an 2x2x2 block of bytes from a
// finer mip level into a single propagated byte (any solid bit below marks
// the coarser cell occupied).
func coarsenMip(fine []byte, fineSpan, bx, by, bz int) byte {
	var any byte
	sx, sy, sz := bx*2, by*2, bz*2
	for dz := 0; dz < 2; dz++ {
		for dy := 0; dy < 2; dy++ {
			for dx := 0; dx < 2; dx++ {
				if fine[((sz+dz)*fineSpan+(sy+dy))*fineSpan+(sx+dx)] != 0 {
					any = 1
				}
			}
		}
	}
	return any
}
