// Package voxbroad implements the three bounded, zero-allocation-after-init
// broadphase structures named in spec §4.9: an open-addressed spatial hash
// keyed by chunk coordinate, a sweep-and-prune sweep over X endpoints, and a
// uniform grid with bit-hashed pair dedup. All three emit each candidate
// pair exactly once, lower index first.
//
// Grounded on the teacher's internal/world/chunk_store.go column index
// (colIndex map[[2]int][]*Chunk), generalized from a Go map of chunk
// columns into a fixed-capacity open-addressed table so insertion and
// lookup allocate nothing once built.
package voxbroad

// Pair is a candidate colliding pair, always reported with A < B.
type Pair struct {
	A, B int32
}

func makePair(a, b int32) Pair {
	if a < b {
		return Pair{A: a, B: b}
	}
	return Pair{A: b, B: a}
}
