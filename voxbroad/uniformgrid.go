package voxbroad

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxcore/voxcore/voxconfig"
)

type gridCell struct {
	key      int64
	valid    bool
	items    [cellItemCapacity]int32
	count    int
	overflow int
}

// UniformGrid buckets proxies into fixed-size cells over an open-addressed
// table and emits candidate pairs from same-cell membership, deduping
// against a fixed-size bit-hashed seen table so a pair spanning no more
// than one shared cell is still only emitted once. Used by the proxy step
// above voxconfig.GetPairBruteForceLimit (spec §4.9).
type UniformGrid struct {
	cellSize float32
	cellCap  int
	table    []gridCell

	pairs    []Pair
	seenBits []uint64
	dropped  int
}

// NewUniformGrid allocates a uniform grid with the configured cell size and
// per-cell capacity, plus a fixed pair-dedup bitset sized for maxEntries.
// A cell never holds more than cellItemCapacity (8) entries, the length of
// its fixed item array; a configured capacity above that acts as 8.
func NewUniformGrid(maxEntries int) *UniformGrid {
	slots := voxconfig.GetSpatialHashCapacity()
	if slots < maxEntries*2 {
		slots = maxEntries * 2
	}
	bitWords := (maxEntries*maxEntries)/64 + 1
	if bitWords < 64 {
		bitWords = 64
	}
	return &UniformGrid{
		cellSize: voxconfig.GetUniformGridCellSize(),
		cellCap:  voxconfig.GetUniformGridCellCapacity(),
		table:    make([]gridCell, slots),
		pairs:    make([]Pair, 0, maxEntries*4),
		seenBits: make([]uint64, bitWords),
	}
}

// Reset empties all cells and the pair-dedup bitset for the next build.
func (g *UniformGrid) Reset() {
	for i := range g.table {
		g.table[i].valid = false
		g.table[i].count = 0
		g.table[i].overflow = 0
	}
	g.pairs = g.pairs[:0]
	for i := range g.seenBits {
		g.seenBits[i] = 0
	}
	g.dropped = 0
}

func cellKey3(x, y, z int32) int64 {
	const bits = 21
	const mask = (1 << bits) - 1
	return int64(uint64(x&mask)<<(2*bits) | uint64(y&mask)<<bits | uint64(z&mask))
}

func (g *UniformGrid) cellOf(p mgl32.Vec3) (int32, int32, int32) {
	return int32(floorDivF(p.X(), g.cellSize)),
		int32(floorDivF(p.Y(), g.cellSize)),
		int32(floorDivF(p.Z(), g.cellSize))
}

func (g *UniformGrid) findOrInsertSlot(key int64) int {
	n := len(g.table)
	start := int(uint64(key) % uint64(n))
	for probe := 0; probe < n; probe++ {
		idx := (start + probe) % n
		cell := &g.table[idx]
		if !cell.valid {
			cell.valid = true
			cell.key = key
			return idx
		}
		if cell.key == key {
			return idx
		}
	}
	return -1
}

// Insert adds a proxy's index and position to its cell, dropping it (and
// counting the drop) if that cell or the whole table is at capacity.
func (g *UniformGrid) Insert(index int32, pos mgl32.Vec3) {
	cx, cy, cz := g.cellOf(pos)
	slot := g.findOrInsertSlot(cellKey3(cx, cy, cz))
	if slot < 0 {
		g.dropped++
		return
	}
	cell := &g.table[slot]
	if cell.count >= g.cellCap || cell.count >= cellItemCapacity {
		cell.overflow++
		g.dropped++
		return
	}
	cell.items[cell.count] = index
	cell.count++
}

func (g *UniformGrid) pairSeen(a, b int32) bool {
	h := pairHash(a, b, uint64(len(g.seenBits))*64)
	word, bit := h/64, h%64
	mask := uint64(1) << bit
	if g.seenBits[word]&mask != 0 {
		return true
	}
	g.seenBits[word] |= mask
	return false
}

func pairHash(a, b int32, mod uint64) uint64 {
	if a > b {
		a, b = b, a
	}
	h := uint64(uint32(a))*2654435761 ^ uint64(uint32(b))*0x9E3779B97F4A7C15
	return h % mod
}

// Pairs returns every distinct pair of proxies sharing a cell, each emitted
// at most once per call (a bit-hash collision may suppress a distinct pair
// that hashes to an already-seen bit; acceptable for a broadphase, since a
// missed candidate this tick is picked up the next).
func (g *UniformGrid) Pairs() []Pair {
	for i := range g.table {
		cell := &g.table[i]
		if !cell.valid {
			continue
		}
		for a := 0; a < cell.count; a++ {
			for b := a + 1; b < cell.count; b++ {
				if g.pairSeen(cell.items[a], cell.items[b]) {
					continue
				}
				g.pairs = append(g.pairs, makePair(cell.items[a], cell.items[b]))
			}
		}
	}
	return g.pairs
}

// DroppedCount returns how many insertions since the last Reset overflowed
// either a full cell or a full table.
func (g *UniformGrid) DroppedCount() int { return g.dropped }
