package voxbroad

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxcore/voxcore/voxconfig"
)

const cellItemCapacity = 8

type cellKey struct {
	cx, cy, cz int32
}

type hashCell struct {
	key      cellKey
	valid    bool
	items    [cellItemCapacity]int32
	count    int
	overflow int
}

// SpatialHash buckets inserted (index, center, radius) entries by the
// (cx,cy,cz) chunk coordinate of their cell, using open addressing with
// linear probing over a fixed table. Used by voxbody's per-tick
// object-object pair generation (spec §4.5.4 step 1).
type SpatialHash struct {
	cellSize float32
	table    []hashCell
	count    int

	seenGen uint32
	seen    []uint32
	dropped int
}

// NewSpatialHash allocates a spatial hash with the given cell edge length
// and a slot table sized per voxconfig.GetSpatialHashCapacity, plus a
// generation-stamped "seen" array sized maxEntries for O(1) query dedup.
func NewSpatialHash(cellSize float32, maxEntries int) *SpatialHash {
	if cellSize <= 0 {
		cellSize = voxconfig.GetUniformGridCellSize()
	}
	slots := voxconfig.GetSpatialHashCapacity()
	if slots < maxEntries*2 {
		slots = maxEntries * 2
	}
	return &SpatialHash{
		cellSize: cellSize,
		table:    make([]hashCell, slots),
		seen:     make([]uint32, maxEntries),
	}
}

func (h *SpatialHash) cellOf(p mgl32.Vec3) cellKey {
	return cellKey{
		cx: int32(floorDivF(p.X(), h.cellSize)),
		cy: int32(floorDivF(p.Y(), h.cellSize)),
		cz: int32(floorDivF(p.Z(), h.cellSize)),
	}
}

func floorDivF(v, size float32) int32 {
	q := v / size
	fq := float32(int32(q))
	if fq > q {
		fq--
	}
	return int32(fq)
}

func hashCellKey(k cellKey) uint64 {
	const (
		p1 = 73856093
		p2 = 19349663
		p3 = 83492791
	)
	return uint64(uint32(k.cx)*p1) ^ uint64(uint32(k.cy)*p2) ^ uint64(uint32(k.cz)*p3)
}

// Clear empties the table and bumps the query-dedup generation; it does not
// reallocate any backing storage.
func (h *SpatialHash) Clear() {
	for i := range h.table {
		h.table[i].valid = false
		h.table[i].count = 0
		h.table[i].overflow = 0
	}
	h.count = 0
	h.dropped = 0
	h.seenGen++
	if h.seenGen == 0 {
		for i := range h.seen {
			h.seen[i] = 0
		}
		h.seenGen = 1
	}
}

func (h *SpatialHash) findOrInsertSlot(k cellKey) int {
	n := len(h.table)
	start := int(hashCellKey(k) % uint64(n))
	for probe := 0; probe < n; probe++ {
		idx := (start + probe) % n
		cell := &h.table[idx]
		if !cell.valid {
			cell.valid = true
			cell.key = k
			return idx
		}
		if cell.key == k {
			return idx
		}
	}
	return -1
}

// findSlot looks up an existing cell without inserting; used by queries so
// that probing a never-populated cell does not consume a table slot.
func (h *SpatialHash) findSlot(k cellKey) int {
	n := len(h.table)
	start := int(hashCellKey(k) % uint64(n))
	for probe := 0; probe < n; probe++ {
		idx := (start + probe) % n
		cell := &h.table[idx]
		if !cell.valid {
			return -1
		}
		if cell.key == k {
			return idx
		}
	}
	return -1
}

// Insert adds a body's (index, center, radius) entry into every cell its
// bounding sphere's AABB overlaps.
func (h *SpatialHash) Insert(index int32, center mgl32.Vec3, radius float32) {
	r := mgl32.Vec3{radius, radius, radius}
	lo := h.cellOf(center.Sub(r))
	hi := h.cellOf(center.Add(r))
	for cz := lo.cz; cz <= hi.cz; cz++ {
		for cy := lo.cy; cy <= hi.cy; cy++ {
			for cx := lo.cx; cx <= hi.cx; cx++ {
				slot := h.findOrInsertSlot(cellKey{cx, cy, cz})
				if slot < 0 {
					h.dropped++
					continue
				}
				cell := &h.table[slot]
				if cell.count < cellItemCapacity {
					cell.items[cell.count] = index
					cell.count++
				} else {
					cell.overflow++
					h.dropped++
				}
			}
		}
	}
	h.count++
}

// QueryAppend appends, into dst, the distinct indices of entries whose cell
// overlaps the query sphere's AABB (each index appended at most once per
// call, via the generation-stamped seen marker).
func (h *SpatialHash) QueryAppend(center mgl32.Vec3, radius float32, dst []int32) []int32 {
	h.seenGen++
	if h.seenGen == 0 {
		for i := range h.seen {
			h.seen[i] = 0
		}
		h.seenGen = 1
	}
	r := mgl32.Vec3{radius, radius, radius}
	lo := h.cellOf(center.Sub(r))
	hi := h.cellOf(center.Add(r))
	for cz := lo.cz; cz <= hi.cz; cz++ {
		for cy := lo.cy; cy <= hi.cy; cy++ {
			for cx := lo.cx; cx <= hi.cx; cx++ {
				slot := h.findSlot(cellKey{cx, cy, cz})
				if slot < 0 {
					continue
				}
				cell := &h.table[slot]
				for i := 0; i < cell.count; i++ {
					idx := cell.items[i]
					if int(idx) >= len(h.seen) {
						continue
					}
					if h.seen[idx] == h.seenGen {
						continue
					}
					h.seen[idx] = h.seenGen
					dst = append(dst, idx)
				}
			}
		}
	}
	return dst
}

// DroppedCount returns how many insertions since the last Clear overflowed
// either a full cell or a full table (diagnostic only).
func (h *SpatialHash) DroppedCount() int { return h.dropped }
