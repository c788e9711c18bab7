// Package voxchunk implements the fixed 32^3 voxel chunk: a flat material
// array with hierarchical occupancy bitmaps and a lifecycle state machine.
// It generalizes the teacher's 16x256x16 sectioned chunk (mini-mc's
// internal/world/chunk.go) down to the spec's single flat 32^3 cube, and
// borrows its occupancy-bit indexing scheme from Gekko3D's brick/micro-cell
// bitmasks (voxelrt/rt/volume/xbrickmap.go).
package voxchunk

// Material is one byte per voxel; 0 is reserved for empty.
type Material = uint8

const (
	// MaterialEmpty is the reserved empty material id.
	MaterialEmpty Material = 0

	// Size is the chunk's edge length in voxels.
	Size = 32

	// region0Span is the edge length of an 8^3 sub-region.
	region0Span = 8
	// region0PerAxis is how many 8^3 regions fit along one chunk axis.
	region0PerAxis = Size / region0Span // 4
	// region1PerAxis is how many level0 regions make up one level1 axis group.
	region1PerAxis = 2

	volume = Size * Size * Size
)

// State is a chunk's lifecycle stage.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateActive
	StateDirty
	StateUploading
)

// Chunk is a fixed 32^3 cube of voxels with hierarchical occupancy.
type Chunk struct {
	X, Y, Z int // chunk coordinates in the owning volume

	materials [volume]Material

	level0 uint64 // 4x4x4 bitmap, one bit per 8^3 region
	level1 uint8  // 2x2x2 bitmap, one bit per group of eight level0 regions
	hasAny bool
	solidCount int

	state State
}

// New creates an Empty chunk at the given chunk coordinates.
func New(x, y, z int) *Chunk {
	return &Chunk{X: x, Y: y, Z: z, state: StateEmpty}
}

func index(x, y, z int) int {
	return x*Size*Size + y*Size + z
}

func inBounds(x, y, z int) bool {
	return x >= 0 && x < Size && y >= 0 && y < Size && z >= 0 && z < Size
}

// region0Index returns the level0 bit index (0..63) for a local voxel coord.
func region0Index(x, y, z int) int {
	rx, ry, rz := x/region0Span, y/region0Span, z/region0Span
	return rx + ry*region0PerAxis + rz*region0PerAxis*region0PerAxis
}

// region1Index returns the level1 bit index (0..7) for a level0 region index.
func region1Index(r0 int) int {
	rx := (r0 % region0PerAxis) / region1PerAxis
	ry := ((r0 / region0PerAxis) % region0PerAxis) / region1PerAxis
	rz := (r0 / (region0PerAxis * region0PerAxis)) / region1PerAxis
	return rx + ry*region1PerAxis + rz*region1PerAxis*region1PerAxis
}

// Get returns the material at local coordinates; out of range returns empty.
func (c *Chunk) Get(x, y, z int) Material {
	if !inBounds(x, y, z) {
		return MaterialEmpty
	}
	return c.materials[index(x, y, z)]
}

// IsSolid reports whether the voxel at local coordinates is non-empty.
func (c *Chunk) IsSolid(x, y, z int) bool {
	return c.Get(x, y, z) != MaterialEmpty
}

// HasAny reports whether the chunk contains any non-empty voxel.
func (c *Chunk) HasAny() bool { return c.hasAny }

// SolidCount returns the number of non-empty voxels in the chunk.
func (c *Chunk) SolidCount() int { return c.solidCount }

// State returns the chunk's lifecycle state.
func (c *Chunk) State() State { return c.state }

// Level0Region reports whether the 8^3 region containing (x,y,z) has any
// solid voxel. Coordinates outside the chunk report false.
func (c *Chunk) Level0Region(x, y, z int) bool {
	if !inBounds(x, y, z) {
		return false
	}
	return c.level0&(1<<uint(region0Index(x, y, z))) != 0
}

// Level0Bit reports whether the given region0 bit index (0..63) is set.
func (c *Chunk) Level0Bit(r0 int) bool {
	return c.level0&(1<<uint(r0)) != 0
}

// Level1Bit reports whether the given region1 bit index (0..7) is set.
func (c *Chunk) Level1Bit(r1 int) bool {
	return c.level1&(1<<uint(r1)) != 0
}

// SetState transitions the chunk's lifecycle state. Invalid transitions are
// ignored; the allowed edges are Empty->Loading->Active, Empty->Active,
// Active<->Dirty (via Write paths), and Dirty->Uploading->Active (frame
// promotion, then upload acknowledgement).
func (c *Chunk) SetState(s State) {
	switch {
	case c.state == StateEmpty && s == StateLoading:
		c.state = s
	case c.state == StateLoading && s == StateActive:
		c.state = s
	case c.state == StateActive && s == StateDirty:
		c.state = s
	case c.state == StateDirty && s == StateUploading:
		c.state = s
	case c.state == StateUploading && s == StateActive:
		c.state = s
	case c.state == StateDirty && s == StateActive:
		c.state = s
	case s == StateActive && c.state == StateEmpty:
		c.state = s
	}
}

// markDirty transitions to Dirty on any mutation (spec §4.1): from Active
// normally, but also from Uploading if the chunk is re-edited while the
// renderer has it in flight, and from Empty/Loading for initial population.
func (c *Chunk) markDirty() {
	switch c.state {
	case StateActive, StateEmpty, StateLoading, StateUploading:
		c.state = StateDirty
	}
}

// recomputeRegionBits rebuilds level0[r0] and the corresponding level1 bit
// by rescanning only the touched 8^3 region (incremental, spec §4.1).
func (c *Chunk) recomputeRegionBits(r0 int) {
	rx := r0 % region0PerAxis
	ry := (r0 / region0PerAxis) % region0PerAxis
	rz := r0 / (region0PerAxis * region0PerAxis)

	any := false
	baseX, baseY, baseZ := rx*region0Span, ry*region0Span, rz*region0Span
outer:
	for dz := 0; dz < region0Span; dz++ {
		for dy := 0; dy < region0Span; dy++ {
			for dx := 0; dx < region0Span; dx++ {
				if c.materials[index(baseX+dx, baseY+dy, baseZ+dz)] != MaterialEmpty {
					any = true
					break outer
				}
			}
		}
	}

	if any {
		c.level0 |= 1 << uint(r0)
	} else {
		c.level0 &^= 1 << uint(r0)
	}

	r1 := region1Index(r0)
	r1x := (r1 % region1PerAxis) * region1PerAxis
	r1y := ((r1 / region1PerAxis) % region1PerAxis) * region1PerAxis
	r1z := (r1 / (region1PerAxis * region1PerAxis)) * region1PerAxis
	any1 := false
	for dz := 0; dz < region1PerAxis; dz++ {
		for dy := 0; dy < region1PerAxis; dy++ {
			for dx := 0; dx < region1PerAxis; dx++ {
				childR0 := (r1x + dx) + (r1y+dy)*region0PerAxis + (r1z+dz)*region0PerAxis*region0PerAxis
				if c.level0&(1<<uint(childR0)) != 0 {
					any1 = true
					break
				}
			}
			if any1 {
				break
			}
		}
		if any1 {
			break
		}
	}
	if any1 {
		c.level1 |= 1 << uint(r1)
	} else {
		c.level1 &^= 1 << uint(r1)
	}
}

// Set writes a material at local coordinates. Out-of-range writes are
// ignored. If occupancy changes, solidCount, the touched region0/region1
// bits, hasAny, and the lifecycle state are all updated (spec §4.1).
func (c *Chunk) Set(x, y, z int, mat Material) bool {
	if !inBounds(x, y, z) {
		return false
	}
	idx := index(x, y, z)
	old := c.materials[idx]
	if old == mat {
		return false
	}
	c.materials[idx] = mat

	if old == MaterialEmpty && mat != MaterialEmpty {
		c.solidCount++
	} else if old != MaterialEmpty && mat == MaterialEmpty {
		c.solidCount--
	}
	c.hasAny = c.solidCount > 0

	c.recomputeRegionBits(region0Index(x, y, z))
	c.markDirty()
	return true
}

// SetRaw writes a material without touching the hierarchical occupancy
// bitmaps, for use by callers (the volume's edit batch) that will call
// RebuildOccupancy once after a burst of writes rather than pay the
// incremental bit recompute on every single voxel.
func (c *Chunk) SetRaw(x, y, z int, mat Material) bool {
	if !inBounds(x, y, z) {
		return false
	}
	idx := index(x, y, z)
	old := c.materials[idx]
	if old == mat {
		return false
	}
	c.materials[idx] = mat
	if old == MaterialEmpty && mat != MaterialEmpty {
		c.solidCount++
	} else if old != MaterialEmpty && mat == MaterialEmpty {
		c.solidCount--
	}
	c.hasAny = c.solidCount > 0
	c.markDirty()
	return true
}

// FillUniform sets every voxel in [min,max] (inclusive, clamped to the
// chunk) to mat and returns the number of voxels modified.
func (c *Chunk) FillUniform(minX, minY, minZ, maxX, maxY, maxZ int, mat Material) int {
	minX, maxX = voxClamp(minX, maxX)
	minY, maxY = voxClamp(minY, maxY)
	minZ, maxZ = voxClamp(minZ, maxZ)
	touched := map[int]bool{}
	modified := 0
	for z := minZ; z <= maxZ; z++ {
		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				idx := index(x, y, z)
				old := c.materials[idx]
				if old == mat {
					continue
				}
				c.materials[idx] = mat
				if old == MaterialEmpty && mat != MaterialEmpty {
					c.solidCount++
				} else if old != MaterialEmpty && mat == MaterialEmpty {
					c.solidCount--
				}
				modified++
				touched[region0Index(x, y, z)] = true
			}
		}
	}
	if modified > 0 {
		c.hasAny = c.solidCount > 0
		for r0 := range touched {
			c.recomputeRegionBits(r0)
		}
		c.markDirty()
	}
	return modified
}

// FillSphere sets every voxel whose centre lies within radius r (inclusive)
// of centre (cx,cy,cz), in local coordinates, to mat. Distance is measured
// centre-to-voxel-centre against r^2 (spec §4.1 numeric semantics).
func (c *Chunk) FillSphere(cx, cy, cz, r float32, mat Material) int {
	minX := int(cx - r)
	maxX := int(cx + r + 1)
	minY := int(cy - r)
	maxY := int(cy + r + 1)
	minZ := int(cz - r)
	maxZ := int(cz + r + 1)
	minX, maxX = voxClamp(minX, maxX)
	minY, maxY = voxClamp(minY, maxY)
	minZ, maxZ = voxClamp(minZ, maxZ)

	r2 := r * r
	touched := map[int]bool{}
	modified := 0
	for z := minZ; z <= maxZ; z++ {
		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				dx := float32(x) + 0.5 - cx
				dy := float32(y) + 0.5 - cy
				dz := float32(z) + 0.5 - cz
				if dx*dx+dy*dy+dz*dz > r2 {
					continue
				}
				idx := index(x, y, z)
				old := c.materials[idx]
				if old == mat {
					continue
				}
				c.materials[idx] = mat
				if old == MaterialEmpty && mat != MaterialEmpty {
					c.solidCount++
				} else if old != MaterialEmpty && mat == MaterialEmpty {
					c.solidCount--
				}
				modified++
				touched[region0Index(x, y, z)] = true
			}
		}
	}
	if modified > 0 {
		c.hasAny = c.solidCount > 0
		for r0 := range touched {
			c.recomputeRegionBits(r0)
		}
		c.markDirty()
	}
	return modified
}

// FillBox sets every voxel in the inclusive box [minX,maxX]x... (clamped to
// the chunk) to mat and returns the number of voxels modified.
func (c *Chunk) FillBox(minX, minY, minZ, maxX, maxY, maxZ int, mat Material) int {
	return c.FillUniform(minX, minY, minZ, maxX, maxY, maxZ, mat)
}

// RebuildOccupancy rebuilds level0, level1, hasAny, and solidCount from
// scratch by scanning every voxel (used after bulk population, spec §4.1).
func (c *Chunk) RebuildOccupancy() {
	c.level0 = 0
	c.level1 = 0
	count := 0
	for r0 := 0; r0 < 64; r0++ {
		rx := r0 % region0PerAxis
		ry := (r0 / region0PerAxis) % region0PerAxis
		rz := r0 / (region0PerAxis * region0PerAxis)
		baseX, baseY, baseZ := rx*region0Span, ry*region0Span, rz*region0Span
		any := false
		for dz := 0; dz < region0Span; dz++ {
			for dy := 0; dy < region0Span; dy++ {
				for dx := 0; dx < region0Span; dx++ {
					if c.materials[index(baseX+dx, baseY+dy, baseZ+dz)] != MaterialEmpty {
						any = true
						count++
					}
				}
			}
		}
		if any {
			c.level0 |= 1 << uint(r0)
		}
	}
	for r1 := 0; r1 < 8; r1++ {
		r1x := (r1 % region1PerAxis) * region1PerAxis
		r1y := ((r1 / region1PerAxis) % region1PerAxis) * region1PerAxis
		r1z := (r1 / (region1PerAxis * region1PerAxis)) * region1PerAxis
		any := false
		for dz := 0; dz < region1PerAxis && !any; dz++ {
			for dy := 0; dy < region1PerAxis && !any; dy++ {
				for dx := 0; dx < region1PerAxis && !any; dx++ {
					childR0 := (r1x + dx) + (r1y+dy)*region0PerAxis + (r1z+dz)*region0PerAxis*region0PerAxis
					if c.level0&(1<<uint(childR0)) != 0 {
						any = true
					}
				}
			}
		}
		if any {
			c.level1 |= 1 << uint(r1)
		}
	}
	c.solidCount = count
	c.hasAny = count > 0
}

func voxClamp(lo, hi int) (int, int) {
	if lo < 0 {
		lo = 0
	}
	if hi > Size-1 {
		hi = Size - 1
	}
	return lo, hi
}

// ForEachSolid calls fn for every non-empty voxel in fixed Z-outer,
// Y-middle, X-inner order (spec's deterministic iteration order).
func (c *Chunk) ForEachSolid(fn func(x, y, z int, mat Material)) {
	for z := 0; z < Size; z++ {
		for y := 0; y < Size; y++ {
			for x := 0; x < Size; x++ {
				if m := c.materials[index(x, y, z)]; m != MaterialEmpty {
					fn(x, y, z, m)
				}
			}
		}
	}
}
