// Package voxbody implements quaternion-oriented rigid voxel bodies (spec
// §4.5): a fixed-capacity object pool ("VoxelObjectWorld"), per-tick
// integration with Padé damping and topple torque, floor/terrain/
// object-object collision, sleep detection, and deferred split/recalc.
//
// Grounded on the teacher's internal/entity/item_entity.go tick pipeline
// (gravity, drag via math.Pow(k, dt*20), axis-separated collision, ground
// friction), generalized from a non-rotating 0.25³ item to an oriented
// rigid body carrying its own voxel grid, and on
// other_examples/f3d23b2c_gazed-vu__body.go.go's dense-array-with-
// compaction bookkeeping for the object pool.
package voxbody

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxcore/voxcore/voxchunk"
)

// GridSize is the edge length of a VoxelObject's local voxel grid (spec §3:
// bodies carry a 16³ grid, distinct from the volume's 32³ chunk grid).
const GridSize = 16

// Grid holds a dense 16³ material array in body-local space, centered on
// the body's origin (voxel (0,0,0) is the grid's minimum corner).
type Grid struct {
	cells      [GridSize * GridSize * GridSize]voxchunk.Material
	solidCount int
}

func gridIndex(x, y, z int) int {
	return (z*GridSize+y)*GridSize + x
}

func gridInBounds(x, y, z int) bool {
	return x >= 0 && x < GridSize && y >= 0 && y < GridSize && z >= 0 && z < GridSize
}

// Get returns the material at local grid coordinates, MaterialEmpty if out
// of bounds.
func (g *Grid) Get(x, y, z int) voxchunk.Material {
	if !gridInBounds(x, y, z) {
		return voxchunk.MaterialEmpty
	}
	return g.cells[gridIndex(x, y, z)]
}

// Set writes a material at local grid coordinates, updating SolidCount.
// Out-of-bounds writes are ignored.
func (g *Grid) Set(x, y, z int, mat voxchunk.Material) {
	if !gridInBounds(x, y, z) {
		return
	}
	idx := gridIndex(x, y, z)
	was := g.cells[idx] != voxchunk.MaterialEmpty
	is := mat != voxchunk.MaterialEmpty
	if was && !is {
		g.solidCount--
	} else if !was && is {
		g.solidCount++
	}
	g.cells[idx] = mat
}

// SolidCount returns the number of non-empty voxels in the grid.
func (g *Grid) SolidCount() int { return g.solidCount }

// FillFromMaterials copies a dense size_x*size_y*size_z material buffer
// (as produced by voxconnect.Extract) into the grid's minimum corner; it
// must fit within GridSize on every axis (spec §4.7 step 3).
func FillFromMaterials(g *Grid, sizeX, sizeY, sizeZ int, materials []voxchunk.Material) bool {
	if sizeX > GridSize || sizeY > GridSize || sizeZ > GridSize {
		return false
	}
	*g = Grid{}
	for z := 0; z < sizeZ; z++ {
		for y := 0; y < sizeY; y++ {
			for x := 0; x < sizeX; x++ {
				mat := materials[(z*sizeY+y)*sizeX+x]
				if mat != voxchunk.MaterialEmpty {
					g.Set(x, y, z, mat)
				}
			}
		}
	}
	return true
}

// FillSphere carves a solid sphere (radius r, local-grid center c) into the
// grid with the given material.
func FillSphere(g *Grid, center mgl32.Vec3, r float32, mat voxchunk.Material) {
	minX, maxX := clampAxis(center.X()-r), clampAxis(center.X()+r)
	minY, maxY := clampAxis(center.Y()-r), clampAxis(center.Y()+r)
	minZ, maxZ := clampAxis(center.Z()-r), clampAxis(center.Z()+r)
	r2 := r * r
	for z := minZ; z <= maxZ; z++ {
		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				d := mgl32.Vec3{float32(x) + 0.5, float32(y) + 0.5, float32(z) + 0.5}.Sub(center)
				if d.LenSqr() <= r2 {
					g.Set(x, y, z, mat)
				}
			}
		}
	}
}

// FillBox fills an axis-aligned local-grid box [min,max] with the given
// material.
func FillBox(g *Grid, min, max mgl32.Vec3, mat voxchunk.Material) {
	minX, maxX := clampAxis(min.X()), clampAxis(max.X())
	minY, maxY := clampAxis(min.Y()), clampAxis(max.Y())
	minZ, maxZ := clampAxis(min.Z()), clampAxis(max.Z())
	for z := minZ; z <= maxZ; z++ {
		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				g.Set(x, y, z, mat)
			}
		}
	}
}

// CarveSphere clears a solid sphere out of the grid (object destruction at
// a point, spec §4.7), returning the number of voxels removed.
func CarveSphere(g *Grid, center mgl32.Vec3, r float32) int {
	minX, maxX := clampAxis(center.X()-r), clampAxis(center.X()+r)
	minY, maxY := clampAxis(center.Y()-r), clampAxis(center.Y()+r)
	minZ, maxZ := clampAxis(center.Z()-r), clampAxis(center.Z()+r)
	r2 := r * r
	removed := 0
	for z := minZ; z <= maxZ; z++ {
		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				if g.Get(x, y, z) == voxchunk.MaterialEmpty {
					continue
				}
				d := mgl32.Vec3{float32(x) + 0.5, float32(y) + 0.5, float32(z) + 0.5}.Sub(center)
				if d.LenSqr() <= r2 {
					g.Set(x, y, z, voxchunk.MaterialEmpty)
					removed++
				}
			}
		}
	}
	return removed
}

func clampAxis(v float32) int {
	i := int(v)
	if v < 0 {
		i--
	}
	if i < 0 {
		return 0
	}
	if i >= GridSize {
		return GridSize - 1
	}
	return i
}

// HalfExtents returns the full grid's AABB half-extents in local units (one
// unit per voxel), GridSize/2 on each axis. RefreshShape does not use it: it
// takes OccupiedHalfExtents, and 0.5 on each axis for an empty grid.
func (g *Grid) HalfExtents() mgl32.Vec3 {
	return mgl32.Vec3{GridSize / 2, GridSize / 2, GridSize / 2}
}

// OccupiedHalfExtents scans the grid once and returns the half-extents of
// the tight bounding box around non-empty voxels (local-grid units,
// centered on the grid's own center). Returns false if the grid is empty.
func (g *Grid) OccupiedHalfExtents() (mgl32.Vec3, bool) {
	minX, minY, minZ := GridSize, GridSize, GridSize
	maxX, maxY, maxZ := -1, -1, -1
	for z := 0; z < GridSize; z++ {
		for y := 0; y < GridSize; y++ {
			for x := 0; x < GridSize; x++ {
				if g.Get(x, y, z) == voxchunk.MaterialEmpty {
					continue
				}
				if x < minX {
					minX = x
				}
				if y < minY {
					minY = y
				}
				if z < minZ {
					minZ = z
				}
				if x > maxX {
					maxX = x
				}
				if y > maxY {
					maxY = y
				}
				if z > maxZ {
					maxZ = z
				}
			}
		}
	}
	if maxX < 0 {
		return mgl32.Vec3{}, false
	}
	center := mgl32.Vec3{GridSize / 2, GridSize / 2, GridSize / 2}
	lo := mgl32.Vec3{float32(minX), float32(minY), float32(minZ)}
	hi := mgl32.Vec3{float32(maxX + 1), float32(maxY + 1), float32(maxZ + 1)}
	halfFromMin := center.Sub(lo)
	halfFromMax := hi.Sub(center)
	return mgl32.Vec3{
		maxf(absf(halfFromMin.X()), absf(halfFromMax.X())),
		maxf(absf(halfFromMin.Y()), absf(halfFromMax.Y())),
		maxf(absf(halfFromMin.Z()), absf(halfFromMax.Z())),
	}, true
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
