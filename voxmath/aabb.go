package voxmath

import "github.com/go-gl/mathgl/mgl32"

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// AABBFromCenterHalfExtents builds an AABB from a center and half-extents.
func AABBFromCenterHalfExtents(center, halfExtents mgl32.Vec3) AABB {
	return AABB{Min: center.Sub(halfExtents), Max: center.Add(halfExtents)}
}

// Center returns the AABB's midpoint.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// HalfExtents returns half the AABB's size along each axis.
func (b AABB) HalfExtents() mgl32.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// Union returns the smallest AABB containing both inputs.
func Union(a, b AABB) AABB {
	return AABB{
		Min: mgl32.Vec3{min32(a.Min.X(), b.Min.X()), min32(a.Min.Y(), b.Min.Y()), min32(a.Min.Z(), b.Min.Z())},
		Max: mgl32.Vec3{max32(a.Max.X(), b.Max.X()), max32(a.Max.Y(), b.Max.Y()), max32(a.Max.Z(), b.Max.Z())},
	}
}

// Overlaps reports whether two AABBs intersect (touching counts as overlap).
func (b AABB) Overlaps(o AABB) bool {
	return b.Min.X() <= o.Max.X() && b.Max.X() >= o.Min.X() &&
		b.Min.Y() <= o.Max.Y() && b.Max.Y() >= o.Min.Y() &&
		b.Min.Z() <= o.Max.Z() && b.Max.Z() >= o.Min.Z()
}

// Contains reports whether a point lies within the AABB (inclusive).
func (b AABB) Contains(p mgl32.Vec3) bool {
	return p.X() >= b.Min.X() && p.X() <= b.Max.X() &&
		p.Y() >= b.Min.Y() && p.Y() <= b.Max.Y() &&
		p.Z() >= b.Min.Z() && p.Z() <= b.Max.Z()
}

// ClosestPoint returns the closest point on or in the AABB to p.
func (b AABB) ClosestPoint(p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		clamp32(p.X(), b.Min.X(), b.Max.X()),
		clamp32(p.Y(), b.Min.Y(), b.Max.Y()),
		clamp32(p.Z(), b.Min.Z(), b.Max.Z()),
	}
}

// SurfaceArea returns the AABB's total surface area, used by the BVH's SAH cost model.
func (b AABB) SurfaceArea() float32 {
	d := b.Max.Sub(b.Min)
	if d.X() < 0 || d.Y() < 0 || d.Z() < 0 {
		return 0
	}
	return 2 * (d.X()*d.Y() + d.Y()*d.Z() + d.Z()*d.X())
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampInt clamps an integer to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FloorDiv performs integer division that rounds toward negative infinity,
// correct at negative coordinates (spec §4.2 requires this, not truncation).
func FloorDiv(a, b int) int {
	if b < 0 {
		a, b = -a, -b
	}
	if a < 0 {
		return (a - b + 1) / b
	}
	return a / b
}

// FloorMod returns the remainder of a/b, always in [0,b).
func FloorMod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
