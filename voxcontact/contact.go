// Package voxcontact implements point/sphere/AABB/capsule contact queries
// and sweeps against a voxvolume.Volume (spec §4.4). Grounded on the
// teacher's internal/physics/collision.go AABB-vs-block overlap tests
// (Collides, IntersectsBlock), generalized from a fixed player-capsule
// check against a block world into general-shape queries against the
// spec's voxel field, reusing voxmath.AABB's closest-point primitive for
// the per-voxel cube test.
package voxcontact

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxcore/voxcore/voxchunk"
	"github.com/voxcore/voxcore/voxmath"
	"github.com/voxcore/voxcore/voxvolume"
)

// MaxContacts bounds how many per-voxel contacts a single query records
// (spec §4.4: "a bounded list of per-voxel contacts").
const MaxContacts = 32

// Contact describes one colliding voxel.
type Contact struct {
	VoxelCenter       mgl32.Vec3
	PenetrationVector mgl32.Vec3
	Depth             float32
	Material          voxchunk.Material
}

// Result is the outcome of a contact query.
type Result struct {
	Contacts      []Contact
	MaxDepth      float32
	AverageNormal mgl32.Vec3
	AnyContact    bool
}

func (r *Result) add(center mgl32.Vec3, normal mgl32.Vec3, depth float32, mat voxchunk.Material) {
	if depth <= 0 {
		return
	}
	r.AnyContact = true
	if depth > r.MaxDepth {
		r.MaxDepth = depth
	}
	r.AverageNormal = r.AverageNormal.Add(normal.Mul(depth))
	if len(r.Contacts) < MaxContacts {
		r.Contacts = append(r.Contacts, Contact{
			VoxelCenter:       center,
			PenetrationVector: normal.Mul(depth),
			Depth:             depth,
			Material:          mat,
		})
	}
}

func (r *Result) finalize() {
	if r.AnyContact && r.AverageNormal.LenSqr() > 1e-12 {
		r.AverageNormal = r.AverageNormal.Normalize()
	}
}

func voxelAABB(v *voxvolume.Volume, vx, vy, vz int) voxmath.AABB {
	min := v.WorldPointOfVoxel(vx, vy, vz)
	size := v.VoxelSize()
	return voxmath.AABB{Min: min, Max: min.Add(mgl32.Vec3{size, size, size})}
}

// Sphere runs a sphere-vs-voxel-field contact query: voxels within a
// conservative range of the sphere are tested by closest-point-on-cube; if
// the sphere center lies inside a voxel the push-out uses that voxel's
// dominant axis instead (spec §4.4).
func Sphere(v *voxvolume.Volume, center mgl32.Vec3, radius float32) Result {
	var result Result
	size := v.VoxelSize()
	half := size / 2

	expand := mgl32.Vec3{radius, radius, radius}
	minVX, minVY, minVZ := v.WorldToVoxel(center.Sub(expand))
	maxVX, maxVY, maxVZ := v.WorldToVoxel(center.Add(expand))

	for vz := minVZ; vz <= maxVZ; vz++ {
		for vy := minVY; vy <= maxVY; vy++ {
			for vx := minVX; vx <= maxVX; vx++ {
				if !v.IsSolidAtVoxel(vx, vy, vz) {
					continue
				}
				box := voxelAABB(v, vx, vy, vz)
				voxCenter := box.Center()
				mat := v.MaterialAtVoxel(vx, vy, vz)

				if box.Contains(center) {
					// Center embedded in solid: push out along the axis of
					// least penetration through the cube's face.
					d := center.Sub(voxCenter)
					axis, sign := dominantAxis(d)
					result.add(voxCenter, axis.Mul(sign), half+radius, mat)
					continue
				}

				closest := box.ClosestPoint(center)
				diff := center.Sub(closest)
				dist := diff.Len()
				if dist < radius {
					normal := diff
					if dist > 1e-6 {
						normal = diff.Mul(1 / dist)
					} else {
						normal = mgl32.Vec3{0, 1, 0}
					}
					result.add(voxCenter, normal, radius-dist, mat)
				}
			}
		}
	}
	result.finalize()
	return result
}

// dominantAxis returns the unit axis vector and sign of d's largest
// magnitude component, used when a query point is embedded inside a voxel
// and there is no well-defined closest-surface direction.
func dominantAxis(d mgl32.Vec3) (axis mgl32.Vec3, sign float32) {
	ax, ay, az := abs32(d.X()), abs32(d.Y()), abs32(d.Z())
	switch {
	case ax >= ay && ax >= az:
		axis = mgl32.Vec3{1, 0, 0}
		sign = signOf(d.X())
	case ay >= ax && ay >= az:
		axis = mgl32.Vec3{0, 1, 0}
		sign = signOf(d.Y())
	default:
		axis = mgl32.Vec3{0, 0, 1}
		sign = signOf(d.Z())
	}
	return
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

func signOf(f float32) float32 {
	if f < 0 {
		return -1
	}
	return 1
}

// AABBContact runs an AABB-vs-voxel-field contact query using the standard
// min-overlap axis to pick normal and depth per colliding voxel.
func AABBContact(v *voxvolume.Volume, box voxmath.AABB) Result {
	var result Result
	minVX, minVY, minVZ := v.WorldToVoxel(box.Min)
	maxVX, maxVY, maxVZ := v.WorldToVoxel(box.Max)

	for vz := minVZ; vz <= maxVZ; vz++ {
		for vy := minVY; vy <= maxVY; vy++ {
			for vx := minVX; vx <= maxVX; vx++ {
				if !v.IsSolidAtVoxel(vx, vy, vz) {
					continue
				}
				voxBox := voxelAABB(v, vx, vy, vz)
				if !box.Overlaps(voxBox) {
					continue
				}
				mat := v.MaterialAtVoxel(vx, vy, vz)
				normal, depth := minOverlapAxis(box, voxBox)
				result.add(voxBox.Center(), normal, depth, mat)
			}
		}
	}
	result.finalize()
	return result
}

// minOverlapAxis returns the separating normal and penetration depth along
// whichever axis has the smallest overlap between two AABBs.
func minOverlapAxis(a, b voxmath.AABB) (normal mgl32.Vec3, depth float32) {
	overlapX := minF(a.Max.X(), b.Max.X()) - maxF(a.Min.X(), b.Min.X())
	overlapY := minF(a.Max.Y(), b.Max.Y()) - maxF(a.Min.Y(), b.Min.Y())
	overlapZ := minF(a.Max.Z(), b.Max.Z()) - maxF(a.Min.Z(), b.Min.Z())

	depth = overlapX
	normal = mgl32.Vec3{1, 0, 0}
	if a.Center().X() > b.Center().X() {
		normal = mgl32.Vec3{-1, 0, 0}
	}
	if overlapY < depth {
		depth = overlapY
		normal = mgl32.Vec3{0, 1, 0}
		if a.Center().Y() > b.Center().Y() {
			normal = mgl32.Vec3{0, -1, 0}
		}
	}
	if overlapZ < depth {
		depth = overlapZ
		normal = mgl32.Vec3{0, 0, 1}
		if a.Center().Z() > b.Center().Z() {
			normal = mgl32.Vec3{0, 0, -1}
		}
	}
	return
}

func minF(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// Capsule parameterizes the segment [a,b] and runs the sphere test at the
// closest point on the segment to each candidate voxel's center (spec
// §4.4: "closest-point-on-segment to each voxel center, then run the
// sphere test at that parameter").
func Capsule(v *voxvolume.Volume, a, b mgl32.Vec3, radius float32) Result {
	var result Result
	size := v.VoxelSize()
	half := size / 2

	expand := mgl32.Vec3{radius, radius, radius}
	lo := minVec3(a, b).Sub(expand)
	hi := maxVec3(a, b).Add(expand)
	minVX, minVY, minVZ := v.WorldToVoxel(lo)
	maxVX, maxVY, maxVZ := v.WorldToVoxel(hi)

	for vz := minVZ; vz <= maxVZ; vz++ {
		for vy := minVY; vy <= maxVY; vy++ {
			for vx := minVX; vx <= maxVX; vx++ {
				if !v.IsSolidAtVoxel(vx, vy, vz) {
					continue
				}
				box := voxelAABB(v, vx, vy, vz)
				voxCenter := box.Center()
				closestOnSeg := closestPointOnSegment(a, b, voxCenter)

				mat := v.MaterialAtVoxel(vx, vy, vz)
				if box.Contains(closestOnSeg) {
					d := closestOnSeg.Sub(voxCenter)
					axis, sign := dominantAxis(d)
					result.add(voxCenter, axis.Mul(sign), half+radius, mat)
					continue
				}
				closest := box.ClosestPoint(closestOnSeg)
				diff := closestOnSeg.Sub(closest)
				dist := diff.Len()
				if dist < radius {
					normal := diff
					if dist > 1e-6 {
						normal = diff.Mul(1 / dist)
					} else {
						normal = mgl32.Vec3{0, 1, 0}
					}
					result.add(voxCenter, normal, radius-dist, mat)
				}
			}
		}
	}
	result.finalize()
	return result
}

func closestPointOnSegment(a, b, p mgl32.Vec3) mgl32.Vec3 {
	ab := b.Sub(a)
	denom := ab.Dot(ab)
	if denom < 1e-12 {
		return a
	}
	t := p.Sub(a).Dot(ab) / denom
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return a.Add(ab.Mul(t))
}

func minVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{minF(a.X(), b.X()), minF(a.Y(), b.Y()), minF(a.Z(), b.Z())}
}

func maxVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{maxF(a.X(), b.X()), maxF(a.Y(), b.Y()), maxF(a.Z(), b.Z())}
}

// Resolve converts a contact result into a single push-out vector: a
// depth-weighted average of per-contact push-outs, rescaled so its
// magnitude equals MaxDepth (spec §4.4).
func Resolve(r Result) mgl32.Vec3 {
	if !r.AnyContact || len(r.Contacts) == 0 {
		return mgl32.Vec3{}
	}
	var accum mgl32.Vec3
	var totalDepth float32
	for _, c := range r.Contacts {
		accum = accum.Add(c.PenetrationVector)
		totalDepth += c.Depth
	}
	if totalDepth < 1e-12 {
		return mgl32.Vec3{}
	}
	avg := accum.Mul(1 / totalDepth)
	if avg.LenSqr() < 1e-12 {
		return mgl32.Vec3{}
	}
	return avg.Normalize().Mul(r.MaxDepth)
}
