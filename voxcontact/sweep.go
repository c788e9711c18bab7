package voxcontact

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxcore/voxcore/voxmath"
	"github.com/voxcore/voxcore/voxvolume"
)

// SweepResult is the outcome of a step-based shape sweep.
type SweepResult struct {
	Hit      bool
	Distance float32
	Point    mgl32.Vec3
	Contact  Result
}

// SweepSphere substeps a moving sphere along dir in half-voxel increments
// and reuses the point-query contact primitive at each step, stopping at
// the first step reporting any contact (spec §4.2/§4.4 Sweep).
func SweepSphere(v *voxvolume.Volume, start, dir mgl32.Vec3, radius, maxDistance float32) SweepResult {
	length := dir.Len()
	if length < 1e-9 {
		return SweepResult{}
	}
	unit := dir.Mul(1 / length)
	step := v.VoxelSize() / 2
	if step <= 0 {
		step = 0.01
	}

	for traveled := float32(0); traveled <= maxDistance; traveled += step {
		point := start.Add(unit.Mul(traveled))
		result := Sphere(v, point, radius)
		if result.AnyContact {
			return SweepResult{Hit: true, Distance: traveled, Point: point, Contact: result}
		}
	}
	return SweepResult{}
}

// SweepAABB substeps a moving AABB along dir in half-voxel increments,
// stopping at the first step reporting any contact.
func SweepAABB(v *voxvolume.Volume, start mgl32.Vec3, halfExtents, dir mgl32.Vec3, maxDistance float32) SweepResult {
	length := dir.Len()
	if length < 1e-9 {
		return SweepResult{}
	}
	unit := dir.Mul(1 / length)
	step := v.VoxelSize() / 2
	if step <= 0 {
		step = 0.01
	}

	for traveled := float32(0); traveled <= maxDistance; traveled += step {
		center := start.Add(unit.Mul(traveled))
		box := voxmath.AABBFromCenterHalfExtents(center, halfExtents)
		result := AABBContact(v, box)
		if result.AnyContact {
			return SweepResult{Hit: true, Distance: traveled, Point: center, Contact: result}
		}
	}
	return SweepResult{}
}
