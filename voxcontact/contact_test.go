package voxcontact

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/voxcore/voxcore/voxmath"
	"github.com/voxcore/voxcore/voxvolume"
)

func buildFloorVolume(t *testing.T) *voxvolume.Volume {
	t.Helper()
	v := voxvolume.NewFromVoxelSize(2, 2, 2, mgl32.Vec3{-16, 0, -16}, 0.5)
	v.FillBox(mgl32.Vec3{-16, 0, -16}, mgl32.Vec3{15.5, 0.5, 15.5}, 1)
	return v
}

func TestSphereContactAboveFloorNoHit(t *testing.T) {
	v := buildFloorVolume(t)
	result := Sphere(v, mgl32.Vec3{0, 5, 0}, 0.5)
	require.False(t, result.AnyContact)
}

func TestSphereContactTouchingFloor(t *testing.T) {
	v := buildFloorVolume(t)
	result := Sphere(v, mgl32.Vec3{0, 0.9, 0}, 0.5)
	require.True(t, result.AnyContact)
	require.Greater(t, result.MaxDepth, float32(0))
	require.Greater(t, result.AverageNormal.Y(), float32(0))
}

func TestSphereContactEmbeddedPushesOut(t *testing.T) {
	v := buildFloorVolume(t)
	result := Sphere(v, mgl32.Vec3{0, 0.1, 0}, 0.3)
	require.True(t, result.AnyContact)
	push := Resolve(result)
	require.InDelta(t, result.MaxDepth, push.Len(), 1e-4)
}

func TestAABBContactOverlapsFloor(t *testing.T) {
	v := buildFloorVolume(t)
	box := voxmath.AABBFromCenterHalfExtents(mgl32.Vec3{0, 0.2, 0}, mgl32.Vec3{0.5, 0.5, 0.5})
	result := AABBContact(v, box)
	require.True(t, result.AnyContact)
}

func TestCapsuleContactTouchingFloor(t *testing.T) {
	v := buildFloorVolume(t)
	result := Capsule(v, mgl32.Vec3{0, 0.9, -1}, mgl32.Vec3{0, 0.9, 1}, 0.5)
	require.True(t, result.AnyContact)
}

func TestResolveMagnitudeMatchesMaxDepth(t *testing.T) {
	v := buildFloorVolume(t)
	result := Sphere(v, mgl32.Vec3{0, 0.8, 0}, 0.5)
	require.True(t, result.AnyContact)
	push := Resolve(result)
	require.InDelta(t, result.MaxDepth, push.Len(), 1e-3)
}

func TestSweepSphereStopsAtFirstContact(t *testing.T) {
	v := buildFloorVolume(t)
	res := SweepSphere(v, mgl32.Vec3{0, 5, 0}, mgl32.Vec3{0, -1, 0}, 0.5, 10)
	require.True(t, res.Hit)
	require.Greater(t, res.Distance, float32(0))
}

func TestSweepSphereMissesWhenNoFloorInRange(t *testing.T) {
	v := buildFloorVolume(t)
	res := SweepSphere(v, mgl32.Vec3{0, 5, 0}, mgl32.Vec3{0, -1, 0}, 0.5, 1)
	require.False(t, res.Hit)
}

func TestResolveNoContactReturnsZero(t *testing.T) {
	var r Result
	push := Resolve(r)
	require.Equal(t, mgl32.Vec3{}, push)
}
