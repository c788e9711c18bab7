package voxbody

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/voxcore/voxcore/voxvolume"
)

func TestObjectObjectCollisionSeparatesOverlappingBodies(t *testing.T) {
	w := NewWorld(4, 0.5)
	slotA := w.AddSphere(mgl32.Vec3{0, 50, 0}, 4, 1)
	slotB := w.AddSphere(mgl32.Vec3{0.5, 50, 0}, 4, 1)

	for i := 0; i < 5; i++ {
		w.resolveObjectPairs(1.0 / 60)
	}

	a, b := w.Get(slotA), w.Get(slotB)
	require.Greater(t, b.Position.Sub(a.Position).Len(), float32(0.5))
}

func TestRaycastFindsNearestBody(t *testing.T) {
	w := NewWorld(4, 0.5)
	near := w.AddSphere(mgl32.Vec3{0, 0, 10}, 4, 1)
	w.AddSphere(mgl32.Vec3{0, 0, 20}, 4, 1)

	slot, dist := w.Raycast(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 1}, 100)
	require.GreaterOrEqual(t, slot, int32(0))
	require.Equal(t, near, slot)
	require.Greater(t, dist, float32(0))
}

func TestRaycastMissesWhenNoBodyOnLine(t *testing.T) {
	w := NewWorld(4, 0.5)
	w.AddSphere(mgl32.Vec3{50, 50, 50}, 2, 1)
	slot, _ := w.Raycast(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, 5)
	require.Equal(t, int32(-1), slot)
}

func TestTerrainCollisionPushesBodyOut(t *testing.T) {
	terrain := voxvolume.NewFromVoxelSize(4, 4, 4, mgl32.Vec3{-16, -16, -16}, 1)
	terrain.FillBox(mgl32.Vec3{-16, -16, -16}, mgl32.Vec3{16, 0, 16}, 1)

	w := NewWorld(2, 1)
	slot := w.AddSphere(mgl32.Vec3{0, -0.5, 0}, 2, 1)
	obj := w.Get(slot)
	startY := obj.Position.Y()
	w.resolveTerrain(obj, terrain)
	require.GreaterOrEqual(t, obj.Position.Y(), startY)
}

func TestDeactivateFallenRemovesBody(t *testing.T) {
	w := NewWorld(2, 0.5)
	slot := w.AddSphere(mgl32.Vec3{0, -1000, 0}, 2, 1)
	w.deactivateFallen(0)
	require.Nil(t, w.Get(slot))
	require.Equal(t, 0, w.ActiveCount())
}
