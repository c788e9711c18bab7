package voxbody

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func TestAddSphereAllocatesSlot(t *testing.T) {
	w := NewWorld(4, 0.5)
	slot := w.AddSphere(mgl32.Vec3{0, 10, 0}, 4, 1)
	require.GreaterOrEqual(t, slot, int32(0))
	require.Equal(t, 1, w.ActiveCount())
	obj := w.Get(slot)
	require.NotNil(t, obj)
	require.Greater(t, obj.Grid.SolidCount(), 0)
	require.Greater(t, obj.Mass, float32(0))
}

func TestWorldFullReturnsMinusOne(t *testing.T) {
	w := NewWorld(1, 0.5)
	slot1 := w.AddSphere(mgl32.Vec3{0, 10, 0}, 2, 1)
	require.GreaterOrEqual(t, slot1, int32(0))
	slot2 := w.AddSphere(mgl32.Vec3{10, 10, 0}, 2, 1)
	require.Equal(t, int32(-1), slot2)
}

func TestRemoveFreesSlotForReuse(t *testing.T) {
	w := NewWorld(1, 0.5)
	slot := w.AddSphere(mgl32.Vec3{0, 10, 0}, 2, 1)
	w.Remove(slot)
	require.Equal(t, 0, w.ActiveCount())
	again := w.AddSphere(mgl32.Vec3{1, 1, 1}, 2, 1)
	require.GreaterOrEqual(t, again, int32(0))
}

func TestUpdateAppliesGravityWhenAirborne(t *testing.T) {
	w := NewWorld(4, 0.5)
	slot := w.AddSphere(mgl32.Vec3{0, 50, 0}, 2, 1)
	obj := w.Get(slot)
	startY := obj.Position.Y()
	w.Update(1.0/60, -1000, nil)
	require.Less(t, w.Get(slot).Position.Y(), startY)
}

func TestBodySettlesOnFloorWithoutSinking(t *testing.T) {
	w := NewWorld(4, 0.5)
	slot := w.AddSphere(mgl32.Vec3{0, 1, 0}, 2, 1)
	floorY := float32(0)
	for i := 0; i < 600; i++ {
		w.Update(1.0/60, floorY, nil)
		if w.Get(slot) == nil {
			break
		}
	}
	obj := w.Get(slot)
	require.NotNil(t, obj)
	min, _ := obj.WorldBounds()
	require.GreaterOrEqual(t, min.Y(), floorY-0.05)
}

func TestApplyImpulseChangesLinearAndAngularVelocity(t *testing.T) {
	w := NewWorld(4, 0.5)
	slot := w.AddBox(mgl32.Vec3{0, 20, 0}, mgl32.Vec3{2, 2, 2}, 1)
	obj := w.Get(slot)
	obj.ensureInertia()

	offCenter := obj.Position.Add(mgl32.Vec3{1, 1, 0})
	obj.ApplyImpulse(mgl32.Vec3{0, 0, 5}, offCenter)

	require.Greater(t, obj.LinVel.Z(), float32(0))
	require.Greater(t, obj.AngVel.LenSqr(), float32(0))
}

func TestApplyTorqueImpulseOnlyChangesAngularVelocity(t *testing.T) {
	w := NewWorld(4, 0.5)
	slot := w.AddBox(mgl32.Vec3{0, 20, 0}, mgl32.Vec3{2, 2, 2}, 1)
	obj := w.Get(slot)
	obj.ensureInertia()

	obj.ApplyTorqueImpulse(mgl32.Vec3{0, 3, 0})

	require.Equal(t, mgl32.Vec3{}, obj.LinVel)
	require.Greater(t, obj.AngVel.LenSqr(), float32(0))
}

func TestWakeClearsSleepState(t *testing.T) {
	w := NewWorld(4, 0.5)
	slot := w.AddSphere(mgl32.Vec3{0, 1, 0}, 2, 1)
	obj := w.Get(slot)
	obj.Sleeping = true

	w.Wake(slot)

	require.False(t, w.Get(slot).Sleeping)
}

func TestDestroyAtPointQueuesSplit(t *testing.T) {
	w := NewWorld(4, 0.5)
	slot := w.AddBox(mgl32.Vec3{0, 20, 0}, mgl32.Vec3{6, 6, 6}, 1)
	obj := w.Get(slot)
	removed := w.DestroyAtPoint(slot, obj.Position, 3)
	require.Greater(t, removed, 0)
	require.True(t, w.Get(slot).SplitQueued)
}

func TestSplitSeparatesDisconnectedComponents(t *testing.T) {
	w := NewWorld(8, 1.0)
	slot := w.AddSphere(mgl32.Vec3{0, 20, 0}, 1, 1)
	obj := w.Get(slot)
	obj.Grid = Grid{}
	obj.Grid.Set(1, 1, 1, 1)
	obj.Grid.Set(14, 14, 14, 1)
	w.queueSplit(slot)
	before := w.ActiveCount()
	w.processSplitQueue()
	require.Greater(t, w.ActiveCount(), before)
}
