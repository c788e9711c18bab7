package voxproxy

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/voxcore/voxcore/voxmath"
)

func TestProxyAllocAndFree(t *testing.T) {
	s := StateInit(4, 2)
	slot := s.ProxyAlloc(mgl32.Vec3{0, 10, 0}, ShapeSphere, true, false)
	require.GreaterOrEqual(t, slot, int32(0))
	require.Equal(t, 1, s.ProxyCount())

	s.ProxyFree(slot)
	require.Equal(t, 0, s.ProxyCount())
	require.Nil(t, s.ProxyGet(slot))
}

func TestProxyPoolFullReturnsMinusOne(t *testing.T) {
	s := StateInit(1, 0)
	slot1 := s.ProxyAlloc(mgl32.Vec3{}, ShapeSphere, true, false)
	require.GreaterOrEqual(t, slot1, int32(0))
	slot2 := s.ProxyAlloc(mgl32.Vec3{1, 1, 1}, ShapeSphere, true, false)
	require.Equal(t, int32(-1), slot2)
}

func TestProxyFallsUnderGravity(t *testing.T) {
	s := StateInit(4, 0)
	slot := s.ProxyAlloc(mgl32.Vec3{0, 50, 0}, ShapeSphere, true, false)
	startY := s.ProxyGet(slot).Position.Y()

	rng := voxmath.NewRand(1)
	s.Step(1.0/60, -1000, nil, rng)

	require.Less(t, s.ProxyGet(slot).Position.Y(), startY)
}

func TestProxyStopsAtFloorFallback(t *testing.T) {
	s := StateInit(4, 0)
	slot := s.ProxyAlloc(mgl32.Vec3{0, 1, 0}, ShapeSphere, true, false)

	rng := voxmath.NewRand(1)
	for i := 0; i < 300; i++ {
		s.Step(1.0/60, 0, nil, rng)
	}

	obj := s.ProxyGet(slot)
	require.NotNil(t, obj)
	require.GreaterOrEqual(t, obj.Position.Y(), float32(0)-1e-3)
}

func TestFragmentSpawnAndFree(t *testing.T) {
	s := StateInit(0, 4)
	slot := s.FragmentSpawn(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, 0.3)
	require.GreaterOrEqual(t, slot, int32(0))
	require.Equal(t, 1, s.FragmentCount())

	s.FragmentFree(slot)
	require.Equal(t, 0, s.FragmentCount())
}

func TestFragmentSnapsToRestNearFloor(t *testing.T) {
	s := StateInit(0, 4)
	slot := s.FragmentSpawn(mgl32.Vec3{0, 0.31, 0}, mgl32.Vec3{0, -0.01, 0}, mgl32.Vec3{0.01, 0, 0}, 0.3)

	rng := voxmath.NewRand(1)
	for i := 0; i < 60; i++ {
		s.Step(1.0/60, 0, nil, rng)
	}

	frag := s.FragmentGet(slot)
	require.NotNil(t, frag)
	require.Equal(t, mgl32.Vec3{}, frag.Velocity)
	require.Equal(t, mgl32.Vec3{}, frag.AngVel)
}

func TestProxiesWithCollisionDisabledDoNotSeparate(t *testing.T) {
	s := StateInit(8, 0)
	slotA := s.ProxyAlloc(mgl32.Vec3{0, 50, 0}, ShapeSphere, false, false)
	slotB := s.ProxyAlloc(mgl32.Vec3{0.2, 50, 0}, ShapeSphere, false, false)
	s.ProxyGet(slotA).CollideWithProxies = false

	rng := voxmath.NewRand(1)
	for i := 0; i < 5; i++ {
		s.Step(1.0/60, -1000, nil, rng)
	}

	a, b := s.ProxyGet(slotA), s.ProxyGet(slotB)
	require.InDelta(t, float32(0.2), b.Position.Sub(a.Position).Len(), 1e-6)
}

func TestProxyUserIDRoundTrips(t *testing.T) {
	s := StateInit(4, 0)
	slot := s.ProxyAlloc(mgl32.Vec3{}, ShapeSphere, false, false)
	s.ProxyGet(slot).UserID = 42
	require.Equal(t, uint32(42), s.ProxyGet(slot).UserID)
}

func TestOverlappingProxiesSeparate(t *testing.T) {
	s := StateInit(8, 0)
	slotA := s.ProxyAlloc(mgl32.Vec3{0, 50, 0}, ShapeSphere, false, false)
	slotB := s.ProxyAlloc(mgl32.Vec3{0.2, 50, 0}, ShapeSphere, false, false)

	rng := voxmath.NewRand(1)
	for i := 0; i < 5; i++ {
		s.Step(1.0/60, -1000, nil, rng)
	}

	a, b := s.ProxyGet(slotA), s.ProxyGet(slotB)
	require.Greater(t, b.Position.Sub(a.Position).Len(), float32(0.2))
}
