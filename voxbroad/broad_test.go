package voxbroad

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/voxcore/voxcore/voxmath"
)

func TestSpatialHashFindsNeighbor(t *testing.T) {
	h := NewSpatialHash(4, 8)
	h.Clear()
	h.Insert(0, mgl32.Vec3{0, 0, 0}, 1)
	h.Insert(1, mgl32.Vec3{1.5, 0, 0}, 1)
	h.Insert(2, mgl32.Vec3{100, 0, 0}, 1)

	var dst []int32
	dst = h.QueryAppend(mgl32.Vec3{0, 0, 0}, 1, dst)
	require.Contains(t, dst, int32(0))
	require.Contains(t, dst, int32(1))
	require.NotContains(t, dst, int32(2))
}

func TestSpatialHashQueryDedupesAcrossCells(t *testing.T) {
	h := NewSpatialHash(1, 4)
	h.Clear()
	h.Insert(0, mgl32.Vec3{0, 0, 0}, 3)

	var dst []int32
	dst = h.QueryAppend(mgl32.Vec3{0, 0, 0}, 3, dst)
	count := 0
	for _, v := range dst {
		if v == 0 {
			count++
		}
	}
	require.Equal(t, 1, count)
}

func TestSpatialHashClearResetsState(t *testing.T) {
	h := NewSpatialHash(4, 4)
	h.Insert(0, mgl32.Vec3{0, 0, 0}, 1)
	h.Clear()
	var dst []int32
	dst = h.QueryAppend(mgl32.Vec3{0, 0, 0}, 1, dst)
	require.Empty(t, dst)
}

func TestSweepAndPruneEmitsOverlappingPairsOnce(t *testing.T) {
	s := NewSweepAndPrune(8)
	s.Insert(0, voxmath.AABBFromCenterHalfExtents(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}))
	s.Insert(1, voxmath.AABBFromCenterHalfExtents(mgl32.Vec3{1.5, 0, 0}, mgl32.Vec3{1, 1, 1}))
	s.Insert(2, voxmath.AABBFromCenterHalfExtents(mgl32.Vec3{100, 0, 0}, mgl32.Vec3{1, 1, 1}))

	pairs := s.Pairs()
	require.Len(t, pairs, 1)
	require.Equal(t, Pair{A: 0, B: 1}, pairs[0])
}

func TestSweepAndPruneNoOverlapYZ(t *testing.T) {
	s := NewSweepAndPrune(8)
	s.Insert(0, voxmath.AABBFromCenterHalfExtents(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}))
	s.Insert(1, voxmath.AABBFromCenterHalfExtents(mgl32.Vec3{1, 50, 0}, mgl32.Vec3{1, 1, 1}))

	pairs := s.Pairs()
	require.Empty(t, pairs)
}

func TestUniformGridEmitsEachPairOnce(t *testing.T) {
	g := NewUniformGrid(8)
	g.Reset()
	g.Insert(0, mgl32.Vec3{0, 0, 0})
	g.Insert(1, mgl32.Vec3{0.1, 0, 0})
	g.Insert(2, mgl32.Vec3{100, 100, 100})

	pairs := g.Pairs()
	require.Len(t, pairs, 1)
	require.Equal(t, Pair{A: 0, B: 1}, pairs[0])

	again := g.Pairs()
	require.Len(t, again, 1)
}

func TestUniformGridResetClearsCells(t *testing.T) {
	g := NewUniformGrid(8)
	g.Insert(0, mgl32.Vec3{0, 0, 0})
	g.Insert(1, mgl32.Vec3{0, 0, 0})
	g.Reset()
	g.Insert(2, mgl32.Vec3{0, 0, 0})
	pairs := g.Pairs()
	require.Empty(t, pairs)
}

func TestMakePairOrdersLowerIndexFirst(t *testing.T) {
	require.Equal(t, Pair{A: 2, B: 5}, makePair(5, 2))
	require.Equal(t, Pair{A: 2, B: 5}, makePair(2, 5))
}
