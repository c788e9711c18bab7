package voxbvh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/voxcore/voxcore/voxmath"
)

func gridItems(n int) []Item {
	items := make([]Item, 0, n*n)
	for x := 0; x < n; x++ {
		for z := 0; z < n; z++ {
			items = append(items, Item{
				WorldIndex: int32(x*n + z),
				Center:     mgl32.Vec3{float32(x) * 10, 0, float32(z) * 10},
				Radius:     1,
			})
		}
	}
	return items
}

func TestBuildEmptyTreeHasNoNodes(t *testing.T) {
	b := Build(nil)
	require.True(t, b.Empty())
}

func TestBuildCoversAllItemsExactlyOnce(t *testing.T) {
	items := gridItems(6)
	b := Build(items)
	require.False(t, b.Empty())
	require.Equal(t, len(items), len(b.order))

	seen := make(map[int32]bool)
	for _, id := range b.order {
		require.False(t, seen[id], "world index %d appeared twice", id)
		seen[id] = true
	}
	require.Equal(t, len(items), len(seen))
}

func TestRootBoundsContainAllItems(t *testing.T) {
	items := gridItems(5)
	b := Build(items)
	root := b.nodes[0].Bounds
	for _, it := range items {
		box := voxmath.AABBFromCenterHalfExtents(it.Center, mgl32.Vec3{it.Radius, it.Radius, it.Radius})
		require.True(t, root.Overlaps(box))
		require.True(t, root.Contains(it.Center))
	}
}

func TestRayCandidatesFindsAlignedItem(t *testing.T) {
	items := gridItems(8)
	b := Build(items)
	dst := b.RayCandidates(mgl32.Vec3{0, 0, -100}, mgl32.Vec3{0, 0, 1}, 500, 32, nil)
	require.Contains(t, dst, int32(0))
}

func TestRayCandidatesRespectsMaxResults(t *testing.T) {
	items := gridItems(8)
	b := Build(items)
	dst := b.RayCandidates(mgl32.Vec3{-5, 0, -5}, mgl32.Vec3{1, 0, 1}.Normalize(), 1000, 3, nil)
	require.LessOrEqual(t, len(dst), 3)
}

func TestSphereOverlapFindsNearbyItem(t *testing.T) {
	items := gridItems(4)
	b := Build(items)
	dst := b.SphereOverlap(mgl32.Vec3{0, 0, 0}, 2, nil)
	require.Contains(t, dst, int32(0))
}

func TestSphereOverlapMissesFarItems(t *testing.T) {
	items := gridItems(4)
	b := Build(items)
	dst := b.SphereOverlap(mgl32.Vec3{1000, 1000, 1000}, 1, nil)
	require.Empty(t, dst)
}

func TestAABBOverlapFindsContainedItem(t *testing.T) {
	items := gridItems(6)
	b := Build(items)
	query := voxmath.AABB{Min: mgl32.Vec3{-2, -2, -2}, Max: mgl32.Vec3{2, 2, 2}}
	dst := b.AABBOverlap(query, nil)
	require.Contains(t, dst, int32(0))
}

func TestRefitTracksMovedBody(t *testing.T) {
	items := gridItems(4)
	b := Build(items)

	moved := map[int32]mgl32.Vec3{0: {500, 500, 500}}
	get := func(worldIndex int32) (voxmath.AABB, bool) {
		for _, it := range items {
			if it.WorldIndex == worldIndex {
				center := it.Center
				if c, ok := moved[worldIndex]; ok {
					center = c
				}
				return voxmath.AABBFromCenterHalfExtents(center, mgl32.Vec3{it.Radius, it.Radius, it.Radius}), true
			}
		}
		return voxmath.AABB{}, false
	}

	stale := b.Refit(get)
	require.False(t, stale)

	dst := b.SphereOverlap(mgl32.Vec3{500, 500, 500}, 2, nil)
	require.Contains(t, dst, int32(0))
	dstOld := b.SphereOverlap(mgl32.Vec3{0, 0, 0}, 1, nil)
	require.NotContains(t, dstOld, int32(0))
}

func TestRefitReportsStaleOnMissingBody(t *testing.T) {
	items := gridItems(4)
	b := Build(items)

	get := func(worldIndex int32) (voxmath.AABB, bool) {
		if worldIndex == 0 {
			return voxmath.AABB{}, false
		}
		for _, it := range items {
			if it.WorldIndex == worldIndex {
				return voxmath.AABBFromCenterHalfExtents(it.Center, mgl32.Vec3{it.Radius, it.Radius, it.Radius}), true
			}
		}
		return voxmath.AABB{}, false
	}

	require.True(t, b.Refit(get))
}
