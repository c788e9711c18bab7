package voxbvh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxcore/voxcore/voxmath"
)

// stackDepth bounds the explicit traversal stack; a tree built with
// LeafMaxObjects-sized leaves over any realistic body count stays well
// within this depth, so overflow is treated as "stop descending" rather
// than grown dynamically (spec §4.6/§5: bounded, zero-allocation after
// build).
const stackDepth = 64

func safeInv(v float32) float32 {
	if v == 0 {
		return 1e30
	}
	return 1 / v
}

func rayAABB(b Node, origin, invDir mgl32.Vec3, maxDistance float32) bool {
	tmin, tmax := float32(0), maxDistance
	for a := 0; a < 3; a++ {
		t1 := (b.Bounds.Min[a] - origin[a]) * invDir[a]
		t2 := (b.Bounds.Max[a] - origin[a]) * invDir[a]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return false
		}
	}
	return true
}

// RayCandidates appends world-slot indices of leaves whose bounds the ray
// [origin, origin+dir*maxDistance] intersects, up to maxResults entries, via
// a slab test over an explicit node stack (spec §4.6 ray query).
func (b *BVH) RayCandidates(origin, dir mgl32.Vec3, maxDistance float32, maxResults int, dst []int32) []int32 {
	if len(b.nodes) == 0 || maxResults <= 0 {
		return dst
	}
	invDir := mgl32.Vec3{safeInv(dir.X()), safeInv(dir.Y()), safeInv(dir.Z())}

	var stack [stackDepth]int32
	sp := 0
	stack[sp] = 0
	sp++
	for sp > 0 {
		sp--
		idx := stack[sp]
		n := b.nodes[idx]
		if !rayAABB(n, origin, invDir, maxDistance) {
			continue
		}
		if n.LeafCount > 0 {
			for _, id := range b.order[n.LeafFirst : n.LeafFirst+n.LeafCount] {
				dst = append(dst, id)
				if len(dst) >= maxResults {
					return dst
				}
			}
			continue
		}
		if sp+2 > stackDepth {
			continue
		}
		stack[sp] = n.Left
		sp++
		stack[sp] = n.Right
		sp++
	}
	return dst
}

// SphereOverlap appends world-slot indices of leaves whose bounds lie
// within radius of center, testing each node via AABB-closest-point
// distance (spec §4.6 sphere query).
func (b *BVH) SphereOverlap(center mgl32.Vec3, radius float32, dst []int32) []int32 {
	if len(b.nodes) == 0 {
		return dst
	}
	r2 := radius * radius

	var stack [stackDepth]int32
	sp := 0
	stack[sp] = 0
	sp++
	for sp > 0 {
		sp--
		idx := stack[sp]
		n := b.nodes[idx]
		cp := n.Bounds.ClosestPoint(center)
		if cp.Sub(center).LenSqr() > r2 {
			continue
		}
		if n.LeafCount > 0 {
			dst = append(dst, b.order[n.LeafFirst:n.LeafFirst+n.LeafCount]...)
			continue
		}
		if sp+2 > stackDepth {
			continue
		}
		stack[sp] = n.Left
		sp++
		stack[sp] = n.Right
		sp++
	}
	return dst
}

// AABBOverlap appends world-slot indices of leaves whose bounds overlap the
// query box, via standard AABB-vs-AABB overlap recursion (spec §4.6 AABB
// query).
func (b *BVH) AABBOverlap(query voxmath.AABB, dst []int32) []int32 {
	if len(b.nodes) == 0 {
		return dst
	}

	var stack [stackDepth]int32
	sp := 0
	stack[sp] = 0
	sp++
	for sp > 0 {
		sp--
		idx := stack[sp]
		n := b.nodes[idx]
		if !n.Bounds.Overlaps(query) {
			continue
		}
		if n.LeafCount > 0 {
			dst = append(dst, b.order[n.LeafFirst:n.LeafFirst+n.LeafCount]...)
			continue
		}
		if sp+2 > stackDepth {
			continue
		}
		stack[sp] = n.Left
		sp++
		stack[sp] = n.Right
		sp++
	}
	return dst
}
