// Package voxbvh implements a binary bounding-volume hierarchy over
// VoxelObject bounding spheres (spec §4.6), built with a binned
// surface-area-heuristic split and queried by ray, sphere, and AABB.
//
// Grounded on Gekko3D-gekko's voxelrt/rt/bvh/builder.go TLASBuilder: the
// same flat node-array layout (Min/Max/Left/Right/LeafFirst/LeafCount) and
// the same "append placeholder, recurse, patch children in" construction
// idiom, extended from its largest-extent-axis midpoint split into a
// binned (8-bin) SAH cost evaluation along that axis, and fixed to store
// leaves by world-slot index rather than compacted array position (the
// exact addressing bug spec §4.6's design notes flag; see DESIGN.md).
package voxbvh

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxcore/voxcore/voxmath"
)

// LeafMaxObjects is the maximum number of bodies held directly in a leaf
// before the builder attempts a further split.
const LeafMaxObjects = 4

const numSAHBins = 8
const traversalCost = 0.5

// bigF is used as a sentinel "unbounded" extent for an empty accumulator
// AABB; large enough that any real scene bound shrinks it immediately.
const bigF = 3.0e38

// Node is one entry of the flat BVH array. Left/Right are node indices
// (-1 for leaves); a leaf's members are order[LeafFirst:LeafFirst+LeafCount].
type Node struct {
	Bounds    voxmath.AABB
	Left      int32
	Right     int32
	LeafFirst int32
	LeafCount int32
}

// Item is one body's bounding sphere, addressed by its stable world slot
// (voxbody.World slot index, not a position in any compacted array).
type Item struct {
	WorldIndex int32
	Center     mgl32.Vec3
	Radius     float32
}

type prim struct {
	worldIndex int32
	center     mgl32.Vec3
	bounds     voxmath.AABB
}

// BVH is a built hierarchy. The zero value is an empty tree.
type BVH struct {
	nodes []Node
	order []int32
}

func emptyAABB() voxmath.AABB {
	return voxmath.AABB{Min: mgl32.Vec3{bigF, bigF, bigF}, Max: mgl32.Vec3{-bigF, -bigF, -bigF}}
}

// Build constructs a fresh tree from the given items. Called on the
// triggers spec §4.6 names: active-body-count change, or a leaf's
// referenced world index going inactive (detected by a failed Refit).
func Build(items []Item) *BVH {
	b := &BVH{}
	if len(items) == 0 {
		return b
	}
	prims := make([]prim, len(items))
	for i, it := range items {
		prims[i] = prim{
			worldIndex: it.WorldIndex,
			center:     it.Center,
			bounds:     voxmath.AABBFromCenterHalfExtents(it.Center, mgl32.Vec3{it.Radius, it.Radius, it.Radius}),
		}
	}
	b.order = make([]int32, 0, len(items))
	b.nodes = make([]Node, 0, 2*len(items))
	b.build(prims)
	return b
}

// Empty reports whether the tree has no nodes (no bodies were given to Build).
func (b *BVH) Empty() bool { return len(b.nodes) == 0 }

func primsBounds(prims []prim) voxmath.AABB {
	bounds := emptyAABB()
	for _, p := range prims {
		bounds = voxmath.Union(bounds, p.bounds)
	}
	return bounds
}

func (b *BVH) build(prims []prim) int32 {
	bounds := primsBounds(prims)
	nodeIdx := int32(len(b.nodes))
	b.nodes = append(b.nodes, Node{Bounds: bounds, Left: -1, Right: -1})

	if len(prims) <= LeafMaxObjects {
		b.makeLeaf(nodeIdx, prims)
		return nodeIdx
	}

	axis, splitIdx, ok := findBestSplit(prims, bounds)
	if !ok {
		b.makeLeaf(nodeIdx, prims)
		return nodeIdx
	}

	sort.Slice(prims, func(i, j int) bool { return prims[i].center[axis] < prims[j].center[axis] })
	if splitIdx <= 0 || splitIdx >= len(prims) {
		b.makeLeaf(nodeIdx, prims)
		return nodeIdx
	}

	left := b.build(prims[:splitIdx])
	right := b.build(prims[splitIdx:])
	b.nodes[nodeIdx].Left = left
	b.nodes[nodeIdx].Right = right
	return nodeIdx
}

func (b *BVH) makeLeaf(nodeIdx int32, prims []prim) {
	first := int32(len(b.order))
	for _, p := range prims {
		b.order = append(b.order, p.worldIndex)
	}
	b.nodes[nodeIdx].LeafFirst = first
	b.nodes[nodeIdx].LeafCount = int32(len(prims))
	b.nodes[nodeIdx].Left = -1
	b.nodes[nodeIdx].Right = -1
}

type binInfo struct {
	count  int
	bounds voxmath.AABB
}

// findBestSplit evaluates an 8-bin SAH cost along the largest-extent
// centroid axis (spec §4.6: "binned SAH, 8 bins, cost = traversal +
// Σ child-area · child-count"), falling back to no split ("ok=false") if no
// candidate split beats the cost of keeping prims in a single leaf.
func findBestSplit(prims []prim, bounds voxmath.AABB) (axis int, splitIdx int, ok bool) {
	cMin, cMax := prims[0].center, prims[0].center
	for _, p := range prims[1:] {
		for a := 0; a < 3; a++ {
			if p.center[a] < cMin[a] {
				cMin[a] = p.center[a]
			}
			if p.center[a] > cMax[a] {
				cMax[a] = p.center[a]
			}
		}
	}
	extent := cMax.Sub(cMin)
	axis = 0
	if extent[1] > extent[axis] {
		axis = 1
	}
	if extent[2] > extent[axis] {
		axis = 2
	}
	if extent[axis] < 1e-6 {
		return 0, 0, false
	}

	var bins [numSAHBins]binInfo
	for i := range bins {
		bins[i].bounds = emptyAABB()
	}
	for _, p := range prims {
		t := (p.center[axis] - cMin[axis]) / extent[axis]
		bi := int(t * numSAHBins)
		if bi < 0 {
			bi = 0
		}
		if bi >= numSAHBins {
			bi = numSAHBins - 1
		}
		bins[bi].count++
		bins[bi].bounds = voxmath.Union(bins[bi].bounds, p.bounds)
	}

	var leftCount, rightCount [numSAHBins]int
	var leftArea, rightArea [numSAHBins]float32
	lb, rb := emptyAABB(), emptyAABB()
	lc, rc := 0, 0
	for i := 0; i < numSAHBins; i++ {
		lc += bins[i].count
		lb = voxmath.Union(lb, bins[i].bounds)
		leftCount[i] = lc
		leftArea[i] = lb.SurfaceArea()
	}
	for i := numSAHBins - 1; i >= 0; i-- {
		rc += bins[i].count
		rb = voxmath.Union(rb, bins[i].bounds)
		rightCount[i] = rc
		rightArea[i] = rb.SurfaceArea()
	}

	parentArea := bounds.SurfaceArea()
	leafCost := float32(len(prims))
	bestCost := leafCost
	bestSplit := -1
	for k := 0; k < numSAHBins-1; k++ {
		l, r := leftCount[k], rightCount[k+1]
		if l == 0 || r == 0 || parentArea <= 0 {
			continue
		}
		cost := traversalCost + (leftArea[k]*float32(l)+rightArea[k+1]*float32(r))/parentArea
		if cost < bestCost {
			bestCost = cost
			bestSplit = k
		}
	}
	if bestSplit < 0 {
		return 0, 0, false
	}
	return axis, leftCount[bestSplit], true
}

// Refit recomputes every node's bounds bottom-up from the current position
// of each leaf's bodies, via a caller-supplied lookup keyed by world slot
// (the same stable index the tree was built with). It returns true if any
// leaf's world index was reported gone (ok=false) — the caller should then
// rebuild the tree instead of trusting this refit, since a body may have
// been removed or a new one added at a index this tree never saw.
func (b *BVH) Refit(get func(worldIndex int32) (voxmath.AABB, bool)) bool {
	if len(b.nodes) == 0 {
		return false
	}
	_, stale := b.refitNode(0, get)
	return stale
}

func (b *BVH) refitNode(idx int32, get func(int32) (voxmath.AABB, bool)) (voxmath.AABB, bool) {
	n := b.nodes[idx]
	if n.LeafCount > 0 {
		bounds := emptyAABB()
		stale := false
		for _, id := range b.order[n.LeafFirst : n.LeafFirst+n.LeafCount] {
			box, ok := get(id)
			if !ok {
				stale = true
				continue
			}
			bounds = voxmath.Union(bounds, box)
		}
		b.nodes[idx].Bounds = bounds
		return bounds, stale
	}
	lb, ls := b.refitNode(n.Left, get)
	rb, rs := b.refitNode(n.Right, get)
	bounds := voxmath.Union(lb, rb)
	b.nodes[idx].Bounds = bounds
	return bounds, ls || rs
}
