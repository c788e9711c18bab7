// Package voxconnect implements flood-fill connectivity analysis over a
// voxvolume.Volume: discovering connected voxel components ("islands"),
// classifying each as anchored or floating, and extracting/removing them
// (spec §4.3). The teacher has no destructible-islands analogue; the
// iterative explicit-stack flood fill is built in the idiom of the
// teacher's generation loops (mini-mc's internal/world chunk population
// passes), which favor explicit stacks/queues over recursion for bounded
// stack depth.
package voxconnect

import "github.com/go-gl/mathgl/mgl32"

// AnchorKind classifies why (or whether) an island is considered anchored.
type AnchorKind int

const (
	// AnchorNone marks an island with no anchor — it is floating.
	AnchorNone AnchorKind = iota
	// AnchorFloor marks an island containing a voxel whose lower face lies at
	// most one voxel size above anchor_y.
	AnchorFloor
	// AnchorMaterial marks an island containing the designated anchor material.
	AnchorMaterial
	// AnchorVolumeEdge marks an island touching the volume's outer lateral
	// chunk ring near the floor.
	AnchorVolumeEdge
)

func (a AnchorKind) String() string {
	switch a {
	case AnchorFloor:
		return "Floor"
	case AnchorMaterial:
		return "Material"
	case AnchorVolumeEdge:
		return "VolumeEdge"
	default:
		return "None"
	}
}

// IslandInfo describes one connected component discovered by a flood fill.
type IslandInfo struct {
	ID IslandID

	VoxelMin, VoxelMax [3]int
	WorldMin, WorldMax mgl32.Vec3
	CenterOfMass       mgl32.Vec3
	VoxelCount         int
	Anchor             AnchorKind

	comAccum mgl32.Vec3 // running sum of voxel centers, divided on finalize
}

// IsFloating reports whether the island has no anchor.
func (i IslandInfo) IsFloating() bool { return i.Anchor == AnchorNone }

// IslandID is a per-run unique identifier assigned in discovery order.
// One byte, matching spec's "1-byte island id" (0 is reserved: it is the
// work buffer's zero-value id, never assigned to a real island).
type IslandID = uint8

// ConnectivityResult is the outcome of one analysis pass.
type ConnectivityResult struct {
	Islands            []IslandInfo
	FloatingCount      int
	AnchoredCount      int
	TotalVoxelsChecked int
	DroppedIslandCount int // islands discovered beyond MaxIslands, not recorded
	StackOverflowCount int // flood fills that force-anchored due to stack depth
}
