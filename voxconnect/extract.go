package voxconnect

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxcore/voxcore/voxchunk"
	"github.com/voxcore/voxcore/voxvolume"
)

// ExtractedVoxels is a dense sub-volume copied out of an island, sized
// (voxel_max - voxel_min + 1) per axis with the lowest corner placed at
// the island's voxel-space origin (spec §4.3 Extraction).
type ExtractedVoxels struct {
	SizeX, SizeY, SizeZ int
	Materials           []voxchunk.Material // flat, z-outer/y-middle/x-inner
	WorldOrigin         mgl32.Vec3
}

func (e *ExtractedVoxels) index(x, y, z int) int {
	return (z*e.SizeY+y)*e.SizeX + x
}

// At returns the material at local coordinates within the extracted block.
func (e *ExtractedVoxels) At(x, y, z int) voxchunk.Material {
	return e.Materials[e.index(x, y, z)]
}

// Extract copies every voxel stamped with island.ID in w into a dense
// sub-volume, returning it alongside the world-space origin of its lowest
// corner.
func Extract(v *voxvolume.Volume, w *Work, island IslandInfo) ExtractedVoxels {
	sx := island.VoxelMax[0] - island.VoxelMin[0] + 1
	sy := island.VoxelMax[1] - island.VoxelMin[1] + 1
	sz := island.VoxelMax[2] - island.VoxelMin[2] + 1

	out := ExtractedVoxels{
		SizeX: sx, SizeY: sy, SizeZ: sz,
		Materials:   make([]voxchunk.Material, sx*sy*sz),
		WorldOrigin: v.WorldPointOfVoxel(island.VoxelMin[0], island.VoxelMin[1], island.VoxelMin[2]),
	}

	for dz := 0; dz < sz; dz++ {
		for dy := 0; dy < sy; dy++ {
			for dx := 0; dx < sx; dx++ {
				vx, vy, vz := island.VoxelMin[0]+dx, island.VoxelMin[1]+dy, island.VoxelMin[2]+dz
				if w.IslandIDAt(vx, vy, vz) != island.ID {
					continue
				}
				out.Materials[out.index(dx, dy, dz)] = v.MaterialAtVoxel(vx, vy, vz)
			}
		}
	}
	return out
}

// Remove writes empty to every voxel stamped with island.ID, inside an
// edit batch so occupancy is rebuilt once per affected chunk rather than
// per voxel (spec §4.3 Removal).
func Remove(v *voxvolume.Volume, w *Work, island IslandInfo) {
	budget := (island.VoxelMax[0] - island.VoxelMin[0] + 1) *
		(island.VoxelMax[1] - island.VoxelMin[1] + 1) *
		(island.VoxelMax[2] - island.VoxelMin[2] + 1)
	v.EditBegin(budget)
	for vz := island.VoxelMin[2]; vz <= island.VoxelMax[2]; vz++ {
		for vy := island.VoxelMin[1]; vy <= island.VoxelMax[1]; vy++ {
			for vx := island.VoxelMin[0]; vx <= island.VoxelMax[0]; vx++ {
				if w.IslandIDAt(vx, vy, vz) != island.ID {
					continue
				}
				v.EditSetAtVoxel(vx, vy, vz, voxchunk.MaterialEmpty)
			}
		}
	}
	v.EditEnd()
}
