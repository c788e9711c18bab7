package voxconnect

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxcore/voxcore/voxchunk"
	"github.com/voxcore/voxcore/voxconfig"
	"github.com/voxcore/voxcore/voxvolume"
)

// Params configures one connectivity analysis pass.
type Params struct {
	AnchorY        float32
	AnchorMaterial voxchunk.Material // 0 disables material anchoring
}

// logFn receives the two foreseen recoverable conditions connectivity can
// hit: flood-fill stack overflow and the MaxIslands cap (spec §7).
var logFn func(string)

// SetLogger installs a callback for connectivity's recoverable conditions.
// Passing nil disables logging.
func SetLogger(fn func(string)) { logFn = fn }

func logMsg(msg string) {
	if logFn != nil {
		logFn(msg)
	}
}

// packedVoxel is an explicit flood-fill stack entry: a voxel coordinate
// packed into one word (spec §4.3's "packed position words"), so the stack
// is a flat []uint64 rather than a slice of 3-int structs.
type packedVoxel = uint64

const packBits = 21 // supports volumes up to 2,097,152 (2^21) voxels per axis

func packVoxel(vx, vy, vz int) packedVoxel {
	return uint64(uint32(vx))<<(2*packBits) | uint64(uint32(vy))<<packBits | uint64(uint32(vz))
}

func unpackVoxel(p packedVoxel) (vx, vy, vz int) {
	mask := uint64(1)<<packBits - 1
	vx = int(p >> (2 * packBits) & mask)
	vy = int(p >> packBits & mask)
	vz = int(p & mask)
	return
}

var neighborOffsets = [6][3]int{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// AnalyzeVolume runs connectivity over every solid voxel in v.
func AnalyzeVolume(v *voxvolume.Volume, w *Work, p Params) ConnectivityResult {
	dx, dy, dz := v.VoxelDims()
	return analyze(v, w, p, 0, 0, 0, dx, dy, dz)
}

// AnalyzeDirty runs connectivity restricted to the chunks touched by the
// volume's most recent edit batch, expanded by one chunk in each axis to
// capture cross-chunk neighborhoods created by the edit (spec §4.3).
func AnalyzeDirty(v *voxvolume.Volume, w *Work, p Params) ConnectivityResult {
	touched := v.LastEditChunks()
	if len(touched) == 0 {
		return ConnectivityResult{}
	}
	chunksX, chunksY, chunksZ, chunkSize := v.ChunkGridSize()

	minCX, minCY, minCZ := chunksX, chunksY, chunksZ
	maxCX, maxCY, maxCZ := -1, -1, -1
	for _, c := range touched {
		if c.X < minCX {
			minCX = c.X
		}
		if c.Y < minCY {
			minCY = c.Y
		}
		if c.Z < minCZ {
			minCZ = c.Z
		}
		if c.X > maxCX {
			maxCX = c.X
		}
		if c.Y > maxCY {
			maxCY = c.Y
		}
		if c.Z > maxCZ {
			maxCZ = c.Z
		}
	}
	minCX, minCY, minCZ = minCX-1, minCY-1, minCZ-1
	maxCX, maxCY, maxCZ = maxCX+1, maxCY+1, maxCZ+1
	if minCX < 0 {
		minCX = 0
	}
	if minCY < 0 {
		minCY = 0
	}
	if minCZ < 0 {
		minCZ = 0
	}
	if maxCX >= chunksX {
		maxCX = chunksX - 1
	}
	if maxCY >= chunksY {
		maxCY = chunksY - 1
	}
	if maxCZ >= chunksZ {
		maxCZ = chunksZ - 1
	}

	minVX, minVY, minVZ := minCX*chunkSize, minCY*chunkSize, minCZ*chunkSize
	maxVX, maxVY, maxVZ := (maxCX+1)*chunkSize, (maxCY+1)*chunkSize, (maxCZ+1)*chunkSize
	return analyze(v, w, p, minVX, minVY, minVZ, maxVX, maxVY, maxVZ)
}

func analyze(v *voxvolume.Volume, w *Work, p Params, minVX, minVY, minVZ, maxVX, maxVY, maxVZ int) ConnectivityResult {
	w.Clear()
	result := ConnectivityResult{}
	maxIslands := voxconfig.GetMaxIslands()
	forceAnchor := voxconfig.GetForceAnchorOnStackOverflow()
	maxDepth := voxconfig.GetMaxFloodStackDepth()
	chunksX, chunksY, chunksZ, chunkSize := v.ChunkGridSize()

	nextID := 1
	stack := make([]packedVoxel, 0, 1024)

	for vz := minVZ; vz < maxVZ; vz++ {
		for vy := minVY; vy < maxVY; vy++ {
			for vx := minVX; vx < maxVX; vx++ {
				result.TotalVoxelsChecked++
				idx := w.index(vx, vy, vz)
				if w.visited(idx) {
					continue
				}
				if !v.IsSolidAtVoxel(vx, vy, vz) {
					continue
				}

				id := IslandID(maxIslands)
				if nextID <= maxIslands {
					id = IslandID(nextID)
				}

				island := IslandInfo{
					ID:       id,
					VoxelMin: [3]int{vx, vy, vz},
					VoxelMax: [3]int{vx, vy, vz},
					Anchor:   AnchorNone,
				}

				stack = stack[:0]
				stack = append(stack, packVoxel(vx, vy, vz))
				w.markVisited(idx, id)
				overflowed := false

				for len(stack) > 0 {
					top := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					cx, cy, cz := unpackVoxel(top)

					island.VoxelCount++
					updateBounds(&island, cx, cy, cz)
					island.comAccum = island.comAccum.Add(mgl32.Vec3{float32(cx) + 0.5, float32(cy) + 0.5, float32(cz) + 0.5})
					classify(&island, v, p, cx, cy, cz, chunksX, chunksY, chunksZ, chunkSize)

					for _, off := range neighborOffsets {
						nx, ny, nz := cx+off[0], cy+off[1], cz+off[2]
						if !w.inBounds(nx, ny, nz) {
							continue
						}
						nIdx := w.index(nx, ny, nz)
						if w.visited(nIdx) {
							continue
						}
						if !v.IsSolidAtVoxel(nx, ny, nz) {
							continue
						}
						if len(stack) >= maxDepth {
							overflowed = true
							result.StackOverflowCount++
							continue
						}
						w.markVisited(nIdx, id)
						stack = append(stack, packVoxel(nx, ny, nz))
					}
				}

				if overflowed && forceAnchor {
					island.Anchor = AnchorFloor
					logMsg("connectivity: flood-fill stack depth exceeded, island force-anchored")
				}

				island.CenterOfMass = island.comAccum.Mul(1 / float32(island.VoxelCount))
				origin := v.Origin()
				voxelSize := v.VoxelSize()
				island.WorldMin = origin.Add(mgl32.Vec3{
					float32(island.VoxelMin[0]), float32(island.VoxelMin[1]), float32(island.VoxelMin[2]),
				}.Mul(voxelSize))
				island.WorldMax = origin.Add(mgl32.Vec3{
					float32(island.VoxelMax[0] + 1), float32(island.VoxelMax[1] + 1), float32(island.VoxelMax[2] + 1),
				}.Mul(voxelSize))

				if island.IsFloating() {
					result.FloatingCount++
				} else {
					result.AnchoredCount++
				}

				if nextID <= maxIslands {
					result.Islands = append(result.Islands, island)
				} else {
					result.DroppedIslandCount++
					logMsg("connectivity: island discovered beyond MaxIslands, not recorded")
				}
				if nextID < maxIslands+1 {
					nextID++
				}
			}
		}
	}
	return result
}

func updateBounds(island *IslandInfo, x, y, z int) {
	if x < island.VoxelMin[0] {
		island.VoxelMin[0] = x
	}
	if y < island.VoxelMin[1] {
		island.VoxelMin[1] = y
	}
	if z < island.VoxelMin[2] {
		island.VoxelMin[2] = z
	}
	if x > island.VoxelMax[0] {
		island.VoxelMax[0] = x
	}
	if y > island.VoxelMax[1] {
		island.VoxelMax[1] = y
	}
	if z > island.VoxelMax[2] {
		island.VoxelMax[2] = z
	}
}

// classify updates island's anchor classification for one newly-visited
// voxel. Floor and Material checks are unconditional per spec §4.3 (the
// latest qualifying voxel determines the reason); VolumeEdge only applies
// if the island is not already anchored by some other reason.
func classify(island *IslandInfo, v *voxvolume.Volume, p Params, vx, vy, vz, chunksX, chunksY, chunksZ, chunkSize int) {
	worldY := v.Origin().Y() + float32(vy)*v.VoxelSize()

	if worldY <= p.AnchorY+v.VoxelSize() {
		island.Anchor = AnchorFloor
	}
	if p.AnchorMaterial != voxchunk.MaterialEmpty && v.MaterialAtVoxel(vx, vy, vz) == p.AnchorMaterial {
		island.Anchor = AnchorMaterial
	}
	if island.Anchor == AnchorNone {
		cx, _, cz, _, _, _ := v.SplitVoxel(vx, vy, vz)
		onLateralRing := cx == 0 || cx == chunksX-1 || cz == 0 || cz == chunksZ-1
		// "Near the floor": within one level-0 occupancy region (a quarter
		// chunk, 8 voxels) above AnchorY.
		nearFloor := worldY <= p.AnchorY+float32(chunkSize/4)*v.VoxelSize()
		if onLateralRing && nearFloor {
			island.Anchor = AnchorVolumeEdge
		}
	}
}
