// Package voxproxy implements the generic proxy physics step (spec §4.8):
// lightweight sphere/AABB/capsule proxies and non-rotating-turned-tumbling
// fragments, stepped against a voxvolume.Volume via voxcontact queries and
// against each other via the broadphases in voxbroad.
//
// Grounded on internal/entity/item_entity.go's per-tick pipeline again
// (gravity, drag, axis-collision, ground friction), generalized from a
// fixed 0.25³ item and hardcoded block-AABB tests to arbitrary shapes
// queried through voxcontact, and from other_examples/
// f3d23b2c_gazed-vu__body.go.go's dense-array object-pool bookkeeping
// (same pattern voxbody.World already uses for VoxelObject slots).
package voxproxy

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxcore/voxcore/voxbody"
	"github.com/voxcore/voxcore/voxbroad"
	"github.com/voxcore/voxcore/voxconfig"
	"github.com/voxcore/voxcore/voxcontact"
	"github.com/voxcore/voxcore/voxmath"
	"github.com/voxcore/voxcore/voxvolume"
)

// Shape selects which voxcontact query a Proxy is tested with.
type Shape int

const (
	ShapeSphere Shape = iota
	ShapeAABB
	ShapeCapsule
)

// Proxy is a single generic physics body: no orientation, no inertia, just
// a position/velocity pair tested against the terrain as one of three
// shapes (spec §4.8).
type Proxy struct {
	Position    mgl32.Vec3
	Velocity    mgl32.Vec3
	Shape       Shape
	Radius      float32
	HalfExtents mgl32.Vec3 // ShapeAABB
	CapsuleHalf mgl32.Vec3 // ShapeCapsule: offset from Position to each endpoint

	UseGravity         bool
	UseVoxelCollision  bool
	CollideWithProxies bool
	Active             bool

	// Restitution and Friction scale the shared velocity-dependent
	// restitution curve and the configured floor friction respectively
	// (1 leaves both unmodified); grounded on PhysicsProxy's per-proxy
	// restitution/friction fields in the C original, which the earlier
	// single-constant model here did not expose.
	Restitution float32
	Friction    float32

	// UserID is an opaque caller-assigned tag with no meaning to voxproxy
	// itself, carried only so a host can map a slot back to its own
	// entity (grounded on PhysicsProxy.user_id in the C original).
	UserID uint32
}

func (p *Proxy) boundingRadius() float32 {
	switch p.Shape {
	case ShapeAABB:
		return p.HalfExtents.Len()
	case ShapeCapsule:
		return p.CapsuleHalf.Len() + p.Radius
	default:
		return p.Radius
	}
}

// Fragment is a tumbling voxel fragment: a sphere proxy with an
// angular-velocity term, lighter restitution, and a snap-to-rest rule near
// the floor (spec §4.8 "Fragments").
type Fragment struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	AngVel   mgl32.Vec3
	Radius   float32
	Active   bool
}

// fragmentRestitutionScale lightens a fragment's bounce relative to the
// same-speed full-body restitution curve voxbody uses (spec §4.8: "lighter
// restitution").
const fragmentRestitutionScale = 0.5

// snapRestSpeed is the linear+angular speed below which a grounded fragment
// is snapped fully to rest rather than left to asymptotically settle.
const snapRestSpeed = 0.15

// State owns fixed-capacity proxy and fragment pools plus the broadphase
// structures used for pair resolution above the brute-force threshold
// (spec §4.9: sweep-and-prune for small proxy counts, uniform grid above
// the configured threshold).
type State struct {
	proxies      []Proxy
	proxyAlive   []bool
	proxyLive    []int32
	proxyFreeIdx int

	fragments  []Fragment
	fragAlive  []bool
	fragLive   []int32
	fragFreeAt int

	sap  *voxbroad.SweepAndPrune
	grid *voxbroad.UniformGrid
}

// StateInit allocates the fixed proxy/fragment pools and broadphase
// structures for a process lifetime (spec §5: no heap allocation after
// setup).
func StateInit(proxyCapacity, fragmentCapacity int) *State {
	total := proxyCapacity + fragmentCapacity
	return &State{
		proxies:    make([]Proxy, proxyCapacity),
		proxyAlive: make([]bool, proxyCapacity),
		proxyLive:  make([]int32, 0, proxyCapacity),

		fragments: make([]Fragment, fragmentCapacity),
		fragAlive: make([]bool, fragmentCapacity),
		fragLive:  make([]int32, 0, fragmentCapacity),

		sap:  voxbroad.NewSweepAndPrune(total),
		grid: voxbroad.NewUniformGrid(total),
	}
}

func allocSlot(alive []bool, hint *int) int32 {
	n := len(alive)
	for i := 0; i < n; i++ {
		idx := (*hint + i) % n
		if !alive[idx] {
			*hint = (idx + 1) % n
			return int32(idx)
		}
	}
	return -1
}

func insertAscending(live []int32, slot int32) []int32 {
	i := 0
	for i < len(live) && live[i] < slot {
		i++
	}
	live = append(live, 0)
	copy(live[i+1:], live[i:])
	live[i] = slot
	return live
}

func removeFromLive(live []int32, slot int32) []int32 {
	for i, s := range live {
		if s == slot {
			return append(live[:i], live[i+1:]...)
		}
	}
	return live
}

// ProxyAlloc allocates a proxy slot, or -1 if the pool is full (spec §7).
func (s *State) ProxyAlloc(pos mgl32.Vec3, shape Shape, useGravity, useVoxelCollision bool) int32 {
	slot := allocSlot(s.proxyAlive, &s.proxyFreeIdx)
	if slot < 0 {
		return -1
	}
	s.proxies[slot] = Proxy{
		Position:           pos,
		Shape:              shape,
		Radius:             0.5,
		HalfExtents:        mgl32.Vec3{0.5, 0.5, 0.5},
		CapsuleHalf:        mgl32.Vec3{0, 0.5, 0},
		UseGravity:         useGravity,
		UseVoxelCollision:  useVoxelCollision,
		CollideWithProxies: true,
		Active:             true,
		Restitution:        1,
		Friction:           1,
	}
	s.proxyAlive[slot] = true
	s.proxyLive = insertAscending(s.proxyLive, slot)
	return slot
}

// ProxyGet returns the proxy at a slot, or nil if not alive.
func (s *State) ProxyGet(slot int32) *Proxy {
	if slot < 0 || int(slot) >= len(s.proxies) || !s.proxyAlive[slot] {
		return nil
	}
	return &s.proxies[slot]
}

// ProxyFree deactivates a proxy slot for reuse.
func (s *State) ProxyFree(slot int32) {
	if slot < 0 || int(slot) >= len(s.proxies) || !s.proxyAlive[slot] {
		return
	}
	s.proxyAlive[slot] = false
	s.proxyLive = removeFromLive(s.proxyLive, slot)
}

// FragmentSpawn allocates a fragment slot, or -1 if the pool is full.
func (s *State) FragmentSpawn(pos, vel, angVel mgl32.Vec3, radius float32) int32 {
	slot := allocSlot(s.fragAlive, &s.fragFreeAt)
	if slot < 0 {
		return -1
	}
	s.fragments[slot] = Fragment{Position: pos, Velocity: vel, AngVel: angVel, Radius: radius, Active: true}
	s.fragAlive[slot] = true
	s.fragLive = insertAscending(s.fragLive, slot)
	return slot
}

// FragmentGet returns the fragment at a slot, or nil if not alive.
func (s *State) FragmentGet(slot int32) *Fragment {
	if slot < 0 || int(slot) >= len(s.fragments) || !s.fragAlive[slot] {
		return nil
	}
	return &s.fragments[slot]
}

// FragmentFree deactivates a fragment slot for reuse.
func (s *State) FragmentFree(slot int32) {
	if slot < 0 || int(slot) >= len(s.fragments) || !s.fragAlive[slot] {
		return
	}
	s.fragAlive[slot] = false
	s.fragLive = removeFromLive(s.fragLive, slot)
}

// ProxyCount and FragmentCount report the currently-alive pool sizes.
func (s *State) ProxyCount() int    { return len(s.proxyLive) }
func (s *State) FragmentCount() int { return len(s.fragLive) }

func contactForShape(terrain *voxvolume.Volume, p *Proxy) voxcontact.Result {
	switch p.Shape {
	case ShapeAABB:
		box := voxmath.AABBFromCenterHalfExtents(p.Position, p.HalfExtents)
		return voxcontact.AABBContact(terrain, box)
	case ShapeCapsule:
		a := p.Position.Sub(p.CapsuleHalf)
		b := p.Position.Add(p.CapsuleHalf)
		return voxcontact.Capsule(terrain, a, b, p.Radius)
	default:
		return voxcontact.Sphere(terrain, p.Position, p.Radius)
	}
}

// Step runs one tick for every active proxy and fragment, then resolves
// proxy-proxy pairs (spec §4.8).
func (s *State) Step(dt float32, floorY float32, terrain *voxvolume.Volume, rng *voxmath.Rand) {
	for _, slot := range s.proxyLive {
		s.stepProxy(&s.proxies[slot], dt, floorY, terrain)
	}
	for _, slot := range s.fragLive {
		s.stepFragment(&s.fragments[slot], dt, floorY, terrain)
	}
	s.resolvePairs()
}

func (s *State) stepProxy(p *Proxy, dt float32, floorY float32, terrain *voxvolume.Volume) {
	if !p.Active {
		return
	}
	if p.UseGravity {
		p.Velocity = p.Velocity.Sub(mgl32.Vec3{0, voxconfig.GetGravity() * dt, 0})
	}

	r := p.boundingRadius()
	if r > 0 && dt > 0 {
		maxSpeed := r / dt
		if p.Velocity.Len() > maxSpeed {
			p.Velocity = p.Velocity.Normalize().Mul(maxSpeed)
		}
	}
	p.Position = p.Position.Add(p.Velocity.Mul(dt))

	if p.UseVoxelCollision && terrain != nil {
		result := contactForShape(terrain, p)
		if result.AnyContact {
			push := voxcontact.Resolve(result)
			p.Position = p.Position.Add(push)
			if push.LenSqr() > 1e-12 {
				normal := push.Normalize()
				along := p.Velocity.Dot(normal)
				if along < 0 {
					restitution := voxbody.RestitutionForSpeed(-along) * p.Restitution
					p.Velocity = p.Velocity.Sub(normal.Mul(along * (1 + restitution)))
				}
				tangent := p.Velocity.Sub(normal.Mul(p.Velocity.Dot(normal)))
				friction := voxconfig.GetFloorFriction() * p.Friction
				p.Velocity = p.Velocity.Sub(tangent.Mul(1 - friction))
			}
		}
	}

	minY := floorY + r
	if p.Position.Y() < minY {
		p.Position = mgl32.Vec3{p.Position.X(), minY, p.Position.Z()}
		if p.Velocity.Y() < 0 {
			p.Velocity = mgl32.Vec3{p.Velocity.X(), 0, p.Velocity.Z()}
		}
	}

	linK, _ := voxconfig.GetDampingCoefficients()
	p.Velocity = p.Velocity.Mul(1 / (1 + dt*(1-linK)))
}

func (s *State) stepFragment(f *Fragment, dt float32, floorY float32, terrain *voxvolume.Volume) {
	if !f.Active {
		return
	}
	f.Velocity = f.Velocity.Sub(mgl32.Vec3{0, voxconfig.GetGravity() * dt, 0})

	if f.Radius > 0 && dt > 0 {
		maxSpeed := f.Radius / dt
		if f.Velocity.Len() > maxSpeed {
			f.Velocity = f.Velocity.Normalize().Mul(maxSpeed)
		}
	}
	f.Position = f.Position.Add(f.Velocity.Mul(dt))

	if terrain != nil {
		result := voxcontact.Sphere(terrain, f.Position, f.Radius)
		if result.AnyContact {
			push := voxcontact.Resolve(result)
			f.Position = f.Position.Add(push)
			if push.LenSqr() > 1e-12 {
				normal := push.Normalize()
				along := f.Velocity.Dot(normal)
				if along < 0 {
					restitution := voxbody.RestitutionForSpeed(-along) * fragmentRestitutionScale
					f.Velocity = f.Velocity.Sub(normal.Mul(along * (1 + restitution)))
				}
			}
		}
	}

	minY := floorY + f.Radius
	grounded := false
	if f.Position.Y() < minY {
		f.Position = mgl32.Vec3{f.Position.X(), minY, f.Position.Z()}
		if f.Velocity.Y() < 0 {
			f.Velocity = mgl32.Vec3{f.Velocity.X(), 0, f.Velocity.Z()}
		}
		grounded = true
	}

	linK, angK := voxconfig.GetDampingCoefficients()
	f.Velocity = f.Velocity.Mul(1 / (1 + dt*(1-linK)))
	f.AngVel = f.AngVel.Mul(1 / (1 + dt*(1-angK)))

	if grounded && f.Velocity.Len() < snapRestSpeed && f.AngVel.Len() < snapRestSpeed {
		f.Velocity = mgl32.Vec3{}
		f.AngVel = mgl32.Vec3{}
	}
}
