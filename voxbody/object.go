package voxbody

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxcore/voxcore/voxconfig"
	"github.com/voxcore/voxcore/voxmath"
)

// VoxelObject is a single rigid body carrying its own 16³ voxel grid (spec
// §4.5, §3). Position is the world-space center of mass.
type VoxelObject struct {
	Position    mgl32.Vec3
	Orientation mgl32.Quat
	LinVel      mgl32.Vec3
	AngVel      mgl32.Vec3

	Grid Grid

	Mass          float32
	InvMass       float32
	InvInertiaLoc mgl32.Vec3 // diagonal local inverse inertia
	inertiaInit   bool

	halfExtents mgl32.Vec3 // cached local-space half extents (voxel units * voxelSize)
	boundsDirty bool
	worldMin    mgl32.Vec3
	worldMax    mgl32.Vec3
	boundRadius float32

	Grounded     bool
	settleTimer  float32
	Sleeping     bool
	ShapeDirty   bool
	SplitQueued  bool
	RecalcQueued bool
	Active       bool

	voxelSize float32
}

// Active sleeping/settled bodies skip the expensive per-tick work in
// VoxelObjectWorld.Update (spec §4.5: "for each active non-sleeping body").

func newVoxelObject(pos mgl32.Vec3, voxelSize float32) *VoxelObject {
	return &VoxelObject{
		Position:    pos,
		Orientation: mgl32.QuatIdent(),
		voxelSize:   voxelSize,
		Active:      true,
		boundsDirty: true,
	}
}

// ensureInertia lazily computes the inertia tensor once the grid has voxels
// (spec §4.5 step 1).
func (o *VoxelObject) ensureInertia() {
	if o.inertiaInit || o.Mass <= 0 {
		return
	}
	full := o.halfExtents.Mul(2)
	diag := voxmath.BoxInertiaTensor(o.Mass, full)
	const minInertia = 1e-4
	clamp := func(v float32) float32 {
		if v < minInertia {
			return minInertia
		}
		return v
	}
	diag = mgl32.Vec3{clamp(diag.X()), clamp(diag.Y()), clamp(diag.Z())}
	o.InvInertiaLoc = mgl32.Vec3{1 / diag.X(), 1 / diag.Y(), 1 / diag.Z()}
	o.InvMass = 1 / o.Mass
	o.inertiaInit = true
}

// worldInvInertia returns R * Ilocal^-1 * R^T for the current orientation.
func (o *VoxelObject) worldInvInertia() mgl32.Mat3 {
	return voxmath.WorldInverseInertia(voxmath.Diag3(o.InvInertiaLoc), o.Orientation)
}

// recomputeBounds refreshes the cached world AABB and bounding-sphere
// radius from position, orientation, and half-extents.
func (o *VoxelObject) recomputeBounds() {
	if !o.boundsDirty {
		return
	}
	r := o.Orientation.Mat4().Mat3()
	he := o.halfExtents
	// rotated AABB half-extents: sum of |R column| * he component
	ax := mgl32.Vec3{r[0], r[1], r[2]}
	ay := mgl32.Vec3{r[3], r[4], r[5]}
	az := mgl32.Vec3{r[6], r[7], r[8]}
	rotatedHalf := abs3(ax.Mul(he.X())).Add(abs3(ay.Mul(he.Y()))).Add(abs3(az.Mul(he.Z())))
	o.worldMin = o.Position.Sub(rotatedHalf)
	o.worldMax = o.Position.Add(rotatedHalf)
	o.boundRadius = he.Len()
	o.boundsDirty = false
}

func abs3(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{absf(v.X()), absf(v.Y()), absf(v.Z())}
}

func absf(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

// WorldBounds returns the cached world-space AABB min/max.
func (o *VoxelObject) WorldBounds() (mgl32.Vec3, mgl32.Vec3) {
	o.recomputeBounds()
	return o.worldMin, o.worldMax
}

// BoundingRadius returns the cached bounding-sphere radius.
func (o *VoxelObject) BoundingRadius() float32 {
	o.recomputeBounds()
	return o.boundRadius
}

// RefreshShape recomputes half-extents and mass from the current grid
// contents (voxel count * unit volume, uniform density assumed) and marks
// inertia/bounds for recomputation; called after a split or a voxel edit
// that set ShapeDirty.
func (o *VoxelObject) RefreshShape(density float32) {
	he, ok := o.Grid.OccupiedHalfExtents()
	if !ok {
		he = mgl32.Vec3{0.5, 0.5, 0.5}
	}
	o.halfExtents = he.Mul(o.voxelSize)
	count := o.Grid.SolidCount()
	if count <= 0 {
		count = 1
	}
	o.Mass = float32(count) * density
	o.inertiaInit = false
	o.ensureInertia()
	o.boundsDirty = true
	o.ShapeDirty = false
}

// ApplyImpulse adds a linear impulse at a world-space contact point,
// deriving the resulting angular impulse from the lever arm between the
// contact and the body's center of mass (grounded on
// rigid_body_apply_impulse in the C original). Waking a sleeping body is
// the caller's responsibility via World.Wake.
func (o *VoxelObject) ApplyImpulse(impulse, contactPoint mgl32.Vec3) {
	if o.InvMass == 0 {
		return
	}
	o.LinVel = o.LinVel.Add(impulse.Mul(o.InvMass))
	r := contactPoint.Sub(o.Position)
	torque := r.Cross(impulse)
	o.AngVel = o.AngVel.Add(o.worldInvInertia().Mul3x1(torque))
}

// ApplyTorqueImpulse adds a pure angular impulse, skipping the lever-arm
// cross product ApplyImpulse uses for a contact-point impulse.
func (o *VoxelObject) ApplyTorqueImpulse(torque mgl32.Vec3) {
	o.AngVel = o.AngVel.Add(o.worldInvInertia().Mul3x1(torque))
}

// applyTopple adds the crude topple-torque angular impulse described in
// spec §4.5.1: suppressed below a settling linear speed, proportional to
// the lever arm between center-of-mass and the lowest contact point.
func (o *VoxelObject) applyTopple(dt float32, lowestLocal mgl32.Vec3) {
	strength, settleSpeed := voxconfig.GetToppleParams()
	speed := o.LinVel.Len()
	if speed < settleSpeed {
		return
	}
	lever := lowestLocal
	torqueAxis := mgl32.Vec3{-lever.Z(), 0, lever.X()}
	if torqueAxis.LenSqr() < 1e-9 {
		return
	}
	o.AngVel = o.AngVel.Add(torqueAxis.Normalize().Mul(strength * speed * dt))
}

// applyDamping applies Padé damping to linear and angular velocity (spec
// §4.5 step 3).
func (o *VoxelObject) applyDamping(dt float32) {
	linK, angK := voxconfig.GetDampingCoefficients()
	o.LinVel = o.LinVel.Mul(1 / (1 + dt*(1-linK)))
	o.AngVel = o.AngVel.Mul(1 / (1 + dt*(1-angK)))
}

// clampVelocities enforces the radius-scaled tunneling bound on linear
// velocity and the global angular-speed cap (spec §4.5 step 2).
func (o *VoxelObject) clampVelocities(dt float32) {
	maxAng := voxconfig.GetMaxAngularSpeed()
	if o.AngVel.Len() > maxAng {
		o.AngVel = o.AngVel.Normalize().Mul(maxAng)
	}
	r := o.BoundingRadius()
	if r <= 0 {
		return
	}
	maxLin := r / dt
	if o.LinVel.Len() > maxLin {
		o.LinVel = o.LinVel.Normalize().Mul(maxLin)
	}
}

// RestitutionForSpeed linearly interpolates between the configured low and
// high restitution by impact speed (spec §4.5.2/3/4 velocity-dependent
// restitution). Shared with voxproxy, which applies the same
// velocity-dependent model to its generic shape contacts.
func RestitutionForSpeed(speed float32) float32 {
	hi, lo, impactHi, impactLo := voxconfig.GetRestitutionParams()
	if speed <= impactLo {
		return 0
	}
	if speed >= impactHi {
		return hi
	}
	t := (speed - impactLo) / (impactHi - impactLo)
	return lo + (hi-lo)*t
}
