package voxbody

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxcore/voxcore/voxconfig"
	"github.com/voxcore/voxcore/voxmath"
	"github.com/voxcore/voxcore/voxvolume"
)

// integrateOne runs spec §4.5 steps 2-5 for a single body: gravity +
// topple torque, velocity clamps, Padé damping, the simple-CCD floor
// clamp, then linear/angular integration.
func (w *World) integrateOne(o *VoxelObject, dt, floorY float32) {
	gravity := voxconfig.GetGravity()
	o.LinVel = o.LinVel.Sub(mgl32.Vec3{0, gravity * dt, 0})

	lowestLocal := mgl32.Vec3{0, -o.halfExtents.Y(), 0}
	o.applyTopple(dt, lowestLocal)
	o.clampVelocities(dt)
	o.applyDamping(dt)

	// Simple CCD: if the predicted step would drive the lowest point below
	// the floor, clamp vertical velocity so integration just touches it.
	lowestY := o.worldLowestY()
	predicted := lowestY + o.LinVel.Y()*dt
	if o.LinVel.Y() < 0 && predicted < floorY {
		o.LinVel = mgl32.Vec3{o.LinVel.X(), (floorY - lowestY) / dt, o.LinVel.Z()}
	}

	o.Position = o.Position.Add(o.LinVel.Mul(dt))
	o.Orientation = voxmath.IntegrateOrientation(o.Orientation, o.AngVel, dt)
	o.boundsDirty = true
}

func (o *VoxelObject) worldLowestY() float32 {
	_, _ = o.WorldBounds()
	return o.worldMin.Y()
}

// enforceFloor resolves floor collision (spec §4.5.2) and, as a hard
// safety net, lifts the body if it is still below floor afterward (step 7).
func (w *World) enforceFloor(o *VoxelObject, floorY float32) {
	lowestY := o.worldLowestY()
	if lowestY >= floorY {
		return
	}
	penetration := floorY - lowestY
	o.Position = o.Position.Add(mgl32.Vec3{0, penetration, 0})
	o.boundsDirty = true

	if o.LinVel.Y() < 0 {
		speed := -o.LinVel.Y()
		restitution := RestitutionForSpeed(speed)
		o.LinVel = mgl32.Vec3{o.LinVel.X(), speed * restitution, o.LinVel.Z()}
	}

	friction := voxconfig.GetFloorFriction()
	o.LinVel = mgl32.Vec3{o.LinVel.X() * friction, o.LinVel.Y(), o.LinVel.Z() * friction}
	o.AngVel = o.AngVel.Mul(friction)

	_, settleSpeed := voxconfig.GetToppleParams()
	if o.LinVel.Len() >= settleSpeed {
		horizontal := mgl32.Vec3{o.LinVel.X(), 0, o.LinVel.Z()}
		torque := horizontal.Cross(mgl32.Vec3{0, 1, 0})
		o.AngVel = o.AngVel.Add(torque.Mul(0.05))
	}

	o.Grounded = true

	if lowestY := o.worldLowestY(); lowestY < floorY {
		o.Position = o.Position.Add(mgl32.Vec3{0, floorY - lowestY, 0})
		o.boundsDirty = true
		if o.LinVel.Y() < 0 {
			o.LinVel = mgl32.Vec3{o.LinVel.X(), 0, o.LinVel.Z()}
		}
	}
}

// resolveTerrain samples 14 directions around the bounding sphere against
// the terrain volume, averages the inside directions into a push-out, and
// reflects the normal velocity component (spec §4.5.3).
func (w *World) resolveTerrain(o *VoxelObject, terrain *voxvolume.Volume) {
	r := o.BoundingRadius()
	dirs := sampleDirections(voxconfig.GetTerrainProbeCount())
	var accum mgl32.Vec3
	insideCount := 0
	for _, d := range dirs {
		p := o.Position.Add(d.Mul(r))
		if terrain.IsSolid(p) {
			accum = accum.Add(d)
			insideCount++
		}
	}
	if insideCount == 0 {
		return
	}
	push := accum.Mul(-1 / float32(insideCount))
	if push.LenSqr() < 1e-9 {
		return
	}
	push = push.Normalize()
	half := terrain.VoxelSize() / 2
	o.Position = o.Position.Add(push.Mul(half))
	o.boundsDirty = true

	normalSpeed := o.LinVel.Dot(push)
	if normalSpeed < 0 {
		restitution := RestitutionForSpeed(-normalSpeed)
		normalVel := push.Mul(normalSpeed)
		tangentVel := o.LinVel.Sub(normalVel)
		o.LinVel = tangentVel.Add(push.Mul(-normalSpeed * restitution))
	}

	if push.Y() > 0.5 {
		o.Grounded = true
	}
}

// sampleDirections returns n unit vectors roughly evenly spread on the unit
// sphere (golden-spiral distribution), used by resolveTerrain's probe.
func sampleDirections(n int) []mgl32.Vec3 {
	if n <= 0 {
		n = 14
	}
	out := make([]mgl32.Vec3, n)
	const goldenAngle = 2.399963229728653
	for i := 0; i < n; i++ {
		t := float32(i) / float32(n)
		y := 1 - 2*t
		radius := sqrtf(1 - y*y)
		theta := goldenAngle * float32(i)
		out[i] = mgl32.Vec3{radius * cosApprox(theta), y, radius * sinApprox(theta)}
	}
	return out
}

// cosApprox/sinApprox avoid importing math for a single trig pair, matching
// voxmath's stdlib-avoidance stance for deterministic per-platform output;
// a 6-term Taylor/Bhaskara hybrid is unnecessary here since direction
// sampling only needs a reasonably even spread, not exact angles, so a
// coarse Bhaskara I approximation is used.
func sinApprox(x float32) float32 {
	const pi = 3.14159265
	for x > pi {
		x -= 2 * pi
	}
	for x < -pi {
		x += 2 * pi
	}
	return 16 * x * (pi - absf(x)) / (5*pi*pi - 4*absf(x)*(pi-absf(x)))
}

func cosApprox(x float32) float32 {
	return sinApprox(x + 1.5707963)
}

// resolveObjectPairs clears and rebuilds the spatial hash, then runs the
// sphere→AABB→impulse pipeline described in spec §4.5.4 for every pair with
// a>b excluded (lower index queried against higher-index neighbors only).
func (w *World) resolveObjectPairs(dt float32) {
	w.spatial.Clear()
	for _, slot := range w.live {
		o := &w.slots[slot]
		w.spatial.Insert(slot, o.Position, o.BoundingRadius())
	}

	var neighbors []int32
	for _, slotA := range w.live {
		a := &w.slots[slotA]
		if a.Sleeping {
			continue
		}
		neighbors = neighbors[:0]
		neighbors = w.spatial.QueryAppend(a.Position, a.BoundingRadius(), neighbors)
		for _, slotB := range neighbors {
			if slotB <= slotA {
				continue
			}
			b := &w.slots[slotB]
			w.resolvePair(a, b, dt)
		}
	}
}

func (w *World) resolvePair(a, b *VoxelObject, dt float32) {
	ra, rb := a.BoundingRadius(), b.BoundingRadius()
	delta := b.Position.Sub(a.Position)
	dist := delta.Len()
	if dist >= ra+rb || dist < 1e-9 {
		return
	}
	aMin, aMax := a.WorldBounds()
	bMin, bMax := b.WorldBounds()
	boxA := voxmath.AABB{Min: aMin, Max: aMax}
	boxB := voxmath.AABB{Min: bMin, Max: bMax}
	if !boxA.Overlaps(boxB) {
		return
	}

	normal := delta.Mul(1 / dist)
	depth := (ra + rb) - dist

	const overCorrect = 1.1
	invSum := a.InvMass + b.InvMass
	if invSum <= 0 {
		return
	}
	correction := normal.Mul(depth * overCorrect / invSum)
	a.Position = a.Position.Sub(correction.Mul(a.InvMass))
	b.Position = b.Position.Add(correction.Mul(b.InvMass))
	a.boundsDirty = true
	b.boundsDirty = true

	relVel := b.LinVel.Sub(a.LinVel)
	normalVel := relVel.Dot(normal)
	const jitterThreshold = 0.05
	if normalVel < -jitterThreshold {
		restitution := RestitutionForSpeed(-normalVel)
		jn := -(1 + restitution) * normalVel / invSum
		impulse := normal.Mul(jn)
		a.LinVel = a.LinVel.Sub(impulse.Mul(a.InvMass))
		b.LinVel = b.LinVel.Add(impulse.Mul(b.InvMass))

		tangent := relVel.Sub(normal.Mul(normalVel))
		if tangent.LenSqr() > 1e-9 {
			tangent = tangent.Normalize()
			const mu = 0.4
			jt := -relVel.Dot(tangent) / invSum
			maxFriction := mu * absf(jn)
			if jt > maxFriction {
				jt = maxFriction
			} else if jt < -maxFriction {
				jt = -maxFriction
			}
			frictionImpulse := tangent.Mul(jt)
			a.LinVel = a.LinVel.Sub(frictionImpulse.Mul(a.InvMass))
			b.LinVel = b.LinVel.Add(frictionImpulse.Mul(b.InvMass))

			angResponse := tangent.Cross(normal).Mul(0.02)
			a.AngVel = a.AngVel.Sub(angResponse)
			b.AngVel = b.AngVel.Add(angResponse)
		}
	}

	a.Sleeping = false
	b.Sleeping = false
	a.settleTimer = 0
	b.settleTimer = 0
}

// detectSleep accumulates a settle timer while the body is slow and
// grounded, putting it to sleep once the configured duration elapses
// (spec §4.5 step 8).
func (w *World) detectSleep(o *VoxelObject, dt float32) {
	linEps, angEps, duration := voxconfig.GetSleepThresholds()
	slow := o.LinVel.Len() < linEps && o.AngVel.Len() < angEps
	if slow && o.Grounded {
		o.settleTimer += dt
		if o.settleTimer >= duration {
			o.Sleeping = true
			o.LinVel = mgl32.Vec3{}
			o.AngVel = mgl32.Vec3{}
		}
	} else {
		o.settleTimer = 0
	}
	o.Grounded = false
}
