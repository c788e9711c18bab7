package voxmath

import "github.com/go-gl/mathgl/mgl32"

// IntegrateOrientation rotates q by the small-angle quaternion built from
// angular velocity omega over dt, then renormalizes (spec §4.5 step 5).
func IntegrateOrientation(q mgl32.Quat, omega mgl32.Vec3, dt float32) mgl32.Quat {
	half := omega.Mul(dt * 0.5)
	delta := mgl32.Quat{W: 1, V: half}
	out := delta.Mul(q)
	return out.Normalize()
}

// WorldInverseInertia computes R * Ilocal^-1 * R^T for a 3x3 diagonal-ish
// local inverse inertia tensor and an orientation quaternion.
func WorldInverseInertia(invInertiaLocal mgl32.Mat3, orientation mgl32.Quat) mgl32.Mat3 {
	r := orientation.Mat4().Mat3()
	return r.Mul3(invInertiaLocal).Mul3(r.Transpose())
}

// BoxInertiaTensor returns the diagonal inertia tensor of a uniform-density
// box of the given mass and full extents (w,h,d), per spec §4.5 step 1:
// m/12 * (h^2+d^2, w^2+d^2, w^2+h^2).
func BoxInertiaTensor(mass float32, fullExtents mgl32.Vec3) mgl32.Vec3 {
	w, h, d := fullExtents.X(), fullExtents.Y(), fullExtents.Z()
	k := mass / 12
	return mgl32.Vec3{
		k * (h*h + d*d),
		k * (w*w + d*d),
		k * (w*w + h*h),
	}
}

// Diag3 builds a diagonal 3x3 matrix from a vector.
func Diag3(v mgl32.Vec3) mgl32.Mat3 {
	return mgl32.Mat3{
		v.X(), 0, 0,
		0, v.Y(), 0,
		0, 0, v.Z(),
	}
}

// InverseDiag3 inverts a diagonal matrix built by Diag3, treating near-zero
// entries (static/infinite-inertia axes) as zero rather than dividing.
func InverseDiag3(v mgl32.Vec3) mgl32.Mat3 {
	inv := func(x float32) float32 {
		if x <= 1e-8 {
			return 0
		}
		return 1 / x
	}
	return Diag3(mgl32.Vec3{inv(v.X()), inv(v.Y()), inv(v.Z())})
}
