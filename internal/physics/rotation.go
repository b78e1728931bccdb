package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	Up      = mgl64.Vec3{0, 1, 0}
	Down    = mgl64.Vec3{0, -1, 0}
	Right   = mgl64.Vec3{1, 0, 0}
	Forward = mgl64.Vec3{0, 0, 1}
)

// YawRotation rotates deg degrees about the up axis. Positive yaw turns
// forward (+Z) toward right (+X).
func YawRotation(deg float64) mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(deg), Up)
}

// PitchRotation rotates deg degrees about the right axis. Positive pitch
// tilts forward downward.
func PitchRotation(deg float64) mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(deg), Right)
}

// YawOf returns the heading of q in degrees, in [0, 360).
func YawOf(q mgl64.Quat) float64 {
	f := q.Rotate(Forward)
	if math.Abs(f.X()) < DirectionEpsilon && math.Abs(f.Z()) < DirectionEpsilon {
		return 0
	}
	return NormalizeYaw(mgl64.RadToDeg(math.Atan2(f.X(), f.Z())))
}

// PlanarDirection maps a 2D stick value onto the ground plane (x right, y forward).
func PlanarDirection(v mgl64.Vec2) mgl64.Vec3 {
	return mgl64.Vec3{v.X(), 0, v.Y()}
}

// LookRotation returns the roll-free rotation whose forward axis points along
// dir. A zero dir yields the identity.
func LookRotation(dir mgl64.Vec3) mgl64.Quat {
	horizontal := math.Hypot(dir.X(), dir.Z())
	if horizontal < DirectionEpsilon && math.Abs(dir.Y()) < DirectionEpsilon {
		return mgl64.QuatIdent()
	}
	yaw := mgl64.RadToDeg(math.Atan2(dir.X(), dir.Z()))
	pitch := mgl64.RadToDeg(math.Atan2(-dir.Y(), horizontal))
	return YawRotation(yaw).Mul(PitchRotation(pitch))
}

// ShortestRotation returns the rotation taking b onto a along the short arc.
// q and -q encode the same orientation; b is flipped into a's hemisphere first.
func ShortestRotation(a, b mgl64.Quat) mgl64.Quat {
	if a.Dot(b) < 0 {
		return a.Mul(b.Scale(-1).Inverse())
	}
	return a.Mul(b.Inverse())
}

// ToAngleAxis decomposes q into an angle in degrees and a unit axis. The
// identity rotation reports angle 0 about +X.
func ToAngleAxis(q mgl64.Quat) (float64, mgl64.Vec3) {
	if l := q.Len(); l > 0 {
		q = q.Scale(1 / l)
	}
	w := mgl64.Clamp(q.W, -1, 1)
	angle := 2 * math.Acos(w)
	s := math.Sqrt(1 - w*w)
	if s < DirectionEpsilon {
		return mgl64.RadToDeg(angle), Right
	}
	return mgl64.RadToDeg(angle), q.V.Mul(1 / s)
}
