package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Lerp interpolates from a to b with t clamped to [0, 1].
func Lerp(a, b, t float64) float64 {
	t = mgl64.Clamp(t, 0, 1)
	return a + (b-a)*t
}

// MoveTowards moves current toward target by at most maxDelta.
func MoveTowards(current, target mgl64.Vec3, maxDelta float64) mgl64.Vec3 {
	toTarget := target.Sub(current)
	sqDist := toTarget.Dot(toTarget)
	if sqDist == 0 || (maxDelta >= 0 && sqDist <= maxDelta*maxDelta) {
		return target
	}
	dist := math.Sqrt(sqDist)
	return current.Add(toTarget.Mul(maxDelta / dist))
}

// ClampMagnitude returns v scaled down so its length does not exceed maxLength.
func ClampMagnitude(v mgl64.Vec3, maxLength float64) mgl64.Vec3 {
	sqLen := v.Dot(v)
	if sqLen <= maxLength*maxLength {
		return v
	}
	return v.Mul(maxLength / math.Sqrt(sqLen))
}

// Horizontal drops the vertical component.
func Horizontal(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X(), 0, v.Z()}
}

// Repeat wraps t into [0, length).
func Repeat(t, length float64) float64 {
	return mgl64.Clamp(t-math.Floor(t/length)*length, 0, length)
}

// DeltaAngle is the shortest signed difference between two angles in degrees.
func DeltaAngle(current, target float64) float64 {
	delta := Repeat(target-current, 360)
	if delta > 180 {
		delta -= 360
	}
	return delta
}

// NormalizeYaw maps an angle in degrees into [0, 360).
func NormalizeYaw(deg float64) float64 {
	deg = Repeat(deg, 360)
	if deg >= 360 {
		deg -= 360
	}
	return deg
}

// SmoothDamp is a critically damped spring toward target. velocity carries the
// filter state between calls and is updated in place.
func SmoothDamp(current, target float64, velocity *float64, smoothTime, maxSpeed, dt float64) float64 {
	smoothTime = math.Max(MinSmoothTime, smoothTime)
	omega := 2 / smoothTime

	x := omega * dt
	decay := 1 / (1 + x + 0.48*x*x + 0.235*x*x*x)

	change := current - target
	originalTarget := target

	maxChange := maxSpeed * smoothTime
	change = mgl64.Clamp(change, -maxChange, maxChange)
	target = current - change

	temp := (*velocity + omega*change) * dt
	*velocity = (*velocity - omega*temp) * decay
	output := target + (change+temp)*decay

	// no overshoot
	if (originalTarget-current > 0) == (output > originalTarget) {
		output = originalTarget
		if dt > 0 {
			*velocity = (output - originalTarget) / dt
		} else {
			*velocity = 0
		}
	}
	return output
}

// SmoothDampAngle is SmoothDamp for angles in degrees, taking the short way
// around the circle.
func SmoothDampAngle(current, target float64, velocity *float64, smoothTime, dt float64) float64 {
	target = current + DeltaAngle(current, target)
	return SmoothDamp(current, target, velocity, smoothTime, math.Inf(1), dt)
}
