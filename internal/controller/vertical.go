package controller

import (
	"math"

	"github.com/Versifine/locomotor/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// LaunchVelocity is the upward speed that peaks at jumpHeight under gravity.
func LaunchVelocity(jumpHeight, gravity float64) float64 {
	return math.Sqrt(2 * jumpHeight * math.Abs(gravity))
}

// verticalMotion is the gravity and jump model shared by the kinematic
// controllers. velocity is in units per second, positive up.
type verticalMotion struct {
	velocity float64
}

// applyGravity pins a grounded body to a small downward speed so it stays
// in contact with slopes and steps, and integrates gravity otherwise. A
// grounded body already moving up keeps its speed.
func (m *verticalMotion) applyGravity(grounded bool, gravity, dt float64) {
	if grounded {
		if m.velocity <= 0 {
			m.velocity = physics.GroundedVerticalVelocity
		}
		return
	}
	m.velocity += gravity * dt
}

func (m *verticalMotion) tryJump(held, grounded bool, jumpHeight, gravity float64) bool {
	if !held || !grounded {
		return false
	}
	m.velocity = LaunchVelocity(jumpHeight, gravity)
	return true
}

// fall adds the extra gravity applied while the body is descending.
func (m *verticalMotion) fall(bodyVelocityY, gravity, fallMultiplier, dt float64) {
	if bodyVelocityY < 0 {
		m.velocity += gravity * (fallMultiplier - 1) * dt
	}
}

// horizontalSpeed eases the body's current planar speed toward target.
func horizontalSpeed(bodyVelocity mgl64.Vec3, target, accelerate, dt float64) float64 {
	current := physics.Horizontal(bodyVelocity).Len()
	return physics.Lerp(current, target, accelerate*dt)
}
