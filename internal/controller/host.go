package controller

import "github.com/go-gl/mathgl/mgl64"

// CharacterBody is a collide-and-slide motion primitive. Move resolves
// collisions and updates position, velocity and the grounded flag.
type CharacterBody interface {
	IsGrounded() bool
	// Velocity reflects the motion resolved by the last Move.
	Velocity() mgl64.Vec3
	Move(delta mgl64.Vec3)
	Rotation() mgl64.Quat
	SetRotation(rot mgl64.Quat)
}

type ForceMode int

const (
	// ForceModeForce is integrated over the step and scaled by 1/mass.
	ForceModeForce ForceMode = iota
	// ForceModeImpulse changes momentum once, independent of the step length.
	ForceModeImpulse
)

func (m ForceMode) String() string {
	switch m {
	case ForceModeForce:
		return "force"
	case ForceModeImpulse:
		return "impulse"
	default:
		return "unknown"
	}
}

// RigidBody is a simulated body driven by forces. Forces and torques added
// during a fixed step are applied when the host integrates that step.
type RigidBody interface {
	Position() mgl64.Vec3
	Rotation() mgl64.Quat
	Velocity() mgl64.Vec3
	SetVelocity(v mgl64.Vec3)
	AngularVelocity() mgl64.Vec3
	Mass() float64
	AddForce(force mgl64.Vec3, mode ForceMode)
	AddTorque(torque mgl64.Vec3)
	AddForceAtPosition(force, point mgl64.Vec3)
}

// LayerMask selects collision layers, one bit per layer.
type LayerMask uint32

const AllLayers LayerMask = ^LayerMask(0)

func Layer(index int) LayerMask {
	if index < 0 || index > 31 {
		return 0
	}
	return 1 << uint(index)
}

func (m LayerMask) Contains(index int) bool {
	return m&Layer(index) != 0
}

type RaycastHit struct {
	Distance float64
	Point    mgl64.Vec3
	// Body is nil when the ray struck static geometry.
	Body RigidBody
}

type Raycaster interface {
	Raycast(origin, dir mgl64.Vec3, maxDistance float64, mask LayerMask) (RaycastHit, bool)
}

// ViewSource supplies the camera heading in degrees that third-person input
// is expressed against.
type ViewSource interface {
	Yaw() float64
}

// LookTarget is the pitch pivot a first-person camera is attached to.
type LookTarget interface {
	SetLocalRotation(rot mgl64.Quat)
}

// Publisher receives gameplay telemetry. *event.Bus satisfies it.
type Publisher interface {
	Publish(eventName string, evt any)
}
