package scene

import (
	"math"

	"github.com/Versifine/locomotor/internal/controller"
	"github.com/Versifine/locomotor/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// RigidBody is a box-shaped dynamic body integrated with semi-implicit
// Euler. Forces, impulses and torques accumulate until the next step.
// Kinematic bodies ignore forces and move at their set velocity.
type RigidBody struct {
	Name string

	box         physics.Box
	halfExtents mgl64.Vec3
	layer       int

	position mgl64.Vec3
	rotation mgl64.Quat
	velocity mgl64.Vec3
	angular  mgl64.Vec3

	mass           float64
	inertia        mgl64.Vec3
	linearDamping  float64
	angularDamping float64
	useGravity     bool
	kinematic      bool
	freezeRotation bool

	// kinematic bodies reverse after moving travel units from origin
	origin mgl64.Vec3
	travel float64

	force   mgl64.Vec3
	impulse mgl64.Vec3
	torque  mgl64.Vec3

	grounded bool
}

type BodyOption func(*RigidBody)

func WithMass(mass float64) BodyOption {
	return func(b *RigidBody) { b.mass = mass }
}

func WithDamping(linear, angular float64) BodyOption {
	return func(b *RigidBody) {
		b.linearDamping = linear
		b.angularDamping = angular
	}
}

func WithLayer(layer int) BodyOption {
	return func(b *RigidBody) { b.layer = layer }
}

func WithVelocity(v mgl64.Vec3) BodyOption {
	return func(b *RigidBody) { b.velocity = v }
}

// Kinematic makes the body an unaffected mover that reverses direction
// every travel units. travel <= 0 moves forever.
func Kinematic(travel float64) BodyOption {
	return func(b *RigidBody) {
		b.kinematic = true
		b.useGravity = false
		b.travel = travel
	}
}

func WithoutGravity() BodyOption {
	return func(b *RigidBody) { b.useGravity = false }
}

// FreezeRotation ignores torque entirely.
func FreezeRotation() BodyOption {
	return func(b *RigidBody) { b.freezeRotation = true }
}

func NewRigidBody(name string, pos, halfExtents mgl64.Vec3, opts ...BodyOption) *RigidBody {
	b := &RigidBody{
		Name:           name,
		box:            physics.CenteredBox(halfExtents),
		halfExtents:    halfExtents,
		position:       pos,
		origin:         pos,
		rotation:       mgl64.QuatIdent(),
		mass:           1,
		angularDamping: 0.05,
		useGravity:     true,
	}
	for _, opt := range opts {
		opt(b)
	}
	if !(b.mass > 0) {
		b.mass = 1
	}
	b.inertia = boxInertia(b.mass, halfExtents)
	return b
}

// boxInertia is the principal moment of a solid box about its centre.
func boxInertia(mass float64, half mgl64.Vec3) mgl64.Vec3 {
	w, h, d := 2*half.X(), 2*half.Y(), 2*half.Z()
	k := mass / 12
	return mgl64.Vec3{
		math.Max(k*(h*h+d*d), physics.DirectionEpsilon),
		math.Max(k*(w*w+d*d), physics.DirectionEpsilon),
		math.Max(k*(w*w+h*h), physics.DirectionEpsilon),
	}
}

func (b *RigidBody) Position() mgl64.Vec3        { return b.position }
func (b *RigidBody) Rotation() mgl64.Quat        { return b.rotation }
func (b *RigidBody) Velocity() mgl64.Vec3        { return b.velocity }
func (b *RigidBody) SetVelocity(v mgl64.Vec3)    { b.velocity = v }
func (b *RigidBody) AngularVelocity() mgl64.Vec3 { return b.angular }
func (b *RigidBody) Mass() float64               { return b.mass }
func (b *RigidBody) Layer() int                  { return b.layer }
func (b *RigidBody) Kinematic() bool             { return b.kinematic }
func (b *RigidBody) HalfExtents() mgl64.Vec3     { return b.halfExtents }

// Grounded reports whether the last step ended resting on a block.
func (b *RigidBody) Grounded() bool { return b.grounded }

func (b *RigidBody) Bounds() physics.AABB {
	return b.box.At(b.position)
}

func (b *RigidBody) AddForce(force mgl64.Vec3, mode controller.ForceMode) {
	if b.kinematic {
		return
	}
	switch mode {
	case controller.ForceModeImpulse:
		b.impulse = b.impulse.Add(force)
	default:
		b.force = b.force.Add(force)
	}
}

func (b *RigidBody) AddTorque(torque mgl64.Vec3) {
	if b.kinematic || b.freezeRotation {
		return
	}
	b.torque = b.torque.Add(torque)
}

// AddForceAtPosition adds force through the centre of mass plus the torque
// it produces about it.
func (b *RigidBody) AddForceAtPosition(force, point mgl64.Vec3) {
	if b.kinematic {
		return
	}
	b.force = b.force.Add(force)
	if !b.freezeRotation {
		arm := point.Sub(b.position)
		b.torque = b.torque.Add(arm.Cross(force))
	}
}

func (b *RigidBody) Teleport(pos mgl64.Vec3) {
	b.position = pos
	b.velocity = mgl64.Vec3{}
	b.angular = mgl64.Vec3{}
	b.clearAccumulators()
}

// integrate advances velocities and orientation by dt. Position is left to
// the scene, which resolves it against blocks.
func (b *RigidBody) integrate(dt float64, gravity mgl64.Vec3) {
	defer b.clearAccumulators()
	if b.kinematic {
		return
	}

	accel := b.force.Mul(1 / b.mass)
	if b.useGravity {
		accel = accel.Add(gravity)
	}
	b.velocity = b.velocity.Add(accel.Mul(dt)).Add(b.impulse.Mul(1 / b.mass))
	b.velocity = b.velocity.Mul(1 / (1 + dt*b.linearDamping))

	if b.freezeRotation {
		b.angular = mgl64.Vec3{}
		return
	}
	alpha := mgl64.Vec3{
		b.torque.X() / b.inertia.X(),
		b.torque.Y() / b.inertia.Y(),
		b.torque.Z() / b.inertia.Z(),
	}
	b.angular = b.angular.Add(alpha.Mul(dt))
	b.angular = b.angular.Mul(1 / (1 + dt*b.angularDamping))

	if b.angular.Len() > 0 {
		spin := mgl64.Quat{W: 0, V: b.angular}.Mul(b.rotation).Scale(0.5 * dt)
		b.rotation = b.rotation.Add(spin).Normalize()
	}
}

// reverseIfTravelled flips a kinematic body's velocity once it has moved
// travel units from its origin.
func (b *RigidBody) reverseIfTravelled() {
	if !b.kinematic || b.travel <= 0 {
		return
	}
	offset := b.position.Sub(b.origin)
	if offset.Len() >= b.travel-physics.CollisionAxisTolerance && offset.Dot(b.velocity) > 0 {
		b.velocity = b.velocity.Mul(-1)
	}
}

func (b *RigidBody) clearAccumulators() {
	b.force = mgl64.Vec3{}
	b.impulse = mgl64.Vec3{}
	b.torque = mgl64.Vec3{}
}
