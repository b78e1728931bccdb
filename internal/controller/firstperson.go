package controller

import (
	"github.com/Versifine/locomotor/internal/event"
	"github.com/Versifine/locomotor/internal/input"
	"github.com/Versifine/locomotor/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

const FirstPersonName = "first_person"

// MoveController drives a kinematic character from a first-person view.
// Update moves and turns the body; LateUpdate applies look input to the
// yaw rate and to the pitch of the look target.
type MoveController struct {
	base
	params FirstPersonParams
	body   CharacterBody
	look   LookTarget

	vertical    verticalMotion
	targetSpeed float64
	speed       float64
	// lookVelocity holds the yaw and pitch change in degrees computed by the
	// last LateUpdate. Update turns the body by its yaw component.
	lookVelocity mgl64.Vec2
	pitch        float64
}

func NewMoveController(params FirstPersonParams, body CharacterBody, look LookTarget, actions *input.Map, opts ...Option) (*MoveController, error) {
	if body == nil {
		return nil, ErrNilBody
	}
	if look == nil {
		return nil, ErrNilLookTarget
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	b, err := newBase(FirstPersonName, actions, opts)
	if err != nil {
		return nil, err
	}
	c := &MoveController{
		base:        b,
		params:      params,
		body:        body,
		look:        look,
		targetSpeed: params.WalkSpeed,
	}
	look.SetLocalRotation(physics.PitchRotation(0))
	return c, nil
}

func (c *MoveController) Start() error {
	return c.start(true)
}

func (c *MoveController) Stop() error {
	return c.stop()
}

func (c *MoveController) Params() FirstPersonParams {
	return c.params
}

// SetParams swaps tuning without resetting motion state.
func (c *MoveController) SetParams(p FirstPersonParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c.params = p
	c.targetSpeed = p.WalkSpeed
	return nil
}

func (c *MoveController) Update(dt float64) {
	in := c.input.Load()

	c.vertical.applyGravity(c.body.IsGrounded(), c.params.Gravity, dt)
	c.move(in.Move, dt)
	c.rotate()
	c.jump(in.Jump, dt)
}

func (c *MoveController) LateUpdate(dt float64) {
	in := c.input.Load()

	yaw := in.Look.X() * c.params.LookSpeedX * dt
	pitch := in.Look.Y() * c.params.LookSpeedY * dt
	c.lookVelocity = mgl64.Vec2{yaw, pitch}

	c.pitch = mgl64.Clamp(c.pitch-pitch, -physics.MaxPitch, physics.MaxPitch)
	c.look.SetLocalRotation(physics.PitchRotation(c.pitch))
}

func (c *MoveController) move(move mgl64.Vec2, dt float64) {
	heading := physics.YawRotation(physics.YawOf(c.body.Rotation()))
	dir := heading.Rotate(physics.PlanarDirection(move))

	c.speed = horizontalSpeed(c.body.Velocity(), c.targetSpeed, c.params.Accelerate, dt)

	delta := dir.Mul(c.speed * dt).Add(physics.Up.Mul(c.vertical.velocity * dt))
	c.body.Move(delta)
}

func (c *MoveController) rotate() {
	yaw := c.lookVelocity.X()
	if yaw == 0 {
		return
	}
	c.body.SetRotation(c.body.Rotation().Mul(physics.YawRotation(yaw)))
}

func (c *MoveController) jump(held bool, dt float64) {
	if c.vertical.tryJump(held, c.body.IsGrounded(), c.params.JumpHeight, c.params.Gravity) {
		c.log.Debug("Jump", "velocity", c.vertical.velocity)
		c.publish(event.EventJumped, &event.JumpedEvent{
			Controller: c.name,
			Speed:      c.vertical.velocity,
		})
	}
	c.vertical.fall(c.body.Velocity().Y(), c.params.Gravity, c.params.FallMultiplier, dt)
}

func (c *MoveController) Grounded() bool {
	return c.body.IsGrounded()
}

func (c *MoveController) VerticalVelocity() float64 {
	return c.vertical.velocity
}

// HorizontalSpeed is the planar speed used by the last Update.
func (c *MoveController) HorizontalSpeed() float64 {
	return c.speed
}

// Pitch is the look target's pitch in degrees, positive looking down.
func (c *MoveController) Pitch() float64 {
	return c.pitch
}

func (c *MoveController) LookVelocity() mgl64.Vec2 {
	return c.lookVelocity
}
