package controller

import (
	"math"

	"github.com/Versifine/locomotor/internal/event"
	"github.com/Versifine/locomotor/internal/input"
	"github.com/Versifine/locomotor/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

const OrbitName = "orbit"

// OrbitController drives a kinematic character seen from an orbiting
// camera. Input is read relative to the camera heading and the body turns
// smoothly to face the direction of travel.
type OrbitController struct {
	base
	params OrbitParams
	body   CharacterBody
	view   ViewSource

	vertical       verticalMotion
	targetSpeed    float64
	speed          float64
	rotateVelocity float64
	moveDir        mgl64.Vec3
}

func NewOrbitController(params OrbitParams, body CharacterBody, view ViewSource, actions *input.Map, opts ...Option) (*OrbitController, error) {
	if body == nil {
		return nil, ErrNilBody
	}
	if view == nil {
		return nil, ErrNilView
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	b, err := newBase(OrbitName, actions, opts)
	if err != nil {
		return nil, err
	}
	return &OrbitController{
		base:        b,
		params:      params,
		body:        body,
		view:        view,
		targetSpeed: params.WalkSpeed,
	}, nil
}

func (c *OrbitController) Start() error {
	return c.start(false)
}

func (c *OrbitController) Stop() error {
	return c.stop()
}

func (c *OrbitController) Params() OrbitParams {
	return c.params
}

func (c *OrbitController) SetParams(p OrbitParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c.params = p
	c.targetSpeed = p.WalkSpeed
	return nil
}

func (c *OrbitController) Update(dt float64) {
	in := c.input.Load()

	c.vertical.applyGravity(c.body.IsGrounded(), c.params.Gravity, dt)
	c.move(in.Move, dt)
	c.jump(in.Jump, dt)
}

// LateUpdate is a no-op; the camera rig orbits on its own.
func (c *OrbitController) LateUpdate(float64) {}

func (c *OrbitController) move(move mgl64.Vec2, dt float64) {
	// Without input the facing, the smoothing state and the travel
	// direction all hold their previous values.
	if move.Len() > 0 {
		dir := physics.PlanarDirection(move)
		target := mgl64.RadToDeg(math.Atan2(dir.X(), dir.Z())) + c.view.Yaw()

		current := physics.YawOf(c.body.Rotation())
		angle := physics.SmoothDampAngle(current, target, &c.rotateVelocity, c.params.RotateSmoothTime, dt)
		c.body.SetRotation(physics.YawRotation(angle))

		c.moveDir = physics.YawRotation(target).Rotate(physics.Forward)
	}

	c.speed = horizontalSpeed(c.body.Velocity(), c.targetSpeed, c.params.Accelerate, dt)

	delta := c.moveDir.Mul(c.speed * dt).Add(physics.Up.Mul(c.vertical.velocity * dt))
	c.body.Move(delta)
}

func (c *OrbitController) jump(held bool, dt float64) {
	if c.vertical.tryJump(held, c.body.IsGrounded(), c.params.JumpHeight, c.params.Gravity) {
		c.log.Debug("Jump", "velocity", c.vertical.velocity)
		c.publish(event.EventJumped, &event.JumpedEvent{
			Controller: c.name,
			Speed:      c.vertical.velocity,
		})
	}
	c.vertical.fall(c.body.Velocity().Y(), c.params.Gravity, c.params.FallMultiplier, dt)
}

func (c *OrbitController) Grounded() bool {
	return c.body.IsGrounded()
}

func (c *OrbitController) VerticalVelocity() float64 {
	return c.vertical.velocity
}

func (c *OrbitController) HorizontalSpeed() float64 {
	return c.speed
}

// MoveDirection is the last unit travel direction, zero until the first
// non-zero move input.
func (c *OrbitController) MoveDirection() mgl64.Vec3 {
	return c.moveDir
}

func (c *OrbitController) RotateVelocity() float64 {
	return c.rotateVelocity
}
