package controller

import (
	"github.com/Versifine/locomotor/internal/event"
	"github.com/Versifine/locomotor/internal/input"
	"github.com/Versifine/locomotor/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

const FloatingName = "floating"

// GroundProbe is the outcome of the last downward ray.
type GroundProbe struct {
	Hit      bool
	Grounded bool
	RaycastHit
	// Spring is the signed force magnitude applied along the ray direction.
	Spring float64
}

// FloatingController drives a rigid body that hovers on a damped spring
// above the ground. All work happens in FixedUpdate.
type FloatingController struct {
	base
	params FloatingParams
	body   RigidBody
	ray    Raycaster
	view   ViewSource

	rayDir         mgl64.Vec3
	moveDir        mgl64.Vec3
	targetVelocity mgl64.Vec3
	lookRotation   mgl64.Quat
	// grounded comes from the previous probe. It starts true so a body
	// spawned at rest can jump on the first step.
	grounded bool
	probe    GroundProbe
}

func NewFloatingController(params FloatingParams, body RigidBody, ray Raycaster, view ViewSource, actions *input.Map, opts ...Option) (*FloatingController, error) {
	if body == nil {
		return nil, ErrNilBody
	}
	if ray == nil {
		return nil, ErrNilRaycaster
	}
	if view == nil {
		return nil, ErrNilView
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	b, err := newBase(FloatingName, actions, opts)
	if err != nil {
		return nil, err
	}
	return &FloatingController{
		base:         b,
		params:       params,
		body:         body,
		ray:          ray,
		view:         view,
		rayDir:       params.RayDir.Normalize(),
		lookRotation: body.Rotation(),
		grounded:     true,
	}, nil
}

func (c *FloatingController) Start() error {
	return c.start(false)
}

func (c *FloatingController) Stop() error {
	return c.stop()
}

func (c *FloatingController) Params() FloatingParams {
	return c.params
}

func (c *FloatingController) SetParams(p FloatingParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c.params = p
	c.rayDir = p.RayDir.Normalize()
	return nil
}

// FixedUpdate runs once per physics step, before the host integrates the
// forces it adds.
func (c *FloatingController) FixedUpdate(dt float64) {
	if dt <= 0 {
		return
	}
	in := c.input.Load()

	c.move(in.Move, dt)
	c.rotate()
	c.jump(in.Jump, dt)
	c.float()
}

func (c *FloatingController) move(move mgl64.Vec2, dt float64) {
	c.moveDir = physics.YawRotation(c.view.Yaw()).Rotate(physics.PlanarDirection(move))

	goal := c.moveDir.Mul(c.params.MaxSpeed)
	c.targetVelocity = physics.MoveTowards(c.targetVelocity, goal, c.params.Acceleration*dt)

	accel := c.targetVelocity.Sub(c.body.Velocity()).Mul(1 / dt)
	accel = physics.ClampMagnitude(accel, c.params.MaxAcceleration)

	force := physics.Horizontal(accel.Mul(c.body.Mass()))
	c.body.AddForce(force, ForceModeForce)
}

func (c *FloatingController) rotate() {
	if c.moveDir.Len() > 0 {
		c.lookRotation = physics.LookRotation(c.moveDir)
	}

	toTarget := physics.ShortestRotation(c.lookRotation, c.body.Rotation())
	angle, axis := physics.ToAngleAxis(toTarget)

	spring := axis.Normalize().Mul(mgl64.DegToRad(angle) * c.params.RotationStrength)
	damper := c.body.AngularVelocity().Mul(c.params.RotationDamper)
	c.body.AddTorque(spring.Sub(damper))
}

func (c *FloatingController) jump(held bool, dt float64) {
	vel := c.body.Velocity()
	if !c.grounded {
		if vel.Y() < 0 {
			extra := c.params.Gravity * (c.params.FallMultiplier - 1) * dt
			c.body.SetVelocity(vel.Add(physics.Up.Mul(extra)))
		}
		return
	}
	if !held {
		return
	}

	c.body.SetVelocity(physics.Horizontal(vel))
	c.body.AddForce(physics.Up.Mul(c.params.JumpForce), ForceModeImpulse)

	c.log.Debug("Jump", "impulse", c.params.JumpForce)
	c.publish(event.EventJumped, &event.JumpedEvent{
		Controller: c.name,
		Position:   c.body.Position(),
		Speed:      c.params.JumpForce,
	})
}

// float casts the ground probe and, when within float height, applies the
// hover spring and the stomp reaction to whatever was hit.
func (c *FloatingController) float() {
	origin := c.body.Position().Add(physics.Up.Mul(c.params.RayStartOffset))
	maxDist := c.params.RayLength + c.params.RayStartOffset

	// The probe always looks straight down; rayDir only orients the
	// spring and stomp forces.
	hit, ok := c.ray.Raycast(origin, physics.Down, maxDist, c.params.probeMask())
	if !ok {
		c.grounded = false
		c.probe = GroundProbe{}
		return
	}

	rest := c.params.FloatHeight + c.params.RayStartOffset
	c.grounded = hit.Distance <= rest
	c.probe = GroundProbe{Hit: true, Grounded: c.grounded, RaycastHit: hit}
	if !c.grounded {
		return
	}

	var otherVel mgl64.Vec3
	if hit.Body != nil {
		otherVel = hit.Body.Velocity()
	}
	relVel := c.rayDir.Dot(c.body.Velocity()) - c.rayDir.Dot(otherVel)
	offset := hit.Distance - rest

	spring := offset*c.params.SpringStrength - relVel*c.params.SpringDamper
	c.body.AddForce(c.rayDir.Mul(spring), ForceModeForce)
	c.probe.Spring = spring

	if c.params.EnableStomp && hit.Body != nil {
		force := c.rayDir.Mul(c.params.StompForce)
		hit.Body.AddForceAtPosition(force, hit.Point)
		c.publish(event.EventStomp, &event.StompEvent{
			Controller: c.name,
			Point:      hit.Point,
			Force:      force,
		})
	}
}

func (c *FloatingController) Grounded() bool {
	return c.grounded
}

func (c *FloatingController) Probe() GroundProbe {
	return c.probe
}

func (c *FloatingController) TargetVelocity() mgl64.Vec3 {
	return c.targetVelocity
}

func (c *FloatingController) LookRotation() mgl64.Quat {
	return c.lookRotation
}
