package scene

import (
	"github.com/Versifine/locomotor/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultCameraDistance = 5.0
	CameraPitchLimit      = 80.0
)

// Camera is an orbit rig looking at a target from Distance units away.
// Its yaw is the heading third-person controllers read input against.
type Camera struct {
	yaw      float64
	pitch    float64
	Distance float64
	target   mgl64.Vec3
}

func NewCamera(yaw, pitch float64) *Camera {
	c := &Camera{Distance: DefaultCameraDistance}
	c.Turn(yaw, pitch)
	return c
}

func (c *Camera) Yaw() float64 {
	return c.yaw
}

func (c *Camera) Pitch() float64 {
	return c.pitch
}

// Turn orbits the rig by the given degrees. Positive pitch looks down.
func (c *Camera) Turn(yaw, pitch float64) {
	c.yaw = physics.NormalizeYaw(c.yaw + yaw)
	c.pitch = mgl64.Clamp(c.pitch+pitch, -CameraPitchLimit, CameraPitchLimit)
}

// Aim points the rig at an absolute heading and pitch.
func (c *Camera) Aim(yaw, pitch float64) {
	c.yaw, c.pitch = 0, 0
	c.Turn(yaw, pitch)
}

func (c *Camera) Follow(target mgl64.Vec3) {
	c.target = target
}

func (c *Camera) Target() mgl64.Vec3 {
	return c.target
}

func (c *Camera) Rotation() mgl64.Quat {
	return physics.YawRotation(c.yaw).Mul(physics.PitchRotation(c.pitch))
}

func (c *Camera) Position() mgl64.Vec3 {
	return c.target.Sub(c.Rotation().Rotate(physics.Forward).Mul(c.Distance))
}

// Pivot is the head joint a first-person camera hangs from. It carries a
// local rotation relative to the body that owns it.
type Pivot struct {
	local mgl64.Quat
}

func NewPivot() *Pivot {
	return &Pivot{local: mgl64.QuatIdent()}
}

func (p *Pivot) SetLocalRotation(q mgl64.Quat) {
	p.local = q
}

func (p *Pivot) LocalRotation() mgl64.Quat {
	return p.local
}

// Forward is the view direction for a body with rotation parent.
func (p *Pivot) Forward(parent mgl64.Quat) mgl64.Vec3 {
	return parent.Mul(p.local).Rotate(physics.Forward)
}
