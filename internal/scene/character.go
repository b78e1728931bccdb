package scene

import (
	"github.com/Versifine/locomotor/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// Character is a kinematic collide-and-slide body anchored at its feet.
type Character struct {
	scene *Scene
	box   physics.Box

	position mgl64.Vec3
	velocity mgl64.Vec3
	rotation mgl64.Quat
	grounded bool
	frameDt  float64
}

func (c *Character) IsGrounded() bool {
	return c.grounded
}

// Velocity is the displacement resolved by the last Move divided by the
// frame time.
func (c *Character) Velocity() mgl64.Vec3 {
	return c.velocity
}

// Move sweeps the character by delta against the scene blocks, then eases
// it out of any prop it overlaps. Grounded is true when downward motion was
// stopped by a block.
func (c *Character) Move(delta mgl64.Vec3) {
	var blocks physics.BlockStore
	var obstacles []physics.AABB
	if c.scene != nil {
		blocks = c.scene.Blocks
		obstacles = c.scene.obstacles()
	}

	start := c.position
	pos, applied := physics.ResolveMovement(c.box, c.position, delta, blocks)
	pos = physics.PushOut(c.box, pos, blocks, obstacles)

	c.grounded = delta.Y() < 0 && physics.Blocked(delta, applied, 1)
	c.position = pos
	if c.frameDt > 0 {
		c.velocity = pos.Sub(start).Mul(1 / c.frameDt)
	}
}

func (c *Character) Rotation() mgl64.Quat {
	return c.rotation
}

func (c *Character) SetRotation(q mgl64.Quat) {
	c.rotation = q.Normalize()
}

func (c *Character) Position() mgl64.Vec3 {
	return c.position
}

// Teleport places the character without collision and clears its motion.
func (c *Character) Teleport(pos mgl64.Vec3) {
	c.position = pos
	c.velocity = mgl64.Vec3{}
	c.grounded = false
}

func (c *Character) Box() physics.AABB {
	return c.box.At(c.position)
}

func (c *Character) setFrameTime(dt float64) {
	c.frameDt = dt
}
