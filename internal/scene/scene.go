package scene

import (
	"math"

	"github.com/Versifine/locomotor/internal/controller"
	"github.com/Versifine/locomotor/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// StaticLayer is the layer every block belongs to.
const StaticLayer = 0

// groundProbe is how far below a body the resting check looks.
const groundProbe = 1e-3

// Scene owns the static blocks and every body that lives among them. It is
// not safe for concurrent use; one simulation goroutine drives it.
type Scene struct {
	Gravity mgl64.Vec3
	Blocks  *Blocks

	bodies     []*RigidBody
	characters []*Character
}

func New(gravity float64, blocks *Blocks) *Scene {
	if blocks == nil {
		blocks = NewBlocks()
	}
	return &Scene{
		Gravity: mgl64.Vec3{0, gravity, 0},
		Blocks:  blocks,
	}
}

func (s *Scene) AddBody(b *RigidBody) *RigidBody {
	s.bodies = append(s.bodies, b)
	return b
}

// AddCharacter creates a feet-anchored character of the given radius and
// height at pos.
func (s *Scene) AddCharacter(pos mgl64.Vec3, radius, height float64) *Character {
	c := &Character{
		scene:    s,
		box:      physics.Box{HalfWidth: radius, HalfDepth: radius, Height: height},
		position: pos,
		rotation: mgl64.QuatIdent(),
	}
	s.characters = append(s.characters, c)
	return c
}

func (s *Scene) Bodies() []*RigidBody {
	return s.bodies
}

func (s *Scene) Characters() []*Character {
	return s.characters
}

func (s *Scene) Body(name string) (*RigidBody, bool) {
	for _, b := range s.bodies {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}

// BeginFrame records the variable frame time characters derive their
// velocity from.
func (s *Scene) BeginFrame(dt float64) {
	for _, c := range s.characters {
		c.setFrameTime(dt)
	}
}

// Step integrates every rigid body by one fixed step and resolves the
// result against the blocks.
func (s *Scene) Step(dt float64) {
	if dt <= 0 {
		return
	}
	for _, b := range s.bodies {
		b.integrate(dt, s.Gravity)

		if b.kinematic {
			b.position = b.position.Add(b.velocity.Mul(dt))
			b.reverseIfTravelled()
			continue
		}

		delta := b.velocity.Mul(dt)
		pos, applied := physics.ResolveMovement(b.box, b.position, delta, s.Blocks)
		for axis := 0; axis < 3; axis++ {
			if physics.Blocked(delta, applied, axis) {
				b.velocity[axis] = 0
			}
		}
		b.position = pos
		b.grounded = physics.StandingOn(b.box, b.position, s.Blocks, groundProbe)
	}
}

// Raycast returns the closest hit along dir among blocks and bodies whose
// layer is in mask. Block hits carry no body.
func (s *Scene) Raycast(origin, dir mgl64.Vec3, maxDistance float64, mask controller.LayerMask) (controller.RaycastHit, bool) {
	if dir.Len() < physics.DirectionEpsilon || maxDistance < 0 {
		return controller.RaycastHit{}, false
	}
	dir = dir.Normalize()

	best := controller.RaycastHit{Distance: math.Inf(1)}
	found := false

	if mask.Contains(StaticLayer) {
		if hit, ok := physics.RaycastBlocks(origin, dir, maxDistance, s.Blocks); ok {
			best = controller.RaycastHit{Distance: hit.Distance, Point: hit.Point}
			found = true
		}
	}

	for _, b := range s.bodies {
		if !mask.Contains(b.layer) {
			continue
		}
		dist, ok := physics.RayBox(origin, dir, maxDistance, b.Bounds())
		if !ok || dist >= best.Distance {
			continue
		}
		best = controller.RaycastHit{
			Distance: dist,
			Point:    origin.Add(dir.Mul(dist)),
			Body:     b,
		}
		found = true
	}

	if !found {
		return controller.RaycastHit{}, false
	}
	return best, true
}

// obstacles are the bounds of every body a character should be pushed out of.
func (s *Scene) obstacles() []physics.AABB {
	if len(s.bodies) == 0 {
		return nil
	}
	out := make([]physics.AABB, 0, len(s.bodies))
	for _, b := range s.bodies {
		out = append(out, b.Bounds())
	}
	return out
}
