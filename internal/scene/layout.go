package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Layout describes a scene in configuration terms.
type Layout struct {
	Gravity float64       `yaml:"gravity"`
	Blocks  []BlockRegion `yaml:"blocks"`
	Props   []PropSpec    `yaml:"props"`

	Spawn     mgl64.Vec3    `yaml:"spawn,flow"`
	Character CharacterSpec `yaml:"character"`
	Player    PropSpec      `yaml:"player"`
}

type BlockRegion struct {
	Min Cell `yaml:"min,flow"`
	Max Cell `yaml:"max,flow"`
}

type CharacterSpec struct {
	Radius float64 `yaml:"radius"`
	Height float64 `yaml:"height"`
}

// PropSpec describes a rigid body. For the floating player Position is
// ignored in favour of the layout spawn.
type PropSpec struct {
	Name           string     `yaml:"name"`
	Position       mgl64.Vec3 `yaml:"position,flow"`
	HalfExtents    mgl64.Vec3 `yaml:"half_extents,flow"`
	Mass           float64    `yaml:"mass"`
	LinearDamping  float64    `yaml:"linear_damping"`
	AngularDamping float64    `yaml:"angular_damping"`
	Layer          int        `yaml:"layer"`
	Kinematic      bool       `yaml:"kinematic"`
	Velocity       mgl64.Vec3 `yaml:"velocity,flow"`
	Travel         float64    `yaml:"travel"`
	FreezeRotation bool       `yaml:"freeze_rotation"`
}

func DefaultLayout() Layout {
	return Layout{
		Gravity: -9.81,
		Blocks: []BlockRegion{
			{Min: Cell{-16, -1, -16}, Max: Cell{16, -1, 16}},
			{Min: Cell{4, 0, -2}, Max: Cell{4, 1, 2}},
			{Min: Cell{-6, 0, 3}, Max: Cell{-4, 0, 5}},
		},
		Props: []PropSpec{
			{
				Name:           "crate",
				Position:       mgl64.Vec3{2, 0.5, 4},
				HalfExtents:    mgl64.Vec3{0.5, 0.5, 0.5},
				Mass:           4,
				AngularDamping: 0.5,
				Layer:          2,
			},
			{
				Name:        "lift",
				Position:    mgl64.Vec3{-3, 0.25, -4},
				HalfExtents: mgl64.Vec3{1, 0.25, 1},
				Layer:       2,
				Kinematic:   true,
				Velocity:    mgl64.Vec3{0, 0.5, 0},
				Travel:      2,
			},
		},
		Spawn:     mgl64.Vec3{0, 0, 0},
		Character: CharacterSpec{Radius: 0.3, Height: 1.8},
		Player: PropSpec{
			Name:           "player",
			HalfExtents:    mgl64.Vec3{0.4, 1, 0.4},
			Mass:           1,
			LinearDamping:  0,
			AngularDamping: 0.05,
			Layer:          1,
		},
	}
}

func (l Layout) Validate() error {
	if l.Gravity >= 0 {
		return fmt.Errorf("scene gravity must be negative, got %v", l.Gravity)
	}
	if l.Character.Radius <= 0 || l.Character.Height <= 0 {
		return errors.New("scene character radius and height must be positive")
	}
	seen := make(map[string]bool, len(l.Props))
	for i, p := range l.Props {
		if p.Name == "" {
			return fmt.Errorf("scene prop %d has no name", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("scene prop %q defined twice", p.Name)
		}
		seen[p.Name] = true
		if err := p.validate(); err != nil {
			return err
		}
	}
	return l.Player.validate()
}

func (p PropSpec) validate() error {
	for axis := 0; axis < 3; axis++ {
		if p.HalfExtents[axis] <= 0 {
			return fmt.Errorf("scene prop %q half extents must be positive", p.Name)
		}
	}
	if !p.Kinematic && p.Mass <= 0 {
		return fmt.Errorf("scene prop %q mass must be positive", p.Name)
	}
	if p.Layer < 0 || p.Layer > 31 {
		return fmt.Errorf("scene prop %q layer must be in [0, 31]", p.Name)
	}
	return nil
}

func (p PropSpec) body(pos mgl64.Vec3) *RigidBody {
	opts := []BodyOption{
		WithMass(p.Mass),
		WithDamping(p.LinearDamping, p.AngularDamping),
		WithLayer(p.Layer),
		WithVelocity(p.Velocity),
	}
	if p.Kinematic {
		opts = append(opts, Kinematic(p.Travel))
	}
	if p.FreezeRotation {
		opts = append(opts, FreezeRotation())
	}
	return NewRigidBody(p.Name, pos, p.HalfExtents, opts...)
}

// Build creates the blocks and props of layout. Player bodies are added
// separately by SpawnCharacter or SpawnPlayer.
func Build(layout Layout) (*Scene, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	blocks := NewBlocks()
	for _, r := range layout.Blocks {
		blocks.Fill(r.Min, r.Max)
	}
	s := New(layout.Gravity, blocks)
	for _, p := range layout.Props {
		s.AddBody(p.body(p.Position))
	}
	return s, nil
}

// SpawnCharacter adds the kinematic player character at the layout spawn.
func (s *Scene) SpawnCharacter(layout Layout) *Character {
	return s.AddCharacter(layout.Spawn, layout.Character.Radius, layout.Character.Height)
}

// SpawnPlayer adds the floating player body so that it hovers floatHeight
// above the spawn point.
func (s *Scene) SpawnPlayer(layout Layout, floatHeight float64) *RigidBody {
	pos := layout.Spawn.Add(mgl64.Vec3{0, floatHeight, 0})
	return s.AddBody(layout.Player.body(pos))
}
