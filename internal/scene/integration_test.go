package scene

import (
	"testing"

	"github.com/Versifine/locomotor/internal/controller"
	"github.com/Versifine/locomotor/internal/input"
	"github.com/go-gl/mathgl/mgl64"
)

func TestFloatingControllerHoversOnScene(t *testing.T) {
	layout := DefaultLayout()
	layout.Props = nil
	s, err := Build(layout)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	params := controller.DefaultFloatingParams()
	player := s.SpawnPlayer(layout, params.FloatHeight+0.5)

	actions := input.NewMap()
	c, err := controller.NewFloatingController(params, player, s, NewCamera(0, 0), actions)
	if err != nil {
		t.Fatalf("NewFloatingController: %v", err)
	}
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	const dt = 0.02
	for i := 0; i < 250; i++ {
		c.FixedUpdate(dt)
		s.Step(dt)
	}

	// Spring compresses by m*g/k at rest.
	want := params.FloatHeight - 9.81*player.Mass()/params.SpringStrength
	if got := player.Position().Y(); !approx(got, want, 0.02) {
		t.Errorf("hover height = %v, want about %v", got, want)
	}
	if !c.Grounded() {
		t.Error("controller not grounded while hovering")
	}
	if v := player.Velocity().Y(); !approx(v, 0, 0.05) {
		t.Errorf("vertical velocity at rest = %v", v)
	}
}

func TestFloatingControllerWalksOnScene(t *testing.T) {
	layout := DefaultLayout()
	layout.Props = nil
	layout.Blocks = layout.Blocks[:1]
	s, err := Build(layout)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	params := controller.DefaultFloatingParams()
	player := s.SpawnPlayer(layout, params.FloatHeight)

	actions := input.NewMap()
	c, err := controller.NewFloatingController(params, player, s, NewCamera(0, 0), actions)
	if err != nil {
		t.Fatalf("NewFloatingController: %v", err)
	}
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	actions.Move.Perform(input.Vector(0, 1))
	const dt = 0.02
	for i := 0; i < 100; i++ {
		c.FixedUpdate(dt)
		s.Step(dt)
	}

	if vz := player.Velocity().Z(); !approx(vz, params.MaxSpeed, 0.2) {
		t.Errorf("forward speed = %v, want about %v", vz, params.MaxSpeed)
	}
	if vx := player.Velocity().X(); !approx(vx, 0, 0.05) {
		t.Errorf("sideways speed = %v, want about 0", vx)
	}
}

func TestMoveControllerWalksOnScene(t *testing.T) {
	layout := DefaultLayout()
	layout.Props = nil
	layout.Blocks = layout.Blocks[:1]
	s, err := Build(layout)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	character := s.SpawnCharacter(layout)

	actions := input.NewMap()
	c, err := controller.NewMoveController(controller.DefaultFirstPersonParams(), character, NewPivot(), actions)
	if err != nil {
		t.Fatalf("NewMoveController: %v", err)
	}
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	actions.Move.Perform(input.Vector(0, 1))
	const dt = 1.0 / 60
	for i := 0; i < 120; i++ {
		s.BeginFrame(dt)
		c.Update(dt)
		c.LateUpdate(dt)
	}

	pos := character.Position()
	if !approx(pos.Y(), 0, 1e-9) {
		t.Errorf("y = %v, want standing on floor", pos.Y())
	}
	if pos.Z() < 2 {
		t.Errorf("z = %v, want at least 2 after walking 2s", pos.Z())
	}
	if !character.IsGrounded() {
		t.Error("character not grounded while walking")
	}
	if c.VerticalVelocity() != -2 {
		t.Errorf("vertical velocity = %v, want -2", c.VerticalVelocity())
	}

	// Jump in place leaves the ground and comes back down.
	actions.Move.Cancel()
	actions.Jump.Perform(input.Button(true))
	s.BeginFrame(dt)
	c.Update(dt)
	actions.Jump.Cancel()

	left := false
	for i := 0; i < 240; i++ {
		s.BeginFrame(dt)
		c.Update(dt)
		if !character.IsGrounded() {
			left = true
		}
	}
	if !left {
		t.Error("character never left the ground after jumping")
	}
	if !character.IsGrounded() || !approx(character.Position().Y(), 0, 1e-9) {
		t.Errorf("character did not land: y = %v", character.Position().Y())
	}
}

var _ controller.RigidBody = (*RigidBody)(nil)
var _ controller.CharacterBody = (*Character)(nil)
var _ controller.Raycaster = (*Scene)(nil)
var _ controller.ViewSource = (*Camera)(nil)
var _ controller.LookTarget = (*Pivot)(nil)

func TestPlayerSpawnHeight(t *testing.T) {
	layout := DefaultLayout()
	layout.Spawn = mgl64.Vec3{1, 2, 3}
	s, err := Build(layout)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	p := s.SpawnPlayer(layout, 1.3)
	if got := p.Position(); !got.ApproxEqualThreshold(mgl64.Vec3{1, 3.3, 3}, 1e-9) {
		t.Errorf("spawn position = %v", got)
	}
	if _, ok := s.Body("crate"); !ok {
		t.Error("default layout has no crate")
	}
}

func TestLayoutValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(l *Layout)
	}{
		{"positive gravity", func(l *Layout) { l.Gravity = 1 }},
		{"zero character height", func(l *Layout) { l.Character.Height = 0 }},
		{"unnamed prop", func(l *Layout) { l.Props[0].Name = "" }},
		{"duplicate prop", func(l *Layout) { l.Props[1].Name = l.Props[0].Name }},
		{"massless dynamic prop", func(l *Layout) { l.Props[0].Mass = 0 }},
		{"flat player", func(l *Layout) { l.Player.HalfExtents = mgl64.Vec3{0.4, 0, 0.4} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := DefaultLayout()
			tt.mutate(&l)
			if _, err := Build(l); err == nil {
				t.Error("Build accepted an invalid layout")
			}
		})
	}
}
