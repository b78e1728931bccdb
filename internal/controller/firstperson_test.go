package controller

import (
	"errors"
	"testing"

	"github.com/Versifine/locomotor/internal/event"
	"github.com/Versifine/locomotor/internal/input"
	"github.com/Versifine/locomotor/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

func newFirstPerson(t *testing.T, body *fakeCharacter, opts ...Option) (*MoveController, *input.Map, *fakeLookTarget) {
	t.Helper()
	actions := input.NewMap()
	look := &fakeLookTarget{}
	c, err := NewMoveController(DefaultFirstPersonParams(), body, look, actions, opts...)
	if err != nil {
		t.Fatalf("NewMoveController: %v", err)
	}
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return c, actions, look
}

func TestNewMoveControllerValidation(t *testing.T) {
	actions := input.NewMap()
	look := &fakeLookTarget{}
	body := newFakeCharacter(true)

	if _, err := NewMoveController(DefaultFirstPersonParams(), nil, look, actions); !errors.Is(err, ErrNilBody) {
		t.Errorf("nil body: got %v, want ErrNilBody", err)
	}
	if _, err := NewMoveController(DefaultFirstPersonParams(), body, nil, actions); !errors.Is(err, ErrNilLookTarget) {
		t.Errorf("nil look target: got %v, want ErrNilLookTarget", err)
	}
	if _, err := NewMoveController(DefaultFirstPersonParams(), body, look, nil); !errors.Is(err, ErrNilInput) {
		t.Errorf("nil actions: got %v, want ErrNilInput", err)
	}

	bad := DefaultFirstPersonParams()
	bad.Gravity = 9.81
	if _, err := NewMoveController(bad, body, look, actions); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("positive gravity: got %v, want ErrInvalidParams", err)
	}
}

func TestMoveControllerGroundedSnap(t *testing.T) {
	body := newFakeCharacter(true)
	c, _, _ := newFirstPerson(t, body)

	c.Update(0.02)

	if got := c.VerticalVelocity(); got != physics.GroundedVerticalVelocity {
		t.Fatalf("vertical velocity = %v, want %v", got, physics.GroundedVerticalVelocity)
	}
	if got := body.lastMove().Y(); !approx(got, -2*0.02, 1e-12) {
		t.Errorf("move Y = %v, want %v", got, -0.04)
	}
}

func TestMoveControllerJumpVelocity(t *testing.T) {
	body := newFakeCharacter(true)
	c, actions, _ := newFirstPerson(t, body)

	actions.Jump.Perform(input.Button(true))
	c.Update(0.02)

	want := LaunchVelocity(2, -9.81)
	if !approx(want, 6.2642, 1e-3) {
		t.Fatalf("LaunchVelocity(2, -9.81) = %v", want)
	}
	if got := c.VerticalVelocity(); !approx(got, want, 1e-12) {
		t.Errorf("vertical velocity after jump = %v, want %v", got, want)
	}

}

// The grounded snap only pulls a body down: a body still reported grounded
// while moving up, as on the frame after a jump, keeps its launch speed.
// Zero and negative speeds snap to the floor value.
func TestMoveControllerGroundedSnapOnlyWhenNotRising(t *testing.T) {
	launch := LaunchVelocity(2, -9.81)
	tests := []struct {
		name string
		jump bool
		want float64
	}{
		{"rising after jump", true, launch},
		{"resting", false, physics.GroundedVerticalVelocity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := newFakeCharacter(true)
			c, actions, _ := newFirstPerson(t, body)
			if tt.jump {
				actions.Jump.Perform(input.Button(true))
			}
			c.Update(0.02)
			actions.Jump.Cancel()

			c.Update(0.02)
			if got := c.VerticalVelocity(); !approx(got, tt.want, 1e-12) {
				t.Errorf("vertical velocity on second grounded frame = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMoveControllerJumpNeedsGround(t *testing.T) {
	body := newFakeCharacter(false)
	c, actions, _ := newFirstPerson(t, body)

	actions.Jump.Perform(input.Button(true))
	c.Update(0.1)

	if got := c.VerticalVelocity(); !approx(got, -0.981, 1e-12) {
		t.Errorf("airborne jump changed velocity: %v", got)
	}
}

func TestMoveControllerFallMultiplier(t *testing.T) {
	tests := []struct {
		name      string
		bodyVelY  float64
		wantDelta float64
	}{
		{"descending", -1, -9.81 * 3 * 0.1},
		{"rising", 1, -9.81 * 0.1},
		{"apex", 0, -9.81 * 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := newFakeCharacter(false)
			body.velocity = mgl64.Vec3{0, tt.bodyVelY, 0}
			c, _, _ := newFirstPerson(t, body)

			c.Update(0.1)

			if got := c.VerticalVelocity(); !approx(got, tt.wantDelta, 1e-12) {
				t.Errorf("vertical velocity = %v, want %v", got, tt.wantDelta)
			}
		})
	}
}

func TestMoveControllerHorizontalEasing(t *testing.T) {
	body := newFakeCharacter(true)
	c, actions, _ := newFirstPerson(t, body)

	actions.Move.Perform(input.Vector(0, 1))
	c.Update(0.1)

	// Lerp(0, 3, 3*0.1)
	if got := c.HorizontalSpeed(); !approx(got, 0.9, 1e-12) {
		t.Fatalf("speed = %v, want 0.9", got)
	}
	move := body.lastMove()
	if !approx(move.X(), 0, 1e-12) || !approx(move.Z(), 0.09, 1e-12) {
		t.Errorf("move = %v, want forward 0.09", move)
	}

	// Already at walk speed: easing is idempotent.
	body.velocity = mgl64.Vec3{0, 0, 3}
	c.Update(0.1)
	if got := c.HorizontalSpeed(); !approx(got, 3, 1e-12) {
		t.Errorf("speed at target = %v, want 3", got)
	}
}

func TestMoveControllerMovesRelativeToBody(t *testing.T) {
	body := newFakeCharacter(true)
	body.rotation = physics.YawRotation(90)
	body.velocity = mgl64.Vec3{3, 0, 0}
	c, actions, _ := newFirstPerson(t, body)

	actions.Move.Perform(input.Vector(0, 1))
	c.Update(0.1)

	want := mgl64.Vec3{0.3, -0.2, 0}
	if got := body.lastMove(); !approxVec(got, want, 1e-9) {
		t.Errorf("move = %v, want %v", got, want)
	}
}

func TestMoveControllerLook(t *testing.T) {
	body := newFakeCharacter(true)
	c, actions, look := newFirstPerson(t, body)

	actions.Look.Perform(input.Vector(1, 0))
	c.LateUpdate(0.1)
	if got := c.LookVelocity().X(); !approx(got, 5, 1e-12) {
		t.Fatalf("yaw velocity = %v, want 5", got)
	}

	c.Update(0.1)
	if got := physics.YawOf(body.Rotation()); !approx(got, 5, 1e-9) {
		t.Errorf("body yaw = %v, want 5", got)
	}

	// Turning is relative: another frame adds another 5 degrees.
	c.LateUpdate(0.1)
	c.Update(0.1)
	if got := physics.YawOf(body.Rotation()); !approx(got, 10, 1e-9) {
		t.Errorf("body yaw = %v, want 10", got)
	}

	if look.rotation != physics.PitchRotation(0) {
		t.Errorf("pitch changed without vertical look input: %v", look.rotation)
	}
}

func TestMoveControllerPitchClamp(t *testing.T) {
	tests := []struct {
		name  string
		lookY float64
		want  float64
	}{
		{"look up hard", 1000, -physics.MaxPitch},
		{"look down hard", -1000, physics.MaxPitch},
		{"small", -1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := newFakeCharacter(true)
			c, actions, look := newFirstPerson(t, body)

			actions.Look.Perform(input.Vector(0, tt.lookY))
			c.LateUpdate(0.1)

			if got := c.Pitch(); !approx(got, tt.want, 1e-9) {
				t.Fatalf("pitch = %v, want %v", got, tt.want)
			}
			if got := look.rotation; !got.ApproxEqualThreshold(physics.PitchRotation(tt.want), 1e-9) {
				t.Errorf("look target rotation = %v, want pitch %v", got, tt.want)
			}
		})
	}
}

func TestMoveControllerLifecycle(t *testing.T) {
	body := newFakeCharacter(true)
	c, actions, _ := newFirstPerson(t, body)

	if err := c.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start: got %v, want ErrAlreadyStarted", err)
	}

	actions.Move.Perform(input.Vector(0, 1))
	if got := c.Input().Move; got != (mgl64.Vec2{0, 1}) {
		t.Fatalf("move input = %v, want (0, 1)", got)
	}

	if err := c.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if got := c.Input(); got != (input.State{}) {
		t.Errorf("input after Stop = %+v, want zero", got)
	}
	for _, a := range []*input.Action{actions.Move, actions.Look, actions.Jump} {
		if n := a.HandlerCount(input.Performed); n != 0 {
			t.Errorf("%s still has %d performed handlers", a.Name(), n)
		}
	}

	actions.Move.Perform(input.Vector(1, 0))
	if got := c.Input().Move; got != (mgl64.Vec2{}) {
		t.Errorf("stopped controller received input %v", got)
	}
	if err := c.Stop(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("second Stop: got %v, want ErrNotStarted", err)
	}

	// Restart works.
	if err := c.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	actions.Jump.Perform(input.Button(true))
	if !c.Input().Jump {
		t.Error("restarted controller missed jump")
	}
}

func TestMoveControllerCanceledInputReadsZero(t *testing.T) {
	body := newFakeCharacter(true)
	c, actions, _ := newFirstPerson(t, body)

	actions.Move.Perform(input.Vector(1, 1))
	actions.Move.Cancel()
	if got := c.Input().Move; got != (mgl64.Vec2{}) {
		t.Errorf("move after cancel = %v, want zero", got)
	}
}

func TestMoveControllerPublishesJump(t *testing.T) {
	pub := &recordingPublisher{}
	body := newFakeCharacter(true)
	c, actions, _ := newFirstPerson(t, body, WithPublisher(pub), WithName("p1"))

	actions.Jump.Perform(input.Button(true))
	c.Update(0.02)

	if n := pub.count(event.EventJumped); n != 1 {
		t.Fatalf("jumped events = %d, want 1", n)
	}
	evt := pub.events[event.EventJumped][0].(*event.JumpedEvent)
	if evt.Controller != "p1" {
		t.Errorf("controller = %q, want p1", evt.Controller)
	}
}

func TestMoveControllerSetParams(t *testing.T) {
	body := newFakeCharacter(true)
	c, _, _ := newFirstPerson(t, body)

	p := c.Params()
	p.WalkSpeed = 6
	if err := c.SetParams(p); err != nil {
		t.Fatalf("SetParams: %v", err)
	}
	p.Accelerate = -1
	if err := c.SetParams(p); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("invalid SetParams: got %v, want ErrInvalidParams", err)
	}
	if c.Params().WalkSpeed != 6 || c.Params().Accelerate != 3 {
		t.Errorf("params = %+v, want walk 6 accelerate 3", c.Params())
	}
}
