package input

import "github.com/go-gl/mathgl/mgl64"

type Phase int

const (
	Started Phase = iota
	Performed
	Canceled
)

func (p Phase) String() string {
	switch p {
	case Started:
		return "started"
	case Performed:
		return "performed"
	case Canceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Value is the payload carried by an input event: a 2D axis for sticks and
// pointer deltas, or a button state.
type Value struct {
	Vector  mgl64.Vec2
	Pressed bool
}

func Vector(x, y float64) Value {
	return Value{Vector: mgl64.Vec2{x, y}}
}

func Button(pressed bool) Value {
	return Value{Pressed: pressed}
}

// Context is what a handler receives when an action fires.
type Context struct {
	Action string
	Phase  Phase
	Value  Value
}

// ReadVector2 returns the axis value. Canceled events always read zero.
func (c Context) ReadVector2() mgl64.Vec2 {
	if c.Phase == Canceled {
		return mgl64.Vec2{}
	}
	return c.Value.Vector
}

// ReadButton reports whether the button is held. Canceled events read false.
func (c Context) ReadButton() bool {
	if c.Phase == Canceled {
		return false
	}
	return c.Value.Pressed
}
