package input

import "github.com/go-gl/mathgl/mgl64"

// Sample is the raw state of a keyboard and pointer for one frame.
type Sample struct {
	Forward  bool
	Backward bool
	Left     bool
	Right    bool
	Jump     bool
	// Look is the pointer movement this frame, already scaled.
	Look mgl64.Vec2
}

// Move folds the four direction keys into a stick value of length at
// most one.
func (s Sample) Move() mgl64.Vec2 {
	var v mgl64.Vec2
	if s.Forward {
		v[1]++
	}
	if s.Backward {
		v[1]--
	}
	if s.Right {
		v[0]++
	}
	if s.Left {
		v[0]--
	}
	if l := v.Len(); l > 1 {
		v = v.Mul(1 / l)
	}
	return v
}

// Device turns polled samples into action events. An action fires only
// when its value changes: started and performed when it leaves zero,
// performed while it changes, canceled when it returns to zero.
type Device struct {
	actions *Map

	move mgl64.Vec2
	look mgl64.Vec2
	jump bool
}

func NewDevice(actions *Map) *Device {
	return &Device{actions: actions}
}

func (d *Device) Sync(s Sample) {
	d.move = syncVector(d.actions.Move, d.move, s.Move())
	d.look = syncVector(d.actions.Look, d.look, s.Look)

	if s.Jump != d.jump {
		d.jump = s.Jump
		if s.Jump {
			d.actions.Jump.Trigger(Started, Button(true))
			d.actions.Jump.Perform(Button(true))
		} else {
			d.actions.Jump.Cancel()
		}
	}
}

// Release cancels whatever the device still holds.
func (d *Device) Release() {
	d.Sync(Sample{})
}

func syncVector(a *Action, prev, next mgl64.Vec2) mgl64.Vec2 {
	if next == prev {
		return prev
	}
	switch {
	case next == (mgl64.Vec2{}):
		a.Cancel()
	case prev == (mgl64.Vec2{}):
		a.Trigger(Started, Vector(next.X(), next.Y()))
		a.Perform(Vector(next.X(), next.Y()))
	default:
		a.Perform(Vector(next.X(), next.Y()))
	}
	return next
}
