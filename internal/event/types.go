package event

import "github.com/go-gl/mathgl/mgl64"

const (
	EventJumped         = "controller.jumped"
	EventLanded         = "controller.landed"
	EventLeftGround     = "controller.left_ground"
	EventStomp          = "controller.stomp"
	EventTuningReloaded = "tuning.reloaded"
)

type JumpedEvent struct {
	Controller string
	Position   mgl64.Vec3
	// Speed is the launch velocity for kinematic controllers and the
	// impulse magnitude for the floating controller.
	Speed float64
}

// GroundEvent is published for both landed and left-ground transitions.
type GroundEvent struct {
	Controller string
	Grounded   bool
	Position   mgl64.Vec3
	Velocity   mgl64.Vec3
}

type StompEvent struct {
	Controller string
	Point      mgl64.Vec3
	Force      mgl64.Vec3
}

type TuningReloadedEvent struct {
	Path     string
	Sections []string
}
