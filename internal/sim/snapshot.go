package sim

import (
	"fmt"

	"github.com/Versifine/locomotor/internal/input"
	"github.com/Versifine/locomotor/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// Snapshot is a copy of the player state taken at the end of a frame.
type Snapshot struct {
	Frame    uint64
	Elapsed  float64
	Mode     string
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	// Yaw is the body heading in degrees.
	Yaw         float64
	Grounded    bool
	CameraYaw   float64
	CameraPitch float64
	Input       input.State
}

func (s Snapshot) String() string {
	ground := "air"
	if s.Grounded {
		ground = "ground"
	}
	return fmt.Sprintf("#%d %s pos=(%.2f, %.2f, %.2f) vel=(%.2f, %.2f, %.2f) yaw=%.1f cam=%.1f/%.1f %s",
		s.Frame, s.Mode,
		s.Position.X(), s.Position.Y(), s.Position.Z(),
		s.Velocity.X(), s.Velocity.Y(), s.Velocity.Z(),
		s.Yaw, s.CameraYaw, s.CameraPitch, ground)
}

// Speed is the planar speed.
func (s Snapshot) Speed() float64 {
	return physics.Horizontal(s.Velocity).Len()
}

func (r *Runner) storeSnapshot() {
	pos, rot := r.bodyPose()
	r.snapshot.Store(&Snapshot{
		Frame:       r.frame,
		Elapsed:     r.elapsed,
		Mode:        r.mode,
		Position:    pos,
		Velocity:    r.bodyVelocity(),
		Yaw:         physics.YawOf(rot),
		Grounded:    r.grounded,
		CameraYaw:   r.camera.Yaw(),
		CameraPitch: r.camera.Pitch(),
		Input:       r.ctrl.Input(),
	})
}
