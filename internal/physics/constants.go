package physics

const (
	// GroundedVerticalVelocity keeps a grounded character pressed into the
	// floor so the next move still reports contact.
	GroundedVerticalVelocity = -2.0

	StandardGravity = -9.81
	MaxPitch        = 90.0

	MinSmoothTime          = 0.0001
	CollisionAxisTolerance = 1e-9
	DirectionEpsilon       = 1e-9

	PushStrength     = 0.7
	PushMaxPerBody   = 0.08
	PushMaxPerFrame  = 0.12
	DefaultBodyWidth = 0.6
)
