package controller

import (
	"fmt"
	"math"

	"github.com/Versifine/locomotor/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// FirstPersonParams tunes MoveController.
type FirstPersonParams struct {
	Gravity        float64 `yaml:"gravity"`
	WalkSpeed      float64 `yaml:"walk_speed"`
	Accelerate     float64 `yaml:"accelerate"`
	JumpHeight     float64 `yaml:"jump_height"`
	FallMultiplier float64 `yaml:"fall_multiplier"`
	// Look speeds are degrees per second per unit of look input.
	LookSpeedX float64 `yaml:"look_speed_x"`
	LookSpeedY float64 `yaml:"look_speed_y"`
}

func DefaultFirstPersonParams() FirstPersonParams {
	return FirstPersonParams{
		Gravity:        physics.StandardGravity,
		WalkSpeed:      3,
		Accelerate:     3,
		JumpHeight:     2,
		FallMultiplier: 3,
		LookSpeedX:     50,
		LookSpeedY:     30,
	}
}

func (p FirstPersonParams) Validate() error {
	if err := validateKinematic(p.Gravity, p.WalkSpeed, p.Accelerate, p.JumpHeight, p.FallMultiplier); err != nil {
		return err
	}
	if !finite(p.LookSpeedX) || !finite(p.LookSpeedY) {
		return fmt.Errorf("%w: look speeds must be finite", ErrInvalidParams)
	}
	return nil
}

// OrbitParams tunes OrbitController.
type OrbitParams struct {
	Gravity        float64 `yaml:"gravity"`
	WalkSpeed      float64 `yaml:"walk_speed"`
	Accelerate     float64 `yaml:"accelerate"`
	JumpHeight     float64 `yaml:"jump_height"`
	FallMultiplier float64 `yaml:"fall_multiplier"`
	// RotateSmoothTime is the approximate time in seconds the facing takes
	// to reach the input heading.
	RotateSmoothTime float64 `yaml:"rotate_smooth_time"`
}

func DefaultOrbitParams() OrbitParams {
	return OrbitParams{
		Gravity:          physics.StandardGravity,
		WalkSpeed:        3,
		Accelerate:       3,
		JumpHeight:       2,
		FallMultiplier:   3,
		RotateSmoothTime: 0.3,
	}
}

func (p OrbitParams) Validate() error {
	if err := validateKinematic(p.Gravity, p.WalkSpeed, p.Accelerate, p.JumpHeight, p.FallMultiplier); err != nil {
		return err
	}
	if !(p.RotateSmoothTime > 0) {
		return fmt.Errorf("%w: rotate_smooth_time must be positive, got %v", ErrInvalidParams, p.RotateSmoothTime)
	}
	return nil
}

// FloatingParams tunes FloatingController.
type FloatingParams struct {
	MaxSpeed        float64 `yaml:"max_speed"`
	Acceleration    float64 `yaml:"acceleration"`
	MaxAcceleration float64 `yaml:"max_acceleration"`

	RotationStrength float64 `yaml:"rotation_strength"`
	RotationDamper   float64 `yaml:"rotation_damper"`

	JumpForce      float64 `yaml:"jump_force"`
	FallMultiplier float64 `yaml:"fall_multiplier"`
	Gravity        float64 `yaml:"gravity"`

	EnableStomp bool    `yaml:"enable_stomp"`
	StompForce  float64 `yaml:"stomp_force"`

	RayDir         mgl64.Vec3 `yaml:"ray_dir,flow"`
	RayLength      float64    `yaml:"ray_length"`
	RayStartOffset float64    `yaml:"ray_start_offset"`
	FloatHeight    float64    `yaml:"float_height"`
	SpringStrength float64    `yaml:"spring_strength"`
	SpringDamper   float64    `yaml:"spring_damper"`

	// PlayerLayer is excluded from the ground probe so the ray never hits
	// the controlled body itself.
	PlayerLayer int `yaml:"player_layer"`
}

func DefaultFloatingParams() FloatingParams {
	return FloatingParams{
		MaxSpeed:         6,
		Acceleration:     150,
		MaxAcceleration:  200,
		RotationStrength: 100,
		RotationDamper:   10,
		JumpForce:        20,
		FallMultiplier:   3,
		Gravity:          physics.StandardGravity,
		EnableStomp:      true,
		StompForce:       10,
		RayDir:           physics.Down,
		RayLength:        1.5,
		RayStartOffset:   0.5,
		FloatHeight:      1.3,
		SpringStrength:   500,
		SpringDamper:     50,
		PlayerLayer:      1,
	}
}

func (p FloatingParams) Validate() error {
	nonNegative := []struct {
		name  string
		value float64
	}{
		{"max_speed", p.MaxSpeed},
		{"acceleration", p.Acceleration},
		{"max_acceleration", p.MaxAcceleration},
		{"rotation_strength", p.RotationStrength},
		{"rotation_damper", p.RotationDamper},
		{"jump_force", p.JumpForce},
		{"fall_multiplier", p.FallMultiplier},
		{"stomp_force", p.StompForce},
		{"ray_length", p.RayLength},
		{"ray_start_offset", p.RayStartOffset},
		{"spring_strength", p.SpringStrength},
		{"spring_damper", p.SpringDamper},
	}
	for _, f := range nonNegative {
		if !finite(f.value) || f.value < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number, got %v", ErrInvalidParams, f.name, f.value)
		}
	}
	if !(p.FloatHeight > 0) || !finite(p.FloatHeight) {
		return fmt.Errorf("%w: float_height must be positive, got %v", ErrInvalidParams, p.FloatHeight)
	}
	if !finite(p.Gravity) {
		return fmt.Errorf("%w: gravity must be finite", ErrInvalidParams)
	}
	if p.RayDir.Len() < physics.DirectionEpsilon {
		return fmt.Errorf("%w: ray_dir must be non-zero", ErrInvalidParams)
	}
	if p.PlayerLayer < 0 || p.PlayerLayer > 31 {
		return fmt.Errorf("%w: player_layer must be in [0, 31], got %d", ErrInvalidParams, p.PlayerLayer)
	}
	return nil
}

// probeMask is every layer except the player's own.
func (p FloatingParams) probeMask() LayerMask {
	return AllLayers &^ Layer(p.PlayerLayer)
}

func validateKinematic(gravity, walkSpeed, accelerate, jumpHeight, fallMultiplier float64) error {
	if !finite(gravity) || gravity >= 0 {
		return fmt.Errorf("%w: gravity must be negative, got %v", ErrInvalidParams, gravity)
	}
	if !finite(walkSpeed) || walkSpeed < 0 {
		return fmt.Errorf("%w: walk_speed must be non-negative, got %v", ErrInvalidParams, walkSpeed)
	}
	if !finite(accelerate) || accelerate < 0 {
		return fmt.Errorf("%w: accelerate must be non-negative, got %v", ErrInvalidParams, accelerate)
	}
	if !finite(jumpHeight) || jumpHeight < 0 {
		return fmt.Errorf("%w: jump_height must be non-negative, got %v", ErrInvalidParams, jumpHeight)
	}
	if !finite(fallMultiplier) || fallMultiplier < 0 {
		return fmt.Errorf("%w: fall_multiplier must be non-negative, got %v", ErrInvalidParams, fallMultiplier)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
