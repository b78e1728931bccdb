package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/Versifine/locomotor/internal/controller"
	"github.com/Versifine/locomotor/internal/scene"
	"gopkg.in/yaml.v3"
)

// ErrEmptyFile is returned by LoadTuning for a file with no content, as
// seen mid-save when an editor truncates before writing.
var ErrEmptyFile = errors.New("config file is empty")

const (
	ModeFirstPerson = "first_person"
	ModeOrbit       = "orbit"
	ModeFloating    = "floating"
)

type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Sim     SimConfig     `yaml:"sim"`
	Events  EventsConfig  `yaml:"events"`
	Script  ScriptConfig  `yaml:"script"`
	Scene   scene.Layout  `yaml:"scene"`

	FirstPerson controller.FirstPersonParams `yaml:"first_person"`
	Orbit       controller.OrbitParams       `yaml:"orbit"`
	Floating    controller.FloatingParams    `yaml:"floating"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type SimConfig struct {
	Mode string `yaml:"mode"`
	// FixedTimestep is the physics step in seconds.
	FixedTimestep float64 `yaml:"fixed_timestep"`
	// FrameRate is the headless frame loop rate in Hz.
	FrameRate   float64      `yaml:"frame_rate"`
	MaxSubsteps int          `yaml:"max_substeps"`
	Camera      CameraConfig `yaml:"camera"`
	// Watch reloads tuning when the config file changes.
	Watch bool `yaml:"watch"`
}

type CameraConfig struct {
	Yaw      float64 `yaml:"yaw"`
	Pitch    float64 `yaml:"pitch"`
	Distance float64 `yaml:"distance"`
	// Sensitivity turns look input into camera orbit for the third-person
	// modes, in degrees per second per unit of input.
	Sensitivity float64 `yaml:"sensitivity"`
}

type EventsConfig struct {
	Workers int  `yaml:"workers"`
	Log     bool `yaml:"log"`
}

type ScriptConfig struct {
	Path string `yaml:"path"`
	// MaxAllocs bounds the objects a scenario may allocate per call.
	MaxAllocs int64 `yaml:"max_allocs"`
}

func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Sim: SimConfig{
			Mode:          ModeFirstPerson,
			FixedTimestep: 0.02,
			FrameRate:     60,
			MaxSubsteps:   8,
			Camera: CameraConfig{
				Pitch:       15,
				Distance:    scene.DefaultCameraDistance,
				Sensitivity: 120,
			},
		},
		Events:      EventsConfig{Workers: 16},
		Script:      ScriptConfig{MaxAllocs: 10000},
		Scene:       scene.DefaultLayout(),
		FirstPerson: controller.DefaultFirstPersonParams(),
		Orbit:       controller.DefaultOrbitParams(),
		Floating:    controller.DefaultFloatingParams(),
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadValid is Load followed by Validate.
func LoadValid(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadTuning reads path for a hot reload. Unlike Load it refuses an empty
// file rather than falling back to the defaults, and it checks the tuning
// sections.
func LoadTuning(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("config %s: %w", path, ErrEmptyFile)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateTuning(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Sim.Mode {
	case ModeFirstPerson, ModeOrbit, ModeFloating:
	default:
		return fmt.Errorf("sim.mode must be %s, %s or %s, got %q", ModeFirstPerson, ModeOrbit, ModeFloating, c.Sim.Mode)
	}
	if !(c.Sim.FixedTimestep > 0) {
		return fmt.Errorf("sim.fixed_timestep must be positive, got %v", c.Sim.FixedTimestep)
	}
	if !(c.Sim.FrameRate > 0) {
		return fmt.Errorf("sim.frame_rate must be positive, got %v", c.Sim.FrameRate)
	}
	if c.Sim.MaxSubsteps <= 0 {
		return fmt.Errorf("sim.max_substeps must be positive, got %d", c.Sim.MaxSubsteps)
	}
	if c.Sim.Camera.Distance < 0 {
		return fmt.Errorf("sim.camera.distance must not be negative, got %v", c.Sim.Camera.Distance)
	}
	if c.Events.Workers <= 0 {
		return fmt.Errorf("events.workers must be positive, got %d", c.Events.Workers)
	}
	if err := c.Scene.Validate(); err != nil {
		return err
	}
	return c.ValidateTuning()
}

// ValidateTuning checks only the sections that can be reloaded while the
// simulation runs.
func (c *Config) ValidateTuning() error {
	if err := c.FirstPerson.Validate(); err != nil {
		return fmt.Errorf("first_person: %w", err)
	}
	if err := c.Orbit.Validate(); err != nil {
		return fmt.Errorf("orbit: %w", err)
	}
	if err := c.Floating.Validate(); err != nil {
		return fmt.Errorf("floating: %w", err)
	}
	return nil
}
