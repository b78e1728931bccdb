package script

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Versifine/locomotor/internal/input"
	"github.com/Versifine/locomotor/internal/logger"
	"github.com/Versifine/locomotor/internal/sim"
	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// Host is the simulation a scenario drives.
type Host interface {
	Actions() *input.Map
	TurnCamera(yaw, pitch float64)
	Snapshot() sim.Snapshot
}

// A scenario script defines tick(engine, t, frame). It is called once per
// frame before the simulation steps and drives input through engine.
const dispatchScript = `
tick(__engine, __t, __frame)
`

// Scenario runs a tengo script as a frame hook.
type Scenario struct {
	name     string
	compiled *tengo.Compiled
	host     Host
	log      *slog.Logger
	memory   *tengo.Map
	done     bool
}

type Option func(*options)

type options struct {
	maxAllocs int64
	log       *slog.Logger
}

// WithMaxAllocs bounds the objects one tick may allocate. Zero or less
// means no limit.
func WithMaxAllocs(n int64) Option {
	return func(o *options) { o.maxAllocs = n }
}

func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// Load reads and compiles the scenario at path.
func Load(path string, host Host, opts ...Option) (*Scenario, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Compile(path, src, host, opts...)
}

func Compile(name string, src []byte, host Host, opts ...Option) (*Scenario, error) {
	if host == nil {
		return nil, errors.New("script: nil host")
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Component("script")
	}

	s := tengo.NewScript([]byte(string(src) + "\n" + dispatchScript))
	_ = s.Add("__engine", map[string]any{})
	_ = s.Add("__t", 0.0)
	_ = s.Add("__frame", 0)
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	if o.maxAllocs > 0 {
		s.SetMaxAllocs(o.maxAllocs)
	}

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile scenario %s: %w", name, err)
	}
	return &Scenario{
		name:     name,
		compiled: compiled,
		host:     host,
		log:      o.log.With("scenario", name),
		memory:   &tengo.Map{Value: map[string]tengo.Object{}},
	}, nil
}

func (s *Scenario) Name() string {
	return s.name
}

// Done reports whether the script called engine.stop().
func (s *Scenario) Done() bool {
	return s.done
}

// Tick runs the script for one frame. It returns sim.ErrDone once the
// script has called engine.stop().
func (s *Scenario) Tick(frame uint64, elapsed float64) error {
	if s.done {
		return sim.ErrDone
	}
	if err := s.compiled.Set("__engine", s.engine()); err != nil {
		return err
	}
	if err := s.compiled.Set("__t", elapsed); err != nil {
		return err
	}
	if err := s.compiled.Set("__frame", int64(frame)); err != nil {
		return err
	}
	if err := s.compiled.Run(); err != nil {
		return fmt.Errorf("scenario %s frame %d: %w", s.name, frame, err)
	}
	if s.done {
		s.log.Info("Scenario finished", "frame", frame, "t", elapsed)
		return sim.ErrDone
	}
	return nil
}

func (s *Scenario) engine() *tengo.ImmutableMap {
	actions := s.host.Actions()
	values := map[string]tengo.Object{}

	values["move"] = &tengo.UserFunction{Name: "move", Value: func(args ...tengo.Object) (tengo.Object, error) {
		x, y, err := vectorArgs(args)
		if err != nil {
			return nil, err
		}
		performVector(actions.Move, x, y)
		return tengo.UndefinedValue, nil
	}}

	values["look"] = &tengo.UserFunction{Name: "look", Value: func(args ...tengo.Object) (tengo.Object, error) {
		x, y, err := vectorArgs(args)
		if err != nil {
			return nil, err
		}
		performVector(actions.Look, x, y)
		return tengo.UndefinedValue, nil
	}}

	values["press"] = &tengo.UserFunction{Name: "press", Value: func(args ...tengo.Object) (tengo.Object, error) {
		a, err := actionArg(actions, args)
		if err != nil {
			return nil, err
		}
		a.Perform(input.Button(true))
		return tengo.UndefinedValue, nil
	}}

	values["release"] = &tengo.UserFunction{Name: "release", Value: func(args ...tengo.Object) (tengo.Object, error) {
		a, err := actionArg(actions, args)
		if err != nil {
			return nil, err
		}
		a.Cancel()
		return tengo.UndefinedValue, nil
	}}

	values["turn_camera"] = &tengo.UserFunction{Name: "turn_camera", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 || len(args) > 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		yaw, err := floatArg("yaw", args[0])
		if err != nil {
			return nil, err
		}
		pitch := 0.0
		if len(args) == 2 {
			if pitch, err = floatArg("pitch", args[1]); err != nil {
				return nil, err
			}
		}
		s.host.TurnCamera(yaw, pitch)
		return tengo.UndefinedValue, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		s.log.Info(strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	values["state"] = &tengo.UserFunction{Name: "state", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return snapshotObject(s.host.Snapshot()), nil
	}}

	values["get"] = &tengo.UserFunction{Name: "get", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		if v, ok := s.memory.Value[objectAsString(args[0])]; ok {
			return v, nil
		}
		return tengo.UndefinedValue, nil
	}}

	values["set"] = &tengo.UserFunction{Name: "set", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		s.memory.Value[objectAsString(args[0])] = args[1]
		return tengo.UndefinedValue, nil
	}}

	values["stop"] = &tengo.UserFunction{Name: "stop", Value: func(args ...tengo.Object) (tengo.Object, error) {
		s.done = true
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

// performVector sends a performed value, or a cancel for the zero vector.
func performVector(a *input.Action, x, y float64) {
	if x == 0 && y == 0 {
		a.Cancel()
		return
	}
	a.Perform(input.Vector(x, y))
}

func vectorArgs(args []tengo.Object) (float64, float64, error) {
	if len(args) != 2 {
		return 0, 0, tengo.ErrWrongNumArguments
	}
	x, err := floatArg("x", args[0])
	if err != nil {
		return 0, 0, err
	}
	y, err := floatArg("y", args[1])
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func actionArg(actions *input.Map, args []tengo.Object) (*input.Action, error) {
	if len(args) != 1 {
		return nil, tengo.ErrWrongNumArguments
	}
	name, ok := tengo.ToString(args[0])
	if !ok {
		return nil, tengo.ErrInvalidArgumentType{Name: "action", Expected: "string", Found: args[0].TypeName()}
	}
	return actions.Lookup(strings.TrimSpace(name))
}

func floatArg(name string, obj tengo.Object) (float64, error) {
	v, ok := tengo.ToFloat64(obj)
	if !ok {
		return 0, tengo.ErrInvalidArgumentType{Name: name, Expected: "float", Found: obj.TypeName()}
	}
	return v, nil
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func snapshotObject(snap sim.Snapshot) tengo.Object {
	float := func(v float64) tengo.Object { return &tengo.Float{Value: v} }
	grounded := tengo.FalseValue
	if snap.Grounded {
		grounded = tengo.TrueValue
	}
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"frame":        &tengo.Int{Value: int64(snap.Frame)},
		"t":            float(snap.Elapsed),
		"mode":         &tengo.String{Value: snap.Mode},
		"x":            float(snap.Position.X()),
		"y":            float(snap.Position.Y()),
		"z":            float(snap.Position.Z()),
		"vx":           float(snap.Velocity.X()),
		"vy":           float(snap.Velocity.Y()),
		"vz":           float(snap.Velocity.Z()),
		"speed":        float(snap.Speed()),
		"yaw":          float(snap.Yaw),
		"camera_yaw":   float(snap.CameraYaw),
		"camera_pitch": float(snap.CameraPitch),
		"grounded":     grounded,
	}}
}
