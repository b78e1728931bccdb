package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Versifine/locomotor/internal/config"
	"github.com/Versifine/locomotor/internal/controller"
	"github.com/Versifine/locomotor/internal/event"
	"github.com/Versifine/locomotor/internal/input"
	"github.com/Versifine/locomotor/internal/logger"
	"github.com/Versifine/locomotor/internal/physics"
	"github.com/Versifine/locomotor/internal/scene"
	"github.com/go-gl/mathgl/mgl64"
)

const commandQueueSize = 64

var (
	// ErrDone is returned by a FrameHook to end the run without error.
	ErrDone       = errors.New("sim: done")
	ErrNotStarted = errors.New("sim: runner not started")
	ErrRunning    = errors.New("sim: runner already started")
)

// FrameHook is called at the start of every frame, before any stepping,
// with the index of the frame about to run and the simulated time so far.
type FrameHook interface {
	Tick(frame uint64, elapsed float64) error
}

type FrameHookFunc func(frame uint64, elapsed float64) error

func (f FrameHookFunc) Tick(frame uint64, elapsed float64) error {
	return f(frame, elapsed)
}

// Controller is the part every controller shares.
type Controller interface {
	Name() string
	Start() error
	Stop() error
	Started() bool
	Input() input.State
}

type fixedController interface {
	FixedUpdate(dt float64)
}

type frameController interface {
	Update(dt float64)
	LateUpdate(dt float64)
}

type Option func(*Runner)

func WithLogger(log *slog.Logger) Option {
	return func(r *Runner) { r.log = log }
}

func WithPublisher(p controller.Publisher) Option {
	return func(r *Runner) { r.events = p }
}

// Runner owns the scene, the active controller and the frame loop. Frame
// and everything it touches run on one goroutine; other goroutines reach
// the simulation through the input actions, Do and Snapshot.
type Runner struct {
	mode   string
	tuning config.Config
	log    *slog.Logger
	events controller.Publisher

	scene     *scene.Scene
	camera    *scene.Camera
	pivot     *scene.Pivot
	character *scene.Character
	player    *scene.RigidBody
	actions   *input.Map
	clock     *Clock

	ctrl     Controller
	fixed    fixedController
	perFrame frameController

	// look drives the orbit camera in the third-person modes.
	look        *input.Buffer
	lookBinding input.Binding
	sensitivity float64

	frame    uint64
	elapsed  float64
	grounded bool
	hooks    []FrameHook
	commands chan func(*Runner)
	snapshot atomic.Pointer[Snapshot]
}

// New builds the scene and the controller selected by cfg.Sim.Mode. The
// runner is idle until Start.
func New(cfg *config.Config, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("sim: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Runner{
		mode:        cfg.Sim.Mode,
		tuning:      *cfg,
		actions:     input.NewMap(),
		clock:       NewClock(cfg.Sim.FixedTimestep, cfg.Sim.MaxSubsteps),
		look:        input.NewBuffer(),
		sensitivity: cfg.Sim.Camera.Sensitivity,
		commands:    make(chan func(*Runner), commandQueueSize),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Component("sim")
	}

	sc, err := scene.Build(cfg.Scene)
	if err != nil {
		return nil, fmt.Errorf("build scene: %w", err)
	}
	r.scene = sc
	r.camera = scene.NewCamera(cfg.Sim.Camera.Yaw, cfg.Sim.Camera.Pitch)
	r.camera.Distance = cfg.Sim.Camera.Distance

	ctrlOpts := []controller.Option{controller.WithLogger(r.log)}
	if r.events != nil {
		ctrlOpts = append(ctrlOpts, controller.WithPublisher(r.events))
	}

	switch r.mode {
	case config.ModeFirstPerson:
		r.character = sc.SpawnCharacter(cfg.Scene)
		r.pivot = scene.NewPivot()
		c, err := controller.NewMoveController(cfg.FirstPerson, r.character, r.pivot, r.actions, ctrlOpts...)
		if err != nil {
			return nil, err
		}
		r.ctrl, r.perFrame = c, c
		r.camera.Distance = 0
	case config.ModeOrbit:
		r.character = sc.SpawnCharacter(cfg.Scene)
		c, err := controller.NewOrbitController(cfg.Orbit, r.character, r.camera, r.actions, ctrlOpts...)
		if err != nil {
			return nil, err
		}
		r.ctrl, r.perFrame = c, c
	case config.ModeFloating:
		r.player = sc.SpawnPlayer(cfg.Scene, cfg.Floating.FloatHeight)
		c, err := controller.NewFloatingController(cfg.Floating, r.player, sc, r.camera, r.actions, ctrlOpts...)
		if err != nil {
			return nil, err
		}
		r.ctrl, r.fixed = c, c
	}

	r.grounded = r.bodyGrounded()
	r.followCamera()
	r.storeSnapshot()
	return r, nil
}

// Start activates the controller and, in the third-person modes, the
// camera's look binding.
func (r *Runner) Start() error {
	if r.ctrl.Started() {
		return ErrRunning
	}
	if err := r.ctrl.Start(); err != nil {
		return err
	}
	if r.mode != config.ModeFirstPerson {
		r.lookBinding.On(r.actions.Look, r.look.LookHandler())
	}
	r.log.Info("Simulation started", "mode", r.mode, "controller", r.ctrl.Name(), "step", r.clock.Step())
	return nil
}

func (r *Runner) Stop() error {
	if !r.ctrl.Started() {
		return ErrNotStarted
	}
	r.lookBinding.Release()
	r.look.Reset()
	r.log.Info("Simulation stopped", "frames", r.frame, "elapsed", r.elapsed)
	return r.ctrl.Stop()
}

func (r *Runner) Started() bool {
	return r.ctrl.Started()
}

func (r *Runner) AddHook(h FrameHook) {
	r.hooks = append(r.hooks, h)
}

// Do queues fn to run on the simulation goroutine at the next frame
// boundary. It reports false when the queue is full.
func (r *Runner) Do(fn func(*Runner)) bool {
	select {
	case r.commands <- fn:
		return true
	default:
		r.log.Warn("Command queue full, dropping command")
		return false
	}
}

// Frame advances the simulation by dt seconds of wall time: due fixed
// steps first, then the per-frame controller updates.
func (r *Runner) Frame(dt float64) error {
	if !r.ctrl.Started() {
		return ErrNotStarted
	}
	r.drainCommands()

	for _, h := range r.hooks {
		if err := h.Tick(r.frame, r.elapsed); err != nil {
			return err
		}
	}
	if dt <= 0 {
		return nil
	}

	r.scene.BeginFrame(dt)
	step := r.clock.Step()
	for n := r.clock.Advance(dt); n > 0; n-- {
		if r.fixed != nil {
			r.fixed.FixedUpdate(step)
		}
		r.scene.Step(step)
	}

	r.orbitCamera(dt)
	if r.perFrame != nil {
		r.perFrame.Update(dt)
		r.perFrame.LateUpdate(dt)
	}
	r.followCamera()
	r.checkGround()

	r.frame++
	r.elapsed += dt
	r.storeSnapshot()
	return nil
}

// RunFrames runs n frames of one fixed frame time each, as fast as
// possible. A hook returning ErrDone ends the run early without error.
func (r *Runner) RunFrames(n int) error {
	dt := 1 / r.tuning.Sim.FrameRate
	for i := 0; i < n; i++ {
		if err := r.Frame(dt); err != nil {
			if errors.Is(err, ErrDone) {
				return nil
			}
			return err
		}
	}
	return nil
}

// Run drives Frame from a ticker at the configured frame rate, feeding it
// the measured wall time, until ctx is canceled or a hook ends the run.
func (r *Runner) Run(ctx context.Context) error {
	if !r.ctrl.Started() {
		return ErrNotStarted
	}
	interval := time.Duration(float64(time.Second) / r.tuning.Sim.FrameRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if err := r.Frame(dt); err != nil {
				if errors.Is(err, ErrDone) {
					r.log.Info("Run finished", "frames", r.frame)
					return nil
				}
				return err
			}
		}
	}
}

// ApplyTuning swaps the controller tuning for the values in cfg. Only the
// section of the active mode reaches the controller; the other sections are
// kept so a later mode change starts from them.
func (r *Runner) ApplyTuning(path string, cfg *config.Config) error {
	if err := cfg.ValidateTuning(); err != nil {
		return err
	}
	var err error
	switch c := r.ctrl.(type) {
	case *controller.MoveController:
		err = c.SetParams(cfg.FirstPerson)
	case *controller.OrbitController:
		err = c.SetParams(cfg.Orbit)
	case *controller.FloatingController:
		err = c.SetParams(cfg.Floating)
	}
	if err != nil {
		return err
	}
	r.tuning.FirstPerson = cfg.FirstPerson
	r.tuning.Orbit = cfg.Orbit
	r.tuning.Floating = cfg.Floating
	r.sensitivity = cfg.Sim.Camera.Sensitivity

	r.log.Info("Tuning applied", "path", path, "mode", r.mode)
	if r.events != nil {
		r.events.Publish(event.EventTuningReloaded, &event.TuningReloadedEvent{
			Path:     path,
			Sections: []string{config.ModeFirstPerson, config.ModeOrbit, config.ModeFloating},
		})
	}
	return nil
}

// Teleport moves the player body to pos and clears its motion.
func (r *Runner) Teleport(pos mgl64.Vec3) {
	if r.character != nil {
		r.character.Teleport(pos)
	}
	if r.player != nil {
		r.player.Teleport(pos)
	}
	r.grounded = r.bodyGrounded()
	r.followCamera()
	r.storeSnapshot()
}

// TurnCamera orbits the third-person camera by the given degrees.
func (r *Runner) TurnCamera(yaw, pitch float64) {
	if r.mode == config.ModeFirstPerson {
		return
	}
	r.camera.Turn(yaw, pitch)
}

func (r *Runner) Mode() string                { return r.mode }
func (r *Runner) Actions() *input.Map         { return r.actions }
func (r *Runner) Scene() *scene.Scene         { return r.scene }
func (r *Runner) Camera() *scene.Camera       { return r.camera }
func (r *Runner) Pivot() *scene.Pivot         { return r.pivot }
func (r *Runner) Character() *scene.Character { return r.character }
func (r *Runner) Player() *scene.RigidBody    { return r.player }
func (r *Runner) Active() Controller {
	return r.ctrl
}

// Snapshot returns the state published at the end of the last frame. It
// is safe to call from any goroutine.
func (r *Runner) Snapshot() Snapshot {
	if s := r.snapshot.Load(); s != nil {
		return *s
	}
	return Snapshot{}
}

func (r *Runner) drainCommands() {
	for {
		select {
		case fn := <-r.commands:
			fn(r)
		default:
			return
		}
	}
}

func (r *Runner) orbitCamera(dt float64) {
	if r.mode == config.ModeFirstPerson {
		return
	}
	look := r.look.Load().Look
	if look.X() == 0 && look.Y() == 0 {
		return
	}
	r.camera.Turn(look.X()*r.sensitivity*dt, -look.Y()*r.sensitivity*dt)
}

func (r *Runner) followCamera() {
	pos, rot := r.bodyPose()
	if r.mode != config.ModeFirstPerson {
		r.camera.Follow(pos)
		return
	}
	eye := pos.Add(physics.Up.Mul(r.tuning.Scene.Character.Height * eyeHeight))
	r.camera.Follow(eye)
	if c, ok := r.ctrl.(*controller.MoveController); ok {
		r.camera.Aim(physics.YawOf(rot), c.Pitch())
	}
}

// eyeHeight places the first-person eye as a fraction of character height.
const eyeHeight = 0.9

func (r *Runner) checkGround() {
	now := r.bodyGrounded()
	if now == r.grounded {
		return
	}
	r.grounded = now

	pos, _ := r.bodyPose()
	vel := r.bodyVelocity()
	name := event.EventLeftGround
	if now {
		name = event.EventLanded
	}
	r.log.Debug("Ground transition", "grounded", now, "pos", pos)
	if r.events != nil {
		r.events.Publish(name, &event.GroundEvent{
			Controller: r.ctrl.Name(),
			Grounded:   now,
			Position:   pos,
			Velocity:   vel,
		})
	}
}

func (r *Runner) bodyGrounded() bool {
	if c, ok := r.ctrl.(*controller.FloatingController); ok {
		return c.Grounded()
	}
	if r.character != nil {
		return r.character.IsGrounded()
	}
	return false
}

func (r *Runner) bodyPose() (mgl64.Vec3, mgl64.Quat) {
	if r.character != nil {
		return r.character.Position(), r.character.Rotation()
	}
	return r.player.Position(), r.player.Rotation()
}

func (r *Runner) bodyVelocity() mgl64.Vec3 {
	if r.character != nil {
		return r.character.Velocity()
	}
	return r.player.Velocity()
}
