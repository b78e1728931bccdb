package controller

import (
	"log/slog"

	"github.com/Versifine/locomotor/internal/input"
)

type Option func(*options)

type options struct {
	log    *slog.Logger
	events Publisher
	name   string
}

func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithPublisher sends jump, stomp and similar telemetry to p.
func WithPublisher(p Publisher) Option {
	return func(o *options) { o.events = p }
}

// WithName overrides the controller name used in logs and telemetry.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// base holds what every controller shares: the input subscription
// lifecycle, the per-step input snapshot, logging and telemetry.
type base struct {
	name    string
	actions *input.Map
	input   *input.Buffer
	binding input.Binding
	log     *slog.Logger
	events  Publisher
}

func newBase(defaultName string, actions *input.Map, opts []Option) (base, error) {
	if actions == nil {
		return base{}, ErrNilInput
	}
	o := options{name: defaultName}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.log
	if log == nil {
		log = slog.Default()
	}
	return base{
		name:    o.name,
		actions: actions,
		input:   input.NewBuffer(),
		log:     log.With("controller", o.name),
		events:  o.events,
	}, nil
}

func (b *base) Name() string {
	return b.name
}

// Start subscribes to the action map. Every controller listens to move and
// jump; wantLook adds the look action.
func (b *base) start(wantLook bool) error {
	if b.binding.Active() {
		return ErrAlreadyStarted
	}
	b.binding.On(b.actions.Move, b.input.MoveHandler())
	b.binding.On(b.actions.Jump, b.input.JumpHandler())
	if wantLook {
		b.binding.On(b.actions.Look, b.input.LookHandler())
	}
	b.log.Debug("Controller started")
	return nil
}

// stop releases every subscription and forgets held input so a key that
// was down at deactivation does not stay pressed.
func (b *base) stop() error {
	if !b.binding.Active() {
		return ErrNotStarted
	}
	removed := b.binding.Release()
	b.input.Reset()
	b.log.Debug("Controller stopped", "handlers", removed)
	return nil
}

func (b *base) Started() bool {
	return b.binding.Active()
}

// Input returns the snapshot the next step will read.
func (b *base) Input() input.State {
	return b.input.Load()
}

func (b *base) publish(eventName string, evt any) {
	if b.events != nil {
		b.events.Publish(eventName, evt)
	}
}
