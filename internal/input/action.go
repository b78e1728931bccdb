package input

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

type HandlerFunc func(ctx Context)

// Subscription identifies a registered handler so it can be removed again.
type Subscription struct {
	ID     uuid.UUID
	Action string
	Phase  Phase
}

type registration struct {
	id      uuid.UUID
	handler HandlerFunc
}

// Action is a named input binding. Handlers run synchronously on the
// goroutine that triggers the action, in registration order.
type Action struct {
	name string

	mu       sync.RWMutex
	handlers map[Phase][]registration
}

func NewAction(name string) *Action {
	return &Action{
		name:     name,
		handlers: make(map[Phase][]registration),
	}
}

func (a *Action) Name() string {
	return a.name
}

func (a *Action) Subscribe(phase Phase, handler HandlerFunc) Subscription {
	sub := Subscription{ID: uuid.New(), Action: a.name, Phase: phase}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handlers[phase] = append(a.handlers[phase], registration{id: sub.ID, handler: handler})
	return sub
}

// Unsubscribe removes a handler. Unknown subscriptions are ignored.
func (a *Action) Unsubscribe(sub Subscription) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	regs := a.handlers[sub.Phase]
	for i, r := range regs {
		if r.id != sub.ID {
			continue
		}
		a.handlers[sub.Phase] = append(regs[:i:i], regs[i+1:]...)
		return true
	}
	return false
}

func (a *Action) HandlerCount(phase Phase) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.handlers[phase])
}

func (a *Action) Trigger(phase Phase, value Value) {
	a.mu.RLock()
	regs := make([]registration, len(a.handlers[phase]))
	copy(regs, a.handlers[phase])
	a.mu.RUnlock()

	ctx := Context{Action: a.name, Phase: phase, Value: value}
	for _, r := range regs {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("Input handler panicked", "action", a.name, "phase", phase.String(), "panic", rec)
				}
			}()
			r.handler(ctx)
		}()
	}
}

func (a *Action) Perform(value Value) {
	a.Trigger(Performed, value)
}

func (a *Action) Cancel() {
	a.Trigger(Canceled, Value{})
}
