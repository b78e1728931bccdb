package event

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
)

// DefaultWorkers bounds how many handlers run at once.
const DefaultWorkers = 64

type HandlerFunc func(raw any)

type Subscription struct {
	ID    uuid.UUID
	Event string
}

type registration struct {
	id      uuid.UUID
	handler HandlerFunc
}

// Bus fans published events out to subscribers on a worker pool. Publish
// never blocks the caller: when the pool is saturated the delivery is
// dropped and logged.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]registration

	pool    *ants.Pool
	pending sync.WaitGroup
	closed  bool
	dropped atomic.Int64
}

func NewBus() *Bus {
	bus, err := NewBusWithWorkers(DefaultWorkers)
	if err != nil {
		// only reachable with a bad size; fall back to one goroutine per delivery
		slog.Warn("Event pool unavailable, delivering on goroutines", "error", err)
		return &Bus{handlers: make(map[string][]registration)}
	}
	return bus
}

func NewBusWithWorkers(workers int) (*Bus, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("event bus workers must be positive, got %d", workers)
	}
	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create event pool: %w", err)
	}
	return &Bus{
		handlers: make(map[string][]registration),
		pool:     pool,
	}, nil
}

func (b *Bus) Subscribe(eventName string, handler HandlerFunc) Subscription {
	sub := Subscription{ID: uuid.New(), Event: eventName}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], registration{id: sub.ID, handler: handler})
	return sub
}

func (b *Bus) Unsubscribe(sub Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	regs := b.handlers[sub.Event]
	for i, reg := range regs {
		if reg.id != sub.ID {
			continue
		}
		b.handlers[sub.Event] = append(regs[:i:i], regs[i+1:]...)
		if len(b.handlers[sub.Event]) == 0 {
			delete(b.handlers, sub.Event)
		}
		return true
	}
	return false
}

func (b *Bus) Publish(eventName string, evt any) {
	// pending.Add must not race with Close's Wait, so the closed check and
	// the Add happen under the read lock Close excludes.
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	regs := make([]registration, len(b.handlers[eventName]))
	copy(regs, b.handlers[eventName])
	b.pending.Add(len(regs))
	b.mu.RUnlock()

	for _, reg := range regs {
		h := reg.handler
		task := func() {
			defer b.pending.Done()
			defer func() {
				if r := recover(); r != nil {
					slog.Error("Event handler panicked", "event", eventName, "panic", r)
				}
			}()
			h(evt)
		}

		if b.pool == nil {
			go task()
			continue
		}
		if err := b.pool.Submit(task); err != nil {
			b.pending.Done()
			b.dropped.Add(1)
			if errors.Is(err, ants.ErrPoolOverload) {
				slog.Warn("Event dropped, handler pool saturated", "event", eventName)
			} else {
				slog.Warn("Event dropped", "event", eventName, "error", err)
			}
		}
	}
}

// Wait blocks until every delivery submitted so far has finished.
func (b *Bus) Wait() {
	b.pending.Wait()
}

func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}

// Close stops accepting events, drains in-flight deliveries and releases the pool.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.pending.Wait()
	if b.pool != nil {
		b.pool.Release()
	}
}
