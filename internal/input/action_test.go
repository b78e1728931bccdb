package input

import (
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestActionTriggerDeliversContext(t *testing.T) {
	a := NewAction(ActionMove)
	var got Context
	a.Subscribe(Performed, func(ctx Context) { got = ctx })

	a.Perform(Vector(0.5, -1))

	if got.Action != ActionMove || got.Phase != Performed {
		t.Fatalf("context = %+v, want move/performed", got)
	}
	if got.ReadVector2() != (mgl64.Vec2{0.5, -1}) {
		t.Fatalf("ReadVector2() = %v, want [0.5 -1]", got.ReadVector2())
	}
}

func TestActionPhasesAreIndependent(t *testing.T) {
	a := NewAction(ActionJump)
	var performed, canceled int
	a.Subscribe(Performed, func(Context) { performed++ })
	a.Subscribe(Canceled, func(Context) { canceled++ })

	a.Perform(Button(true))
	a.Perform(Button(true))
	a.Cancel()

	if performed != 2 || canceled != 1 {
		t.Fatalf("performed=%d canceled=%d, want 2 and 1", performed, canceled)
	}
}

func TestActionUnsubscribe(t *testing.T) {
	a := NewAction(ActionLook)
	calls := 0
	sub := a.Subscribe(Performed, func(Context) { calls++ })

	if !a.Unsubscribe(sub) {
		t.Fatalf("Unsubscribe() = false, want true")
	}
	if a.Unsubscribe(sub) {
		t.Fatalf("second Unsubscribe() = true, want false")
	}
	a.Perform(Vector(1, 0))
	if calls != 0 {
		t.Fatalf("handler called %d times after unsubscribe", calls)
	}
}

func TestActionHandlerPanicDoesNotStopOthers(t *testing.T) {
	a := NewAction(ActionJump)
	reached := false
	a.Subscribe(Performed, func(Context) { panic("boom") })
	a.Subscribe(Performed, func(Context) { reached = true })

	a.Perform(Button(true))

	if !reached {
		t.Fatalf("second handler not reached after panic")
	}
}

func TestCanceledReadsZero(t *testing.T) {
	ctx := Context{Phase: Canceled, Value: Value{Vector: mgl64.Vec2{1, 1}, Pressed: true}}
	if ctx.ReadVector2() != (mgl64.Vec2{}) {
		t.Fatalf("canceled ReadVector2() = %v, want zero", ctx.ReadVector2())
	}
	if ctx.ReadButton() {
		t.Fatalf("canceled ReadButton() = true, want false")
	}
}

func TestMapLookup(t *testing.T) {
	m := NewMap()
	for _, name := range []string{ActionMove, ActionLook, ActionJump} {
		a, err := m.Lookup(name)
		if err != nil || a.Name() != name {
			t.Fatalf("Lookup(%q) = %v, %v", name, a, err)
		}
	}
	if _, err := m.Lookup("crouch"); err == nil {
		t.Fatalf("Lookup(crouch) error = nil, want error")
	}
}

func TestBindingReleasesEverything(t *testing.T) {
	m := NewMap()
	buf := NewBuffer()
	var b Binding
	b.On(m.Move, buf.MoveHandler())
	b.On(m.Jump, buf.JumpHandler())

	if !b.Active() {
		t.Fatalf("Active() = false after On")
	}
	if n := b.Release(); n != 4 {
		t.Fatalf("Release() = %d, want 4", n)
	}
	if m.Move.HandlerCount(Performed) != 0 || m.Jump.HandlerCount(Canceled) != 0 {
		t.Fatalf("handlers left after Release")
	}
	if b.Active() {
		t.Fatalf("Active() = true after Release")
	}
}

func TestBufferHandlers(t *testing.T) {
	m := NewMap()
	buf := NewBuffer()
	var b Binding
	b.On(m.Move, buf.MoveHandler())
	b.On(m.Look, buf.LookHandler())
	b.On(m.Jump, buf.JumpHandler())

	m.Move.Perform(Vector(0, 1))
	m.Look.Perform(Vector(2, 3))
	m.Jump.Perform(Button(true))

	s := buf.Load()
	if s.Move != (mgl64.Vec2{0, 1}) || s.Look != (mgl64.Vec2{2, 3}) || !s.Jump {
		t.Fatalf("state = %+v", s)
	}

	m.Move.Cancel()
	m.Jump.Cancel()
	s = buf.Load()
	if s.Move != (mgl64.Vec2{}) || s.Jump {
		t.Fatalf("state after cancel = %+v", s)
	}
	if s.Look != (mgl64.Vec2{2, 3}) {
		t.Fatalf("look changed by unrelated cancel: %v", s.Look)
	}
}

func TestBufferConcurrentWriters(t *testing.T) {
	buf := NewBuffer()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf.Update(func(s *State) { s.Look[0]++ })
		}()
	}
	wg.Wait()

	if got := buf.Load().Look[0]; got != 50 {
		t.Fatalf("look.x = %v, want 50", got)
	}
}
