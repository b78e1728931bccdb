package input

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
)

// State is the latest value of every action as seen by a controller.
type State struct {
	Move mgl64.Vec2
	Look mgl64.Vec2
	Jump bool
}

// Buffer holds a State snapshot that input callbacks replace and the
// simulation reads. Writers copy, modify and swap, so a reader on another
// goroutine never observes a half-written State.
type Buffer struct {
	current atomic.Pointer[State]
}

func NewBuffer() *Buffer {
	b := &Buffer{}
	b.current.Store(&State{})
	return b
}

func (b *Buffer) Load() State {
	if s := b.current.Load(); s != nil {
		return *s
	}
	return State{}
}

func (b *Buffer) Update(fn func(s *State)) {
	for {
		old := b.current.Load()
		next := State{}
		if old != nil {
			next = *old
		}
		fn(&next)
		if b.current.CompareAndSwap(old, &next) {
			return
		}
	}
}

func (b *Buffer) Reset() {
	b.current.Store(&State{})
}

// Handlers returning callbacks that write one field of the buffer.

func (b *Buffer) MoveHandler() HandlerFunc {
	return func(ctx Context) {
		v := ctx.ReadVector2()
		b.Update(func(s *State) { s.Move = v })
	}
}

func (b *Buffer) LookHandler() HandlerFunc {
	return func(ctx Context) {
		v := ctx.ReadVector2()
		b.Update(func(s *State) { s.Look = v })
	}
}

func (b *Buffer) JumpHandler() HandlerFunc {
	return func(ctx Context) {
		pressed := ctx.ReadButton()
		b.Update(func(s *State) { s.Jump = pressed })
	}
}
