package input

import "fmt"

const (
	ActionMove = "move"
	ActionLook = "look"
	ActionJump = "jump"
)

// Map groups the three actions every controller reads.
type Map struct {
	Move *Action
	Look *Action
	Jump *Action
}

func NewMap() *Map {
	return &Map{
		Move: NewAction(ActionMove),
		Look: NewAction(ActionLook),
		Jump: NewAction(ActionJump),
	}
}

func (m *Map) Lookup(name string) (*Action, error) {
	switch name {
	case ActionMove:
		return m.Move, nil
	case ActionLook:
		return m.Look, nil
	case ActionJump:
		return m.Jump, nil
	default:
		return nil, fmt.Errorf("unknown input action %q", name)
	}
}
