package input

// Binding collects the subscriptions one consumer registers so they are
// released as a unit.
type Binding struct {
	entries []bindingEntry
}

type bindingEntry struct {
	action *Action
	sub    Subscription
}

// On routes both performed and canceled events of action to handler.
func (b *Binding) On(action *Action, handler HandlerFunc) {
	if action == nil || handler == nil {
		return
	}
	for _, phase := range [...]Phase{Performed, Canceled} {
		b.entries = append(b.entries, bindingEntry{action: action, sub: action.Subscribe(phase, handler)})
	}
}

func (b *Binding) Active() bool {
	return len(b.entries) > 0
}

// Release unsubscribes everything and returns how many handlers were removed.
func (b *Binding) Release() int {
	removed := 0
	for _, e := range b.entries {
		if e.action.Unsubscribe(e.sub) {
			removed++
		}
	}
	b.entries = nil
	return removed
}
