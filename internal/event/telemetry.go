package event

import "log/slog"

// Names lists every telemetry event the simulation publishes.
var Names = []string{
	EventJumped,
	EventLanded,
	EventLeftGround,
	EventStomp,
	EventTuningReloaded,
}

// LogHandler writes each telemetry event to log at debug level.
func LogHandler(log *slog.Logger) HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	return func(raw any) {
		switch evt := raw.(type) {
		case *JumpedEvent:
			log.Debug("Jumped", "controller", evt.Controller, "speed", evt.Speed, "pos", evt.Position)
		case *GroundEvent:
			if evt.Grounded {
				log.Debug("Landed", "controller", evt.Controller, "pos", evt.Position, "vel", evt.Velocity)
			} else {
				log.Debug("Left ground", "controller", evt.Controller, "pos", evt.Position, "vel", evt.Velocity)
			}
		case *StompEvent:
			log.Debug("Stomp", "controller", evt.Controller, "point", evt.Point, "force", evt.Force)
		case *TuningReloadedEvent:
			log.Info("Tuning reloaded", "path", evt.Path, "sections", evt.Sections)
		default:
			log.Error("Invalid event type for telemetry handler")
		}
	}
}

// SubscribeAll routes every telemetry event to handler.
func (b *Bus) SubscribeAll(handler HandlerFunc) []Subscription {
	subs := make([]Subscription, 0, len(Names))
	for _, name := range Names {
		subs = append(subs, b.Subscribe(name, handler))
	}
	return subs
}
