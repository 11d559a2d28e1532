package system

import (
	"time"

	"github.com/l1jgo/tickpoll/internal/core/event"
	coresys "github.com/l1jgo/tickpoll/internal/core/system"
)

// EventDispatchSystem delivers last frame's events. Registered on Update
// ahead of the Update RoutineSystem so handlers run before routines resume.
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Stage() coresys.Stage { return coresys.StageUpdate }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
