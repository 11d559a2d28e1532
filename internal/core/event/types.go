package event

import (
	"time"

	"github.com/l1jgo/tickpoll/internal/core/ecs"
)

// Routine lifecycle events emitted by the scheduler.

type RoutineFinished struct {
	RoutineID uint64
	Owner     ecs.EntityID
	Name      string
	Steps     int
}

// RoutineFaulted is emitted when a predicate or action panics. The faulting
// routine is already stopped; its owner and sibling routines keep running.
type RoutineFaulted struct {
	RoutineID uint64
	Owner     ecs.EntityID
	Name      string
	Err       error
	At        time.Duration // scheduler clock
}

type OwnerDestroyed struct {
	Owner     ecs.EntityID
	Cancelled int // routines cancelled with it
}
