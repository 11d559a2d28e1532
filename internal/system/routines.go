package system

import (
	"time"

	"github.com/l1jgo/tickpoll/internal/core/routine"
	coresys "github.com/l1jgo/tickpoll/internal/core/system"
)

// RoutineSystem resumes the routines parked on one stage. One instance is
// registered per routine stage.
type RoutineSystem struct {
	sched *routine.Scheduler
	stage coresys.Stage
}

func NewRoutineSystem(sched *routine.Scheduler, stage coresys.Stage) *RoutineSystem {
	return &RoutineSystem{sched: sched, stage: stage}
}

func (s *RoutineSystem) Stage() coresys.Stage { return s.stage }

func (s *RoutineSystem) Update(dt time.Duration) {
	s.sched.Tick(s.stage, dt)
}
