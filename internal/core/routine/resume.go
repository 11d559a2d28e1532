package routine

import (
	"fmt"
	"time"

	"github.com/l1jgo/tickpoll/internal/core/system"
	"github.com/l1jgo/tickpoll/internal/lazy"
)

type resumeKind uint8

const (
	resumeNextTick resumeKind = iota
	resumeAfter
	resumeDone
)

// Resume is returned by every step and tells the scheduler when the routine
// wants to run again.
type Resume struct {
	kind  resumeKind
	stage system.Stage
	delay time.Duration
}

// Shared wait primitives for the non-Update stages, built on first use.
var (
	waitLateUpdate = lazy.New(func() Resume {
		return Resume{kind: resumeNextTick, stage: system.StageLateUpdate}
	})
	waitFixedUpdate = lazy.New(func() Resume {
		return Resume{kind: resumeNextTick, stage: system.StageFixedUpdate}
	})
)

// NextTick suspends until the next tick of stage. Unknown stages fall back to
// Update.
func NextTick(stage system.Stage) Resume {
	switch stage {
	case system.StageLateUpdate:
		return waitLateUpdate.Get()
	case system.StageFixedUpdate:
		return waitFixedUpdate.Get()
	default:
		return Resume{kind: resumeNextTick, stage: system.StageUpdate}
	}
}

// After suspends until at least d of frame time has elapsed. The routine
// resumes on the first Update tick past the deadline.
func After(d time.Duration) Resume {
	if d < 0 {
		d = 0
	}
	return Resume{kind: resumeAfter, stage: system.StageUpdate, delay: d}
}

// Done finishes the routine.
func Done() Resume { return Resume{kind: resumeDone} }

func (r Resume) IsDone() bool         { return r.kind == resumeDone }
func (r Resume) Stage() system.Stage  { return r.stage }
func (r Resume) Delay() time.Duration { return r.delay }

func (r Resume) String() string {
	switch r.kind {
	case resumeDone:
		return "done"
	case resumeAfter:
		return fmt.Sprintf("after(%s)", r.delay)
	default:
		return "next(" + r.stage.String() + ")"
	}
}

// Routine is a suspended unit of work. Step runs until the next suspension
// point and reports when to resume.
type Routine interface {
	Step() Resume
}

// Func adapts a plain function to Routine.
type Func func() Resume

func (f Func) Step() Resume { return f() }

// Named is implemented by routines that want a readable name in logs and events.
type Named interface {
	Name() string
}
