package routine

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/l1jgo/tickpoll/internal/core/ecs"
	"github.com/l1jgo/tickpoll/internal/core/event"
	"github.com/l1jgo/tickpoll/internal/core/system"
	"go.uber.org/zap"
)

// ErrOwnerNotAlive is returned when starting a routine on a destroyed or
// never-created entity.
var ErrOwnerNotAlive = errors.New("routine: owner is not alive")

// State of a scheduled routine.
type State uint8

const (
	StateRunning State = iota
	StateDone
	StateCancelled
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	case StateFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

type task struct {
	id      uint64
	owner   ecs.EntityID
	name    string
	routine Routine
	state   State
	wake    time.Duration
	steps   int
}

// Scheduler owns every suspended routine and resumes them from the frame
// loop. Single-goroutine access only.
type Scheduler struct {
	world  *ecs.World
	bus    *event.Bus
	log    *zap.Logger
	nextID uint64
	now    time.Duration
	parked map[system.Stage][]*task
	timers []*task
	owned  map[ecs.EntityID][]*task
	live   int
}

// NewScheduler creates a scheduler bound to world. It registers itself with
// the world's registry so that destroying an entity cancels its routines.
// bus may be nil.
func NewScheduler(world *ecs.World, bus *event.Bus, log *zap.Logger) *Scheduler {
	s := &Scheduler{
		world:  world,
		bus:    bus,
		log:    log,
		parked: make(map[system.Stage][]*task, len(system.RoutineStages)),
		owned:  make(map[ecs.EntityID][]*task),
	}
	world.Registry().Register(s)
	return s
}

// Now returns the scheduler clock: the sum of Update tick durations.
func (s *Scheduler) Now() time.Duration { return s.now }

// Len returns the number of routines still running.
func (s *Scheduler) Len() int { return s.live }

// Start runs r's first step immediately, then parks it according to the
// returned Resume.
func (s *Scheduler) Start(owner ecs.EntityID, r Routine) (*Handle, error) {
	if !s.world.Alive(owner) {
		return nil, ErrOwnerNotAlive
	}
	s.nextID++
	t := &task{
		id:      s.nextID,
		owner:   owner,
		name:    routineName(r),
		routine: r,
	}
	s.owned[owner] = append(s.owned[owner], t)
	s.live++
	s.log.Debug("routine started",
		zap.Uint64("id", t.id),
		zap.String("name", t.name),
		zap.Uint64("owner", uint64(owner)),
	)
	s.step(t)
	return &Handle{t: t, s: s}, nil
}

// Tick resumes every routine parked on stage. Update ticks advance the clock
// by dt and release due timers first. Routines that park on the same stage
// during this call, including ones just woken by a timer, resume on the next
// tick, not this one.
func (s *Scheduler) Tick(stage system.Stage, dt time.Duration) {
	queue := s.parked[stage]
	s.parked[stage] = nil
	if stage == system.StageUpdate {
		s.now += dt
		s.fireTimers()
	}
	for _, t := range queue {
		s.resume(t)
	}
}

func (s *Scheduler) fireTimers() {
	if len(s.timers) == 0 {
		return
	}
	var due []*task
	pending := s.timers[:0:0]
	for _, t := range s.timers {
		switch {
		case t.state != StateRunning:
		case t.wake <= s.now:
			due = append(due, t)
		default:
			pending = append(pending, t)
		}
	}
	s.timers = pending
	for _, t := range due {
		s.resume(t)
	}
}

func (s *Scheduler) resume(t *task) {
	if t.state != StateRunning {
		return
	}
	if !s.world.Alive(t.owner) {
		s.finish(t, StateCancelled)
		return
	}
	s.step(t)
}

func (s *Scheduler) step(t *task) {
	res, err := s.safeStep(t)
	t.steps++
	if t.state != StateRunning {
		// cancelled from inside its own step (handle or owner destroyed)
		return
	}
	if err != nil {
		s.finish(t, StateFaulted)
		s.log.Warn("routine faulted",
			zap.Uint64("id", t.id),
			zap.String("name", t.name),
			zap.Uint64("owner", uint64(t.owner)),
			zap.Error(err),
		)
		if s.bus != nil {
			event.Emit(s.bus, event.RoutineFaulted{
				RoutineID: t.id,
				Owner:     t.owner,
				Name:      t.name,
				Err:       err,
				At:        s.now,
			})
		}
		return
	}
	s.park(t, res)
}

func (s *Scheduler) safeStep(t *task) (res Resume, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("routine %d (%s) panicked: %w", t.id, t.name, e)
			} else {
				err = fmt.Errorf("routine %d (%s) panicked: %v", t.id, t.name, r)
			}
		}
	}()
	return t.routine.Step(), nil
}

func (s *Scheduler) park(t *task, res Resume) {
	switch res.kind {
	case resumeDone:
		s.finish(t, StateDone)
		s.log.Debug("routine finished", zap.Uint64("id", t.id), zap.Int("steps", t.steps))
		if s.bus != nil {
			event.Emit(s.bus, event.RoutineFinished{
				RoutineID: t.id,
				Owner:     t.owner,
				Name:      t.name,
				Steps:     t.steps,
			})
		}
	case resumeAfter:
		t.wake = wakeAt(s.now, res.delay)
		s.timers = append(s.timers, t)
	default:
		s.parked[res.stage] = append(s.parked[res.stage], t)
	}
}

// wakeAt saturates instead of wrapping for delays near the Duration range.
func wakeAt(now, delay time.Duration) time.Duration {
	if delay > math.MaxInt64-now {
		return math.MaxInt64
	}
	return now + delay
}

// finish moves t out of the running state. Queue entries are dropped lazily.
func (s *Scheduler) finish(t *task, st State) {
	if t.state != StateRunning {
		return
	}
	t.state = st
	s.live--
	tasks := s.owned[t.owner]
	for i, o := range tasks {
		if o == t {
			tasks = append(tasks[:i], tasks[i+1:]...)
			break
		}
	}
	if len(tasks) == 0 {
		delete(s.owned, t.owner)
	} else {
		s.owned[t.owner] = tasks
	}
}

// StopAll cancels every routine hosted by owner and returns how many were
// running. The owner itself stays alive.
func (s *Scheduler) StopAll(owner ecs.EntityID) int {
	tasks := append([]*task(nil), s.owned[owner]...)
	for _, t := range tasks {
		s.finish(t, StateCancelled)
	}
	return len(tasks)
}

// Remove implements ecs.Removable: an entity's routines die with it.
func (s *Scheduler) Remove(owner ecs.EntityID) {
	n := s.StopAll(owner)
	if n > 0 {
		s.log.Debug("owner destroyed, routines cancelled",
			zap.Uint64("owner", uint64(owner)),
			zap.Int("cancelled", n),
		)
	}
	if s.bus != nil {
		event.Emit(s.bus, event.OwnerDestroyed{Owner: owner, Cancelled: n})
	}
}

func routineName(r Routine) string {
	if n, ok := r.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", r)
}

// Handle refers to one started routine.
type Handle struct {
	t *task
	s *Scheduler
}

func (h *Handle) ID() uint64          { return h.t.id }
func (h *Handle) Owner() ecs.EntityID { return h.t.owner }
func (h *Handle) Name() string        { return h.t.name }
func (h *Handle) State() State        { return h.t.state }

// Steps returns how many times the routine has been stepped.
func (h *Handle) Steps() int { return h.t.steps }

// Done reports whether the routine is no longer running for any reason.
func (h *Handle) Done() bool { return h.t.state != StateRunning }

// Cancel stops the routine. Cancelling a finished routine is a no-op.
func (h *Handle) Cancel() {
	h.s.finish(h.t, StateCancelled)
}
