package host

import (
	"context"
	"time"

	"github.com/l1jgo/tickpoll/internal/behaviour"
	"github.com/l1jgo/tickpoll/internal/config"
	"github.com/l1jgo/tickpoll/internal/core/ecs"
	"github.com/l1jgo/tickpoll/internal/core/event"
	"github.com/l1jgo/tickpoll/internal/core/routine"
	coresys "github.com/l1jgo/tickpoll/internal/core/system"
	"github.com/l1jgo/tickpoll/internal/system"
	"github.com/l1jgo/tickpoll/internal/wait"
	"go.uber.org/zap"
)

// Loop drives frames: FixedUpdate 0..n times from an accumulator, then
// Update, LateUpdate and Cleanup. All routine code runs on the goroutine
// calling Frame or Run.
type Loop struct {
	World      *ecs.World
	Bus        *event.Bus
	Scheduler  *routine.Scheduler
	Behaviours *behaviour.Host
	Wait       *wait.Waiter

	runner        *coresys.Runner
	fixedStep     time.Duration
	maxFixedSteps int
	acc           time.Duration
	frames        uint64
	log           *zap.Logger
}

// New wires a frame loop from cfg. A non-positive fixed step or step cap
// falls back to the config defaults.
func New(cfg config.HostConfig, log *zap.Logger) *Loop {
	defaults := config.Defaults().Host
	if cfg.FixedStep <= 0 {
		cfg.FixedStep = defaults.FixedStep
	}
	if cfg.MaxFixedSteps <= 0 {
		cfg.MaxFixedSteps = defaults.MaxFixedSteps
	}
	world := ecs.NewWorld(cfg.MaxEntities)
	bus := event.NewBus()
	sched := routine.NewScheduler(world, bus, log)
	behaviours := behaviour.NewHost(world, sched, log)

	runner := coresys.NewRunner()
	runner.Register(system.NewRoutineSystem(sched, coresys.StageFixedUpdate))
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewRoutineSystem(sched, coresys.StageUpdate))
	runner.Register(system.NewRoutineSystem(sched, coresys.StageLateUpdate))
	runner.Register(system.NewCleanupSystem(world, log))

	return &Loop{
		World:         world,
		Bus:           bus,
		Scheduler:     sched,
		Behaviours:    behaviours,
		Wait:          wait.NewFromHost(behaviours),
		runner:        runner,
		fixedStep:     cfg.FixedStep,
		maxFixedSteps: cfg.MaxFixedSteps,
		log:           log,
	}
}

// Register adds an extra system to the frame.
func (l *Loop) Register(s coresys.System) {
	l.runner.Register(s)
}

// Frames returns how many frames have run.
func (l *Loop) Frames() uint64 { return l.frames }

// Frame advances the world by dt of wall time.
func (l *Loop) Frame(dt time.Duration) {
	l.acc += dt
	steps := 0
	for l.acc >= l.fixedStep && steps < l.maxFixedSteps {
		l.runner.TickStage(coresys.StageFixedUpdate, l.fixedStep)
		l.acc -= l.fixedStep
		steps++
	}
	if l.acc >= l.fixedStep {
		// too far behind; drop the backlog instead of spiralling
		l.log.Debug("fixed update backlog dropped",
			zap.Uint64("frame", l.frames),
			zap.Duration("backlog", l.acc),
		)
		l.acc %= l.fixedStep
	}
	l.runner.TickStage(coresys.StageUpdate, dt)
	l.runner.TickStage(coresys.StageLateUpdate, dt)
	l.runner.TickStage(coresys.StageCleanup, dt)
	l.frames++
}

// Run ticks frames at the given interval until ctx is done.
func (l *Loop) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			l.Frame(now.Sub(last))
			last = now
		case <-ctx.Done():
			l.log.Info("frame loop stopped",
				zap.Uint64("frames", l.frames),
				zap.Int("routines", l.Scheduler.Len()),
			)
			return ctx.Err()
		}
	}
}
