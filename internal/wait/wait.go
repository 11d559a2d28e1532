// Package wait provides fire-and-forget delays hosted by a shared behaviour
// that is created on first use.
package wait

import (
	"fmt"
	"math"
	"time"

	"github.com/l1jgo/tickpoll/internal/behaviour"
	"github.com/l1jgo/tickpoll/internal/core/routine"
	"github.com/l1jgo/tickpoll/internal/core/system"
	"github.com/l1jgo/tickpoll/internal/singleton"
)

// HostName is the name of the shared behaviour spawned by NewFromHost.
const HostName = "Wait"

// Waiter starts one-shot delay routines on a shared owner.
type Waiter struct {
	slot *singleton.Slot[*behaviour.Behaviour]
}

func New(slot *singleton.Slot[*behaviour.Behaviour]) *Waiter {
	return &Waiter{slot: slot}
}

// NewFromHost spawns the shared owner from host on first use.
func NewFromHost(host *behaviour.Host) *Waiter {
	return New(singleton.New(func() (*behaviour.Behaviour, error) {
		return host.Spawn(HostName)
	}, (*behaviour.Behaviour).Alive))
}

type forRoutine struct {
	delay   time.Duration
	action  func()
	started bool
}

func (r *forRoutine) Name() string { return "wait.for" }

func (r *forRoutine) Step() routine.Resume {
	if !r.started {
		r.started = true
		return routine.After(r.delay)
	}
	r.action()
	return routine.Done()
}

// For runs action once after at least d of frame time.
func (w *Waiter) For(d time.Duration, action func()) error {
	return w.start(&forRoutine{delay: d, action: action}, action)
}

// Seconds is For with a fractional second count. Counts past the Duration
// range wait forever; negative counts fire on the next Update tick.
func (w *Waiter) Seconds(sec float64, action func()) error {
	d, err := secondsToDuration(sec)
	if err != nil {
		return err
	}
	return w.For(d, action)
}

func secondsToDuration(sec float64) (time.Duration, error) {
	switch {
	case math.IsNaN(sec):
		return 0, fmt.Errorf("wait.Seconds: NaN delay")
	case sec <= 0:
		return 0, nil
	case sec >= math.MaxInt64/float64(time.Second):
		return math.MaxInt64, nil
	}
	return time.Duration(sec * float64(time.Second)), nil
}

type untilRoutine struct {
	cond   func() bool
	action func()
}

func (r *untilRoutine) Name() string { return "wait.until" }

func (r *untilRoutine) Step() routine.Resume {
	if !r.cond() {
		return routine.NextTick(system.StageUpdate)
	}
	r.action()
	return routine.Done()
}

// Until runs action once, on the first Update tick where cond holds. The
// first check happens immediately.
func (w *Waiter) Until(cond func() bool, action func()) error {
	if cond == nil {
		return fmt.Errorf("wait.Until: nil condition")
	}
	return w.start(&untilRoutine{cond: cond, action: action}, action)
}

func (w *Waiter) start(r routine.Routine, action func()) error {
	if action == nil {
		return fmt.Errorf("wait: nil action")
	}
	owner, err := w.slot.Instance()
	if err != nil {
		return fmt.Errorf("wait host: %w", err)
	}
	_, err = owner.StartRoutine(r)
	return err
}
