// Package poll attaches predicate-driven routines to a live owner. Each
// routine evaluates its predicate once per tick of the chosen stage and runs
// its action according to the strategy's trigger rule. The first evaluation
// happens inside the start call.
package poll

import (
	"errors"

	"github.com/l1jgo/tickpoll/internal/core/routine"
	"github.com/l1jgo/tickpoll/internal/core/system"
)

// ErrNilFunc is returned when a predicate, expression or action is nil.
var ErrNilFunc = errors.New("poll: nil predicate or action")

const (
	Update      = system.StageUpdate
	LateUpdate  = system.StageLateUpdate
	FixedUpdate = system.StageFixedUpdate
)

// Owner is anything that can host a routine for its lifetime.
type Owner interface {
	StartRoutine(r routine.Routine) (*routine.Handle, error)
}

// While runs action on every tick where pred holds. Never finishes.
func While(owner Owner, pred func() bool, action func(), stage system.Stage) (*routine.Handle, error) {
	if pred == nil || action == nil {
		return nil, ErrNilFunc
	}
	return owner.StartRoutine(NewWhile(pred, action, stage))
}

// When waits for pred to hold, runs action once and finishes.
func When(owner Owner, pred func() bool, action func(), stage system.Stage) (*routine.Handle, error) {
	if pred == nil || action == nil {
		return nil, ErrNilFunc
	}
	return owner.StartRoutine(NewWhen(pred, action, stage))
}

// Whenever runs action on each false→true transition of pred. The tracked
// state starts false, so a predicate that is true on the first evaluation
// fires immediately. Never finishes.
func Whenever(owner Owner, pred func() bool, action func(), stage system.Stage) (*routine.Handle, error) {
	if pred == nil || action == nil {
		return nil, ErrNilFunc
	}
	return owner.StartRoutine(NewWhenever(pred, action, stage))
}

// Watch calls action with the current value of expr right away, then again
// each time the value changes. Never finishes.
func Watch[T comparable](owner Owner, expr func() T, action func(T), stage system.Stage) (*routine.Handle, error) {
	return WatchFunc(owner, expr, func(a, b T) bool { return a == b }, action, stage)
}

// WatchFunc is Watch for types without a meaningful ==.
func WatchFunc[T any](owner Owner, expr func() T, equal func(a, b T) bool, action func(T), stage system.Stage) (*routine.Handle, error) {
	if expr == nil || equal == nil || action == nil {
		return nil, ErrNilFunc
	}
	return owner.StartRoutine(NewWatch(expr, equal, action, stage))
}
