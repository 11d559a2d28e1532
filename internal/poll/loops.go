package poll

import (
	"github.com/l1jgo/tickpoll/internal/core/routine"
	"github.com/l1jgo/tickpoll/internal/core/system"
)

type whileLoop struct {
	pred   func() bool
	action func()
	stage  system.Stage
}

// NewWhile returns the level-triggered routine behind While.
func NewWhile(pred func() bool, action func(), stage system.Stage) routine.Routine {
	return &whileLoop{pred: pred, action: action, stage: stage}
}

func (l *whileLoop) Name() string { return "while" }

func (l *whileLoop) Step() routine.Resume {
	if l.pred() {
		l.action()
	}
	return routine.NextTick(l.stage)
}

type whenLoop struct {
	pred   func() bool
	action func()
	stage  system.Stage
}

// NewWhen returns the one-shot routine behind When.
func NewWhen(pred func() bool, action func(), stage system.Stage) routine.Routine {
	return &whenLoop{pred: pred, action: action, stage: stage}
}

func (l *whenLoop) Name() string { return "when" }

func (l *whenLoop) Step() routine.Resume {
	if !l.pred() {
		return routine.NextTick(l.stage)
	}
	l.action()
	return routine.Done()
}

type wheneverLoop struct {
	pred   func() bool
	action func()
	stage  system.Stage
	state  bool
}

// NewWhenever returns the edge-triggered routine behind Whenever.
func NewWhenever(pred func() bool, action func(), stage system.Stage) routine.Routine {
	return &wheneverLoop{pred: pred, action: action, stage: stage}
}

func (l *wheneverLoop) Name() string { return "whenever" }

func (l *wheneverLoop) Step() routine.Resume {
	next := l.pred()
	if next && !l.state {
		l.action()
	}
	l.state = next
	return routine.NextTick(l.stage)
}

type watchLoop[T any] struct {
	expr    func() T
	equal   func(a, b T) bool
	action  func(T)
	stage   system.Stage
	last    T
	started bool
}

// NewWatch returns the change-detecting routine behind Watch.
func NewWatch[T any](expr func() T, equal func(a, b T) bool, action func(T), stage system.Stage) routine.Routine {
	return &watchLoop[T]{expr: expr, equal: equal, action: action, stage: stage}
}

func (l *watchLoop[T]) Name() string { return "watch" }

func (l *watchLoop[T]) Step() routine.Resume {
	if !l.started {
		l.started = true
		l.last = l.expr()
		l.action(l.last)
	}
	if v := l.expr(); !l.equal(l.last, v) {
		l.last = v
		l.action(v)
	}
	return routine.NextTick(l.stage)
}
