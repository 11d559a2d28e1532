package system

import (
	"sort"
	"time"
)

// Runner executes systems in stage order. Systems sharing a stage run in
// registration order.
type Runner struct {
	systems []System
	sorted  bool
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 8),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Tick runs every system once, in stage order.
func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		s.Update(dt)
	}
}

// TickStage runs only the systems of one stage. The frame loop uses it to
// run FixedUpdate several times per frame.
func (r *Runner) TickStage(stage Stage, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Stage() == stage {
			s.Update(dt)
		}
	}
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Stage() < r.systems[j].Stage()
		})
		r.sorted = true
	}
}
