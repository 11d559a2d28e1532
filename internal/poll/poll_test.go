package poll

import (
	"testing"
	"time"

	"github.com/l1jgo/tickpoll/internal/behaviour"
	"github.com/l1jgo/tickpoll/internal/core/ecs"
	"github.com/l1jgo/tickpoll/internal/core/routine"
	"github.com/l1jgo/tickpoll/internal/core/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	host  *behaviour.Host
	owner *behaviour.Behaviour
	tick  int // evaluations so far, 1-based; the start call is tick 1
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	w := ecs.NewWorld(0)
	host := behaviour.NewHost(w, routine.NewScheduler(w, nil, zap.NewNop()), zap.NewNop())
	owner, err := host.Spawn("poller")
	require.NoError(t, err)
	return &fixture{host: host, owner: owner}
}

// advance runs n more frames, ticking every routine stage.
func (f *fixture) advance(n int) {
	s := f.host.Scheduler()
	for i := 0; i < n; i++ {
		s.Tick(system.StageFixedUpdate, 0)
		s.Tick(system.StageUpdate, 16*time.Millisecond)
		s.Tick(system.StageLateUpdate, 0)
	}
}

// sequence returns a predicate yielding vals in order, then the last value
// forever, recording each evaluation's index on f.
func sequence[T any](f *fixture, evals *int, vals ...T) func() T {
	return func() T {
		*evals++
		f.tick = *evals
		if *evals > len(vals) {
			return vals[len(vals)-1]
		}
		return vals[*evals-1]
	}
}

func TestWhileLevelTriggered(t *testing.T) {
	f := newFixture(t)
	evals := 0
	var fired []int
	h, err := While(f.owner, sequence(f, &evals, true, false, true, true), func() {
		fired = append(fired, f.tick)
	}, Update)
	require.NoError(t, err)

	f.advance(3)
	assert.Equal(t, []int{1, 3, 4}, fired)
	assert.False(t, h.Done())
}

func TestWhenFiresOnceThenStops(t *testing.T) {
	f := newFixture(t)
	evals := 0
	var fired []int
	h, err := When(f.owner, sequence(f, &evals, false, false, true, true), func() {
		fired = append(fired, f.tick)
	}, Update)
	require.NoError(t, err)

	f.advance(5)
	assert.Equal(t, []int{3}, fired)
	assert.Equal(t, 3, evals, "no evaluations after firing")
	assert.Equal(t, routine.StateDone, h.State())
}

func TestWhenTrueImmediately(t *testing.T) {
	f := newFixture(t)
	fired := 0
	h, err := When(f.owner, func() bool { return true }, func() { fired++ }, LateUpdate)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
	assert.True(t, h.Done())
}

func TestWheneverEdgeTriggered(t *testing.T) {
	f := newFixture(t)
	evals := 0
	var fired []int
	_, err := Whenever(f.owner, sequence(f, &evals, false, true, true, false, true), func() {
		fired = append(fired, f.tick)
	}, Update)
	require.NoError(t, err)

	f.advance(4)
	assert.Equal(t, []int{2, 5}, fired)

	// sustained true after the last edge never fires again
	f.advance(3)
	assert.Equal(t, []int{2, 5}, fired)
}

func TestWheneverTrueFromStart(t *testing.T) {
	f := newFixture(t)
	evals := 0
	var fired []int
	_, err := Whenever(f.owner, sequence(f, &evals, true, true), func() {
		fired = append(fired, f.tick)
	}, FixedUpdate)
	require.NoError(t, err)

	f.advance(1)
	assert.Equal(t, []int{1}, fired)
}

func TestWatchFiresOnChange(t *testing.T) {
	f := newFixture(t)
	vals := []int{5, 5, 7, 7, 9}
	i := 0
	expr := func() int {
		v := vals[min(i, len(vals)-1)]
		i++
		return v
	}
	var got []int
	_, err := Watch(f.owner, expr, func(v int) { got = append(got, v) }, Update)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, got, "initial value is reported before any wait")

	f.advance(4)
	assert.Equal(t, []int{5, 7, 9}, got)
}

func TestWatchYieldsEveryTick(t *testing.T) {
	f := newFixture(t)
	evals := 0
	_, err := Watch(f.owner, func() string {
		evals++
		return "idle"
	}, func(string) {}, LateUpdate)
	require.NoError(t, err)
	assert.Equal(t, 2, evals, "initial read plus the first loop check")

	f.host.Scheduler().Tick(system.StageUpdate, time.Millisecond)
	f.host.Scheduler().Tick(system.StageFixedUpdate, time.Millisecond)
	assert.Equal(t, 2, evals, "late-update watcher ignores other stages")

	f.host.Scheduler().Tick(system.StageLateUpdate, time.Millisecond)
	assert.Equal(t, 3, evals)
}

type point struct{ x, y float64 }

func TestWatchFuncCustomEquality(t *testing.T) {
	f := newFixture(t)
	pos := []point{{0, 0}, {0.0001, 0}, {3, 4}}
	i := 0
	near := func(a, b point) bool {
		dx, dy := a.x-b.x, a.y-b.y
		return dx*dx+dy*dy < 0.01
	}
	var got []point
	_, err := WatchFunc(f.owner, func() point {
		p := pos[min(i, len(pos)-1)]
		i++
		return p
	}, near, func(p point) { got = append(got, p) }, Update)
	require.NoError(t, err)

	f.advance(2)
	assert.Equal(t, []point{{0, 0}, {3, 4}}, got)
}

func TestStageOnlySelectsTick(t *testing.T) {
	for _, stage := range system.RoutineStages {
		t.Run(stage.String(), func(t *testing.T) {
			f := newFixture(t)
			evals := 0
			var fired []int
			_, err := Whenever(f.owner, sequence(f, &evals, false, true, false, true), func() {
				fired = append(fired, f.tick)
			}, stage)
			require.NoError(t, err)
			f.advance(3)
			assert.Equal(t, []int{2, 4}, fired)
		})
	}
}

func TestOwnerDestroyedStopsPolling(t *testing.T) {
	f := newFixture(t)
	fired := 0
	h, err := While(f.owner, func() bool { return true }, func() { fired++ }, Update)
	require.NoError(t, err)

	f.advance(1)
	f.owner.Destroy()
	f.host.World().FlushDestroyQueue()
	f.advance(3)

	assert.Equal(t, 2, fired)
	assert.Equal(t, routine.StateCancelled, h.State())
}

func TestHandleCancelStopsPolling(t *testing.T) {
	f := newFixture(t)
	fired := 0
	h, err := While(f.owner, func() bool { return true }, func() { fired++ }, Update)
	require.NoError(t, err)
	h.Cancel()
	f.advance(2)
	assert.Equal(t, 1, fired)
}

func TestActionPanicStopsOnlyThatLoop(t *testing.T) {
	f := newFixture(t)
	_, err := Whenever(f.owner, func() bool { return true }, func() { panic("bad action") }, Update)
	require.NoError(t, err)
	fired := 0
	sibling, err := While(f.owner, func() bool { return true }, func() { fired++ }, Update)
	require.NoError(t, err)

	f.advance(2)
	assert.Equal(t, 3, fired)
	assert.False(t, sibling.Done())
	assert.Equal(t, 1, f.host.Scheduler().Len())
}

func TestNilFuncs(t *testing.T) {
	f := newFixture(t)
	_, err := While(f.owner, nil, func() {}, Update)
	assert.ErrorIs(t, err, ErrNilFunc)
	_, err = When(f.owner, func() bool { return true }, nil, Update)
	assert.ErrorIs(t, err, ErrNilFunc)
	_, err = Whenever(f.owner, nil, nil, Update)
	assert.ErrorIs(t, err, ErrNilFunc)
	_, err = Watch[int](f.owner, nil, func(int) {}, Update)
	assert.ErrorIs(t, err, ErrNilFunc)
}

func TestDeadOwner(t *testing.T) {
	f := newFixture(t)
	f.owner.Destroy()
	f.host.World().FlushDestroyQueue()
	_, err := When(f.owner, func() bool { return true }, func() {}, Update)
	assert.ErrorIs(t, err, routine.ErrOwnerNotAlive)
}
