package behaviour

import (
	"testing"
	"time"

	"github.com/l1jgo/tickpoll/internal/core/ecs"
	"github.com/l1jgo/tickpoll/internal/core/routine"
	"github.com/l1jgo/tickpoll/internal/core/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newHost(limit int) *Host {
	w := ecs.NewWorld(limit)
	return NewHost(w, routine.NewScheduler(w, nil, zap.NewNop()), zap.NewNop())
}

func TestSpawnAndDestroy(t *testing.T) {
	h := newHost(0)
	b, err := h.Spawn("player")
	require.NoError(t, err)
	assert.True(t, b.Alive())
	assert.Equal(t, 1, h.Count())

	got, ok := h.Get(b.ID)
	require.True(t, ok)
	assert.Same(t, b, got)

	n := 0
	handle, err := b.StartRoutine(routine.Func(func() routine.Resume {
		n++
		return routine.NextTick(system.StageUpdate)
	}))
	require.NoError(t, err)

	b.Destroy()
	assert.True(t, b.Alive(), "destruction is deferred")
	h.World().FlushDestroyQueue()
	assert.False(t, b.Alive())
	assert.Zero(t, h.Count())
	assert.True(t, handle.Done())

	h.Scheduler().Tick(system.StageUpdate, time.Millisecond)
	assert.Equal(t, 1, n)

	_, err = b.StartRoutine(routine.Func(routine.Done))
	require.ErrorIs(t, err, routine.ErrOwnerNotAlive)
}

func TestSpawnWorldFull(t *testing.T) {
	h := newHost(1)
	_, err := h.Spawn("a")
	require.NoError(t, err)
	_, err = h.Spawn("b")
	require.ErrorIs(t, err, ecs.ErrWorldFull)
}

func TestStopAllRoutines(t *testing.T) {
	h := newHost(0)
	b, err := h.Spawn("npc")
	require.NoError(t, err)
	_, err = b.StartRoutine(routine.Func(func() routine.Resume { return routine.NextTick(system.StageUpdate) }))
	require.NoError(t, err)
	assert.Equal(t, 1, b.StopAllRoutines())
	assert.True(t, b.Alive())
}

func TestNilBehaviourNotAlive(t *testing.T) {
	var b *Behaviour
	assert.False(t, b.Alive())
}
