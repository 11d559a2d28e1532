package system

import (
	"testing"
	"time"

	"github.com/l1jgo/tickpoll/internal/core/ecs"
	"github.com/l1jgo/tickpoll/internal/core/routine"
	coresys "github.com/l1jgo/tickpoll/internal/core/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCleanupCancelsRoutinesOfDestroyedOwners(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	w := ecs.NewWorld(0)
	sched := routine.NewScheduler(w, nil, zap.NewNop())
	cleanup := NewCleanupSystem(w, zap.New(core))

	owner, err := w.CreateEntity()
	require.NoError(t, err)
	h, err := sched.Start(owner, routine.Func(func() routine.Resume {
		return routine.NextTick(coresys.StageUpdate)
	}))
	require.NoError(t, err)

	cleanup.Update(time.Millisecond)
	assert.Zero(t, cleanup.Destroyed())
	assert.Zero(t, logs.Len())

	w.MarkForDestruction(owner)
	cleanup.Update(time.Millisecond)
	assert.False(t, w.Alive(owner))
	assert.Equal(t, routine.StateCancelled, h.State())
	assert.Equal(t, 1, cleanup.Destroyed())
	assert.Equal(t, 1, logs.FilterMessage("owners destroyed").Len())
}
