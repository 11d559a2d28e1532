package system

import (
	"time"

	"github.com/l1jgo/tickpoll/internal/core/ecs"
	coresys "github.com/l1jgo/tickpoll/internal/core/system"
	"go.uber.org/zap"
)

// CleanupSystem runs last in the frame. Owners destroyed during the frame
// are removed here, which cancels their routines before the next frame.
type CleanupSystem struct {
	world     *ecs.World
	log       *zap.Logger
	destroyed int
}

func NewCleanupSystem(world *ecs.World, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{world: world, log: log}
}

func (s *CleanupSystem) Stage() coresys.Stage { return coresys.StageCleanup }

// Destroyed returns the total number of owners removed so far.
func (s *CleanupSystem) Destroyed() int { return s.destroyed }

func (s *CleanupSystem) Update(_ time.Duration) {
	n := s.world.FlushDestroyQueue()
	if n == 0 {
		return
	}
	s.destroyed += n
	s.log.Debug("owners destroyed", zap.Int("count", n))
}
