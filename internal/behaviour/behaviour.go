package behaviour

import (
	"fmt"

	"github.com/l1jgo/tickpoll/internal/core/ecs"
	"github.com/l1jgo/tickpoll/internal/core/routine"
	"go.uber.org/zap"
)

// Behaviour is the component that turns an entity into a routine owner.
// Its routines stop when the entity is destroyed.
type Behaviour struct {
	ID   ecs.EntityID
	Name string

	world *ecs.World
	sched *routine.Scheduler
}

// StartRoutine runs r on this behaviour's entity.
func (b *Behaviour) StartRoutine(r routine.Routine) (*routine.Handle, error) {
	h, err := b.sched.Start(b.ID, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name, err)
	}
	return h, nil
}

// StopAllRoutines cancels everything this behaviour hosts.
func (b *Behaviour) StopAllRoutines() int {
	return b.sched.StopAll(b.ID)
}

func (b *Behaviour) Alive() bool {
	return b != nil && b.world.Alive(b.ID)
}

// Destroy queues the entity for end-of-frame destruction.
func (b *Behaviour) Destroy() {
	b.world.MarkForDestruction(b.ID)
}

// Host spawns behaviours and keeps the entity → behaviour store.
type Host struct {
	world *ecs.World
	sched *routine.Scheduler
	store *ecs.Store[Behaviour]
	log   *zap.Logger
}

func NewHost(world *ecs.World, sched *routine.Scheduler, log *zap.Logger) *Host {
	h := &Host{
		world: world,
		sched: sched,
		store: ecs.NewStore[Behaviour](),
		log:   log,
	}
	h.store.OnRemove(func(id ecs.EntityID, b *Behaviour) {
		h.log.Debug("behaviour destroyed", zap.String("name", b.Name), zap.Uint64("entity", uint64(id)))
	})
	world.Registry().Register(h.store)
	return h
}

// Spawn creates a named entity and attaches a Behaviour to it.
func (h *Host) Spawn(name string) (*Behaviour, error) {
	id, err := h.world.CreateEntity()
	if err != nil {
		return nil, fmt.Errorf("spawn %s: %w", name, err)
	}
	b := &Behaviour{ID: id, Name: name, world: h.world, sched: h.sched}
	h.store.Set(id, b)
	h.log.Debug("behaviour spawned", zap.String("name", name), zap.Uint64("entity", uint64(id)))
	return b, nil
}

func (h *Host) Get(id ecs.EntityID) (*Behaviour, bool) {
	return h.store.Get(id)
}

// Count returns the number of live behaviours.
func (h *Host) Count() int { return h.store.Len() }

func (h *Host) Scheduler() *routine.Scheduler { return h.sched }
func (h *Host) World() *ecs.World             { return h.world }
