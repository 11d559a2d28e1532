package ecs

// Registry fans entity destruction out to everything that keeps per-entity
// state. Order matters: the routine scheduler registers before the behaviour
// store, so routines are cancelled while their owner's component still exists.
type Registry struct {
	removers []Removable
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Register(rm Removable) {
	r.removers = append(r.removers, rm)
}

// Len returns how many removers are registered.
func (r *Registry) Len() int { return len(r.removers) }

func (r *Registry) RemoveAll(id EntityID) {
	for _, rm := range r.removers {
		rm.Remove(id)
	}
}
