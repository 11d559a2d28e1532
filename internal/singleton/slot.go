package singleton

// Slot holds at most one live instance of T, created on first access. A slot
// is an ordinary value owned by whoever needs the shared instance, not a
// package-level global.
type Slot[T any] struct {
	inst   T
	set    bool
	create func() (T, error)
	alive  func(T) bool
}

// New returns a slot that builds its instance with create. alive reports
// whether a cached instance is still usable; nil means "always".
func New[T any](create func() (T, error), alive func(T) bool) *Slot[T] {
	return &Slot[T]{create: create, alive: alive}
}

// Instance returns the cached instance, creating it when the slot is empty or
// the cached one is no longer alive. A create error is returned as is and
// leaves the slot empty.
func (s *Slot[T]) Instance() (T, error) {
	if s.set && (s.alive == nil || s.alive(s.inst)) {
		return s.inst, nil
	}
	v, err := s.create()
	if err != nil {
		var zero T
		s.inst, s.set = zero, false
		return zero, err
	}
	s.inst, s.set = v, true
	return v, nil
}

// Peek returns the cached instance without creating one.
func (s *Slot[T]) Peek() (T, bool) {
	return s.inst, s.set
}
