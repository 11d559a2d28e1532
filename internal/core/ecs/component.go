package ecs

// Removable is implemented by everything the Registry clears on destroy.
type Removable interface {
	Remove(id EntityID)
}

// Store is a generic typed map from entity to component pointer.
type Store[T any] struct {
	data     map[EntityID]*T
	onRemove func(EntityID, *T)
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{
		data: make(map[EntityID]*T, 16),
	}
}

// OnRemove installs a hook called with the component being detached.
func (s *Store[T]) OnRemove(fn func(EntityID, *T)) {
	s.onRemove = fn
}

func (s *Store[T]) Set(id EntityID, c *T) {
	s.data[id] = c
}

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *Store[T]) Remove(id EntityID) {
	c, ok := s.data[id]
	if !ok {
		return
	}
	delete(s.data, id)
	if s.onRemove != nil {
		s.onRemove(id, c)
	}
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *Store[T]) Len() int {
	return len(s.data)
}

func (s *Store[T]) Each(fn func(EntityID, *T)) {
	for id, c := range s.data {
		fn(id, c)
	}
}
