package lazy

// Box defers creation of a value until the first Get. The zero Box
// materializes T's zero value. Not safe for concurrent use: boxes are only
// touched from the frame loop.
type Box[T any] struct {
	val          T
	init         func() T
	materialized bool
}

// Of returns a box that already holds v. No initializer is ever consulted,
// even when v is nil or the zero value.
func Of[T any](v T) *Box[T] {
	return &Box[T]{val: v, materialized: true}
}

// New returns a box that calls f on the first Get.
func New[T any](f func() T) *Box[T] {
	return &Box[T]{init: f}
}

// Alloc returns a box whose default construction is new(T).
func Alloc[T any]() *Box[*T] {
	return New(func() *T { return new(T) })
}

// Get returns the value, materializing it on the first call only.
func (b *Box[T]) Get() T {
	if !b.materialized {
		if b.init != nil {
			b.val = b.init()
			b.init = nil
		}
		b.materialized = true
	}
	return b.val
}

// Materialized reports whether the value has been produced.
func (b *Box[T]) Materialized() bool { return b.materialized }
