package containers

// Ring is a fixed set of slots visited in strict round-robin order.
type Ring[T any] struct {
	slots   []T
	current int
}

func NewRing[T any](slots []T) *Ring[T] {
	return &Ring[T]{slots: slots}
}

func (r *Ring[T]) Len() int {
	return len(r.slots)
}

func (r *Ring[T]) Index() int {
	return r.current
}

func (r *Ring[T]) Current() T {
	return r.slots[r.current]
}

func (r *Ring[T]) At(i int) T {
	return r.slots[i]
}

// Advance moves to the next slot, wrapping at Len.
func (r *Ring[T]) Advance() {
	r.current = (r.current + 1) % len(r.slots)
}

func (r *Ring[T]) Reset() {
	r.current = 0
}

func (r *Ring[T]) Each(fn func(i int, slot T)) {
	for i, s := range r.slots {
		fn(i, s)
	}
}
