package containers

import "fmt"

// Handle addresses a slot of a HandleTable. The generation makes a handle
// stale once its slot is released, even if the slot is reused.
type Handle struct {
	Index      uint32
	Generation uint32
}

// NullHandle never resolves. Generations start at 1.
var NullHandle = Handle{}

func (h Handle) IsNull() bool {
	return h.Generation == 0
}

func (h Handle) String() string {
	return fmt.Sprintf("%d#%d", h.Index, h.Generation)
}

type slot[T any] struct {
	value      T
	generation uint32
	live       bool
}

// HandleTable stores values behind generation-checked handles. Released
// slots are reused first.
type HandleTable[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

func NewHandleTable[T any](capacity int) *HandleTable[T] {
	return &HandleTable[T]{
		slots: make([]slot[T], 0, capacity),
	}
}

func (ht *HandleTable[T]) Insert(value T) Handle {
	if n := len(ht.free); n > 0 {
		// Existing free spot. Take it.
		idx := ht.free[n-1]
		ht.free = ht.free[:n-1]
		s := &ht.slots[idx]
		s.value = value
		s.live = true
		ht.count++
		return Handle{Index: idx, Generation: s.generation}
	}
	ht.slots = append(ht.slots, slot[T]{value: value, generation: 1, live: true})
	ht.count++
	return Handle{Index: uint32(len(ht.slots) - 1), Generation: 1}
}

func (ht *HandleTable[T]) Get(h Handle) (T, bool) {
	var zero T
	if !ht.valid(h) {
		return zero, false
	}
	return ht.slots[h.Index].value, true
}

// Remove releases the slot and returns its value. Removing a stale handle is
// a no-op that reports false, which rules out double frees.
func (ht *HandleTable[T]) Remove(h Handle) (T, bool) {
	var zero T
	if !ht.valid(h) {
		return zero, false
	}
	s := &ht.slots[h.Index]
	value := s.value
	s.value = zero
	s.live = false
	s.generation++
	if s.generation == 0 {
		s.generation = 1
	}
	ht.free = append(ht.free, h.Index)
	ht.count--
	return value, true
}

func (ht *HandleTable[T]) Contains(h Handle) bool {
	return ht.valid(h)
}

func (ht *HandleTable[T]) Len() int {
	return ht.count
}

// Each visits live entries in slot order.
func (ht *HandleTable[T]) Each(fn func(h Handle, value T)) {
	for i := range ht.slots {
		s := &ht.slots[i]
		if s.live {
			fn(Handle{Index: uint32(i), Generation: s.generation}, s.value)
		}
	}
}

func (ht *HandleTable[T]) valid(h Handle) bool {
	if h.IsNull() || int(h.Index) >= len(ht.slots) {
		return false
	}
	s := &ht.slots[h.Index]
	return s.live && s.generation == h.Generation
}
