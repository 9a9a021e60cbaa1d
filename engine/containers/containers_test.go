package containers

import (
	"testing"

	"github.com/cockroachdb/errors"
)

func TestRingQueueFIFO(t *testing.T) {
	rq := NewRingQueue[string](2)
	if _, err := rq.Dequeue(); err != ErrQueueEmpty {
		t.Fatalf("expected ErrQueueEmpty, got %v", err)
	}
	_ = rq.Enqueue("a")
	_ = rq.Enqueue("b")
	if err := rq.Enqueue("c"); err != ErrQueueFull {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if v, _ := rq.Peek(); v != "a" {
		t.Errorf("peek = %q", v)
	}
	v, _ := rq.Dequeue()
	_ = rq.Enqueue("c")
	w, _ := rq.Dequeue()
	x, _ := rq.Dequeue()
	if v != "a" || w != "b" || x != "c" {
		t.Errorf("order broken: %s %s %s", v, w, x)
	}
	if !rq.IsEmpty() || rq.Len() != 0 {
		t.Errorf("queue should be empty")
	}
}

func TestRingQueueErrorsWrap(t *testing.T) {
	rq := NewRingQueue[int](1)
	_ = rq.Enqueue(1)
	err := errors.Wrap(rq.Enqueue(2), "queueing change")
	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected wrapped ErrQueueFull, got %v", err)
	}
	// The stack recorded at construction survives the wrap.
	if errors.GetReportableStackTrace(ErrQueueFull) == nil {
		t.Error("expected ErrQueueFull to carry a stack trace")
	}
}

func TestRingRoundRobin(t *testing.T) {
	r := NewRing([]int{10, 20, 30})
	seen := []int{}
	for i := 0; i < 7; i++ {
		seen = append(seen, r.Index())
		r.Advance()
	}
	want := []int{0, 1, 2, 0, 1, 2, 0}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("step %d: got %d want %d", i, seen[i], want[i])
		}
	}
	if r.Current() != 20 {
		t.Errorf("current = %d", r.Current())
	}
	r.Reset()
	if r.Index() != 0 {
		t.Errorf("reset did not rewind")
	}
}

func TestHandleTableGenerations(t *testing.T) {
	ht := NewHandleTable[string](4)
	a := ht.Insert("a")
	b := ht.Insert("b")
	if a.IsNull() || b.IsNull() {
		t.Fatalf("handles must not be null")
	}
	if v, ok := ht.Get(a); !ok || v != "a" {
		t.Fatalf("get a = %q %v", v, ok)
	}
	if _, ok := ht.Remove(a); !ok {
		t.Fatalf("remove a failed")
	}
	if _, ok := ht.Remove(a); ok {
		t.Errorf("double remove must be rejected")
	}
	c := ht.Insert("c")
	if c.Index != a.Index {
		t.Errorf("free slot should be reused")
	}
	if _, ok := ht.Get(a); ok {
		t.Errorf("stale handle resolved after slot reuse")
	}
	if v, _ := ht.Get(c); v != "c" {
		t.Errorf("get c = %q", v)
	}
	if ht.Len() != 2 {
		t.Errorf("len = %d", ht.Len())
	}
	if _, ok := ht.Get(NullHandle); ok {
		t.Errorf("null handle resolved")
	}
	n := 0
	ht.Each(func(h Handle, v string) { n++ })
	if n != 2 {
		t.Errorf("each visited %d", n)
	}
}
