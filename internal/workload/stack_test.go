package workload

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/zeebo/pcg"

	"github.com/pkoval/heras"
)

func TestStack_LIFO(t *testing.T) {
	d := heras.New(heras.Config{})
	th := d.Register()
	defer th.Deregister()

	s := NewStack(d)
	for v := uint64(1); v <= 5; v++ {
		s.Push(v)
	}
	for want := uint64(5); want >= 1; want-- {
		v, ok := s.Pop(th)
		if !ok {
			t.Fatalf("Pop failed with %d values left", want)
		}
		if v != want {
			t.Errorf("Pop = %d, want %d", v, want)
		}
	}
	if _, ok := s.Pop(th); ok {
		t.Error("Pop succeeded on an empty stack")
	}
}

func TestStack_Peek(t *testing.T) {
	d := heras.New(heras.Config{})
	th := d.Register()
	defer th.Deregister()

	s := NewStack(d)
	if _, ok := s.Peek(th); ok {
		t.Error("Peek succeeded on an empty stack")
	}
	s.Push(9)
	v, ok := s.Peek(th)
	if !ok || v != 9 {
		t.Errorf("Peek = (%d, %v), want (9, true)", v, ok)
	}
	// Peek must not consume.
	if v, ok := s.Pop(th); !ok || v != 9 {
		t.Errorf("Pop after Peek = (%d, %v), want (9, true)", v, ok)
	}
}

func TestStack_Drain(t *testing.T) {
	d := heras.New(heras.Config{})
	th := d.Register()
	defer th.Deregister()

	s := NewStack(d)
	var want uint64
	for v := uint64(1); v <= 10; v++ {
		s.Push(v)
		want += v
	}
	n, sum := s.Drain(th)
	if n != 10 || sum != want {
		t.Errorf("Drain = (%d, %d), want (10, %d)", n, sum, want)
	}
}

// TestStack_MixedChurn runs randomized push/pop workers and checks value
// conservation: everything pushed is popped exactly once, across workers
// or in the final drain, with zero poison hits.
func TestStack_MixedChurn(t *testing.T) {
	if testing.Short() {
		t.Skip("stress test")
	}
	const (
		workers = 8
		ops     = 30000
	)

	d := heras.New(heras.Config{Slots: 2})
	s := NewStack(d)

	var pushedN, poppedN atomic.Int64
	var pushedSum, poppedSum atomic.Uint64

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			th := d.Register()
			defer th.Deregister()
			rng := pcg.New(seed)
			for i := 0; i < ops; i++ {
				if rng.Uint32()&1 == 0 {
					v := uint64(rng.Uint32())
					s.Push(v)
					pushedN.Add(1)
					pushedSum.Add(v)
				} else if v, ok := s.Pop(th); ok {
					poppedN.Add(1)
					poppedSum.Add(v)
				}
			}
		}(uint64(w + 1))
	}
	wg.Wait()

	th := d.Register()
	defer th.Deregister()
	n, sum := s.Drain(th)
	poppedN.Add(int64(n))
	poppedSum.Add(sum)

	if pushedN.Load() != poppedN.Load() {
		t.Errorf("pushed %d values, recovered %d", pushedN.Load(), poppedN.Load())
	}
	if pushedSum.Load() != poppedSum.Load() {
		t.Errorf("pushed sum %d, recovered sum %d (values lost or duplicated)",
			pushedSum.Load(), poppedSum.Load())
	}
	if got := s.Poisoned(); got != 0 {
		t.Errorf("poisoned reads = %d, want 0", got)
	}
	if got := s.DoubleFreed(); got != 0 {
		t.Errorf("double frees = %d, want 0", got)
	}

	th.Scan()
	if got := d.Stats().Pending(); got != 0 {
		t.Errorf("pending = %d after drain and scan, want 0", got)
	}
}
