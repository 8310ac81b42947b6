package workload

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/zeebo/pcg"

	"github.com/pkoval/heras"
)

func TestQueue_FIFO(t *testing.T) {
	d := heras.New(heras.Config{})
	th := d.Register()
	defer th.Deregister()

	q := NewQueue(d)
	for v := uint64(1); v <= 5; v++ {
		q.Enqueue(th, v)
	}
	for want := uint64(1); want <= 5; want++ {
		v, ok := q.Dequeue(th)
		if !ok {
			t.Fatalf("Dequeue failed with %d values left", 6-want)
		}
		if v != want {
			t.Errorf("Dequeue = %d, want %d", v, want)
		}
	}
	if _, ok := q.Dequeue(th); ok {
		t.Error("Dequeue succeeded on an empty queue")
	}
}

// TestQueue_TwoSlotsSuffice pins the documented slot demand: dequeue holds
// head and successor at once and no more.
func TestQueue_TwoSlotsSuffice(t *testing.T) {
	d := heras.New(heras.Config{Slots: 2})
	th := d.Register()
	defer th.Deregister()

	q := NewQueue(d)
	q.Enqueue(th, 1)
	q.Enqueue(th, 2)
	if v, ok := q.Dequeue(th); !ok || v != 1 {
		t.Errorf("Dequeue = (%d, %v), want (1, true)", v, ok)
	}
	if v, ok := q.Dequeue(th); !ok || v != 2 {
		t.Errorf("Dequeue = (%d, %v), want (2, true)", v, ok)
	}
}

func TestQueue_Drain(t *testing.T) {
	d := heras.New(heras.Config{})
	th := d.Register()
	defer th.Deregister()

	q := NewQueue(d)
	var want uint64
	for v := uint64(1); v <= 10; v++ {
		q.Enqueue(th, v)
		want += v
	}
	n, sum := q.Drain(th)
	if n != 10 || sum != want {
		t.Errorf("Drain = (%d, %d), want (10, %d)", n, sum, want)
	}
}

// TestQueue_ProducersConsumers checks conservation under concurrent
// enqueues and dequeues: every value makes it across exactly once.
func TestQueue_ProducersConsumers(t *testing.T) {
	if testing.Short() {
		t.Skip("stress test")
	}
	const (
		producers = 4
		consumers = 4
		perProd   = 20000
	)

	d := heras.New(heras.Config{})
	q := NewQueue(d)

	var produced, consumed atomic.Uint64
	var consumedN atomic.Int64
	done := make(chan struct{})

	var prodWG sync.WaitGroup
	for p := 0; p < producers; p++ {
		prodWG.Add(1)
		go func(seed uint64) {
			defer prodWG.Done()
			th := d.Register()
			defer th.Deregister()
			rng := pcg.New(seed)
			for i := 0; i < perProd; i++ {
				v := uint64(rng.Uint32())
				q.Enqueue(th, v)
				produced.Add(v)
			}
		}(uint64(p + 1))
	}

	var consWG sync.WaitGroup
	for c := 0; c < consumers; c++ {
		consWG.Add(1)
		go func() {
			defer consWG.Done()
			th := d.Register()
			defer th.Deregister()
			for {
				if v, ok := q.Dequeue(th); ok {
					consumed.Add(v)
					consumedN.Add(1)
					continue
				}
				select {
				case <-done:
					return
				default:
				}
			}
		}()
	}

	prodWG.Wait()
	close(done)
	consWG.Wait()

	th := d.Register()
	defer th.Deregister()
	n, sum := q.Drain(th)
	consumed.Add(sum)
	consumedN.Add(int64(n))

	if got := consumedN.Load(); got != producers*perProd {
		t.Errorf("consumed %d values, want %d", got, producers*perProd)
	}
	if produced.Load() != consumed.Load() {
		t.Errorf("produced sum %d, consumed sum %d", produced.Load(), consumed.Load())
	}
	if got := q.Poisoned(); got != 0 {
		t.Errorf("poisoned reads = %d, want 0", got)
	}
	if got := q.DoubleFreed(); got != 0 {
		t.Errorf("double frees = %d, want 0", got)
	}

	th.Scan()
	if got := d.Stats().Pending(); got != 0 {
		t.Errorf("pending = %d after drain and scan, want 0", got)
	}
}
