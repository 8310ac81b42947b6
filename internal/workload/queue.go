package workload

import (
	"github.com/pkoval/heras"
	"github.com/pkoval/heras/marked"
)

// QueueNode is one queue cell. next is itself an atomic marked pointer
// because enqueuers CAS it while dequeuers traverse it.
type QueueNode struct {
	heras.Node
	Value uint64
	next  marked.Atomic[QueueNode]
	state uint64
}

// Queue is a Michael-Scott queue whose dequeues retire the consumed dummy
// through the reclamation domain. Dequeue holds two hazard slots at once
// (head and successor), so it needs Config.Slots of at least two.
type Queue struct {
	domain *heras.Domain
	head   marked.Atomic[QueueNode]
	tail   marked.Atomic[QueueNode]
	bad    corruption
}

func NewQueue(d *heras.Domain) *Queue {
	q := &Queue{domain: d}
	dummy := &QueueNode{Node: d.NewNode(), state: stateLive}
	q.head.Store(dummy, 0)
	q.tail.Store(dummy, 0)
	return q
}

// Enqueue appends v. The tail node must be guarded while its next link is
// read and CASed: a lagging dequeuer may have already retired it.
func (q *Queue) Enqueue(th *heras.Thread, v uint64) {
	n := &QueueNode{Node: q.domain.NewNode(), Value: v, state: stateLive}
	for {
		g := heras.Protect(th, &q.tail)
		tail := g.Ptr()
		q.bad.note(tail.state)
		next, _ := tail.next.Load()
		if next != nil {
			// Tail lagged behind; help it forward and retry.
			q.tail.CompareAndSwap(tail, g.Tag(), next, 0)
			g.Reset()
			continue
		}
		if tail.next.CompareAndSwap(nil, 0, n, 0) {
			q.tail.CompareAndSwap(tail, g.Tag(), n, 0)
			g.Reset()
			return
		}
		g.Reset()
	}
}

// Dequeue removes the oldest value. ok is false on an empty queue. The
// consumed node becomes the new dummy; the old dummy is retired.
func (q *Queue) Dequeue(th *heras.Thread) (v uint64, ok bool) {
	for {
		gh := heras.Protect(th, &q.head)
		dummy := gh.Ptr()
		q.bad.note(dummy.state)

		gn := heras.Protect(th, &dummy.next)
		n := gn.Ptr()
		if n == nil {
			gn.Reset()
			gh.Reset()
			return 0, false
		}
		q.bad.note(n.state)
		v = n.Value

		// A dummy that is also the tail means the tail lags; help it
		// past before swinging the head.
		if t, tTag := q.tail.Load(); t == dummy {
			q.tail.CompareAndSwap(t, tTag, n, 0)
		}

		if q.head.CompareAndSwap(dummy, gh.Tag(), n, 0) {
			gn.Reset()
			gh.Reclaim(q.bad.hook(&dummy.state))
			return v, true
		}
		gn.Reset()
		gh.Reset()
	}
}

// Drain dequeues everything, returning the count and sum of values.
func (q *Queue) Drain(th *heras.Thread) (n int, sum uint64) {
	for {
		v, ok := q.Dequeue(th)
		if !ok {
			return n, sum
		}
		n++
		sum += v
	}
}

// Poisoned returns the number of guarded reads that saw a freed node.
func (q *Queue) Poisoned() uint64 { return q.bad.poisoned.Load() }

// DoubleFreed returns the number of free hooks that ran twice.
func (q *Queue) DoubleFreed() uint64 { return q.bad.doubleFree.Load() }
