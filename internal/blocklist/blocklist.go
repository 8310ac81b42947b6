// Package blocklist implements the append-only registry list backing
// per-thread reclamation state.
//
// The list only ever grows: entries are linked in once with a CAS on the
// head and are never unlinked. Releasing an entry flips it to inactive so a
// later Acquire can recycle it instead of allocating. This keeps traversal
// wait-free for scanners: links are immutable once published, so a reader
// that loads the head once can walk the whole list without coordination,
// while entries change hands through their state word alone.
package blocklist

import "sync/atomic"

const (
	stateInactive uint32 = iota
	stateActive
)

// Node is one registry entry. The embedded Value belongs exclusively to the
// current owner; shared fields inside it must be cleared before Release so
// the next owner starts clean.
type Node[T any] struct {
	next  *Node[T] // immutable once linked
	state atomic.Uint32

	Value T
}

// Active reports whether the node currently has an owner.
func (n *Node[T]) Active() bool { return n.state.Load() == stateActive }

// List is a lock-free registry of Nodes. The zero value is ready to use.
type List[T any] struct {
	head atomic.Pointer[Node[T]]
	size atomic.Int64
}

// Acquire returns a node owned exclusively by the caller, recycling a
// released one when possible. reused reports whether the node was recycled;
// a recycled node keeps its previous Value. For the allocation path the
// Value is built by fresh before the node is linked, so concurrent Range
// walkers never observe a half-initialized entry.
func (l *List[T]) Acquire(fresh func() T) (n *Node[T], reused bool) {
	for cur := l.head.Load(); cur != nil; cur = cur.next {
		if cur.state.Load() == stateInactive &&
			cur.state.CompareAndSwap(stateInactive, stateActive) {
			return cur, true
		}
	}

	n = &Node[T]{Value: fresh()}
	n.state.Store(stateActive)
	for {
		old := l.head.Load()
		n.next = old
		if l.head.CompareAndSwap(old, n) {
			l.size.Add(1)
			return n, false
		}
	}
}

// Release gives the node up for recycling. The caller must have cleared any
// shared state inside Value first; the state store is the release barrier
// that orders those writes before the next owner's acquire.
func (l *List[T]) Release(n *Node[T]) {
	n.state.Store(stateInactive)
}

// Range calls f for every node ever linked, newest first, including
// inactive ones. f returning false stops the walk.
func (l *List[T]) Range(f func(n *Node[T]) bool) {
	for cur := l.head.Load(); cur != nil; cur = cur.next {
		if !f(cur) {
			return
		}
	}
}

// Len returns the number of nodes ever linked, active or not.
func (l *List[T]) Len() int { return int(l.size.Load()) }
