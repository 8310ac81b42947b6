// Package heras implements era-based safe memory reclamation for lock-free
// data structures.
//
// Go's collector already prevents use-after-free for plain heap objects,
// but it cannot protect what it cannot see: pooled objects that are reused
// while a reader still holds them, memory obtained outside the Go heap, or
// any resource whose recycling must wait until every concurrent reader is
// provably done. This package answers the question the collector cannot:
// "is some thread still reading this?" with the Hazard Eras algorithm, at
// a cost of one atomic store per protected read.
//
// # Quick Start
//
// Participants register with a Domain and protect loads through guards:
//
//	type entry struct {
//		heras.Node
//		val uint64
//	}
//
//	var head marked.Atomic[entry]
//	domain := heras.New(heras.Config{})
//
//	// Writer: replace the head and retire the old entry.
//	t := domain.Register()
//	defer t.Deregister()
//	old, tag := head.Load()
//	next := &entry{Node: domain.NewNode(), val: 42}
//	if head.CompareAndSwap(old, tag, next, 0) {
//		t.Retire(old, func() { pool.Put(old) })
//	}
//
//	// Reader: the entry cannot be recycled while the guard holds.
//	g := heras.Protect(t, &head)
//	defer g.Reset()
//	if e := g.Ptr(); e != nil {
//		use(e.val)
//	}
//
// # API Overview
//
// The package provides:
//   - Reclamation domains and registration: [New], [Domain.Register]
//   - Object bookkeeping: [Node], [Domain.NewNode], [Thread.Retire]
//   - Protected loads: [Protect], [ProtectIf], [Guard]
//   - Forced reclamation and introspection: [Thread.Scan], [Domain.Stats]
//   - Tagged atomic pointers for the protected structures:
//     package marked
//
// # How It Works
//
// A domain keeps a logical clock that ticks once per retirement. Every
// object records the era it was constructed in and the era it was retired
// at, so its reachable lifetime is the half-open interval between the two.
// A reader about to dereference a shared pointer publishes the current era
// in a per-thread hazard slot; retired objects accumulate in per-thread
// batches, and once a batch crosses a threshold the retiring thread scans
// all published eras and frees exactly those objects whose interval
// contains none of them. An object that some reader may still hold is kept
// for a later scan; an object no published era overlaps is gone for good.
//
// Unlike classic hazard pointers, a single published era protects every
// object loaded under it, so walking a long structure needs one slot, not
// one slot per visited node. Unlike epoch schemes, a stalled reader only
// pins objects from its own era forward, not the entire world.
//
// # Memory Ordering
//
// All shared state is accessed through sync/atomic, which is sequentially
// consistent; the algorithm itself needs only acquire/release pairs on the
// hazard slots and the clock. Per-thread state (Thread handles, guards,
// retired batches) is deliberately unsynchronized and must stay confined
// to one goroutine at a time.
//
// # References
//
// The algorithm is Hazard Eras (Ramalhete & Correia, SPAA 2017), with the
// interval test adjusted for retirement stamps taken after the clock tick.
package heras
