package heras

import (
	"fmt"

	"github.com/pkoval/heras/internal/blocklist"
)

// Thread is one participant's handle onto a Domain: the key to claiming
// hazard-era slots, retiring objects and scanning. The name follows the
// algorithm's vocabulary; in this package a "thread" is whatever goroutine
// currently holds the handle.
//
// A Thread is not safe for concurrent use. Hand it to another goroutine
// only after the current one is completely done with it, and call
// Deregister exactly once when the participant leaves. Long-lived worker
// goroutines should register once and keep the handle; Register/Deregister
// per operation works but pays the registry walk each time.
type Thread struct {
	domain *Domain
	entry  *blocklist.Node[controlBlock]
}

func (t *Thread) cb() *controlBlock {
	if t.entry == nil {
		panic("heras: Thread used after Deregister")
	}
	return &t.entry.Value
}

// Domain returns the domain this handle is registered with.
func (t *Thread) Domain() *Domain { return t.domain }

// Retire hands obj to the domain for deferred destruction. The caller must
// already have unlinked obj from every shared structure: after the unlink
// no new guard can acquire it, and Retire's clock tick closes the interval
// of guards that still might hold it. Retiring the same object twice
// corrupts the retired batch; that precondition is the caller's to keep.
//
// free, if non-nil, runs exactly once when a scan decides the object is
// unreachable. Use it to return the object to a pool, unmap memory, or
// release whatever resource the object fronts. A nil free means unlinking
// was the only cleanup needed, which is the common case for plain
// heap-allocated nodes.
//
// If the private batch has reached the scan threshold, Retire runs a scan
// before returning.
func (t *Thread) Retire(obj Reclaimable, free func()) {
	n := obj.node()
	n.retiredEra = t.domain.clock.advance()
	n.drop = free

	cb := t.cb()
	n.next = cb.retired
	cb.retired = n
	cb.retiredLen++
	t.domain.stats.retired.Add(1)

	if cb.retiredLen >= t.domain.scanThreshold() {
		t.scan()
	}
}

// Scan forces a reclamation pass over the private retired batch and
// returns the number of objects freed. Most callers never need it; Retire
// scans on its own once the batch grows past the threshold.
func (t *Thread) Scan() int {
	return t.scan()
}

// Pending returns the size of the private retired batch. Orphaned batches
// adopted on the next scan are not counted.
func (t *Thread) Pending() int {
	return t.cb().retiredLen
}

// Deregister returns the control block to the domain for recycling. Every
// guard created through this handle must be reset first; their slots are
// forcibly cleared here, so a guard that outlives Deregister protects
// nothing. The retired batch gets one last scan, and whatever survives is
// pushed to the domain orphan pool for another thread to finish.
//
// Deregister panics on a handle that was already released.
func (t *Thread) Deregister() {
	if t.entry == nil {
		panic("heras: Deregister on a released Thread")
	}
	cb := t.cb()

	cb.arena.each(func(s *eraSlot) { s.clear() })

	if cb.retired != nil {
		t.scan()
	}
	if cb.retired != nil {
		t.domain.orphanRetired(cb.retired, cb.retiredLen)
		cb.retired = nil
		cb.retiredLen = 0
	}

	t.domain.blocks.Release(t.entry)
	t.domain.stats.threads.Add(-1)
	t.entry = nil
}

// adoptOrphans splices the domain orphan pool onto the private batch.
func (t *Thread) adoptOrphans() {
	head := t.domain.detachOrphans()
	if head == nil {
		return
	}
	cb := t.cb()
	n := 1
	tail := head
	for tail.next != nil {
		n++
		tail = tail.next
	}
	tail.next = cb.retired
	cb.retired = head
	cb.retiredLen += n
}

// === Slot claiming ===

func (t *Thread) claimSlot() *eraSlot {
	cb := t.cb()
	s, ok := cb.arena.claim()
	if !ok {
		panic(fmt.Errorf("%w: %d guards live on one thread", ErrSlotsExhausted, cb.arena.capacity()))
	}
	return s
}

func (t *Thread) releaseSlot(s *eraSlot) {
	t.cb().arena.release(s)
}
