package heras

import (
	"sync/atomic"

	"github.com/pkoval/heras/internal/blocklist"
)

// Domain is one independent reclamation universe: an era clock, a registry
// of thread control blocks, and an orphan pool for batches whose owner left
// before they drained. Objects retired in one domain are invisible to every
// other domain's guards.
//
// A Domain has no teardown: drop every Thread and the Domain itself becomes
// garbage like any other value. Construct one per process or per data
// structure, whichever matches the lifetime of the objects it protects.
type Domain struct {
	cfg   Config
	clock eraClock

	blocks  blocklist.List[controlBlock]
	orphans atomic.Pointer[Node]

	// provisioned counts hazard-era slots ever created across the
	// registry. It feeds the scan threshold and never decreases:
	// control blocks are recycled, not torn down, so their slots stay
	// scannable for the life of the domain.
	provisioned atomic.Int64

	stats domainStats
}

// New builds a Domain from cfg, applying defaults to zero fields. It panics
// on negative sizes or an unknown strategy; a zero Config is always valid.
func New(cfg Config) *Domain {
	cfg.validate()
	d := &Domain{cfg: cfg.withDefaults()}
	d.clock.init()
	return d
}

// NewNode stamps the reclamation bookkeeping for an object created now.
// Copy the result into the object before publishing it to other threads;
// the stamp records the era the object's lifetime interval opens at.
func (d *Domain) NewNode() Node {
	return Node{createdEra: d.clock.now()}
}

// Register binds the calling goroutine to the domain and returns its
// handle. A released control block is recycled when one is free; otherwise
// a fresh block is provisioned and linked into the registry. The handle
// also adopts any orphaned retired batches so work left behind by departed
// threads cannot sit forever.
//
// Register is safe to call concurrently. The returned Thread is not: it
// belongs to one goroutine until Deregister.
func (d *Domain) Register() *Thread {
	entry, reused := d.blocks.Acquire(func() controlBlock {
		return controlBlock{arena: d.newArena()}
	})
	if !reused {
		d.stats.blocks.Add(1)
	}
	d.stats.threads.Add(1)

	t := &Thread{domain: d, entry: entry}
	t.adoptOrphans()
	return t
}

func (d *Domain) newArena() slotArena {
	if d.cfg.Strategy == StrategyGrowable {
		return newGrowSlots(d.cfg.Slots, &d.provisioned)
	}
	return newFixedSlots(d.cfg.Slots, &d.provisioned)
}

// scanThreshold is the retired-batch size that forces a scan: A*S+B over
// the domain-wide slot count S.
func (d *Domain) scanThreshold() int {
	return d.cfg.ThresholdA*int(d.provisioned.Load()) + d.cfg.ThresholdB
}

// === Orphan pool ===

// orphanRetired pushes a nil-terminated retired batch onto the orphan
// pool. Ownership of the chain transfers to whichever thread detaches the
// pool next.
func (d *Domain) orphanRetired(head *Node, n int) {
	tail := head
	for tail.next != nil {
		tail = tail.next
	}
	for {
		old := d.orphans.Load()
		tail.next = old
		if d.orphans.CompareAndSwap(old, head) {
			d.stats.orphaned.Add(uint64(n))
			return
		}
	}
}

// detachOrphans takes the whole orphan pool in one swap.
func (d *Domain) detachOrphans() *Node {
	return d.orphans.Swap(nil)
}
