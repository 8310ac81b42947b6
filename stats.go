package heras

import (
	"fmt"
	"sync/atomic"
)

// domainStats are the live counters behind Domain.Stats. Each is updated
// atomically on its own; there is no cross-counter transaction.
type domainStats struct {
	threads  atomic.Int64 // currently registered
	blocks   atomic.Int64 // control blocks ever created
	retired  atomic.Uint64
	freed    atomic.Uint64
	deferred atomic.Uint64
	scans    atomic.Uint64
	orphaned atomic.Uint64
}

// Stats is a point-in-time snapshot of a Domain's reclamation counters.
// Counters are read individually, so a snapshot taken under load is not a
// consistent cut, but each number is exact for some recent moment.
type Stats struct {
	Era      uint64 // current era clock reading
	Threads  int64  // currently registered threads
	Blocks   int64  // control blocks ever created
	Slots    int64  // hazard-era slots provisioned domain-wide
	Retired  uint64 // objects handed to Retire
	Freed    uint64 // objects destroyed by scans
	Deferred uint64 // scan decisions that kept an object for later
	Scans    uint64 // reclamation passes run
	Orphaned uint64 // retired objects pushed to the orphan pool
}

// Pending returns the number of objects retired but not yet freed.
func (s Stats) Pending() uint64 { return s.Retired - s.Freed }

func (s Stats) String() string {
	return fmt.Sprintf(
		"era=%d threads=%d blocks=%d slots=%d retired=%d freed=%d pending=%d scans=%d deferred=%d orphaned=%d",
		s.Era, s.Threads, s.Blocks, s.Slots,
		s.Retired, s.Freed, s.Pending(), s.Scans, s.Deferred, s.Orphaned,
	)
}

// Stats snapshots the domain counters. Freed is read before Retired so
// Pending can never go negative across the two loads.
func (d *Domain) Stats() Stats {
	freed := d.stats.freed.Load()
	return Stats{
		Era:      d.clock.now(),
		Threads:  d.stats.threads.Load(),
		Blocks:   d.stats.blocks.Load(),
		Slots:    d.provisioned.Load(),
		Freed:    freed,
		Retired:  d.stats.retired.Load(),
		Deferred: d.stats.deferred.Load(),
		Scans:    d.stats.scans.Load(),
		Orphaned: d.stats.orphaned.Load(),
	}
}
