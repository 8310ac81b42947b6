package heras

import "sync/atomic"

// emptyEra marks an unpublished hazard slot. The clock starts above it so a
// live era can never collide with the sentinel.
const emptyEra uint64 = 0

// firstEra is the clock's initial reading.
const firstEra uint64 = 1

// eraClock is the domain-wide logical clock. It only moves forward, and it
// only moves when an object is retired: readers merely sample it, so the
// retirement rate, not the read rate, bounds how quickly eras burn. At one
// tick per retirement a 64-bit clock does not wrap in any realistic
// process lifetime.
type eraClock struct {
	v atomic.Uint64
}

func (c *eraClock) init() { c.v.Store(firstEra) }

// now returns the current era.
func (c *eraClock) now() uint64 { return c.v.Load() }

// advance ticks the clock and returns the new era. The new value stamps the
// retirement that caused the tick: it is the first era no reader could have
// sampled before the retired object was unlinked, which is exactly where
// the object's lifetime interval closes.
func (c *eraClock) advance() uint64 { return c.v.Add(1) }
