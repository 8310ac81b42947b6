package heras

import (
	"github.com/pkoval/heras/internal/blocklist"
)

// Shared test fixtures. entry is the canonical guarded payload: a value to
// read under protection and a state word the free hooks flip, so a read
// after free shows up as a poisoned state instead of silent corruption.
const (
	stateLive   uint64 = 0xA11CE
	statePoison uint64 = 0xDEAD
)

type entry struct {
	Node
	val   uint64
	state uint64
}

func newEntry(d *Domain, val uint64) *entry {
	return &entry{Node: d.NewNode(), val: val, state: stateLive}
}

// poison is the standard free hook: flip the state and fail loudly on a
// second visit.
func (e *entry) poison() func() {
	return func() {
		if e.state != stateLive {
			panic("entry freed twice")
		}
		e.state = statePoison
	}
}

// publishedSlots counts non-empty hazard slots across the whole registry.
func publishedSlots(d *Domain) int {
	n := 0
	d.blocks.Range(func(b *blocklist.Node[controlBlock]) bool {
		b.Value.arena.each(func(s *eraSlot) {
			if s.load() != emptyEra {
				n++
			}
		})
		return true
	})
	return n
}
