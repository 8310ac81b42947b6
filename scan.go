package heras

import (
	"slices"

	"github.com/pkoval/heras/internal/blocklist"
)

// scan is one reclamation pass. It adopts any orphaned batches, snapshots
// every published era in the registry, and walks the private retired batch
// freeing each object whose lifetime interval no published era falls into.
//
// The decision per object is an interval test. An object constructed at
// era c and retired at era r was reachable during [c, r): a reader that
// published era e could have loaded it only if c <= e < r. An era below c
// predates the object, an era at or above r postdates the unlink (r is the
// clock value the retirement itself produced, so a reader publishing r saw
// the object already gone). One sorted pass over the snapshot answers the
// test with a binary search per object.
//
// The snapshot is taken after the adoption splice and covers every slot of
// every block, active or not: a block released mid-scan reads as zeros,
// and a block claimed mid-scan publishes eras at least as fresh as the
// retirements that preceded it, so staleness only ever errs toward keeping
// an object one scan longer.
func (t *Thread) scan() int {
	d := t.domain
	t.adoptOrphans()
	cb := t.cb()
	d.stats.scans.Add(1)

	eras := cb.scratch[:0]
	d.blocks.Range(func(entry *blocklist.Node[controlBlock]) bool {
		entry.Value.arena.each(func(s *eraSlot) {
			if e := s.load(); e != emptyEra {
				eras = append(eras, e)
			}
		})
		return true
	})
	slices.Sort(eras)
	eras = slices.Compact(eras)
	cb.scratch = eras

	freed, kept := 0, 0
	var keep *Node
	n := cb.retired
	cb.retired = nil
	for n != nil {
		next := n.next
		if protectedBy(eras, n.createdEra, n.retiredEra) {
			n.next = keep
			keep = n
			kept++
		} else {
			n.next = nil
			if n.drop != nil {
				n.drop()
			}
			n.drop = nil
			freed++
		}
		n = next
	}
	cb.retired = keep
	cb.retiredLen = kept

	d.stats.freed.Add(uint64(freed))
	d.stats.deferred.Add(uint64(kept))
	return freed
}

// protectedBy reports whether any published era e satisfies
// created <= e < retired. eras must be sorted ascending.
func protectedBy(eras []uint64, created, retired uint64) bool {
	i, _ := slices.BinarySearch(eras, created)
	return i < len(eras) && eras[i] < retired
}
