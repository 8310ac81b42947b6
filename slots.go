package heras

import "sync/atomic"

// An eraSlot holds one published hazard era. The owning thread stores to it
// (publish on guard acquire, clear on release) and every scanning thread
// loads it. Padding keeps neighbouring slots on separate cache lines so a
// scanner walking the registry does not bounce the owner's line.
type eraSlot struct {
	value atomic.Uint64
	_     [56]byte
}

func (s *eraSlot) publish(era uint64) { s.value.Store(era) }
func (s *eraSlot) clear()             { s.value.Store(emptyEra) }
func (s *eraSlot) load() uint64       { return s.value.Load() }

// slotArena provisions the hazard-era slots of one thread. claim and
// release are owner-only; each runs concurrently with both from scanning
// threads. A claimed slot still reads empty until its first publish, which
// is fine: the guard it backs is not protecting anything yet, and the owner
// publishes before it can claim again.
type slotArena interface {
	// claim returns a free slot, growing if the strategy allows.
	// ok is false when the arena is exhausted.
	claim() (s *eraSlot, ok bool)

	// release hands back a claimed slot, clearing its publication.
	release(s *eraSlot)

	// each visits every slot ever provisioned.
	each(f func(*eraSlot))

	// capacity is the number of slots currently provisioned.
	capacity() int
}

// === Fixed arena ===

// fixedSlots is the StrategyFixed arena: one flat block sized at
// construction. hint remembers where the last claim or release happened so
// the scan for a free slot usually hits on its first probe.
type fixedSlots struct {
	slots []eraSlot
	hint  int // owner-only
}

func newFixedSlots(n int, provisioned *atomic.Int64) *fixedSlots {
	provisioned.Add(int64(n))
	return &fixedSlots{slots: make([]eraSlot, n)}
}

func (f *fixedSlots) claim() (*eraSlot, bool) {
	n := len(f.slots)
	for i := 0; i < n; i++ {
		idx := f.hint + i
		if idx >= n {
			idx -= n
		}
		s := &f.slots[idx]
		if s.load() == emptyEra {
			f.hint = idx + 1
			if f.hint == n {
				f.hint = 0
			}
			return s, true
		}
	}
	return nil, false
}

func (f *fixedSlots) release(s *eraSlot) {
	s.clear()
	for i := range f.slots {
		if &f.slots[i] == s {
			f.hint = i
			return
		}
	}
}

func (f *fixedSlots) each(fn func(*eraSlot)) {
	for i := range f.slots {
		fn(&f.slots[i])
	}
}

func (f *fixedSlots) capacity() int { return len(f.slots) }

// === Growable arena ===

// growSlots is the StrategyGrowable arena: a prepend-only list of
// fixed-size chunks. Only the owner ever links a chunk, but scanners walk
// the list concurrently, so the head is atomic and chunk links are
// immutable once published.
type growSlots struct {
	head        atomic.Pointer[slotChunk]
	chunkSize   int
	total       int // owner-only
	provisioned *atomic.Int64
}

type slotChunk struct {
	slots []eraSlot
	next  *slotChunk // immutable once linked
}

func newGrowSlots(chunk int, provisioned *atomic.Int64) *growSlots {
	g := &growSlots{chunkSize: chunk, provisioned: provisioned}
	g.grow()
	return g
}

// grow links in one more chunk and returns it. The chunk's slots are fully
// built before the head store makes them visible to scanners.
func (g *growSlots) grow() *slotChunk {
	ch := &slotChunk{slots: make([]eraSlot, g.chunkSize), next: g.head.Load()}
	g.head.Store(ch)
	g.total += g.chunkSize
	g.provisioned.Add(int64(g.chunkSize))
	return ch
}

func (g *growSlots) claim() (*eraSlot, bool) {
	for ch := g.head.Load(); ch != nil; ch = ch.next {
		for i := range ch.slots {
			if ch.slots[i].load() == emptyEra {
				return &ch.slots[i], true
			}
		}
	}
	ch := g.grow()
	return &ch.slots[0], true
}

func (g *growSlots) release(s *eraSlot) { s.clear() }

func (g *growSlots) each(fn func(*eraSlot)) {
	for ch := g.head.Load(); ch != nil; ch = ch.next {
		for i := range ch.slots {
			fn(&ch.slots[i])
		}
	}
}

func (g *growSlots) capacity() int { return g.total }
