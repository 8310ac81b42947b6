package workload

import (
	"github.com/pkoval/heras"
	"github.com/pkoval/heras/marked"
)

// CellNode is one published value of a swap cell.
type CellNode struct {
	heras.Node
	Value uint64
	state uint64
}

// Cell is a single shared slot whose writers replace the value wholesale.
// It is the minimal structure the guard protocol exists for: every read
// dereferences whatever the cell holds while writers continuously retire
// it, so the window between era publication and pointer load is under
// constant attack.
type Cell struct {
	domain *heras.Domain
	cell   marked.Atomic[CellNode]
	bad    corruption
}

// NewCell returns a cell holding v. The cell is never empty afterwards:
// swaps replace the resident node, they do not remove it.
func NewCell(d *heras.Domain, v uint64) *Cell {
	c := &Cell{domain: d}
	c.cell.Store(&CellNode{Node: d.NewNode(), Value: v, state: stateLive}, 0)
	return c
}

// Read returns the current value under guard.
func (c *Cell) Read(th *heras.Thread) uint64 {
	g := heras.Protect(th, &c.cell)
	defer g.Reset()
	n := g.Ptr()
	c.bad.note(n.state)
	return n.Value
}

// Reread loads the pair raw and then conditionally re-acquires it, the
// pattern a traversal uses to revisit a node found earlier. ok reports
// whether the cell still held the observed pair when protection landed; a
// swap racing into the window between the raw load and the publication
// makes it false.
func (c *Cell) Reread(th *heras.Thread) (v uint64, ok bool) {
	p, tag := c.cell.Load()
	g, ok := heras.ProtectIf(th, &c.cell, p, tag)
	if !ok {
		return 0, false
	}
	defer g.Reset()
	n := g.Ptr()
	c.bad.note(n.state)
	return n.Value, true
}

// Swap publishes a fresh node carrying v and retires the one it displaces.
// ok reports whether this call won the race; on a lost race nothing is
// retired and the fresh node is abandoned to the collector.
func (c *Cell) Swap(th *heras.Thread, v uint64) bool {
	fresh := &CellNode{Node: c.domain.NewNode(), Value: v, state: stateLive}
	g := heras.Protect(th, &c.cell)
	old := g.Ptr()
	c.bad.note(old.state)
	if c.cell.CompareAndSwap(old, g.Tag(), fresh, (g.Tag()+1)&marked.MaxTag) {
		g.Reclaim(c.bad.hook(&old.state))
		return true
	}
	g.Reset()
	return false
}

// Poisoned returns the number of guarded reads that saw a freed node.
func (c *Cell) Poisoned() uint64 { return c.bad.poisoned.Load() }

// DoubleFreed returns the number of free hooks that ran twice.
func (c *Cell) DoubleFreed() uint64 { return c.bad.doubleFree.Load() }
