package workload

import (
	"github.com/pkoval/heras"
	"github.com/pkoval/heras/marked"
)

// StackNode is one stack cell. next is a plain pointer: it is written once
// before the node is published by the head CAS and never changes while the
// node is linked.
type StackNode struct {
	heras.Node
	Value uint64
	next  *StackNode
	state uint64
}

// Stack is a Treiber stack whose pops retire through the reclamation
// domain. The head tag is a miniature version counter bumped on every
// successful swap, exercising the packed-word CAS path.
type Stack struct {
	domain *heras.Domain
	head   marked.Atomic[StackNode]
	bad    corruption
}

func NewStack(d *heras.Domain) *Stack {
	return &Stack{domain: d}
}

// Push links a new node carrying v. Pushing never dereferences the old
// head, so it needs no guard and no registration.
func (s *Stack) Push(v uint64) {
	n := &StackNode{Node: s.domain.NewNode(), Value: v, state: stateLive}
	for {
		head, tag := s.head.Load()
		n.next = head
		if s.head.CompareAndSwap(head, tag, n, (tag+1)&marked.MaxTag) {
			return
		}
	}
}

// Pop unlinks the top node, retires it, and returns its value. ok is false
// on an empty stack. One hazard slot is held across the attempt.
func (s *Stack) Pop(th *heras.Thread) (v uint64, ok bool) {
	for {
		g := heras.Protect(th, &s.head)
		top := g.Ptr()
		if top == nil {
			g.Reset()
			return 0, false
		}
		s.bad.note(top.state)
		next := top.next
		if s.head.CompareAndSwap(top, g.Tag(), next, (g.Tag()+1)&marked.MaxTag) {
			v = top.Value
			g.Reclaim(s.bad.hook(&top.state))
			return v, true
		}
		g.Reset()
	}
}

// Peek reads the top value without unlinking. ok is false on an empty
// stack.
func (s *Stack) Peek(th *heras.Thread) (v uint64, ok bool) {
	g := heras.Protect(th, &s.head)
	defer g.Reset()
	top := g.Ptr()
	if top == nil {
		return 0, false
	}
	s.bad.note(top.state)
	return top.Value, true
}

// Drain pops everything, returning the count and sum of drained values.
func (s *Stack) Drain(th *heras.Thread) (n int, sum uint64) {
	for {
		v, ok := s.Pop(th)
		if !ok {
			return n, sum
		}
		n++
		sum += v
	}
}

// Poisoned returns the number of guarded reads that saw a freed node.
func (s *Stack) Poisoned() uint64 { return s.bad.poisoned.Load() }

// DoubleFreed returns the number of free hooks that ran twice.
func (s *Stack) DoubleFreed() uint64 { return s.bad.doubleFree.Load() }
