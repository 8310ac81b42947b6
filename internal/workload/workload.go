// Package workload provides small lock-free structures built on the public
// reclamation API, instrumented for stress runs: every node carries a state
// word that the free hook poisons, so a reclamation bug surfaces as a
// counted poison hit instead of silent memory corruption.
//
// The structures are real (a Treiber stack, a two-lock-free queue and a
// swap-heavy single cell), but their job here is adversarial: maximum
// retire/protect churn with verifiable conservation of values.
package workload

import "sync/atomic"

const (
	stateLive   uint64 = 0xA11CE
	statePoison uint64 = 0xDEAD
)

// corruption tallies the two ways a reclamation bug can show up in a
// workload: a guarded read that sees a poisoned node, and a free hook that
// runs twice for the same node.
type corruption struct {
	poisoned   atomic.Uint64
	doubleFree atomic.Uint64
}

// note inspects a node state under an active guard.
func (c *corruption) note(state uint64) {
	if state != stateLive {
		c.poisoned.Add(1)
	}
}

// hook returns the free hook for a node state word.
func (c *corruption) hook(state *uint64) func() {
	return func() {
		if *state != stateLive {
			c.doubleFree.Add(1)
		}
		*state = statePoison
	}
}
