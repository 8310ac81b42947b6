package heras

// Node carries the reclamation bookkeeping for one shared object: the era
// interval the object lived through and the link chaining it into a retired
// batch. Embed it in any type that will be handed to Retire:
//
//	type entry struct {
//		heras.Node
//		key, val uint64
//	}
//
//	e := &entry{Node: domain.NewNode(), key: k, val: v}
//
// The construction stamp is written by Domain.NewNode before the object is
// published through an atomic pointer, and the retirement stamp is written
// by Thread.Retire after the object is unlinked. Both are plain fields: each
// is only ever read by a thread that owns the node at that moment (the
// publishing structure's readers never touch them, and a retired batch
// changes hands only through atomic transfers), so the surrounding atomics
// already order every access.
type Node struct {
	createdEra uint64
	retiredEra uint64

	// next chains the object into its owner's retired batch, or into the
	// domain orphan pool between owners.
	next *Node

	// drop is bound at retirement and runs when a scan frees the object.
	// nil means there is nothing to do beyond unlinking: once no guard
	// can reach the object, the collector takes it on its own.
	drop func()
}

func (n *Node) node() *Node { return n }

// Reclaimable is satisfied by embedding a Node. The unexported method keeps
// the set of retirable types closed over that embedding.
type Reclaimable interface {
	node() *Node
}
