package heras

// controlBlock is the per-thread reclamation state. It lives inside a
// registry entry and outlives any single owner: when a thread deregisters,
// its published slots are cleared and the block is handed back for a later
// Register to recycle, arena and scratch buffers intact.
type controlBlock struct {
	arena slotArena

	// retired is the private batch of retired objects awaiting a scan,
	// newest first. Owner-only; pushed to the domain orphan pool when
	// the owner deregisters with the batch still non-empty.
	retired    *Node
	retiredLen int

	// scratch carries the era snapshot buffer between scans so steady
	// state scanning does not allocate.
	scratch []uint64
}
