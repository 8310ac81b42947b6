package heras

import "github.com/pkoval/heras/marked"

// Guard pins one loaded object against destruction by publishing the era
// it was read under. While the guard holds its slot, every scan in the
// domain sees the published era, and any object whose lifetime interval
// covers it survives. The type parameter is the guarded object's type; it
// must embed a Node for Reclaim to work, but plain reads need nothing
// beyond what Protect loaded.
//
// A Guard is a small value owned by the Thread that produced it and, like
// the Thread, is bound to one goroutine at a time. Assigning a guard makes
// the copy an alias of the same slot: hand a guard off by value and stop
// using the source, or use Clone for a second, independently released
// protection. Exactly one alias of each guarding value may be Reset.
//
// The zero Guard is empty and Reset on it is a no-op.
type Guard[T any] struct {
	t    *Thread
	slot *eraSlot
	ptr  *T
	tag  uintptr
}

// Protect loads src and returns a guard over the loaded object. The object
// cannot be destroyed until the guard is reset, no matter when its writer
// retires it.
//
// Acquire runs a validation loop: sample the clock, publish the sample,
// load the pointer, then re-read the clock. If the clock moved between
// publish and re-read, a concurrent retirement overlapped the publication
// and the loaded object may be newer than the published era, so the guard
// republishes the fresh reading and loads again. The loop exits as soon as
// the clock is quiet across one iteration; each extra pass costs one store
// and two loads, and passes only happen while retirements are landing.
//
// A nil load returns an empty guard holding the loaded tag; there is no
// object to pin, so no slot stays published.
func Protect[T any](t *Thread, src *marked.Atomic[T]) Guard[T] {
	slot := t.claimSlot()
	era := t.domain.clock.now()
	for {
		slot.publish(era)
		p, tag := src.Load()
		if now := t.domain.clock.now(); now != era {
			era = now
			continue
		}
		if p == nil {
			t.releaseSlot(slot)
			return Guard[T]{t: t, tag: tag}
		}
		return Guard[T]{t: t, slot: slot, ptr: p, tag: tag}
	}
}

// ProtectIf is Protect that only keeps the protection when the loaded pair
// still equals (wantPtr, wantTag). On mismatch the claimed slot is released
// before returning, so a failed acquire leaves no publication behind, and
// ok reports false with an empty guard.
//
// Use it to re-acquire an object found through an earlier traversal: a true
// result proves the link still held the expected value at some point after
// the era was published.
func ProtectIf[T any](t *Thread, src *marked.Atomic[T], wantPtr *T, wantTag uintptr) (g Guard[T], ok bool) {
	slot := t.claimSlot()
	era := t.domain.clock.now()
	for {
		slot.publish(era)
		p, tag := src.Load()
		if now := t.domain.clock.now(); now != era {
			era = now
			continue
		}
		if p != wantPtr || tag != wantTag {
			t.releaseSlot(slot)
			return Guard[T]{}, false
		}
		if p == nil {
			t.releaseSlot(slot)
			return Guard[T]{t: t, tag: tag}, true
		}
		return Guard[T]{t: t, slot: slot, ptr: p, tag: tag}, true
	}
}

// Ptr returns the guarded pointer, nil for an empty guard.
func (g *Guard[T]) Ptr() *T { return g.ptr }

// Tag returns the tag bits loaded alongside the pointer.
func (g *Guard[T]) Tag() uintptr { return g.tag }

// Get returns the guarded pointer and its tag together.
func (g *Guard[T]) Get() (*T, uintptr) { return g.ptr, g.tag }

// Reset empties the guard and withdraws its era publication. The guarded
// object becomes eligible for destruction the moment its writer's scan no
// longer sees a covering era. Reset on an empty guard is a no-op, so
// defer g.Reset() composes with every acquire path.
func (g *Guard[T]) Reset() {
	if g.slot != nil {
		g.t.releaseSlot(g.slot)
		g.slot = nil
	}
	g.ptr = nil
	g.tag = 0
}

// Reclaim retires the guarded object through the owning thread and empties
// the guard. The caller must have unlinked the object first, exactly as
// with Thread.Retire; holding the guard does not substitute for the
// unlink, it only proves the object was safe to read up to now. free is
// passed through to Retire and may be nil.
//
// Reclaim panics if T does not embed a Node. On an empty guard it does
// nothing.
func (g *Guard[T]) Reclaim(free func()) {
	p, t := g.ptr, g.t
	g.Reset()
	if p == nil {
		return
	}
	obj, ok := any(p).(Reclaimable)
	if !ok {
		panic("heras: guarded type does not embed heras.Node")
	}
	t.Retire(obj, free)
}

// Clone returns a second guard over the same object with its own slot and
// its own lifetime. The clone republishes this guard's era rather than the
// current clock: the existing publication already covers the object, so
// the copy needs no validation loop. Cloning an empty guard copies the
// value and claims nothing.
func (g *Guard[T]) Clone() Guard[T] {
	if g.slot == nil {
		return Guard[T]{t: g.t, ptr: g.ptr, tag: g.tag}
	}
	s := g.t.claimSlot()
	s.publish(g.slot.load())
	return Guard[T]{t: g.t, slot: s, ptr: g.ptr, tag: g.tag}
}
