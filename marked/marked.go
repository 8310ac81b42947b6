// Package marked provides an atomic pointer container that carries a small
// integer tag alongside the pointer value, with the pair loaded, stored and
// compare-and-swapped as a single atomic word.
//
// Lock-free structures routinely need to flip a mark on a link in the same
// atomic step that validates the link itself (deletion marks in linked lists,
// version bits in trees). Storing the tag next to the pointer in a second
// word would break that atomicity, so the tag is packed into the pointer's
// low alignment bits instead.
//
// # Packing
//
// A packed word is the target address plus the tag. Because the tag never
// exceeds the target's alignment, the result is an interior pointer into the
// same object: the garbage collector still recognizes it and keeps the
// target alive. Unpacking masks the low bits off again. Targets therefore
// must be at least 8-byte aligned when non-zero tags are used; Store and
// CompareAndSwap panic on a misaligned target rather than corrupt the word.
//
// A nil pointer with a non-zero tag has no object to point into, so those
// values are represented by addresses inside a reserved 8-byte cell.
//
// # Ordering
//
// All operations are implemented with sync/atomic and are sequentially
// consistent, which is stronger than the acquire/release pairing the
// reclamation protocol in the parent module requires.
package marked

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

const (
	// TagBits is the number of tag bits carried next to the pointer.
	// Three bits fit inside the 8-byte alignment of any target that
	// embeds a 64-bit field.
	TagBits = 3

	// MaxTag is the largest storable tag value.
	MaxTag = 1<<TagBits - 1
)

// nilCell backs the representations of nil pointers with non-zero tags.
// The zero-size leading array forces 8-byte alignment of the byte array so
// that the low bits of &nilCell.b[tag] equal tag.
var nilCell struct {
	_ [0]uint64
	b [MaxTag + 1]byte
}

// Atomic is a lock-free container for a (pointer, tag) pair. The zero value
// holds (nil, 0) and is ready to use. An Atomic must not be copied after
// first use.
type Atomic[T any] struct {
	p unsafe.Pointer
}

// pack combines ptr and tag into a single word. It panics if tag exceeds
// MaxTag or if a non-zero tag is combined with a target whose address does
// not have the tag bits free.
func pack[T any](ptr *T, tag uintptr) unsafe.Pointer {
	if tag > MaxTag {
		panic(fmt.Sprintf("marked: tag %d exceeds %d-bit tag space", tag, TagBits))
	}
	if tag == 0 {
		return unsafe.Pointer(ptr)
	}
	if ptr == nil {
		return unsafe.Pointer(&nilCell.b[tag])
	}
	if uintptr(unsafe.Pointer(ptr))&MaxTag != 0 {
		panic("marked: target not 8-byte aligned, cannot carry tag bits")
	}
	return unsafe.Add(unsafe.Pointer(ptr), tag)
}

// unpack splits a packed word back into its pointer and tag.
func unpack[T any](w unsafe.Pointer) (*T, uintptr) {
	if w == nil {
		return nil, 0
	}
	tag := uintptr(w) & MaxTag
	if tag == 0 {
		return (*T)(w), 0
	}
	base := unsafe.Add(w, -int(tag))
	if base == unsafe.Pointer(&nilCell.b[0]) {
		return nil, tag
	}
	return (*T)(base), tag
}

// Load returns the current pointer and tag.
func (a *Atomic[T]) Load() (*T, uintptr) {
	return unpack[T](atomic.LoadPointer(&a.p))
}

// Store replaces the current pair with (ptr, tag).
func (a *Atomic[T]) Store(ptr *T, tag uintptr) {
	atomic.StorePointer(&a.p, pack(ptr, tag))
}

// Swap stores (ptr, tag) and returns the previous pair.
func (a *Atomic[T]) Swap(ptr *T, tag uintptr) (*T, uintptr) {
	return unpack[T](atomic.SwapPointer(&a.p, pack(ptr, tag)))
}

// CompareAndSwap installs (newPtr, newTag) if the container still holds
// exactly (oldPtr, oldTag), and reports whether the swap happened. Pointer
// and tag are compared together in one atomic step.
func (a *Atomic[T]) CompareAndSwap(oldPtr *T, oldTag uintptr, newPtr *T, newTag uintptr) bool {
	return atomic.CompareAndSwapPointer(&a.p, pack(oldPtr, oldTag), pack(newPtr, newTag))
}
