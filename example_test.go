package heras_test

import (
	"fmt"

	"github.com/pkoval/heras"
	"github.com/pkoval/heras/marked"
)

type record struct {
	heras.Node
	value string
}

// Example walks the full lifecycle of one shared cell: protect, replace,
// retire, and observe that reclamation waits for the guard.
func Example() {
	d := heras.New(heras.Config{})

	var head marked.Atomic[record]
	head.Store(&record{Node: d.NewNode(), value: "v1"}, 0)

	th := d.Register()
	defer th.Deregister()

	g := heras.Protect(th, &head)
	fmt.Println("guarded:", g.Ptr().value)

	// Swap in a replacement and retire the old record.
	old, tag := head.Load()
	head.CompareAndSwap(old, tag, &record{Node: d.NewNode(), value: "v2"}, 0)
	th.Retire(old, func() { fmt.Println("freed:", old.value) })

	fmt.Println("freed while guarded:", th.Scan())
	g.Reset()
	fmt.Println("freed after reset:", th.Scan())

	// Output:
	// guarded: v1
	// freed while guarded: 0
	// freed: v1
	// freed after reset: 1
}

// Example_conditional re-acquires a pointer found during an earlier
// traversal, keeping the protection only if the link has not moved since.
func Example_conditional() {
	d := heras.New(heras.Config{})

	var head marked.Atomic[record]
	first := &record{Node: d.NewNode(), value: "stable"}
	head.Store(first, 1)

	th := d.Register()
	defer th.Deregister()

	if g, ok := heras.ProtectIf(th, &head, first, 1); ok {
		fmt.Println("still linked:", g.Ptr().value)
		g.Reset()
	}

	head.Store(&record{Node: d.NewNode(), value: "moved"}, 2)
	if _, ok := heras.ProtectIf(th, &head, first, 1); !ok {
		fmt.Println("link changed, acquire refused")
	}

	// Output:
	// still linked: stable
	// link changed, acquire refused
}
