package heras

import (
	"strings"
	"testing"

	"github.com/pkoval/heras/marked"
)

// TestNew_ZeroConfig verifies a zero Config produces a working domain with
// the documented defaults.
func TestNew_ZeroConfig(t *testing.T) {
	d := New(Config{})

	s := d.Stats()
	if s.Era != firstEra {
		t.Errorf("initial era = %d, want %d", s.Era, firstEra)
	}
	if s.Slots != 0 {
		t.Errorf("slots before any registration = %d, want 0", s.Slots)
	}

	th := d.Register()
	defer th.Deregister()
	if got := d.Stats().Slots; got != DefaultSlots {
		t.Errorf("slots after one registration = %d, want %d", got, DefaultSlots)
	}
}

// TestNewNode_StampsCreationEra verifies objects open their lifetime
// interval at the era they were built in.
func TestNewNode_StampsCreationEra(t *testing.T) {
	d := New(Config{})
	th := d.Register()
	defer th.Deregister()

	n := d.NewNode()
	if n.createdEra != firstEra {
		t.Errorf("createdEra = %d, want %d", n.createdEra, firstEra)
	}

	// A retirement ticks the clock; the next object must carry the new era.
	th.Retire(newEntry(d, 1), nil)
	n = d.NewNode()
	if n.createdEra != firstEra+1 {
		t.Errorf("createdEra after a retirement = %d, want %d", n.createdEra, firstEra+1)
	}
}

// TestRegister_RecyclesControlBlocks verifies deregistered blocks are
// reused instead of growing the registry.
func TestRegister_RecyclesControlBlocks(t *testing.T) {
	d := New(Config{})

	t1 := d.Register()
	if got := d.Stats().Blocks; got != 1 {
		t.Fatalf("blocks after first register = %d, want 1", got)
	}
	t1.Deregister()

	t2 := d.Register()
	defer t2.Deregister()
	if got := d.Stats().Blocks; got != 1 {
		t.Errorf("blocks after recycle = %d, want 1", got)
	}
	if got := d.Stats().Slots; got != DefaultSlots {
		t.Errorf("slots after recycle = %d, want %d (recycling must not reprovision)", got, DefaultSlots)
	}

	// A second live thread needs its own block.
	t3 := d.Register()
	defer t3.Deregister()
	if got := d.Stats().Blocks; got != 2 {
		t.Errorf("blocks with two live threads = %d, want 2", got)
	}
	if got := d.Stats().Threads; got != 2 {
		t.Errorf("threads = %d, want 2", got)
	}
}

// TestDeregister_ClearsLeakedPublication verifies that a guard leaked past
// Deregister leaves no stale era behind: the recycled block must start with
// every slot empty, otherwise the leak would pin reclamation forever.
func TestDeregister_ClearsLeakedPublication(t *testing.T) {
	d := New(Config{})
	var cell marked.Atomic[entry]
	cell.Store(newEntry(d, 1), 0)

	t1 := d.Register()
	g := Protect(t1, &cell)
	if g.Ptr() == nil {
		t.Fatal("Protect returned empty guard on a populated cell")
	}
	if got := publishedSlots(d); got != 1 {
		t.Fatalf("published slots while guarding = %d, want 1", got)
	}

	// Leak g on purpose.
	t1.Deregister()
	if got := publishedSlots(d); got != 0 {
		t.Errorf("published slots after deregister = %d, want 0", got)
	}

	t2 := d.Register()
	defer t2.Deregister()
	if got := publishedSlots(d); got != 0 {
		t.Errorf("published slots after recycling the block = %d, want 0", got)
	}
}

// TestDeregister_OrphansGuardedBatch walks the full orphan path: a thread
// leaves while its retired batch is still pinned by another thread's guard,
// the batch lands in the orphan pool, and the next scan anywhere adopts and
// finishes it.
func TestDeregister_OrphansGuardedBatch(t *testing.T) {
	d := New(Config{})
	keeper := d.Register()
	defer keeper.Deregister()

	var cell marked.Atomic[entry]
	e := newEntry(d, 7)
	cell.Store(e, 0)

	g := Protect(keeper, &cell)

	temp := d.Register()
	cell.Store(nil, 0)
	temp.Retire(e, e.poison())
	temp.Deregister()

	s := d.Stats()
	if s.Orphaned != 1 {
		t.Fatalf("orphaned = %d, want 1", s.Orphaned)
	}
	if s.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", s.Pending())
	}
	if e.state != stateLive {
		t.Fatal("guarded object was freed during deregister")
	}

	// Still guarded: an adopting scan must keep it.
	if freed := keeper.Scan(); freed != 0 {
		t.Fatalf("scan freed %d objects under an active guard", freed)
	}
	if got := keeper.Pending(); got != 1 {
		t.Errorf("adopter pending = %d, want 1 after adopting the orphan", got)
	}

	g.Reset()
	if freed := keeper.Scan(); freed != 1 {
		t.Errorf("scan freed %d objects after guard reset, want 1", freed)
	}
	if e.state != statePoison {
		t.Error("free hook did not run")
	}
	if got := d.Stats().Pending(); got != 0 {
		t.Errorf("pending = %d after final scan, want 0", got)
	}
}

// TestRegister_AdoptsOrphans verifies a fresh registration picks up
// batches left behind by departed threads.
func TestRegister_AdoptsOrphans(t *testing.T) {
	d := New(Config{})
	keeper := d.Register()
	defer keeper.Deregister()

	var cell marked.Atomic[entry]
	e := newEntry(d, 3)
	cell.Store(e, 0)
	g := Protect(keeper, &cell)

	temp := d.Register()
	cell.Store(nil, 0)
	temp.Retire(e, nil)
	temp.Deregister()

	adopter := d.Register()
	defer adopter.Deregister()
	if got := adopter.Pending(); got != 1 {
		t.Errorf("fresh registration pending = %d, want 1 adopted orphan", got)
	}
	g.Reset()
}

func TestThread_UseAfterDeregisterPanics(t *testing.T) {
	d := New(Config{})
	th := d.Register()
	th.Deregister()

	defer func() {
		if recover() == nil {
			t.Error("Retire on a released Thread did not panic")
		}
	}()
	th.Retire(newEntry(d, 1), nil)
}

func TestThread_DoubleDeregisterPanics(t *testing.T) {
	d := New(Config{})
	th := d.Register()
	th.Deregister()

	defer func() {
		if recover() == nil {
			t.Error("second Deregister did not panic")
		}
	}()
	th.Deregister()
}

func TestStats_String(t *testing.T) {
	d := New(Config{})
	th := d.Register()
	defer th.Deregister()
	th.Retire(newEntry(d, 1), nil)
	th.Scan()

	out := d.Stats().String()
	for _, field := range []string{"era=", "threads=1", "slots=", "retired=1", "freed=1", "pending=0", "scans="} {
		if !strings.Contains(out, field) {
			t.Errorf("Stats.String() = %q, missing %q", out, field)
		}
	}
}
