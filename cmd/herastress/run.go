// run.go implements the 'herastress run' command and the scenario runner.
package main

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeebo/pcg"

	"github.com/pkoval/heras"
	"github.com/pkoval/heras/internal/workload"
)

// runCommand implements the 'herastress run' command.
//
// Flow:
//  1. Parse flags and scenario files
//  2. Load scenarios (built-in set when no files are given)
//  3. Execute each scenario and print its report
//  4. Exit non-zero if any scenario failed
func runCommand(args []string) {
	opts, files, err := parseRunArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var scenarios []scenario
	if len(files) == 0 {
		scenarios = builtinScenarios()
	} else {
		for _, path := range files {
			scs, err := loadScenarioFile(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			scenarios = append(scenarios, scs...)
		}
	}

	rep := newReporter(opts.plain)
	if opts.list {
		rep.printList(scenarios)
		return
	}

	failed := 0
	for _, sc := range scenarios {
		if opts.short {
			sc.shorten(shortRunOps)
		}
		res := executeScenario(sc)
		rep.printResult(res)
		if !res.ok() {
			failed++
		}
	}
	rep.printSummary(len(scenarios), failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// Operation caps applied by 'run -short' and 'check'.
const (
	shortRunOps = 20000
	checkOps    = 10000
)

// runOptions holds the parsed 'run' flags.
type runOptions struct {
	short bool
	plain bool
	list  bool
}

// parseRunArgs separates flags from scenario files. Flags may appear
// anywhere; everything else is a file path.
func parseRunArgs(args []string) (runOptions, []string, error) {
	var opts runOptions
	var files []string
	for _, arg := range args {
		switch arg {
		case "-short", "--short":
			opts.short = true
		case "-plain", "--plain":
			opts.plain = true
		case "-list", "--list":
			opts.list = true
		default:
			if len(arg) > 0 && arg[0] == '-' {
				return opts, nil, fmt.Errorf("unknown flag %q", arg)
			}
			files = append(files, arg)
		}
	}
	return opts, files, nil
}

// result scores one executed scenario.
type result struct {
	sc      scenario
	elapsed time.Duration

	ops         uint64 // operations completed across all workers
	produced    uint64 // values pushed into the structure
	consumed    uint64 // values recovered, final drain included
	poisoned    uint64 // guarded reads that saw a freed node
	doubleFreed uint64 // free hooks that ran twice
	allocated   uint64 // bytes allocated during the run

	stats    heras.Stats
	failures []string
}

func (r *result) ok() bool { return len(r.failures) == 0 }

func (r *result) fail(format string, args ...any) {
	r.failures = append(r.failures, fmt.Sprintf(format, args...))
}

// tally accumulates counters across workers while a scenario runs.
type tally struct {
	ops         atomic.Uint64
	produced    atomic.Uint64
	consumed    atomic.Uint64
	producedSum atomic.Uint64
	consumedSum atomic.Uint64

	// Filled once after the workers stop.
	poisoned    uint64
	doubleFreed uint64
}

// executeScenario runs one scenario to completion and scores it. The
// verdict checks the properties the library guarantees: no poisoned
// reads, no double frees, value conservation, and a retired backlog that
// drains to zero once the run quiesces.
func executeScenario(sc scenario) *result {
	d := heras.New(sc.domainConfig())

	var before runtime.MemStats
	runtime.ReadMemStats(&before)

	var tl tally
	start := time.Now()
	switch sc.Workload {
	case workloadQueue:
		runQueue(d, sc, &tl)
	case workloadCell:
		runCell(d, sc, &tl)
	default:
		runStack(d, sc, &tl)
	}
	elapsed := time.Since(start)

	var after runtime.MemStats
	runtime.ReadMemStats(&after)

	r := &result{
		sc:          sc,
		elapsed:     elapsed,
		ops:         tl.ops.Load(),
		produced:    tl.produced.Load(),
		consumed:    tl.consumed.Load(),
		poisoned:    tl.poisoned,
		doubleFreed: tl.doubleFreed,
		allocated:   after.TotalAlloc - before.TotalAlloc,
		stats:       d.Stats(),
	}

	if r.poisoned > 0 {
		r.fail("%d guarded reads saw a freed node", r.poisoned)
	}
	if r.doubleFreed > 0 {
		r.fail("%d nodes freed twice", r.doubleFreed)
	}
	if r.produced != r.consumed {
		r.fail("conservation broken: %d values in, %d out", r.produced, r.consumed)
	}
	if in, out := tl.producedSum.Load(), tl.consumedSum.Load(); in != out {
		r.fail("value sums diverge: %d in, %d out", in, out)
	}
	if pending := r.stats.Pending(); pending != 0 {
		r.fail("%d retired objects still pending after quiescent scan", pending)
	}
	return r
}

// runWorkers drives sc.Workers goroutines through sc.Ops operations each,
// recycling registrations on the scenario's cadence. op receives the
// worker's current thread handle and PRNG.
func runWorkers(d *heras.Domain, sc scenario, op func(th *heras.Thread, rng *pcg.T)) {
	var wg sync.WaitGroup
	for w := 0; w < sc.Workers; w++ {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			rng := pcg.New(seed)
			th := d.Register()
			for i := 0; i < sc.Ops; i++ {
				if sc.RegisterEvery > 0 && i > 0 && i%sc.RegisterEvery == 0 {
					th.Deregister()
					th = d.Register()
				}
				op(th, &rng)
			}
			th.Deregister()
		}(sc.Seed + uint64(w))
	}
	wg.Wait()
}

// drainAndScan empties whatever the run left behind and forces the final
// reclamation pass, so the pending gauge measures leaks, not timing.
func drainAndScan(d *heras.Domain, drain func(th *heras.Thread) (int, uint64), tl *tally) {
	th := d.Register()
	defer th.Deregister()
	if drain != nil {
		n, sum := drain(th)
		tl.consumed.Add(uint64(n))
		tl.consumedSum.Add(sum)
	}
	th.Scan()
}

func runStack(d *heras.Domain, sc scenario, tl *tally) {
	s := workload.NewStack(d)
	runWorkers(d, sc, func(th *heras.Thread, rng *pcg.T) {
		tl.ops.Add(1)
		if int(rng.Uint32()%100) < sc.ReadPercent {
			s.Peek(th)
			return
		}
		if rng.Uint32()&1 == 0 {
			v := uint64(rng.Uint32())
			s.Push(v)
			tl.produced.Add(1)
			tl.producedSum.Add(v)
			return
		}
		if v, ok := s.Pop(th); ok {
			tl.consumed.Add(1)
			tl.consumedSum.Add(v)
		}
	})
	drainAndScan(d, s.Drain, tl)
	tl.poisoned = s.Poisoned()
	tl.doubleFreed = s.DoubleFreed()
}

func runQueue(d *heras.Domain, sc scenario, tl *tally) {
	q := workload.NewQueue(d)
	runWorkers(d, sc, func(th *heras.Thread, rng *pcg.T) {
		tl.ops.Add(1)
		if rng.Uint32()&1 == 0 {
			v := uint64(rng.Uint32())
			q.Enqueue(th, v)
			tl.produced.Add(1)
			tl.producedSum.Add(v)
			return
		}
		if v, ok := q.Dequeue(th); ok {
			tl.consumed.Add(1)
			tl.consumedSum.Add(v)
		}
	})
	drainAndScan(d, q.Drain, tl)
	tl.poisoned = q.Poisoned()
	tl.doubleFreed = q.DoubleFreed()
}

func runCell(d *heras.Domain, sc scenario, tl *tally) {
	c := workload.NewCell(d, 0)
	runWorkers(d, sc, func(th *heras.Thread, rng *pcg.T) {
		tl.ops.Add(1)
		if int(rng.Uint32()%100) < sc.ReadPercent {
			if rng.Uint32()&1 == 0 {
				c.Read(th)
			} else {
				c.Reread(th)
			}
			return
		}
		// A won swap moves exactly one node in and one out, so the
		// conservation check degenerates to swaps balancing.
		if c.Swap(th, uint64(rng.Uint32())) {
			tl.produced.Add(1)
			tl.consumed.Add(1)
		}
	})
	drainAndScan(d, nil, tl)
	tl.poisoned = c.Poisoned()
	tl.doubleFreed = c.DoubleFreed()
}
