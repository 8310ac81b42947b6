// report.go renders scenario results.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/inhies/go-bytesize"
	"github.com/mattn/go-colorable"
)

// ANSI fragments used by the reporter. The colorable writer translates
// them on terminals that need it; -plain strips them entirely.
const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
)

// reporter writes human-readable scenario reports to one destination.
type reporter struct {
	out io.Writer
}

func newReporter(plain bool) *reporter {
	if plain {
		return &reporter{out: colorable.NewNonColorable(os.Stdout)}
	}
	return &reporter{out: colorable.NewColorableStdout()}
}

// printList shows the scenarios a run would execute, without running them.
func (rp *reporter) printList(scs []scenario) {
	for _, sc := range scs {
		extras := ""
		if sc.Strategy != "" {
			extras += " strategy=" + sc.Strategy
		}
		if sc.RegisterEvery > 0 {
			extras += fmt.Sprintf(" register_every=%d", sc.RegisterEvery)
		}
		fmt.Fprintf(rp.out, "%-18s %-6s %d workers x %d ops, %d%% reads%s\n",
			sc.Name, sc.Workload, sc.Workers, sc.Ops, sc.ReadPercent, extras)
	}
}

// printResult renders the full report block for one scenario.
func (rp *reporter) printResult(r *result) {
	sc := r.sc
	fmt.Fprintf(rp.out, "%s=== %s%s (%s, %d workers x %d ops)\n",
		ansiBold, sc.Name, ansiReset, sc.Workload, sc.Workers, sc.Ops)
	fmt.Fprintf(rp.out, "  elapsed:    %v (%s ops/s)\n",
		r.elapsed.Round(time.Millisecond), formatRate(r.ops, r.elapsed))
	if r.produced > 0 || r.consumed > 0 {
		fmt.Fprintf(rp.out, "  moved:      %d values in, %d out\n", r.produced, r.consumed)
	}
	st := r.stats
	fmt.Fprintf(rp.out, "  reclaimed:  %d freed / %d retired in %d scans (%d deferrals, %d orphaned)\n",
		st.Freed, st.Retired, st.Scans, st.Deferred, st.Orphaned)
	fmt.Fprintf(rp.out, "  registry:   %d control blocks, %d slots, era %d\n",
		st.Blocks, st.Slots, st.Era)
	fmt.Fprintf(rp.out, "  allocated:  %s\n", bytesize.New(float64(r.allocated)))

	if r.ok() {
		fmt.Fprintf(rp.out, "  verdict:    %sPASS%s\n\n", ansiGreen, ansiReset)
		return
	}
	fmt.Fprintf(rp.out, "  verdict:    %sFAIL%s\n", ansiRed, ansiReset)
	for _, f := range r.failures {
		fmt.Fprintf(rp.out, "    - %s\n", f)
	}
	fmt.Fprintln(rp.out)
}

// printCheckLine renders the one-line verdict used by 'check'.
func (rp *reporter) printCheckLine(r *result) {
	if r.ok() {
		fmt.Fprintf(rp.out, "%sok%s   %-18s %8v  %d ops\n",
			ansiGreen, ansiReset, r.sc.Name, r.elapsed.Round(time.Millisecond), r.ops)
		return
	}
	fmt.Fprintf(rp.out, "%sFAIL%s %-18s\n", ansiRed, ansiReset, r.sc.Name)
	for _, f := range r.failures {
		fmt.Fprintf(rp.out, "     - %s\n", f)
	}
}

func (rp *reporter) printSummary(total, failed int) {
	if failed == 0 {
		fmt.Fprintf(rp.out, "%s%d scenarios, all passed%s\n", ansiGreen, total, ansiReset)
		return
	}
	fmt.Fprintf(rp.out, "%s%d of %d scenarios failed%s\n", ansiRed, failed, total, ansiReset)
}

// formatRate renders a throughput figure with a k/M suffix.
func formatRate(ops uint64, elapsed time.Duration) string {
	if elapsed <= 0 {
		return "n/a"
	}
	rate := float64(ops) / elapsed.Seconds()
	switch {
	case rate >= 1e6:
		return fmt.Sprintf("%.2fM", rate/1e6)
	case rate >= 1e3:
		return fmt.Sprintf("%.1fk", rate/1e3)
	default:
		return fmt.Sprintf("%.0f", rate)
	}
}
