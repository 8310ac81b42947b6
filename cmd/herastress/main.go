// Package main implements the herastress CLI tool.
//
// The herastress tool exercises the heras reclamation library under
// adversarial concurrent workloads and verifies that no reclamation bug
// slips through. It works by:
//
//  1. Loading stress scenarios (built-in or from YAML files)
//  2. Driving lock-free structures built on the public heras API
//  3. Poisoning every freed node so a use-after-reclaim is observable
//  4. Reporting throughput, reclamation counters and a verdict
//
// Usage:
//
//	herastress run                   # Run the built-in scenarios
//	herastress run scenarios.yaml    # Run scenarios from a file
//	herastress check                 # Quick self-check (CI friendly)
//
// A non-zero exit status means at least one scenario observed corruption
// or failed to drain, which is always a bug worth reporting.
//
// This is the CLI entry point for the standalone stress tool.
package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "run":
		runCommand(os.Args[2:])
	case "check":
		checkCommand(os.Args[2:])
	case "version", "--version", "-v":
		fmt.Printf("herastress version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`herastress - Hazard-Eras Reclamation Stress Tool

USAGE:
    herastress <command> [arguments]

COMMANDS:
    run        Run stress scenarios (built-in or from YAML files)
    check      Run a quick self-check over the built-in scenarios
    version    Show version information
    help       Show this help message

RUN FLAGS:
    -short     Cut every scenario to a fraction of its operations
    -plain     Strip ANSI colors from the report
    -list      List scenarios without running them

EXAMPLES:
    # Run the built-in scenario set
    herastress run

    # Run custom scenarios
    herastress run soak.yaml spike.yaml

    # Fast verdict for CI
    herastress check

SCENARIO FILES:
    A scenario file holds a list under the "scenarios" key:

        scenarios:
          - name: stack-soak
            workload: stack        # stack | queue | cell
            workers: 8
            ops: 500000            # operations per worker
            read_percent: 25       # pure reads (stack and cell only)
            slots: 4               # hazard-era slots per thread
            strategy: growable     # fixed | growable
            register_every: 10000  # re-register cadence, 0 = never

    Omitted fields take the same defaults the library applies.

ABOUT:
    herastress drives lock-free structures (a Treiber stack, a
    Michael-Scott queue, a single swap cell) built on the heras
    reclamation domain. Every node freed by a scan is poisoned, so a
    guarded read reaching a reclaimed node is counted instead of
    corrupting memory silently. A scenario passes only if no poison was
    seen, no node was freed twice, every value pushed was recovered
    exactly once, and the retired backlog drains to zero afterwards.

`)
}
