// check.go implements the 'herastress check' command.
package main

import (
	"fmt"
	"os"
)

// checkCommand runs the built-in scenarios with the operation count
// capped, printing one verdict line per scenario. It is the CI entry
// point: fast enough for every pipeline run, strict enough that any
// reclamation bug fails the exit status.
func checkCommand(args []string) {
	plain := false
	for _, arg := range args {
		switch arg {
		case "-plain", "--plain":
			plain = true
		default:
			fmt.Fprintf(os.Stderr, "Error: unknown flag %q\n", arg)
			os.Exit(1)
		}
	}

	rep := newReporter(plain)
	scs := builtinScenarios()
	failed := 0
	for _, sc := range scs {
		sc.shorten(checkOps)
		res := executeScenario(sc)
		rep.printCheckLine(res)
		if !res.ok() {
			failed++
		}
	}
	rep.printSummary(len(scs), failed)
	if failed > 0 {
		os.Exit(1)
	}
}
