// scenario.go defines stress scenarios and their YAML loading.
package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/pkoval/heras"
)

// Workload names accepted in scenario files.
const (
	workloadStack = "stack"
	workloadQueue = "queue"
	workloadCell  = "cell"
)

// scenario is one stress configuration: which structure to hammer, how
// hard, and how the reclamation domain under it is tuned. Zero fields take
// defaults in normalize, so a scenario file only states what it changes.
type scenario struct {
	// Name labels the scenario in reports.
	Name string `yaml:"name"`

	// Workload selects the structure: stack, queue or cell.
	Workload string `yaml:"workload"`

	// Workers is the number of concurrent participants.
	Workers int `yaml:"workers"`

	// Ops is the number of operations each worker performs.
	Ops int `yaml:"ops"`

	// ReadPercent is the share of operations that are pure guarded
	// reads. Stack and cell workloads honor it; the queue has no pure
	// read operation and ignores it.
	ReadPercent int `yaml:"read_percent"`

	// Slots, Strategy, ThresholdA and ThresholdB tune the reclamation
	// domain, mirroring heras.Config. Zero values take the library
	// defaults; Strategy is "fixed" or "growable".
	Slots      int    `yaml:"slots"`
	Strategy   string `yaml:"strategy"`
	ThresholdA int    `yaml:"threshold_a"`
	ThresholdB int    `yaml:"threshold_b"`

	// RegisterEvery makes each worker deregister and re-register after
	// this many operations, churning control blocks through the
	// registry. Zero keeps one registration per worker for the run.
	RegisterEvery int `yaml:"register_every"`

	// Seed feeds the per-worker PRNGs. Zero picks a fixed default, so
	// runs are reproducible unless the file says otherwise.
	Seed uint64 `yaml:"seed"`
}

// scenarioFile is the on-disk layout: a list under one key, leaving room
// for file-level settings later.
type scenarioFile struct {
	Scenarios []scenario `yaml:"scenarios"`
}

// Per-scenario defaults. Domain tuning fields default to zero on purpose:
// heras.New applies its own defaults to those.
const (
	defaultWorkers = 8
	defaultOps     = 200000
	defaultSeed    = 1
)

// normalize fills defaulted fields in place.
func (sc *scenario) normalize() {
	if sc.Workload == "" {
		sc.Workload = workloadStack
	}
	if sc.Name == "" {
		sc.Name = sc.Workload
	}
	if sc.Workers == 0 {
		sc.Workers = defaultWorkers
	}
	if sc.Ops == 0 {
		sc.Ops = defaultOps
	}
	if sc.Seed == 0 {
		sc.Seed = defaultSeed
	}
}

// shorten caps the per-worker operation count, for -short runs and the
// check command.
func (sc *scenario) shorten(maxOps int) {
	if sc.Ops > maxOps {
		sc.Ops = maxOps
	}
}

// validate rejects scenarios the runner cannot execute. It expects a
// normalized scenario.
func (sc *scenario) validate() error {
	switch sc.Workload {
	case workloadStack, workloadQueue, workloadCell:
	default:
		return fmt.Errorf("scenario %q: unknown workload %q", sc.Name, sc.Workload)
	}
	if sc.Workers < 1 {
		return fmt.Errorf("scenario %q: workers must be positive, got %d", sc.Name, sc.Workers)
	}
	if sc.Ops < 1 {
		return fmt.Errorf("scenario %q: ops must be positive, got %d", sc.Name, sc.Ops)
	}
	if sc.ReadPercent < 0 || sc.ReadPercent > 100 {
		return fmt.Errorf("scenario %q: read_percent must be 0..100, got %d", sc.Name, sc.ReadPercent)
	}
	if sc.Slots < 0 || sc.ThresholdA < 0 || sc.ThresholdB < 0 || sc.RegisterEvery < 0 {
		return fmt.Errorf("scenario %q: negative tuning value", sc.Name)
	}
	switch sc.Strategy {
	case "", "fixed", "growable":
	default:
		return fmt.Errorf("scenario %q: unknown strategy %q", sc.Name, sc.Strategy)
	}
	// Queue dequeues hold two guards at once, so a fixed arena needs at
	// least two slots per thread.
	if sc.Workload == workloadQueue && sc.Strategy != "growable" && sc.Slots == 1 {
		return fmt.Errorf("scenario %q: queue needs at least 2 fixed slots", sc.Name)
	}
	return nil
}

// domainConfig translates the scenario's tuning fields into the library
// configuration. Must follow validate.
func (sc *scenario) domainConfig() heras.Config {
	cfg := heras.Config{
		Slots:      sc.Slots,
		ThresholdA: sc.ThresholdA,
		ThresholdB: sc.ThresholdB,
	}
	if sc.Strategy == "growable" {
		cfg.Strategy = heras.StrategyGrowable
	}
	return cfg
}

// loadScenarioFile parses one YAML scenario file, normalizing and
// validating every entry. Unknown keys are an error so a typo does not
// silently run a default scenario.
func loadScenarioFile(path string) ([]scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var file scenarioFile
	if err := yaml.UnmarshalStrict(data, &file); err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	if len(file.Scenarios) == 0 {
		return nil, fmt.Errorf("%s: no scenarios defined", path)
	}

	for i := range file.Scenarios {
		file.Scenarios[i].normalize()
		if err := file.Scenarios[i].validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return file.Scenarios, nil
}

// builtinScenarios is the default set run when no files are given. The
// three workloads are each pushed where they hurt: the stack through
// LIFO contention, the queue through producer/consumer handoff, the cell
// through swap storms on one address, plus a registry-churn variant that
// recycles control blocks mid-run.
func builtinScenarios() []scenario {
	scs := []scenario{
		{Name: "stack-churn", Workload: workloadStack, ReadPercent: 20, Slots: 2},
		{Name: "queue-handoff", Workload: workloadQueue, Ops: 150000},
		{Name: "cell-swap-storm", Workload: workloadCell, Ops: 300000, ReadPercent: 60, Slots: 4},
		{Name: "cell-growable", Workload: workloadCell, ReadPercent: 40, Slots: 1, Strategy: "growable"},
		{Name: "registry-churn", Workload: workloadStack, Ops: 60000, RegisterEvery: 500, Slots: 2},
	}
	for i := range scs {
		scs[i].normalize()
	}
	return scs
}
