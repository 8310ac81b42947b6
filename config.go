package heras

import "fmt"

// Strategy selects how a thread's hazard-era slots are provisioned.
type Strategy uint8

const (
	// StrategyFixed gives every thread exactly Config.Slots slots for
	// the lifetime of its control block. Claiming beyond them panics
	// with ErrSlotsExhausted. This is the default: the slot demand of a
	// thread equals its deepest guard nesting, which is a small
	// structural constant for most data structures.
	StrategyFixed Strategy = iota

	// StrategyGrowable starts every thread with Config.Slots slots and
	// links in another chunk of the same size whenever the thread runs
	// out. Chunks are never returned; a thread's high-water mark of
	// simultaneous guards sets its permanent footprint.
	StrategyGrowable
)

func (s Strategy) String() string {
	switch s {
	case StrategyFixed:
		return "fixed"
	case StrategyGrowable:
		return "growable"
	default:
		return fmt.Sprintf("strategy(%d)", uint8(s))
	}
}

// Defaults applied by New to zero Config fields.
const (
	DefaultSlots      = 3
	DefaultThresholdA = 2
	DefaultThresholdB = 100
)

// Config parameterizes a Domain. The zero value selects the defaults:
// three fixed slots per thread and the 2*S+100 scan threshold.
type Config struct {
	// Slots is the per-thread slot count, or the chunk size under
	// StrategyGrowable. Zero means DefaultSlots.
	Slots int

	// Strategy picks the slot provisioning policy.
	Strategy Strategy

	// ThresholdA and ThresholdB control when retirement triggers a
	// scan: a thread scans once its private batch holds at least A*S+B
	// retired objects, where S is the number of hazard-era slots
	// provisioned across the whole domain. Scaling with S keeps scans
	// amortized against their own cost, which grows with the slots a
	// scan must read. Zero means DefaultThresholdA / DefaultThresholdB.
	ThresholdA int
	ThresholdB int
}

func (c Config) withDefaults() Config {
	if c.Slots == 0 {
		c.Slots = DefaultSlots
	}
	if c.ThresholdA == 0 {
		c.ThresholdA = DefaultThresholdA
	}
	if c.ThresholdB == 0 {
		c.ThresholdB = DefaultThresholdB
	}
	return c
}

func (c Config) validate() {
	if c.Slots < 0 {
		panic(fmt.Sprintf("heras: negative slot count %d", c.Slots))
	}
	if c.ThresholdA < 0 || c.ThresholdB < 0 {
		panic(fmt.Sprintf("heras: negative scan threshold %d*S+%d", c.ThresholdA, c.ThresholdB))
	}
	if c.Strategy > StrategyGrowable {
		panic("heras: unknown strategy " + c.Strategy.String())
	}
}
