package heras

import "errors"

// ErrSlotsExhausted reports that a thread asked for more simultaneous
// guards than its fixed slot block holds. Running out of slots is a
// structural bug in the caller (guards leaked, or Config.Slots sized below
// the deepest guard nesting), so the condition is raised as a panic; the
// panic value wraps this sentinel, and errors.Is matches it on a recovered
// value. StrategyGrowable never raises it.
var ErrSlotsExhausted = errors.New("heras: hazard-era slots exhausted")
