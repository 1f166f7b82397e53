package ecs

import (
	"fmt"
	"math"
)

// Time counts Process()ing rounds; Time(0) is the state before the first
// round.
type Time uint64

// String the time, either as "tNNN" or "EoT" if maxed out.
func (t Time) String() string {
	if t == math.MaxUint64 {
		return "EoT"
	}
	return fmt.Sprintf("t%d", uint64(t))
}

// Clock is a Proc that advances Time by one round each time it is processed;
// place it first in a System so that the other Procs see the current round.
type Clock struct {
	now Time
}

// Now returns the current time.
func (c *Clock) Now() Time { return c.now }

// Process advances the clock.
//
// Panics if The End Time has come (2^64 rounds integer overflow).
func (c *Clock) Process() {
	if c.now == math.MaxUint64-1 {
		panic("The End is Now!")
	}
	c.now++
}
