package ramp

import "time"

// Set applies the next value of a ramp.
type Set func(v float64)

// Tick waits for d and reports whether to continue (false => cancelled).
type Tick func(d time.Duration) bool

// Linear ramps synchronously from 'from' to 'to' over duration in steps,
// calling tick between steps. steps<=0 or duration<=0 snaps to 'to'.
// The final value is always 'to' unless tick cancels first.
func Linear(from, to float64, duration time.Duration, steps int, tick Tick, set Set) {
	if steps <= 0 || duration <= 0 {
		set(to)
		return
	}
	stepDur := duration / time.Duration(steps)
	if stepDur <= 0 {
		stepDur = time.Nanosecond
	}
	delta := (to - from) / float64(steps)
	for i := 1; i < steps; i++ {
		if !tick(stepDur) {
			return
		}
		set(from + delta*float64(i))
	}
	if !tick(stepDur) {
		return
	}
	set(to)
}

// Until waits in slices of at most slice until done reports true or timeout
// has been spent. It reports whether done became true. A cancelled tick
// returns the last done() result.
func Until(timeout, slice time.Duration, tick Tick, done func() bool) bool {
	if done() {
		return true
	}
	if slice <= 0 {
		slice = timeout
	}
	for spent := time.Duration(0); spent < timeout; {
		d := slice
		if rest := timeout - spent; rest < d {
			d = rest
		}
		if !tick(d) {
			return done()
		}
		spent += d
		if done() {
			return true
		}
	}
	return false
}
