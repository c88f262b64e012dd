// services/control/internal/stepper/controller.go
package stepper

import (
	"math"
	"time"

	"hovercode-go/errcode"
	"hovercode-go/services/control/internal/halcore"
	"hovercode-go/services/control/internal/signal"
	"hovercode-go/types"
	"hovercode-go/x/mathx"
	"hovercode-go/x/ramp"
)

const (
	defaultMaxSteps    = 64
	defaultStepTimeout = 10 * time.Millisecond
	defaultPollSlice   = 100 * time.Microsecond
)

// Config holds the geometry and pacing of the steering stepper.
type Config struct {
	Steering     signal.Calibration
	CountsPer90  int32
	CountsPer180 int32

	MaxStepsPerTick int
	StepTimeout     time.Duration // wait for the counter after each step
	PollSlice       time.Duration // granularity of that wait
}

func ConfigFrom(steering signal.Calibration, c types.StepperConfig) Config {
	return Config{
		Steering:        steering,
		CountsPer90:     c.CountsPer90Degrees,
		CountsPer180:    c.CountsPer180Degrees,
		MaxStepsPerTick: c.MaxStepsPerTick,
		StepTimeout:     time.Duration(c.StepTimeoutUs) * time.Microsecond,
	}
}

func (c Config) Validate() error {
	switch {
	case c.CountsPer90 <= 0:
		return errcode.Wrap(errcode.InvalidConfig, "stepper", "counts_per_90_degrees must be positive")
	case c.CountsPer180 <= 0:
		return errcode.Wrap(errcode.InvalidConfig, "stepper", "counts_per_180_degrees must be positive")
	case c.MaxStepsPerTick < 0:
		return errcode.Wrap(errcode.InvalidConfig, "stepper", "max_steps_per_tick is negative")
	}
	return c.Steering.Validate("steering")
}

// SteerCounts is the full-deflection steering target.
func (c Config) SteerCounts() int32 { return c.CountsPer90 / 2 }

// Travel is the counted position past which motion is refused.
func (c Config) Travel() int32 { return c.CountsPer90 }

// TargetLimit clamps every steering target.
func (c Config) TargetLimit() int32 { return c.CountsPer180 / 2 }

func (c Config) withDefaults() Config {
	if c.MaxStepsPerTick == 0 {
		c.MaxStepsPerTick = defaultMaxSteps
	}
	if c.StepTimeout <= 0 {
		c.StepTimeout = defaultStepTimeout
	}
	if c.PollSlice <= 0 {
		c.PollSlice = defaultPollSlice
	}
	return c
}

// Result reports one bounded convergence.
type Result struct {
	Steps    int
	Decision Decision // last evaluation before holding
	Aborted  bool
	Err      error // errcode.Stalled or errcode.TravelLimit
}

// Controller moves the steering stepper toward a desired count.
// Not safe for concurrent use; the counter is the only state shared with
// interrupt context.
type Controller struct {
	cfg     Config
	counter *Counter
	motor   Motor
	tick    ramp.Tick

	// Hardware travel switches; nil when not fitted. High means reached.
	limitCW  halcore.GPIOPin
	limitCCW halcore.GPIOPin

	desired int32
	prev    float64 // last steering reading seen by Target
	hasPrev bool
	last    Decision
}

func NewController(cfg Config, counter *Counter, motor Motor, tick ramp.Tick) *Controller {
	return &Controller{cfg: cfg.withDefaults(), counter: counter, motor: motor, tick: tick}
}

// SetLimitSwitches attaches the travel switches (either may be nil).
func (c *Controller) SetLimitSwitches(cw, ccw halcore.GPIOPin) {
	c.limitCW, c.limitCCW = cw, ccw
}

// SetConfig applies new geometry. The previous reading is forgotten so the
// next one is mapped afresh.
func (c *Controller) SetConfig(cfg Config) {
	c.cfg = cfg.withDefaults()
	c.hasPrev = false
}

func (c *Controller) Config() Config         { return c.cfg }
func (c *Controller) Desired() int32         { return c.desired }
func (c *Controller) Counted() int32         { return c.counter.Position() }
func (c *Controller) LastDecision() Decision { return c.last }

// Target updates the desired position from a smoothed steering reading.
// A reading within the dead zone of the previous one keeps the previous
// target; a larger step is mapped afresh. Brake overrides steering with full
// lock on the side the mechanism is already on (zero counts as positive).
func (c *Controller) Target(steering float64, brake bool) int32 {
	if brake {
		c.hasPrev = false
		if c.counter.Position() >= 0 {
			c.desired = c.cfg.CountsPer90
		} else {
			c.desired = -c.cfg.CountsPer90
		}
		return c.desired
	}

	cal := c.cfg.Steering
	prev, had := c.prev, c.hasPrev
	c.prev, c.hasPrev = steering, true
	if had && mathx.Abs(steering-prev) <= cal.DeadZone {
		return c.desired
	}

	var t int32
	if !cal.InDeadZone(steering) {
		s := float64(c.cfg.SteerCounts())
		t = int32(math.Round(mathx.MapRange(steering, cal.Min, cal.Max, -s, s)))
	}
	lim := c.cfg.TargetLimit()
	c.desired = mathx.Clamp(t, -lim, lim)
	return c.desired
}

// SetDesired forces the desired position (clamped to the target limit).
func (c *Controller) SetDesired(v int32) {
	lim := c.cfg.TargetLimit()
	c.desired = mathx.Clamp(v, -lim, lim)
	c.hasPrev = false
}

func level(p halcore.GPIOPin) bool { return p != nil && p.Get() }

// Decide evaluates the state for the current counted position. It has no
// side effects.
func (c *Controller) Decide() Decision {
	counted := c.counter.Position()
	desired := c.desired
	travel := c.cfg.Travel()

	d := Decision{
		Counted:               counted,
		Desired:               desired,
		Midpoint:              desired - (desired-counted)/2,
		AllowClockwise:        counted > -travel && !level(c.limitCW),
		AllowCounterClockwise: counted < travel && !level(c.limitCCW),
	}

	if !d.AllowClockwise && !d.AllowCounterClockwise {
		d.State = HoldingPosition
		d.Fault = true
		return d
	}

	switch {
	case counted == desired:
		d.State = HoldingPosition
	case counted > d.Midpoint:
		if d.AllowClockwise {
			d.State = MovingClockwise
		} else {
			d.State, d.Limit = AtTravelLimit, Clockwise
		}
	case counted < d.Midpoint:
		if d.AllowCounterClockwise {
			d.State = MovingCounterClockwise
		} else {
			d.State, d.Limit = AtTravelLimit, CounterClockwise
		}
	default:
		d.State = HoldingPosition
	}
	return d
}

// Converge steps toward the desired position until it is reached, motion is
// blocked, MaxStepsPerTick steps were issued, the counter stalls, or abort
// reports true. The motor is always left holding.
func (c *Controller) Converge(abort func() bool) Result {
	var r Result
	defer c.motor.Hold()

	for r.Steps < c.cfg.MaxStepsPerTick {
		if abort != nil && abort() {
			r.Aborted = true
			break
		}
		d := c.Decide()
		r.Decision = d
		dir, ok := d.Moving()
		if !ok {
			if d.State == AtTravelLimit || d.Fault {
				r.Err = errcode.TravelLimit
			}
			break
		}

		before := c.counter.Position()
		c.motor.Step(dir)
		r.Steps++
		moved := ramp.Until(c.cfg.StepTimeout, c.cfg.PollSlice, c.tick, func() bool {
			return c.counter.Position() != before
		})
		if !moved {
			r.Err = errcode.Stalled
			break
		}
	}
	c.last = r.Decision
	return r
}

// Hold stops the motor without evaluating.
func (c *Controller) Hold() { c.motor.Hold() }

// Release drops holding torque.
func (c *Controller) Release() { c.motor.Release() }
