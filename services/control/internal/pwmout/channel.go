// services/control/internal/pwmout/channel.go
package pwmout

import (
	"math"

	"hovercode-go/errcode"
	"hovercode-go/services/control/internal/halcore"
	"hovercode-go/x/mathx"
)

// Config is the desired state of a channel. The period and compare
// registers are derived from it and never read back into it.
type Config struct {
	DutyCyclePercent float64
	FrequencyHz      float64
}

// Channel drives one PWM unit in percent and hertz.
//
// SetDutyCycle does not clamp to [0,100]: callers clamp. Values outside the
// range only saturate at the compare register width.
type Channel struct {
	name string
	unit halcore.PWMUnit
	cfg  Config
}

func New(name string, unit halcore.PWMUnit) *Channel {
	return &Channel{name: name, unit: unit}
}

func (c *Channel) Name() string   { return c.name }
func (c *Channel) Config() Config { return c.cfg }

// Init enables the unit at hz and duty percent.
func (c *Channel) Init(hz, duty float64) error {
	if c.unit == nil {
		return errcode.Wrap(errcode.NotConfigured, "pwm.init", c.name)
	}
	c.cfg.DutyCyclePercent = duty
	if err := c.SetFrequency(hz); err != nil {
		return err
	}
	c.unit.Enable()
	return nil
}

// PeriodTicks returns round(tickRate/hz) - 1 saturated to [1, 65535].
func PeriodTicks(tickRateHz uint32, hz float64) (uint16, error) {
	if tickRateHz == 0 || math.IsNaN(hz) || hz <= 0 {
		return 0, errcode.InvalidPeriod
	}
	p := math.Round(float64(tickRateHz)/hz) - 1
	return mathx.Clamp(mathx.RoundU16(p), 1, math.MaxUint16), nil
}

// CompareTicks returns round(percent*period/100), saturated to the register.
func CompareTicks(percent float64, period uint16) uint16 {
	return mathx.RoundU16(percent * float64(period) / 100)
}

// SetFrequency writes the period register and re-derives compare from the
// stored duty cycle.
func (c *Channel) SetFrequency(hz float64) error {
	if c.unit == nil {
		return errcode.Wrap(errcode.NotConfigured, "pwm.freq", c.name)
	}
	p, err := PeriodTicks(c.unit.TickRateHz(), hz)
	if err != nil {
		return &errcode.E{C: errcode.InvalidPeriod, Op: "pwm.freq", Msg: c.name, Err: err}
	}
	c.cfg.FrequencyHz = hz
	c.unit.SetPeriod(p)
	c.unit.SetCompare(CompareTicks(c.cfg.DutyCyclePercent, p))
	return nil
}

// SetDutyCycle writes the compare register for percent of the current period.
func (c *Channel) SetDutyCycle(percent float64) {
	if c.unit == nil {
		return
	}
	c.cfg.DutyCyclePercent = percent
	c.unit.SetCompare(CompareTicks(percent, c.unit.Period()))
}

// DutyCycle reads back compare/period*100 from the registers.
func (c *Channel) DutyCycle() float64 {
	if c.unit == nil {
		return 0
	}
	p := c.unit.Period()
	if p == 0 {
		return 0
	}
	return float64(c.unit.Compare()) / float64(p) * 100
}

// Frequency reads back tickRate/(period+1) from the registers.
func (c *Channel) Frequency() float64 {
	if c.unit == nil {
		return 0
	}
	return float64(c.unit.TickRateHz()) / (float64(c.unit.Period()) + 1)
}

// Resolution is the duty step of one compare tick, in percent.
func (c *Channel) Resolution() float64 {
	if c.unit == nil || c.unit.Period() == 0 {
		return 100
	}
	return 100 / float64(c.unit.Period())
}
