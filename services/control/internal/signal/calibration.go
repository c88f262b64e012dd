// services/control/internal/signal/calibration.go
package signal

import (
	"hovercode-go/errcode"
	"hovercode-go/types"
	"hovercode-go/x/mathx"
)

// Calibration is the receiver-specific range of one input channel, in percent duty.
type Calibration struct {
	Min      float64
	Max      float64
	DeadZone float64
	Weight   int
}

func CalibrationFrom(c types.ChannelCalibration) Calibration {
	return Calibration{
		Min:      c.MinDutyCycle,
		Max:      c.MaxDutyCycle,
		DeadZone: c.DeadZone,
		Weight:   c.SmoothingWeight,
	}
}

func (c Calibration) Validate(name string) error {
	switch {
	case !(c.Min < c.Max):
		return errcode.Wrap(errcode.InvalidConfig, "calibration", name+": min must be below max")
	case c.DeadZone < 0:
		return errcode.Wrap(errcode.InvalidConfig, "calibration", name+": negative dead zone")
	case c.Weight < 0:
		return errcode.Wrap(errcode.InvalidConfig, "calibration", name+": negative smoothing weight")
	}
	return nil
}

// Midpoint is the threshold for two-position switches.
func (c Calibration) Midpoint() float64 { return (c.Min + c.Max) / 2 }

// Below reports in < Midpoint.
func (c Calibration) Below(in float64) bool { return in < c.Midpoint() }

// AtOrAbove reports in >= Midpoint.
func (c Calibration) AtOrAbove(in float64) bool { return !c.Below(in) }

// InDeadZone reports |in - Midpoint| <= DeadZone.
func (c Calibration) InDeadZone(in float64) bool {
	m := c.Midpoint()
	return mathx.Between(in, m-c.DeadZone, m+c.DeadZone)
}

// Scale maps in linearly so that the calibrated span covers factor percent,
// starting at offset: (in-min)/((max-min)/factor) + offset, clamped to [0,100].
func (c Calibration) Scale(in, factor, offset float64) float64 {
	span := c.Max - c.Min
	if span <= 0 || factor == 0 {
		return mathx.Clamp(offset, 0, 100)
	}
	out := (in-c.Min)/(span/factor) + offset
	return mathx.Clamp(out, 0, 100)
}
