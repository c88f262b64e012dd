// services/control/config.go
package control

import (
	"hovercode-go/errcode"
	"hovercode-go/services/config"
	"hovercode-go/services/control/internal/signal"
	"hovercode-go/services/control/internal/stepper"
	"hovercode-go/services/internal/util"
	"hovercode-go/types"
)

const configKey = "control"

// DefaultConfig decodes the embedded default control configuration.
func DefaultConfig() (types.ControlConfig, error) {
	var cfg types.ControlConfig
	m, err := config.Embedded(config.DefaultDevice)
	if err != nil {
		return cfg, err
	}
	raw, ok := m[configKey]
	if !ok {
		return cfg, errcode.Wrap(errcode.NotConfigured, "control.config", "no control section")
	}
	if err := util.DecodeJSON(raw, &cfg); err != nil {
		return cfg, &errcode.E{C: errcode.InvalidConfig, Op: "control.config", Err: err}
	}
	return cfg, nil
}

func invalid(msg string) error { return errcode.Wrap(errcode.InvalidConfig, "control.validate", msg) }

// Validate rejects configurations the loop cannot run with.
func Validate(c types.ControlConfig) error {
	if c.Inputs.TickRateHz == 0 {
		return invalid("inputs.tick_rate_hz must be positive")
	}
	for _, ch := range []struct {
		name string
		cal  types.ChannelCalibration
	}{
		{"throttle", c.Inputs.Throttle},
		{"steering", c.Inputs.Steering},
		{"kill", c.Inputs.Kill},
		{"brake", c.Inputs.Brake},
	} {
		if err := signal.CalibrationFrom(ch.cal).Validate(ch.name); err != nil {
			return err
		}
	}
	for _, o := range []struct {
		name string
		out  types.OutputConfig
	}{
		{"throttle_servo", c.ThrottleServo},
		{"thrust_motors", c.ThrustMotors},
	} {
		if !(o.out.FrequencyHz > 0) {
			return invalid(o.name + ".frequency_hz must be positive")
		}
		if !(o.out.IncrementFactor > 0) {
			return invalid(o.name + ".increment_factor must be positive")
		}
	}
	s := c.Stepper
	if !(s.FrequencyHz > 0) {
		return invalid("stepper.frequency_hz must be positive")
	}
	if !(s.MoveDuty > 0 && s.MoveDuty < 100) {
		return invalid("stepper.move_duty must be inside (0,100)")
	}
	if s.HoldDuty < 0 || s.HoldDuty > 100 {
		return invalid("stepper.hold_duty must be inside [0,100]")
	}
	if err := stepperConfig(c).Validate(); err != nil {
		return err
	}
	if c.LoopIntervalUs == 0 {
		return invalid("loop_interval_us must be positive")
	}
	return nil
}

func stepperConfig(c types.ControlConfig) stepper.Config {
	return stepper.ConfigFrom(signal.CalibrationFrom(c.Inputs.Steering), c.Stepper)
}
