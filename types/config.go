package types

// Control configuration supplied on topic "config/control".

// ChannelCalibration describes one receiver channel. Duty cycles are percent of
// the input period as measured on the capture pin.
type ChannelCalibration struct {
	MinDutyCycle    float64 `json:"min_duty_cycle"`
	MaxDutyCycle    float64 `json:"max_duty_cycle"`
	DeadZone        float64 `json:"dead_zone"`        // percent duty either side
	SmoothingWeight int     `json:"smoothing_weight"` // N in (N*prev + raw)/(N+1)
}

type InputsConfig struct {
	TickRateHz uint32             `json:"tick_rate_hz"` // capture timer tick rate
	Throttle   ChannelCalibration `json:"throttle"`
	Steering   ChannelCalibration `json:"steering"`
	Kill       ChannelCalibration `json:"kill"`
	Brake      ChannelCalibration `json:"brake"`

	// SignalTimeoutMs engages the kill when the kill channel publishes no
	// new window for this long, counted in loop intervals. 0 disables.
	SignalTimeoutMs uint32 `json:"signal_timeout_ms"`
}

// OutputConfig maps a calibrated input onto an output duty cycle:
// (in - min) / ((max - min) / IncrementFactor) + Offset, clamped to [0,100].
type OutputConfig struct {
	FrequencyHz     float64 `json:"frequency_hz"`
	IncrementFactor float64 `json:"increment_factor"`
	Offset          float64 `json:"offset"`
}

type StepperConfig struct {
	CountsPer90Degrees  int32   `json:"counts_per_90_degrees"`
	CountsPer180Degrees int32   `json:"counts_per_180_degrees"`
	FrequencyHz         float64 `json:"frequency_hz"` // pulse train
	MoveDuty            float64 `json:"move_duty"`    // duty while stepping
	HoldDuty            float64 `json:"hold_duty"`    // duty while holding (no edges)
	MaxStepsPerTick     int     `json:"max_steps_per_tick"`
	StepTimeoutUs       uint32  `json:"step_timeout_us"` // wait for the counter per step
}

type ControlConfig struct {
	Inputs           InputsConfig  `json:"inputs"`
	ThrottleServo    OutputConfig  `json:"throttle_servo"`
	ThrustMotors     OutputConfig  `json:"thrust_motors"`
	Stepper          StepperConfig `json:"stepper"`
	LoopIntervalUs   uint32        `json:"loop_interval_us"`
	StatusIntervalMs uint32        `json:"status_interval_ms"`
	KillLatchLevel   bool          `json:"kill_latch_level"` // relay latch level while killed
	Verbose          bool          `json:"verbose"`
}

// HeartbeatConfig is published on "config/heartbeat". Interval is in seconds.
type HeartbeatConfig struct {
	Interval float64 `json:"interval"`
}
