package types

// ControlState is published retained on "control/state".
type ControlState struct {
	Iteration uint64 `json:"iteration"`
	Killed    bool   `json:"killed"`
	Lost      bool   `json:"signal_lost"`
	Brake     bool   `json:"brake"`

	// Smoothed input duty cycles (percent).
	Throttle  float64 `json:"throttle"`
	Steering  float64 `json:"steering"`
	KillInput float64 `json:"kill_input"`
	BrakeIn   float64 `json:"brake_input"`

	ServoDuty   float64 `json:"servo_duty"`
	MotorDuty   float64 `json:"motor_duty"`
	RelayLift   bool    `json:"relay_lift"`
	RelayThrust bool    `json:"relay_thrust"`

	StepperState   string `json:"stepper_state"`
	StepperCounted int32  `json:"stepper_counted"`
	StepperDesired int32  `json:"stepper_desired"`

	TSms int64 `json:"ts_ms"`
}

// ServiceState is published retained on "control/service".
type ServiceState struct {
	Level  string `json:"level"`  // "idle", "ready", "stopped"
	Status string `json:"status"` // freeform short code
	TSms   int64  `json:"ts_ms"`
}
