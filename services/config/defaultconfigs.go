package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
//
// Receiver calibration was measured on the bench transmitter; duty cycles are
// percent of a ~50 Hz frame.
// -----------------------------------------------------------------------------

const cfgHovercraft = `{
  "control": {
    "inputs": {
      "tick_rate_hz": 250000,
      "signal_timeout_ms": 100,
      "throttle": {"min_duty_cycle": 5.563, "max_duty_cycle": 12.453, "dead_zone": 0, "smoothing_weight": 2},
      "steering": {"min_duty_cycle": 5.563, "max_duty_cycle": 12.453, "dead_zone": 0.5, "smoothing_weight": 0},
      "kill":     {"min_duty_cycle": 5.563, "max_duty_cycle": 12.453, "dead_zone": 0, "smoothing_weight": 100},
      "brake":    {"min_duty_cycle": 5.563, "max_duty_cycle": 12.453, "dead_zone": 0, "smoothing_weight": 100}
    },
    "throttle_servo": {"frequency_hz": 50, "increment_factor": 10, "offset": 1.8},
    "thrust_motors": {"frequency_hz": 15000, "increment_factor": 100, "offset": 0},
    "stepper": {
      "counts_per_90_degrees": 706,
      "counts_per_180_degrees": 1412,
      "frequency_hz": 400,
      "move_duty": 5,
      "hold_duty": 100,
      "max_steps_per_tick": 64,
      "step_timeout_us": 10000
    },
    "loop_interval_us": 20000,
    "status_interval_ms": 1000,
    "kill_latch_level": true,
    "verbose": false
  },
  "heartbeat": {
    "interval": 5
  }
}`

var embeddedConfigs = map[string][]byte{
	DefaultDevice: []byte(cfgHovercraft),
}
