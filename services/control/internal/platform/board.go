// services/control/internal/platform/board.go
package platform

import (
	"hovercode-go/services/control/internal/halcore"
	"hovercode-go/x/ramp"
)

// Pico GP numbering of the hovercraft board.
const (
	PinThrottleIn   = 2
	PinSteeringIn   = 3
	PinKillIn       = 4
	PinBrakeIn      = 5
	PinStepFeedback = 6

	PinServo      = 10 // PWM5A
	PinMotorLeft  = 12 // PWM6A
	PinMotorRight = 13 // PWM6B
	PinStepPulse  = 14 // PWM7A

	PinRelayLift   = 16
	PinRelayThrust = 17
	PinStepDir     = 18
	PinStepEnable  = 19
	PinLimitCW     = 20
	PinLimitCCW    = 21
)

// Timebases. Capture, servo and stepper pulse run from the system clock
// divided by 64; the thrust motors run undivided for resolution at 15 kHz.
const (
	FcyHz         uint32 = 16_000_000
	TickRateHz    uint32 = FcyHz / 64
	MotorTickRate uint32 = FcyHz
)

// Board is every peripheral the control service owns.
type Board struct {
	Throttle halcore.CaptureUnit
	Steering halcore.CaptureUnit
	Kill     halcore.CaptureUnit
	Brake    halcore.CaptureUnit

	Servo      halcore.PWMUnit
	MotorLeft  halcore.PWMUnit
	MotorRight halcore.PWMUnit // nil when only one motor is fitted
	StepPulse  halcore.PWMUnit

	RelayLift    halcore.GPIOPin
	RelayThrust  halcore.GPIOPin
	StepDir      halcore.GPIOPin
	StepEnable   halcore.GPIOPin
	StepFeedback halcore.IRQPin
	LimitCW      halcore.GPIOPin // nil when not fitted
	LimitCCW     halcore.GPIOPin // nil when not fitted

	// Tick waits for short intervals inside the stepper convergence.
	Tick ramp.Tick
}

// InputPin returns the capture pin of an input by index
// (throttle, steering, kill, brake).
func InputPin(i int) int {
	return [...]int{PinThrottleIn, PinSteeringIn, PinKillIn, PinBrakeIn}[i]
}

// scaleCompare maps a compare value of the nominal period onto a hardware
// counter with the given TOP, keeping full scale constant high.
func scaleCompare(period, compare uint16, top uint32) uint32 {
	span := uint64(period) + 1
	return uint32(uint64(halcore.HighTicks(period, compare)) * (uint64(top) + 1) / span)
}
