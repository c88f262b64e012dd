// services/control/internal/stepper/motor.go
package stepper

import (
	"hovercode-go/errcode"
	"hovercode-go/services/control/internal/halcore"
	"hovercode-go/services/control/internal/pwmout"
)

// Motor commands the stepper driver.
type Motor interface {
	// Step selects dir and lets the driver pulse.
	Step(dir Direction)
	// Hold stops pulsing and keeps holding torque.
	Hold()
	// Release stops pulsing and drops the enable latch.
	Release()
}

// PulseMotor drives a step/direction driver: a direction latch, an enable
// latch and a pulse train whose rising edges are steps. Hold duty is
// normally 100 %, a constant high line with no edges.
type PulseMotor struct {
	dir    halcore.GPIOPin
	enable halcore.GPIOPin
	pulse  *pwmout.Channel

	MoveDuty float64
	HoldDuty float64
}

func NewPulseMotor(dir, enable halcore.GPIOPin, pulse *pwmout.Channel, moveDuty, holdDuty float64) *PulseMotor {
	return &PulseMotor{dir: dir, enable: enable, pulse: pulse, MoveDuty: moveDuty, HoldDuty: holdDuty}
}

// Init configures the latches and starts the pulse unit in hold.
func (m *PulseMotor) Init(hz float64) error {
	if m.dir == nil || m.enable == nil || m.pulse == nil {
		return errcode.Wrap(errcode.NotConfigured, "stepper.motor", "latch or pulse channel")
	}
	if err := m.dir.ConfigureOutput(!ClockwiseLevel); err != nil {
		return err
	}
	if err := m.enable.ConfigureOutput(false); err != nil {
		return err
	}
	return m.pulse.Init(hz, m.HoldDuty)
}

// SetFrequency changes the step rate; the current duty is kept.
func (m *PulseMotor) SetFrequency(hz float64) error {
	if m.pulse == nil {
		return errcode.Wrap(errcode.NotConfigured, "stepper.motor", "pulse channel")
	}
	return m.pulse.SetFrequency(hz)
}

func (m *PulseMotor) Step(dir Direction) {
	m.dir.Set((dir == Clockwise) == ClockwiseLevel)
	m.enable.Set(true)
	m.pulse.SetDutyCycle(m.MoveDuty)
}

func (m *PulseMotor) Hold() {
	m.pulse.SetDutyCycle(m.HoldDuty)
	m.enable.Set(true)
}

func (m *PulseMotor) Release() {
	m.pulse.SetDutyCycle(m.HoldDuty)
	m.enable.Set(false)
}
