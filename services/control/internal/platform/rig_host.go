// services/control/internal/platform/rig_host.go
//go:build !rp2040

package platform

import "time"

// Rig is the whole board in simulation: four receiver channels, the servo,
// thrust motors, stepper driver and relays, wired as on the hardware. The
// stepper pulse output is looped back to the step-feedback pin, so every
// pulse moves the counted position by one.
type Rig struct {
	Sim *Sim

	ThrottleCap, SteeringCap, KillCap, BrakeCap *SimCapture
	Throttle, Steering, Kill, Brake             *SignalGen

	Servo      *SimPWM
	MotorLeft  *SimPWM
	MotorRight *SimPWM
	StepPulse  *SimPWM

	RelayLift    *FakePin
	RelayThrust  *FakePin
	StepDir      *FakePin
	StepEnable   *FakePin
	StepFeedback *FakePin
	LimitCW      *FakePin
	LimitCCW     *FakePin
}

func NewRig() *Rig {
	sim := NewSim()
	r := &Rig{
		Sim:          sim,
		ThrottleCap:  NewSimCapture(),
		SteeringCap:  NewSimCapture(),
		KillCap:      NewSimCapture(),
		BrakeCap:     NewSimCapture(),
		Servo:        NewSimPWM(sim, TickRateHz),
		MotorLeft:    NewSimPWM(sim, MotorTickRate),
		MotorRight:   NewSimPWM(sim, MotorTickRate),
		StepPulse:    NewSimPWM(sim, TickRateHz),
		RelayLift:    NewFakePin(PinRelayLift),
		RelayThrust:  NewFakePin(PinRelayThrust),
		StepDir:      NewFakePin(PinStepDir),
		StepEnable:   NewFakePin(PinStepEnable),
		StepFeedback: NewFakePin(PinStepFeedback),
		LimitCW:      NewFakePin(PinLimitCW),
		LimitCCW:     NewFakePin(PinLimitCCW),
	}
	r.Throttle = NewSignalGen(sim, r.ThrottleCap)
	r.Steering = NewSignalGen(sim, r.SteeringCap)
	r.Kill = NewSignalGen(sim, r.KillCap)
	r.Brake = NewSignalGen(sim, r.BrakeCap)

	r.StepPulse.OnRising(r.StepFeedback.Pulse)
	return r
}

// Advance moves simulated time by d.
func (r *Rig) Advance(d time.Duration) { r.Sim.Advance(d) }

// Tick adapts Advance to the stepper wait.
func (r *Rig) Tick(d time.Duration) bool {
	r.Sim.Advance(d)
	return true
}

// SetInputs drives all four receiver channels at 50 Hz.
func (r *Rig) SetInputs(throttle, steering, kill, brake float64) {
	r.Throttle.Set(throttle, 50)
	r.Steering.Set(steering, 50)
	r.Kill.Set(kill, 50)
	r.Brake.Set(brake, 50)
}

// Board exposes the rig through the register interfaces.
func (r *Rig) Board() Board {
	return Board{
		Throttle:     r.ThrottleCap,
		Steering:     r.SteeringCap,
		Kill:         r.KillCap,
		Brake:        r.BrakeCap,
		Servo:        r.Servo,
		MotorLeft:    r.MotorLeft,
		MotorRight:   r.MotorRight,
		StepPulse:    r.StepPulse,
		RelayLift:    r.RelayLift,
		RelayThrust:  r.RelayThrust,
		StepDir:      r.StepDir,
		StepEnable:   r.StepEnable,
		StepFeedback: r.StepFeedback,
		LimitCW:      r.LimitCW,
		LimitCCW:     r.LimitCCW,
		Tick:         r.Tick,
	}
}

// DefaultBoard returns a fresh simulated board with receivers silent,
// paced against the wall clock.
func DefaultBoard() Board {
	r := NewRig()
	b := r.Board()
	b.Tick = func(d time.Duration) bool {
		r.Advance(d)
		time.Sleep(d)
		return true
	}
	return b
}
