// services/control/loop.go
package control

import (
	"tinygo.org/x/drivers"

	"hovercode-go/errcode"
	"hovercode-go/services/control/internal/capture"
	"hovercode-go/services/control/internal/halcore"
	"hovercode-go/services/control/internal/platform"
	"hovercode-go/services/control/internal/pwmout"
	"hovercode-go/services/control/internal/signal"
	"hovercode-go/services/control/internal/stepper"
	"hovercode-go/types"
	"hovercode-go/x/mathx"
	"hovercode-go/x/timex"
)

// Loop is one pass of the hovercraft controller over the board: read and
// smooth the receiver, apply the kill switch, map throttle, and steer.
// Step must be called from a single goroutine.
type Loop struct {
	cfg   types.ControlConfig
	board platform.Board

	caps     []*capture.Channel
	throttle *signal.Input
	steering *signal.Input
	kill     *signal.Input
	brake    *signal.Input
	polled   []drivers.Sensor // every input but kill, which serviceKill reads

	servo  *pwmout.Channel
	motors []*pwmout.Channel

	counter *stepper.Counter
	motor   *stepper.PulseMotor
	steer   *stepper.Controller

	killed bool
	lost   bool
	brakes bool

	killSeen  uint32 // kill window count at the last Step
	killQuiet uint32 // Steps without a new kill window
	iter      uint64
	conv      stepper.Result
}

// NewLoop validates cfg and wires the board. Call Init before Step.
func NewLoop(b platform.Board, cfg types.ControlConfig) (*Loop, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	if b.Throttle == nil || b.Steering == nil || b.Kill == nil || b.Brake == nil ||
		b.Servo == nil || b.StepPulse == nil || b.RelayLift == nil || b.RelayThrust == nil ||
		b.StepDir == nil || b.StepEnable == nil || b.StepFeedback == nil || b.Tick == nil {
		return nil, errcode.Wrap(errcode.NotConfigured, "control.new", "board is incomplete")
	}

	l := &Loop{cfg: cfg, board: b, killed: true}
	rate := cfg.Inputs.TickRateHz
	units := []halcore.CaptureUnit{b.Throttle, b.Steering, b.Kill, b.Brake}
	names := []string{"throttle", "steering", "kill", "brake"}
	cals := []types.ChannelCalibration{cfg.Inputs.Throttle, cfg.Inputs.Steering, cfg.Inputs.Kill, cfg.Inputs.Brake}
	ins := make([]*signal.Input, len(units))
	for i, u := range units {
		ch := capture.New(names[i], u, platform.InputPin(i), rate)
		l.caps = append(l.caps, ch)
		ins[i] = signal.NewInput(names[i], ch, signal.CalibrationFrom(cals[i]))
	}
	l.throttle, l.steering, l.kill, l.brake = ins[0], ins[1], ins[2], ins[3]
	l.polled = []drivers.Sensor{l.throttle, l.steering, l.brake}

	l.servo = pwmout.New("servo", b.Servo)
	for _, u := range []halcore.PWMUnit{b.MotorLeft, b.MotorRight} {
		if u != nil {
			l.motors = append(l.motors, pwmout.New("motor", u))
		}
	}

	l.counter = stepper.NewCounter(b.StepDir)
	l.motor = stepper.NewPulseMotor(b.StepDir, b.StepEnable, pwmout.New("stepper", b.StepPulse),
		cfg.Stepper.MoveDuty, cfg.Stepper.HoldDuty)
	l.steer = stepper.NewController(stepperConfig(cfg), l.counter, l.motor, b.Tick)
	l.steer.SetLimitSwitches(b.LimitCW, b.LimitCCW)
	return l, nil
}

// Init brings every peripheral up in the killed state.
func (l *Loop) Init() error {
	lvl := l.cfg.KillLatchLevel
	if err := l.board.RelayLift.ConfigureOutput(lvl); err != nil {
		return err
	}
	if err := l.board.RelayThrust.ConfigureOutput(lvl); err != nil {
		return err
	}
	if err := l.servo.Init(l.cfg.ThrottleServo.FrequencyHz, l.idleServo()); err != nil {
		return err
	}
	for _, m := range l.motors {
		if err := m.Init(l.cfg.ThrustMotors.FrequencyHz, 0); err != nil {
			return err
		}
	}
	if err := l.motor.Init(l.cfg.Stepper.FrequencyHz); err != nil {
		return err
	}
	if err := l.counter.Attach(l.board.StepFeedback); err != nil {
		return err
	}
	for _, c := range l.caps {
		if err := c.Initialize(); err != nil {
			return err
		}
	}
	l.engage()
	return nil
}

// Close detaches every interrupt and leaves outputs killed.
func (l *Loop) Close() error {
	l.engage()
	l.motor.Release()
	var first error
	for _, c := range l.caps {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	if err := l.counter.Detach(); err != nil && first == nil {
		first = err
	}
	return first
}

// Apply swaps calibration and output settings at run time. The capture
// timebase cannot change without a restart.
func (l *Loop) Apply(cfg types.ControlConfig) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	if cfg.Inputs.TickRateHz != l.cfg.Inputs.TickRateHz {
		return errcode.Wrap(errcode.Unsupported, "control.apply", "tick_rate_hz needs a restart")
	}
	if cfg.ThrottleServo.FrequencyHz != l.cfg.ThrottleServo.FrequencyHz {
		if err := l.servo.SetFrequency(cfg.ThrottleServo.FrequencyHz); err != nil {
			return err
		}
	}
	if cfg.ThrustMotors.FrequencyHz != l.cfg.ThrustMotors.FrequencyHz {
		for _, m := range l.motors {
			if err := m.SetFrequency(cfg.ThrustMotors.FrequencyHz); err != nil {
				return err
			}
		}
	}
	if cfg.Stepper.FrequencyHz != l.cfg.Stepper.FrequencyHz {
		if err := l.motor.SetFrequency(cfg.Stepper.FrequencyHz); err != nil {
			return err
		}
	}
	l.throttle.SetCalibration(signal.CalibrationFrom(cfg.Inputs.Throttle))
	l.steering.SetCalibration(signal.CalibrationFrom(cfg.Inputs.Steering))
	l.kill.SetCalibration(signal.CalibrationFrom(cfg.Inputs.Kill))
	l.brake.SetCalibration(signal.CalibrationFrom(cfg.Inputs.Brake))
	l.motor.MoveDuty, l.motor.HoldDuty = cfg.Stepper.MoveDuty, cfg.Stepper.HoldDuty
	l.steer.SetConfig(stepperConfig(cfg))
	l.cfg = cfg
	return nil
}

func (l *Loop) Config() types.ControlConfig     { return l.cfg }
func (l *Loop) Killed() bool                    { return l.killed }
func (l *Loop) SignalLost() bool                { return l.lost }
func (l *Loop) Braking() bool                   { return l.brakes }
func (l *Loop) Iteration() uint64               { return l.iter }
func (l *Loop) LastConvergence() stepper.Result { return l.conv }
func (l *Loop) Counted() int32                  { return l.counter.Position() }

func (l *Loop) idleServo() float64 { return mathx.Clamp(l.cfg.ThrottleServo.Offset, 0, 100) }

// engage drives the relays to the kill level and every output to idle.
func (l *Loop) engage() {
	l.board.RelayLift.Set(l.cfg.KillLatchLevel)
	l.board.RelayThrust.Set(l.cfg.KillLatchLevel)
	l.servo.SetDutyCycle(l.idleServo())
	for _, m := range l.motors {
		m.SetDutyCycle(0)
	}
}

func (l *Loop) release() {
	l.board.RelayLift.Set(!l.cfg.KillLatchLevel)
	l.board.RelayThrust.Set(!l.cfg.KillLatchLevel)
}

// KillRequested reports the kill policy for the current smoothed reading:
// engaged below the midpoint, until a first valid reading arrives, and while
// the kill channel is lost.
func (l *Loop) KillRequested() bool {
	return !l.kill.Seeded() || l.lost || l.kill.Calibration().Below(l.kill.Value())
}

// trackKillSignal marks the kill channel lost once it has been quiet for
// the configured timeout.
func (l *Loop) trackKillSignal() {
	_ = l.kill.Update(signal.Measurement)
	if w := l.kill.Windows(); w != l.killSeen {
		l.killSeen, l.killQuiet = w, 0
	} else {
		l.killQuiet++
	}
	timeout := l.cfg.Inputs.SignalTimeoutMs
	lost := timeout > 0 && uint64(l.killQuiet)*uint64(l.cfg.LoopIntervalUs) >= uint64(timeout)*1000
	if lost != l.lost && l.kill.Seeded() {
		if lost {
			println("[control] kill signal lost")
		} else {
			println("[control] kill signal restored")
		}
	}
	l.lost = lost
}

// serviceKill refreshes the kill input and applies it to the outputs.
func (l *Loop) serviceKill() bool {
	_ = l.kill.Update(signal.Measurement)
	killed := l.KillRequested()
	switch {
	case killed && !l.killed:
		println("[control] kill engaged")
		l.engage()
		l.steer.Hold()
	case killed:
		l.engage()
	case l.killed:
		println("[control] kill released")
		l.release()
	default:
		l.release()
	}
	l.killed = killed
	return killed
}

// Step runs one iteration and returns the resulting state.
func (l *Loop) Step() types.ControlState {
	l.iter++
	for _, in := range l.polled {
		_ = in.Update(signal.Measurement)
	}
	l.trackKillSignal()

	if !l.serviceKill() {
		l.driveThrottle()
	}

	l.brakes = l.brake.Seeded() && l.brake.Calibration().AtOrAbove(l.brake.Value())
	if l.brakes || l.steering.Seeded() {
		l.steer.Target(l.steering.Value(), l.brakes)
	}

	if l.killed {
		l.steer.Hold()
		d := l.steer.Decide()
		d.State, d.Limit = stepper.HoldingPosition, stepper.None
		l.conv = stepper.Result{Decision: d, Aborted: true}
	} else {
		l.conv = l.steer.Converge(l.serviceKill)
		if l.conv.Err != nil && l.cfg.Verbose {
			println("[control] stepper:", l.conv.Err.Error(), "at", l.conv.Decision.Counted)
		}
	}
	return l.State()
}

func (l *Loop) driveThrottle() {
	if !l.throttle.Seeded() {
		l.servo.SetDutyCycle(l.idleServo())
		for _, m := range l.motors {
			m.SetDutyCycle(0)
		}
		return
	}
	cal := l.throttle.Calibration()
	in := l.throttle.Value()
	s := l.cfg.ThrottleServo
	l.servo.SetDutyCycle(cal.Scale(in, s.IncrementFactor, s.Offset))
	m := l.cfg.ThrustMotors
	duty := cal.Scale(in, m.IncrementFactor, m.Offset)
	for _, ch := range l.motors {
		ch.SetDutyCycle(duty)
	}
}

// State is the published view of the last iteration.
func (l *Loop) State() types.ControlState {
	st := types.ControlState{
		Iteration:      l.iter,
		Killed:         l.killed,
		Lost:           l.lost,
		Brake:          l.brakes,
		Throttle:       l.throttle.Value(),
		Steering:       l.steering.Value(),
		KillInput:      l.kill.Value(),
		BrakeIn:        l.brake.Value(),
		ServoDuty:      l.servo.DutyCycle(),
		RelayLift:      l.board.RelayLift.Get(),
		RelayThrust:    l.board.RelayThrust.Get(),
		StepperState:   l.conv.Decision.String(),
		StepperCounted: l.counter.Position(),
		StepperDesired: l.steer.Desired(),
		TSms:           timex.NowMs(),
	}
	if len(l.motors) > 0 {
		st.MotorDuty = l.motors[0].DutyCycle()
	}
	return st
}
