// services/control/internal/platform/board_rp2040.go
//go:build rp2040

package platform

import (
	"machine"
	"sync/atomic"
	"time"

	"hovercode-go/errcode"
	"hovercode-go/services/control/internal/halcore"
	"hovercode-go/x/tickring"
	"hovercode-go/x/timex"
)

// DefaultBoard maps the board onto RP2040 peripherals. The RP2040 has no
// input-capture unit, so capture is a pin-change interrupt timestamping
// against the microsecond timer scaled to TickRateHz.
func DefaultBoard() Board {
	b := Board{
		Throttle: newRP2Capture(),
		Steering: newRP2Capture(),
		Kill:     newRP2Capture(),
		Brake:    newRP2Capture(),

		Servo:      mustPWM(PinServo, TickRateHz),
		MotorLeft:  mustPWM(PinMotorLeft, MotorTickRate),
		MotorRight: mustPWM(PinMotorRight, MotorTickRate),
		StepPulse:  mustPWM(PinStepPulse, TickRateHz),

		RelayLift:    &rp2Pin{p: machine.Pin(PinRelayLift), n: PinRelayLift},
		RelayThrust:  &rp2Pin{p: machine.Pin(PinRelayThrust), n: PinRelayThrust},
		StepDir:      &rp2Pin{p: machine.Pin(PinStepDir), n: PinStepDir},
		StepEnable:   &rp2Pin{p: machine.Pin(PinStepEnable), n: PinStepEnable},
		StepFeedback: &rp2Pin{p: machine.Pin(PinStepFeedback), n: PinStepFeedback},
		LimitCW:      &rp2Pin{p: machine.Pin(PinLimitCW), n: PinLimitCW},
		LimitCCW:     &rp2Pin{p: machine.Pin(PinLimitCCW), n: PinLimitCCW},

		Tick: func(d time.Duration) bool {
			time.Sleep(d)
			return true
		},
	}
	_ = b.LimitCW.ConfigureInput(halcore.PullDown)
	_ = b.LimitCCW.ConfigureInput(halcore.PullDown)
	return b
}

var epoch = time.Now()

// ---- GPIO ----

type rp2Pin struct {
	p machine.Pin
	n int
}

func (r *rp2Pin) ConfigureInput(pull halcore.Pull) error {
	var mode machine.PinMode
	switch pull {
	case halcore.PullUp:
		mode = machine.PinInputPullup
	case halcore.PullDown:
		mode = machine.PinInputPulldown
	default:
		mode = machine.PinInput
	}
	r.p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (r *rp2Pin) ConfigureOutput(initial bool) error {
	r.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.p.Set(initial)
	return nil
}

func (r *rp2Pin) Set(level bool) { r.p.Set(level) }
func (r *rp2Pin) Get() bool      { return r.p.Get() }
func (r *rp2Pin) Number() int    { return r.n }

func (r *rp2Pin) SetIRQ(edge halcore.Edge, handler func()) error {
	return r.p.SetInterrupt(toPinChange(edge), func(machine.Pin) { handler() })
}

func (r *rp2Pin) ClearIRQ() error {
	var zero machine.PinChange
	return r.p.SetInterrupt(zero, nil)
}

func toPinChange(e halcore.Edge) machine.PinChange {
	switch e {
	case halcore.EdgeRising:
		return machine.PinRising
	case halcore.EdgeFalling:
		return machine.PinFalling
	case halcore.EdgeBoth:
		return machine.PinToggle
	default:
		var zero machine.PinChange
		return zero
	}
}

// ---- capture ----

type rp2Capture struct {
	pin     machine.Pin
	routed  bool
	rate    uint32
	mode    atomic.Uint32
	fifo    *tickring.Ring
	handler func()
}

func newRP2Capture() *rp2Capture { return &rp2Capture{fifo: tickring.New(4)} }

func (c *rp2Capture) Reset() {
	c.mode.Store(uint32(halcore.EdgeNone))
	if c.routed {
		_ = c.pin.SetInterrupt(0, nil)
	}
}

func (c *rp2Capture) Configure(pin int, tickRateHz uint32) error {
	if pin < 0 || pin > 28 {
		return halcore.ErrUnknownPin
	}
	if tickRateHz == 0 {
		return errcode.InvalidParams
	}
	c.pin = machine.Pin(pin)
	c.routed = true
	c.rate = tickRateHz
	c.pin.Configure(machine.PinConfig{Mode: machine.PinInput})
	return nil
}

func (c *rp2Capture) TickRateHz() uint32     { return c.rate }
func (c *rp2Capture) Buffered() bool         { return !c.fifo.Empty() }
func (c *rp2Capture) SetMode(e halcore.Edge) { c.mode.Store(uint32(e)) }
func (c *rp2Capture) Mode() halcore.Edge     { return halcore.Edge(c.mode.Load()) }

func (c *rp2Capture) ReadBuffer() uint16 {
	v, _ := c.fifo.Pop()
	return v
}

func (c *rp2Capture) SetIRQ(_ uint8, handler func()) error {
	if !c.routed {
		return errcode.NotConfigured
	}
	c.handler = handler
	return c.pin.SetInterrupt(machine.PinToggle, c.onChange)
}

func (c *rp2Capture) ClearIRQ() error {
	c.handler = nil
	if !c.routed {
		return nil
	}
	return c.pin.SetInterrupt(0, nil)
}

// onChange runs in interrupt context.
func (c *rp2Capture) onChange(p machine.Pin) {
	tick := uint16(timex.TicksFor(time.Since(epoch), c.rate))
	seen := halcore.EdgeFalling
	if p.Get() {
		seen = halcore.EdgeRising
	}
	mode := c.Mode()
	if mode == halcore.EdgeNone || (mode != seen && mode != halcore.EdgeBoth) {
		return
	}
	c.fifo.Push(tick)
	if h := c.handler; h != nil {
		h()
	}
}

// ---- PWM ----

// Local interface to avoid depending on an unexported concrete type in machine.
type pwmCtrl interface {
	Configure(cfg machine.PWMConfig) error
	Top() uint32
	Set(channel uint8, value uint32)
}

func pwmGroupBySlice(slice uint8) pwmCtrl {
	switch slice {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}

// rp2PWM presents a slice channel as period/compare registers at a nominal
// tick rate; the slice's own TOP is rescaled on every write.
type rp2PWM struct {
	pin     machine.Pin
	ctrl    pwmCtrl
	ch      uint8
	rate    uint32
	period  uint16
	compare uint16
	hwTop   uint32
}

func mustPWM(pin int, rate uint32) *rp2PWM {
	slice, err := machine.PWMPeripheral(machine.Pin(pin))
	if err != nil {
		println("[platform] no PWM on pin", pin)
		return &rp2PWM{pin: machine.Pin(pin), rate: rate}
	}
	return &rp2PWM{
		pin:  machine.Pin(pin),
		ctrl: pwmGroupBySlice(slice),
		ch:   uint8(pin & 1),
		rate: rate,
	}
}

func (p *rp2PWM) TickRateHz() uint32 { return p.rate }
func (p *rp2PWM) Period() uint16     { return p.period }
func (p *rp2PWM) Compare() uint16    { return p.compare }

func (p *rp2PWM) SetPeriod(v uint16) {
	p.period = v
	if p.ctrl == nil || p.rate == 0 {
		return
	}
	ns := uint64(timex.DurationOf(uint64(v)+1, p.rate))
	if err := p.ctrl.Configure(machine.PWMConfig{Period: ns}); err != nil {
		println("[platform] pwm configure:", err.Error())
		return
	}
	p.hwTop = p.ctrl.Top()
	p.apply()
}

func (p *rp2PWM) SetCompare(v uint16) {
	p.compare = v
	p.apply()
}

func (p *rp2PWM) Enable() {
	p.pin.Configure(machine.PinConfig{Mode: machine.PinPWM})
	p.apply()
}

func (p *rp2PWM) apply() {
	if p.ctrl == nil || p.hwTop == 0 {
		return
	}
	p.ctrl.Set(p.ch, scaleCompare(p.period, p.compare, p.hwTop))
}
