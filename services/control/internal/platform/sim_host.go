// services/control/internal/platform/sim_host.go
//go:build !rp2040

package platform

import (
	"time"

	"hovercode-go/errcode"
	"hovercode-go/services/control/internal/halcore"
	"hovercode-go/x/tickring"
	"hovercode-go/x/timex"
)

// ----------------------------- simulated time --------------------------------

// source is anything that produces edges on the simulated timeline.
type source interface {
	// next returns the time of the next pending edge.
	next() (time.Duration, bool)
	fire(at time.Duration)
}

// Sim is a discrete-event clock. Interrupt handlers run synchronously from
// Advance, in time order. Drive it from a single goroutine.
type Sim struct {
	now     time.Duration
	sources []source
}

func NewSim() *Sim { return &Sim{} }

func (s *Sim) Now() time.Duration { return s.now }

func (s *Sim) add(src source) { s.sources = append(s.sources, src) }

// Advance moves simulated time forward by d, firing every edge on the way.
func (s *Sim) Advance(d time.Duration) {
	if d < 0 {
		return
	}
	end := s.now + d
	for {
		var best source
		var at time.Duration
		for _, src := range s.sources {
			t, ok := src.next()
			if !ok || t > end {
				continue
			}
			if best == nil || t < at {
				best, at = src, t
			}
		}
		if best == nil {
			break
		}
		s.now = at
		best.fire(at)
	}
	s.now = end
}

// ----------------------------- input capture ---------------------------------

// CaptureDepth is the hardware capture FIFO depth.
const CaptureDepth = 4

// SimCapture models an input-capture unit: a free-running 16-bit timer, a
// small FIFO and one interrupt per captured edge.
type SimCapture struct {
	pin     int
	rate    uint32
	mode    halcore.Edge
	fifo    *tickring.Ring
	handler func()
	edges   uint32
}

func NewSimCapture() *SimCapture {
	return &SimCapture{fifo: tickring.New(CaptureDepth)}
}

func (c *SimCapture) Reset() {
	c.mode = halcore.EdgeNone
	c.handler = nil
}

func (c *SimCapture) Configure(pin int, tickRateHz uint32) error {
	if tickRateHz == 0 {
		return errcode.InvalidParams
	}
	c.pin, c.rate = pin, tickRateHz
	return nil
}

func (c *SimCapture) TickRateHz() uint32     { return c.rate }
func (c *SimCapture) Buffered() bool         { return !c.fifo.Empty() }
func (c *SimCapture) SetMode(e halcore.Edge) { c.mode = e }
func (c *SimCapture) Mode() halcore.Edge     { return c.mode }
func (c *SimCapture) Pin() int               { return c.pin }
func (c *SimCapture) Overruns() uint32       { return c.fifo.Overruns() }
func (c *SimCapture) Edges() uint32          { return c.edges }

func (c *SimCapture) ReadBuffer() uint16 {
	v, _ := c.fifo.Pop()
	return v
}

func (c *SimCapture) SetIRQ(_ uint8, handler func()) error {
	c.handler = handler
	return nil
}

func (c *SimCapture) ClearIRQ() error {
	c.handler = nil
	return nil
}

// Timer returns the 16-bit timer value at simulated time at.
func (c *SimCapture) Timer(at time.Duration) uint16 {
	return uint16(timex.TicksFor(at, c.rate))
}

// edge is the pin seeing a transition. Unarmed edges are not captured.
func (c *SimCapture) edge(e halcore.Edge, at time.Duration) {
	if c.mode == halcore.EdgeNone || c.rate == 0 {
		return
	}
	if c.mode != e && c.mode != halcore.EdgeBoth {
		return
	}
	c.edges++
	c.fifo.Push(c.Timer(at))
	if c.handler != nil {
		c.handler()
	}
}

// Inject places a raw tick in the FIFO without raising the interrupt, as stale
// captures left over from before initialisation.
func (c *SimCapture) Inject(tick uint16) { c.fifo.Push(tick) }

// ----------------------------- signal generator ------------------------------

// SignalGen is a receiver channel: a square wave at a duty cycle and
// frequency driving a capture unit. Changes apply from the next period.
type SignalGen struct {
	sim *Sim
	out *SimCapture

	on      bool
	duty    float64
	hz      float64
	pending bool

	high     bool
	periodAt time.Duration // start of the current period
	nextAt   time.Duration
	curHigh  time.Duration
	curPer   time.Duration
}

func NewSignalGen(sim *Sim, out *SimCapture) *SignalGen {
	g := &SignalGen{sim: sim, out: out, hz: 50}
	sim.add(g)
	return g
}

// Set selects duty percent and frequency and starts the wave.
func (g *SignalGen) Set(dutyPercent, hz float64) {
	g.duty, g.hz = dutyPercent, hz
	if !g.on {
		g.on = true
		g.high = false
		g.nextAt = g.sim.Now()
		g.pending = false
		g.latch()
		return
	}
	g.pending = true
}

// SetDuty keeps the frequency.
func (g *SignalGen) SetDuty(dutyPercent float64) { g.Set(dutyPercent, g.hz) }

// Stop parks the line low (receiver lost).
func (g *SignalGen) Stop() {
	if g.on && g.high {
		g.out.edge(halcore.EdgeFalling, g.sim.Now())
	}
	g.on, g.high = false, false
}

func (g *SignalGen) Duty() float64 { return g.duty }

func (g *SignalGen) latch() {
	if g.hz <= 0 {
		g.curPer = 0
		return
	}
	g.curPer = time.Duration(float64(time.Second) / g.hz)
	g.curHigh = time.Duration(float64(g.curPer) * g.duty / 100)
}

func (g *SignalGen) next() (time.Duration, bool) {
	if !g.on || g.curPer <= 0 {
		return 0, false
	}
	return g.nextAt, true
}

func (g *SignalGen) fire(at time.Duration) {
	if g.high {
		g.high = false
		g.out.edge(halcore.EdgeFalling, at)
		g.nextAt = g.periodAt + g.curPer
		return
	}
	if g.pending {
		g.pending = false
		g.latch()
		if g.curPer <= 0 {
			return
		}
	}
	g.periodAt = at
	if g.curHigh <= 0 || g.curHigh >= g.curPer {
		// Constant line: no edges this period.
		g.nextAt = at + g.curPer
		return
	}
	g.high = true
	g.out.edge(halcore.EdgeRising, at)
	g.nextAt = at + g.curHigh
}

// ----------------------------- PWM output ------------------------------------

// SimPWM models an edge-aligned PWM unit. The output is high for Compare ticks
// of every Period+1; when a hook is attached it is called on every rising
// edge. Compare of 0 or at least Period gives a constant line.
type SimPWM struct {
	sim     *Sim
	rate    uint32
	period  uint16
	compare uint16
	enabled bool

	start time.Duration // timer restart
	last  time.Duration // last fired edge
	fired bool
	hook  func()
	rises uint32
}

func NewSimPWM(sim *Sim, tickRateHz uint32) *SimPWM {
	p := &SimPWM{sim: sim, rate: tickRateHz}
	sim.add(p)
	return p
}

func (p *SimPWM) TickRateHz() uint32  { return p.rate }
func (p *SimPWM) Period() uint16      { return p.period }
func (p *SimPWM) Compare() uint16     { return p.compare }
func (p *SimPWM) SetCompare(v uint16) { p.compare = v }
func (p *SimPWM) Rises() uint32       { return p.rises }
func (p *SimPWM) Enabled() bool       { return p.enabled }

func (p *SimPWM) SetPeriod(v uint16) {
	p.period = v
	p.start = p.sim.Now()
	p.fired = false
}

func (p *SimPWM) Enable() {
	if !p.enabled {
		p.enabled = true
		p.start = p.sim.Now()
		p.fired = false
	}
}

// OnRising attaches h to the output line.
func (p *SimPWM) OnRising(h func()) { p.hook = h }

// DutyPercent is the physical duty of the output line.
func (p *SimPWM) DutyPercent() float64 {
	if !p.enabled {
		return 0
	}
	return float64(halcore.HighTicks(p.period, p.compare)) / (float64(p.period) + 1) * 100
}

func (p *SimPWM) edges() bool {
	return p.enabled && p.hook != nil && p.rate != 0 && halcore.Pulses(p.period, p.compare)
}

func (p *SimPWM) next() (time.Duration, bool) {
	if !p.edges() {
		return 0, false
	}
	per := timex.DurationOf(uint64(p.period)+1, p.rate)
	if per <= 0 {
		return 0, false
	}
	now := p.sim.Now()
	k := (now - p.start) / per
	at := p.start + k*per
	if at < now || (p.fired && at <= p.last) {
		at += per
	}
	return at, true
}

func (p *SimPWM) fire(at time.Duration) {
	p.last, p.fired = at, true
	p.rises++
	if p.hook != nil {
		p.hook()
	}
}
