// services/control/internal/capture/channel.go
package capture

import (
	"sync/atomic"

	"hovercode-go/errcode"
	"hovercode-go/services/control/internal/halcore"
)

// Channel owns one capture unit. Its interrupt handler alternates between
// rising and falling arming and publishes a Sample on every falling edge.
type Channel struct {
	name     string
	unit     halcore.CaptureUnit
	pin      int
	tickRate uint32

	buf Buffer

	// Handler-owned state.
	lastRising uint16
	primed     bool

	dropped    atomic.Uint32 // FIFO entries beyond the newest pair of a window
	incomplete atomic.Uint32 // falling edges with no rising capture before them
}

func New(name string, unit halcore.CaptureUnit, pin int, tickRateHz uint32) *Channel {
	return &Channel{name: name, unit: unit, pin: pin, tickRate: tickRateHz}
}

func (c *Channel) Name() string       { return c.name }
func (c *Channel) TickRateHz() uint32 { return c.tickRate }
func (c *Channel) Dropped() uint32    { return c.dropped.Load() }
func (c *Channel) Incomplete() uint32 { return c.incomplete.Load() }

// Snapshot returns the latest consistent Sample.
func (c *Channel) Snapshot() Sample {
	s, _ := c.buf.Load()
	return s
}

// Load returns the latest Sample and the number of windows published.
func (c *Channel) Load() (Sample, uint32) { return c.buf.Load() }

// Initialize resets the unit, routes it, drains stale captures, arms rising
// and installs the handler at the lowest priority.
func (c *Channel) Initialize() error {
	if c.unit == nil {
		return errcode.Wrap(errcode.NotConfigured, "capture.init", c.name)
	}
	if c.tickRate == 0 {
		return errcode.Wrap(errcode.InvalidParams, "capture.init", c.name+": tick rate 0")
	}
	c.unit.Reset()
	if err := c.unit.Configure(c.pin, c.tickRate); err != nil {
		return err
	}
	for c.unit.Buffered() {
		_ = c.unit.ReadBuffer()
	}
	c.primed = false
	c.unit.SetMode(halcore.EdgeRising)
	return c.unit.SetIRQ(halcore.PriorityLowest, c.handleIRQ)
}

// Close detaches the handler and leaves the unit reset.
func (c *Channel) Close() error {
	if c.unit == nil {
		return nil
	}
	err := c.unit.ClearIRQ()
	c.unit.Reset()
	return err
}

// handleIRQ runs in interrupt context: register access and integer moves only.
func (c *Channel) handleIRQ() {
	if c.unit.Mode() != halcore.EdgeFalling {
		// The rising tick stays in the FIFO until the falling edge completes the window.
		c.unit.SetMode(halcore.EdgeFalling)
		return
	}

	// Keep only the newest two entries: rising then falling.
	var rising, falling uint16
	n := 0
	for c.unit.Buffered() {
		rising = falling
		falling = c.unit.ReadBuffer()
		n++
	}
	c.unit.SetMode(halcore.EdgeRising)

	if n < 2 {
		c.incomplete.Add(1)
		return
	}
	if n > 2 {
		c.dropped.Add(uint32(n - 2))
	}

	prior := c.lastRising
	if !c.primed {
		// First window after init: zero period marks it invalid.
		prior = rising
		c.primed = true
	}
	c.lastRising = rising
	c.buf.Publish(Sample{PriorRising: prior, Rising: rising, Falling: falling})
}
