// services/control/internal/stepper/counter.go
package stepper

import (
	"sync/atomic"

	"hovercode-go/errcode"
	"hovercode-go/services/control/internal/halcore"
)

// Counter is the signed step position, moved by the step-feedback interrupt.
// The direction latch is sampled on each rising edge.
type Counter struct {
	pos atomic.Int32
	dir halcore.GPIOPin
	pin halcore.IRQPin
}

func NewCounter(dir halcore.GPIOPin) *Counter { return &Counter{dir: dir} }

// Attach installs the rising-edge handler on the feedback pin.
func (c *Counter) Attach(pin halcore.IRQPin) error {
	if pin == nil || c.dir == nil {
		return errcode.Wrap(errcode.NotConfigured, "stepper.counter", "pin")
	}
	if err := pin.ConfigureInput(halcore.PullNone); err != nil {
		return err
	}
	if err := pin.SetIRQ(halcore.EdgeRising, c.handleEdge); err != nil {
		return err
	}
	c.pin = pin
	return nil
}

func (c *Counter) Detach() error {
	if c.pin == nil {
		return nil
	}
	err := c.pin.ClearIRQ()
	c.pin = nil
	return err
}

func (c *Counter) handleEdge() {
	if c.dir.Get() == ClockwiseLevel {
		c.pos.Add(-1)
	} else {
		c.pos.Add(1)
	}
}

func (c *Counter) Position() int32 { return c.pos.Load() }

// Reset sets the position, e.g. when the mechanism is re-centred.
func (c *Counter) Reset(v int32) { c.pos.Store(v) }
