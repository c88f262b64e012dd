// services/control/internal/halcore/types.go
package halcore

import "errors"

// Register-level views of the peripherals the control loop owns. Concrete
// implementations live in platform (host simulation or MCU backend). Nothing
// here owns goroutines.

var (
	ErrUnknownPin  = errors.New("unknown_pin")
	ErrUnsupported = errors.New("unsupported")
)

// Edge selection for capture and IRQ.
type Edge uint8

const (
	EdgeNone Edge = iota
	EdgeRising
	EdgeFalling
	EdgeBoth
)

func EdgeToString(e Edge) string {
	switch e {
	case EdgeRising:
		return "rising"
	case EdgeFalling:
		return "falling"
	case EdgeBoth:
		return "both"
	default:
		return "none"
	}
}

// PriorityLowest is the interrupt priority used for every capture channel.
const PriorityLowest uint8 = 1

// ---- Input capture ----

// CaptureUnit is one input-capture peripheral with its small hardware FIFO.
// Captured values are 16-bit timer ticks (wrap-around).
type CaptureUnit interface {
	// Reset disables the unit and clears its configuration (mode EdgeNone).
	Reset()
	// Configure routes the unit to an input pin and selects its timer tick source.
	Configure(pin int, tickRateHz uint32) error
	TickRateHz() uint32

	// Buffered reports whether the FIFO holds at least one capture.
	Buffered() bool
	// ReadBuffer pops the oldest capture (0 when empty).
	ReadBuffer() uint16

	// SetMode arms the unit for the given edge; Mode reads it back.
	SetMode(e Edge)
	Mode() Edge

	// SetIRQ installs handler for every capture event and enables the interrupt.
	SetIRQ(priority uint8, handler func()) error
	ClearIRQ() error
}

// ---- Output compare / PWM ----

// PWMUnit is one edge-aligned PWM generator. Period and compare are 16-bit
// registers; the output is high for HighTicks(Period, Compare) of every
// Period+1 ticks. Compare >= Period holds the line high with no edges.
type PWMUnit interface {
	TickRateHz() uint32
	SetPeriod(ticks uint16)
	Period() uint16
	SetCompare(ticks uint16)
	Compare() uint16
	// Enable starts edge-aligned generation.
	Enable()
}

// HighTicks is the number of ticks the output is high in each Period+1
// tick cycle. Full scale (Compare >= Period) is the whole cycle.
func HighTicks(period, compare uint16) uint32 {
	if compare >= period {
		return uint32(period) + 1
	}
	return uint32(compare)
}

// Pulses reports whether the output toggles, i.e. is neither constant low
// nor constant high.
func Pulses(period, compare uint16) bool {
	h := HighTicks(period, compare)
	return h > 0 && h < uint32(period)+1
}

// ---- GPIO ----

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// GPIOPin is a digital line; outputs are the latches of the board.
type GPIOPin interface {
	ConfigureInput(pull Pull) error
	ConfigureOutput(initial bool) error
	Set(level bool)
	Get() bool
	Number() int
}

// IRQPin extends GPIOPin with interrupts.
type IRQPin interface {
	GPIOPin
	SetIRQ(edge Edge, handler func()) error
	ClearIRQ() error
}
