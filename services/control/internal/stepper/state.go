// services/control/internal/stepper/state.go
package stepper

// Direction of travel. Clockwise counts down, counter-clockwise counts up.
type Direction int8

const (
	None             Direction = 0
	Clockwise        Direction = -1
	CounterClockwise Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Clockwise:
		return "cw"
	case CounterClockwise:
		return "ccw"
	default:
		return "none"
	}
}

// ClockwiseLevel is the direction latch level that selects clockwise.
const ClockwiseLevel = true

type State uint8

const (
	HoldingPosition State = iota
	MovingClockwise
	MovingCounterClockwise
	AtTravelLimit
)

// Decision is one evaluation of the controller.
type Decision struct {
	State    State
	Limit    Direction // blocked direction when State is AtTravelLimit
	Fault    bool      // both directions blocked; always holds
	Counted  int32
	Desired  int32
	Midpoint int32

	AllowClockwise        bool
	AllowCounterClockwise bool
}

// Moving reports whether the decision commands a step, and which way.
func (d Decision) Moving() (Direction, bool) {
	switch d.State {
	case MovingClockwise:
		return Clockwise, true
	case MovingCounterClockwise:
		return CounterClockwise, true
	}
	return None, false
}

// String is the short name published in control state.
func (d Decision) String() string {
	if d.Fault {
		return "fault_hold"
	}
	switch d.State {
	case MovingClockwise:
		return "moving_cw"
	case MovingCounterClockwise:
		return "moving_ccw"
	case AtTravelLimit:
		return "limit_" + d.Limit.String()
	default:
		return "holding"
	}
}
