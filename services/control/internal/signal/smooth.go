// services/control/internal/signal/smooth.go
package signal

// Smooth is the exponential average (N*prev + raw)/(N+1).
// Negative weights are treated as zero (no smoothing).
func Smooth(prev, raw float64, weight int) float64 {
	if weight <= 0 {
		return raw
	}
	n := float64(weight)
	return (n*prev + raw) / (n + 1)
}

// SmoothedSignal is the filter state of one logical input.
type SmoothedSignal struct {
	Value    float64
	Previous float64
}

// Smoother filters the duty cycle of a stream of readings. It seeds from the
// first valid reading and holds its value across invalid ones.
type Smoother struct {
	Weight int

	state  SmoothedSignal
	seeded bool
}

func NewSmoother(weight int) *Smoother { return &Smoother{Weight: weight} }

// Update feeds one reading and returns the smoothed duty cycle.
func (s *Smoother) Update(d DerivedSignal) float64 {
	if !d.Valid() {
		return s.state.Value
	}
	if !s.seeded {
		s.state = SmoothedSignal{Value: d.DutyCyclePercent, Previous: d.DutyCyclePercent}
		s.seeded = true
		return s.state.Value
	}
	s.state.Previous = s.state.Value
	s.state.Value = Smooth(s.state.Value, d.DutyCyclePercent, s.Weight)
	return s.state.Value
}

func (s *Smoother) Value() float64        { return s.state.Value }
func (s *Smoother) State() SmoothedSignal { return s.state }
func (s *Smoother) Seeded() bool          { return s.seeded }

// Reset forgets all history; the next valid reading seeds again.
func (s *Smoother) Reset() {
	s.state = SmoothedSignal{}
	s.seeded = false
}
