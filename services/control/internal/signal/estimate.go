// services/control/internal/signal/estimate.go
package signal

import "hovercode-go/services/control/internal/capture"

// DerivedSignal is the physical reading of one capture window.
// The zero value is the invalid sentinel.
type DerivedSignal struct {
	DutyCyclePercent float64
	FrequencyHz      float64
}

// Valid reports whether the reading came from a non-degenerate window.
func (d DerivedSignal) Valid() bool { return d.FrequencyHz > 0 }

// Estimate converts a capture window into duty cycle and frequency.
// Tick differences wrap at 16 bits. A zero period or tick rate yields the
// invalid sentinel.
func Estimate(s capture.Sample, tickRateHz uint32) DerivedSignal {
	period := s.Rising - s.PriorRising
	if period == 0 || tickRateHz == 0 {
		return DerivedSignal{}
	}
	on := s.Falling - s.Rising
	return DerivedSignal{
		DutyCyclePercent: float64(on) / float64(period) * 100,
		FrequencyHz:      float64(tickRateHz) / float64(period),
	}
}
