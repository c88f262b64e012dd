// services/control/internal/signal/input.go
package signal

import (
	"tinygo.org/x/drivers"

	"hovercode-go/services/control/internal/capture"
)

// Source is the polling side of a capture channel.
type Source interface {
	Load() (capture.Sample, uint32)
	TickRateHz() uint32
}

var _ drivers.Sensor = (*Input)(nil)

// Input is one receiver channel as seen by the control loop: the latest
// window is estimated and smoothed on each Update. A window that has not
// changed since the previous Update is not fed to the smoother again.
type Input struct {
	name string
	src  Source
	cal  Calibration
	sm   Smoother

	raw     DerivedSignal
	last    uint32
	updates uint32
	stale   uint32 // consecutive updates without a new window
}

func NewInput(name string, src Source, cal Calibration) *Input {
	return &Input{name: name, src: src, cal: cal, sm: Smoother{Weight: cal.Weight}}
}

// Measurement is the kind an Input reports: pulse timing of the receiver
// line, from which duty cycle and frequency are derived.
const Measurement = drivers.Time

// Update implements drivers.Sensor. Only requests that include Measurement
// refresh the input.
func (in *Input) Update(which drivers.Measurement) error {
	if which&Measurement == 0 {
		return nil
	}
	in.updates++
	s, n := in.src.Load()
	if n == in.last {
		in.stale++
		return nil
	}
	in.last = n
	in.stale = 0
	in.raw = Estimate(s, in.src.TickRateHz())
	in.sm.Update(in.raw)
	return nil
}

func (in *Input) Name() string             { return in.name }
func (in *Input) Raw() DerivedSignal       { return in.raw }
func (in *Input) Value() float64           { return in.sm.Value() }
func (in *Input) Seeded() bool             { return in.sm.Seeded() }
func (in *Input) Smoothed() SmoothedSignal { return in.sm.State() }
func (in *Input) Stale() uint32            { return in.stale }
func (in *Input) Windows() uint32          { return in.last }
func (in *Input) Calibration() Calibration { return in.cal }

// SetCalibration applies a new calibration; smoothing history is kept.
func (in *Input) SetCalibration(c Calibration) {
	in.cal = c
	in.sm.Weight = c.Weight
}
