// services/control/internal/signal/signal_test.go
package signal

import (
	"math"
	"testing"

	"tinygo.org/x/drivers"

	"hovercode-go/errcode"
	"hovercode-go/services/control/internal/capture"
	"hovercode-go/types"
)

const tickRate = 250_000

func near(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestEstimateNominal(t *testing.T) {
	// 50 Hz, 7.5 % duty at 250 kHz.
	d := Estimate(capture.Sample{PriorRising: 1000, Rising: 6000, Falling: 6375}, tickRate)
	if !d.Valid() {
		t.Fatal("expected valid reading")
	}
	if !near(d.DutyCyclePercent, 7.5, 1e-9) || !near(d.FrequencyHz, 50, 1e-9) {
		t.Fatalf("got %+v", d)
	}
}

func TestEstimateRangeProperty(t *testing.T) {
	for prior := uint16(1); prior < 20000; prior += 997 {
		for period := uint16(1); period < 30000; period += 1231 {
			for on := uint16(0); on <= period; on += period/7 + 1 {
				s := capture.Sample{PriorRising: prior, Rising: prior + period, Falling: prior + period + on}
				d := Estimate(s, tickRate)
				if d.DutyCyclePercent < 0 || d.DutyCyclePercent > 100 || d.FrequencyHz <= 0 {
					t.Fatalf("sample %+v gave %+v", s, d)
				}
			}
		}
	}
}

func TestEstimateZeroPeriodIsSentinel(t *testing.T) {
	d := Estimate(capture.Sample{PriorRising: 500, Rising: 500, Falling: 900}, tickRate)
	if d.Valid() || d != (DerivedSignal{}) {
		t.Fatalf("expected sentinel, got %+v", d)
	}
	if Estimate(capture.Sample{PriorRising: 0, Rising: 5000, Falling: 5400}, 0).Valid() {
		t.Fatal("zero tick rate must be invalid")
	}
}

func TestEstimateWraps(t *testing.T) {
	d := Estimate(capture.Sample{PriorRising: 64000, Rising: 3464, Falling: 3964}, tickRate)
	if !near(d.FrequencyHz, 50, 1e-9) || !near(d.DutyCyclePercent, 10, 1e-9) {
		t.Fatalf("wrapped window gave %+v", d)
	}
}

func TestSmoothFixedPoint(t *testing.T) {
	for _, n := range []int{0, 1, 2, 100, 1 << 20} {
		if got := Smooth(7.25, 7.25, n); got != 7.25 {
			t.Fatalf("N=%d: fixed point moved to %v", n, got)
		}
	}
}

func TestSmoothWeights(t *testing.T) {
	if got := Smooth(10, 4, 2); !near(got, 8, 1e-12) {
		t.Fatalf("Smooth(10,4,2)=%v", got)
	}
	if got := Smooth(10, 4, 0); got != 4 {
		t.Fatalf("weight 0 should pass raw through, got %v", got)
	}
}

func TestSmoothMonotonicApproach(t *testing.T) {
	for _, n := range []int{1, 2, 100, 10000} {
		v := 0.0
		raw := 1.0
		for i := 0; i < 200; i++ {
			raw += 0.01 // monotonically drifting input
			next := Smooth(v, raw, n)
			if next < v || next > raw {
				t.Fatalf("N=%d step %d: %v -> %v overshoots raw %v", n, i, v, next, raw)
			}
			v = next
		}
	}
	// Heavier weight approaches more slowly.
	if Smooth(0, 1, 100) >= Smooth(0, 1, 2) {
		t.Fatal("heavier weight should move less per step")
	}
}

func TestSmootherSeedsAndHolds(t *testing.T) {
	s := NewSmoother(2)
	if s.Update(DerivedSignal{}) != 0 || s.Seeded() {
		t.Fatal("invalid reading must not seed")
	}
	if got := s.Update(DerivedSignal{DutyCyclePercent: 9, FrequencyHz: 50}); got != 9 {
		t.Fatalf("first valid reading should seed, got %v", got)
	}
	if got := s.Update(DerivedSignal{DutyCyclePercent: 12, FrequencyHz: 50}); !near(got, 10, 1e-12) {
		t.Fatalf("got %v want 10", got)
	}
	st := s.State()
	if st.Previous != 9 || !near(st.Value, 10, 1e-12) {
		t.Fatalf("state %+v", st)
	}
	if got := s.Update(DerivedSignal{DutyCyclePercent: 50}); !near(got, 10, 1e-12) {
		t.Fatalf("invalid reading should hold, got %v", got)
	}
	s.Reset()
	if s.Seeded() || s.Value() != 0 {
		t.Fatal("Reset should clear state")
	}
}

func TestCalibrationScaleServo(t *testing.T) {
	c := Calibration{Min: 5.563, Max: 12.453}
	if got := c.Scale(9.008, 10, 1.8); !near(got, 6.8, 1e-9) {
		t.Fatalf("servo duty = %v, want 6.8", got)
	}
	if got := c.Scale(c.Min, 10, 1.8); !near(got, 1.8, 1e-12) {
		t.Fatalf("idle = %v", got)
	}
	if got := c.Scale(c.Max, 100, 0); !near(got, 100, 1e-9) {
		t.Fatalf("full scale = %v", got)
	}
}

func TestCalibrationScaleClamps(t *testing.T) {
	c := Calibration{Min: 5.563, Max: 12.453}
	if got := c.Scale(0, 100, 0); got != 0 {
		t.Fatalf("below range = %v", got)
	}
	if got := c.Scale(40, 100, 0); got != 100 {
		t.Fatalf("above range = %v", got)
	}
	if got := (Calibration{Min: 5, Max: 5}).Scale(7, 10, 1.8); got != 1.8 {
		t.Fatalf("degenerate span = %v", got)
	}
}

func TestCalibrationMidpointBoundary(t *testing.T) {
	c := Calibration{Min: 5.5, Max: 12.5}
	if c.Midpoint() != 9 {
		t.Fatalf("midpoint %v", c.Midpoint())
	}
	if c.Below(9) || !c.AtOrAbove(9) {
		t.Fatal("midpoint itself counts as at-or-above")
	}
	if !c.Below(8.999) {
		t.Fatal("just under midpoint counts as below")
	}
}

func TestCalibrationDeadZoneInclusive(t *testing.T) {
	c := Calibration{Min: 5.5, Max: 12.5, DeadZone: 0.5}
	for _, in := range []float64{8.5, 9, 9.5} {
		if !c.InDeadZone(in) {
			t.Fatalf("%v should be in the dead zone", in)
		}
	}
	if c.InDeadZone(8.49) || c.InDeadZone(9.51) {
		t.Fatal("outside readings reported in the dead zone")
	}
}

func TestCalibrationValidate(t *testing.T) {
	good := CalibrationFrom(types.ChannelCalibration{MinDutyCycle: 5, MaxDutyCycle: 10, DeadZone: 0.5, SmoothingWeight: 2})
	if err := good.Validate("steering"); err != nil {
		t.Fatal(err)
	}
	for _, bad := range []Calibration{
		{Min: 10, Max: 5},
		{Min: 5, Max: 10, DeadZone: -1},
		{Min: 5, Max: 10, Weight: -1},
	} {
		if errcode.Of(bad.Validate("x")) != errcode.InvalidConfig {
			t.Fatalf("expected invalid_config for %+v", bad)
		}
	}
}

// ---- Input ----

type fakeSource struct {
	s    capture.Sample
	n    uint32
	rate uint32
}

func (f *fakeSource) Load() (capture.Sample, uint32) { return f.s, f.n }
func (f *fakeSource) TickRateHz() uint32             { return f.rate }

func (f *fakeSource) window(period, on uint16) {
	prior := f.s.Rising
	f.s = capture.Sample{PriorRising: prior, Rising: prior + period, Falling: prior + period + on}
	f.n++
}

func TestInputSmoothsNewWindowsOnly(t *testing.T) {
	src := &fakeSource{rate: tickRate}
	in := NewInput("throttle", src, Calibration{Min: 5, Max: 12, Weight: 1})

	var sensor drivers.Sensor = in
	if err := sensor.Update(drivers.AllMeasurements); err != nil {
		t.Fatal(err)
	}
	if in.Seeded() {
		t.Fatal("no window yet")
	}

	src.window(5000, 400) // 8 %
	_ = in.Update(drivers.AllMeasurements)
	if !near(in.Value(), 8, 1e-9) {
		t.Fatalf("seed = %v", in.Value())
	}

	src.window(5000, 500) // 10 %
	_ = in.Update(drivers.AllMeasurements)
	if !near(in.Value(), 9, 1e-9) {
		t.Fatalf("smoothed = %v, want 9", in.Value())
	}

	// Same window polled again is not re-averaged.
	_ = in.Update(drivers.AllMeasurements)
	if !near(in.Value(), 9, 1e-9) || in.Stale() != 1 {
		t.Fatalf("stale window changed value: %v stale=%d", in.Value(), in.Stale())
	}
	if in.Windows() != 2 {
		t.Fatalf("windows = %d, want 2", in.Windows())
	}
	if !near(in.Raw().DutyCyclePercent, 10, 1e-9) || !near(in.Raw().FrequencyHz, 50, 1e-9) {
		t.Fatalf("raw = %+v", in.Raw())
	}
}

func TestInputRefreshesOnTimeMeasurement(t *testing.T) {
	src := &fakeSource{rate: tickRate}
	in := NewInput("steering", src, Calibration{Min: 5, Max: 12})
	src.window(5000, 450) // 9 %

	for _, which := range []drivers.Measurement{0, drivers.Temperature, drivers.Voltage | drivers.Distance} {
		_ = in.Update(which)
		if in.Seeded() || in.Windows() != 0 {
			t.Fatalf("Update(%#x) must not read a pulse window", which)
		}
	}
	_ = in.Update(drivers.Time | drivers.Voltage)
	if !in.Seeded() || !near(in.Value(), 9, 1e-9) {
		t.Fatalf("time measurement not read: seeded=%v value=%v", in.Seeded(), in.Value())
	}
}

func TestInputIgnoresZeroPeriodWindow(t *testing.T) {
	src := &fakeSource{rate: tickRate}
	in := NewInput("kill", src, Calibration{Min: 5, Max: 12, Weight: 100})

	src.s = capture.Sample{PriorRising: 700, Rising: 700, Falling: 1000}
	src.n = 1
	_ = in.Update(drivers.AllMeasurements)
	if in.Seeded() || in.Raw().Valid() {
		t.Fatal("first window after init must not seed")
	}
}
