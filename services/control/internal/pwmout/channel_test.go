// services/control/internal/pwmout/channel_test.go
package pwmout

import (
	"math"
	"testing"

	"hovercode-go/errcode"
)

type fakePWM struct {
	rate    uint32
	period  uint16
	compare uint16
	enabled bool
	writes  int
}

func (f *fakePWM) TickRateHz() uint32 { return f.rate }
func (f *fakePWM) Period() uint16     { return f.period }
func (f *fakePWM) Compare() uint16    { return f.compare }
func (f *fakePWM) Enable()            { f.enabled = true }

func (f *fakePWM) SetCompare(v uint16) {
	f.compare = v
	f.writes++
}

func (f *fakePWM) SetPeriod(v uint16) {
	f.period = v
	f.writes++
}

func newChannel(t *testing.T, hz float64) (*Channel, *fakePWM) {
	t.Helper()
	u := &fakePWM{rate: 250_000}
	c := New("servo", u)
	if err := c.Init(hz, 0); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return c, u
}

func TestPeriodRegister(t *testing.T) {
	cases := []struct {
		hz   float64
		want uint16
	}{
		{50, 4999},
		{400, 624},
		{15000, 16}, // round(16.67) - 1
		{1, math.MaxUint16},
		{1e9, 1},
	}
	for _, tc := range cases {
		got, err := PeriodTicks(250_000, tc.hz)
		if err != nil || got != tc.want {
			t.Fatalf("PeriodTicks(%v) = %d, %v; want %d", tc.hz, got, err, tc.want)
		}
	}
}

func TestInitEnables(t *testing.T) {
	c, u := newChannel(t, 50)
	if !u.enabled || u.period != 4999 {
		t.Fatalf("unit not configured: %+v", u)
	}
	if got := c.Frequency(); math.Abs(got-50) > 1e-9 {
		t.Fatalf("Frequency() = %v", got)
	}
	if c.Config().FrequencyHz != 50 {
		t.Fatalf("config = %+v", c.Config())
	}
}

func TestDutyRoundTrip(t *testing.T) {
	for _, hz := range []float64{50, 400, 15000} {
		c, _ := newChannel(t, hz)
		for _, d := range []float64{0, 25, 50, 75, 100} {
			c.SetDutyCycle(d)
			if got := c.DutyCycle(); math.Abs(got-d) > c.Resolution() {
				t.Fatalf("hz=%v duty %v read back %v (resolution %v)", hz, d, got, c.Resolution())
			}
		}
	}
}

func TestDutyRoundsToNearest(t *testing.T) {
	c, u := newChannel(t, 50)
	c.SetDutyCycle(7.5) // 374.925 ticks
	if u.compare != 375 {
		t.Fatalf("compare = %d, want 375", u.compare)
	}
	c.SetDutyCycle(6.8) // 339.932 ticks
	if u.compare != 340 {
		t.Fatalf("compare = %d, want 340", u.compare)
	}
}

func TestDutyIsNotClamped(t *testing.T) {
	c, u := newChannel(t, 50)
	c.SetDutyCycle(150)
	if u.compare != 7499 {
		t.Fatalf("compare = %d, want 7499", u.compare)
	}
	if c.Config().DutyCyclePercent != 150 {
		t.Fatal("config should keep the requested value")
	}
	c.SetDutyCycle(-10)
	if u.compare != 0 {
		t.Fatalf("negative duty should saturate to 0, got %d", u.compare)
	}
	c.SetDutyCycle(5000)
	if u.compare != math.MaxUint16 {
		t.Fatalf("huge duty should saturate at the register, got %d", u.compare)
	}
}

func TestSetFrequencyRederivesCompare(t *testing.T) {
	c, u := newChannel(t, 50)
	c.SetDutyCycle(50)
	if u.compare != 2500 {
		t.Fatalf("compare = %d", u.compare)
	}
	if err := c.SetFrequency(400); err != nil {
		t.Fatal(err)
	}
	if u.period != 624 || u.compare != 312 {
		t.Fatalf("period=%d compare=%d", u.period, u.compare)
	}
	if math.Abs(c.DutyCycle()-50) > c.Resolution() {
		t.Fatalf("duty drifted to %v", c.DutyCycle())
	}
}

func TestSetFrequencyInvalid(t *testing.T) {
	c, u := newChannel(t, 50)
	before := u.writes
	for _, hz := range []float64{0, -20, math.NaN()} {
		if err := c.SetFrequency(hz); errcode.Of(err) != errcode.InvalidPeriod {
			t.Fatalf("hz=%v: got %v", hz, err)
		}
	}
	if u.writes != before || u.period != 4999 {
		t.Fatal("invalid frequency must not touch registers")
	}
	if c.Config().FrequencyHz != 50 {
		t.Fatal("invalid frequency must not change config")
	}

	z := New("z", &fakePWM{})
	if err := z.SetFrequency(50); errcode.Of(err) != errcode.InvalidPeriod {
		t.Fatalf("zero tick rate: got %v", err)
	}
}

func TestNilUnit(t *testing.T) {
	c := New("none", nil)
	if err := c.Init(50, 0); errcode.Of(err) != errcode.NotConfigured {
		t.Fatalf("got %v", err)
	}
	c.SetDutyCycle(10)
	if c.DutyCycle() != 0 || c.Frequency() != 0 {
		t.Fatal("nil unit should read zero")
	}
}
