package timex

import (
	"testing"
	"time"
)

func TestTicksRoundTrip(t *testing.T) {
	const rate = 250_000
	if got := TicksFor(20*time.Millisecond, rate); got != 5000 {
		t.Fatalf("20ms at 250kHz = %d ticks, want 5000", got)
	}
	if got := DurationOf(5000, rate); got != 20*time.Millisecond {
		t.Fatalf("5000 ticks = %v, want 20ms", got)
	}
	if TicksFor(-time.Second, rate) != 0 || DurationOf(10, 0) != 0 {
		t.Fatal("degenerate inputs should be zero")
	}
}
