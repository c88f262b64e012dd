// services/control/internal/halcore/types_test.go

package halcore

import "testing"

func TestEdgeToString(t *testing.T) {
	if EdgeToString(EdgeRising) != "rising" ||
		EdgeToString(EdgeFalling) != "falling" ||
		EdgeToString(EdgeBoth) != "both" ||
		EdgeToString(EdgeNone) != "none" {
		t.Fatal("EdgeToString mapping incorrect")
	}
}

func TestHighTicksFullScaleIsConstant(t *testing.T) {
	cases := []struct {
		period, compare uint16
		high            uint32
		pulses          bool
	}{
		{624, 0, 0, false},
		{624, 31, 31, true},
		{624, 623, 623, true},
		{624, 624, 625, false},
		{624, 700, 625, false},
		{0, 0, 1, false},
	}
	for _, tc := range cases {
		if got := HighTicks(tc.period, tc.compare); got != tc.high {
			t.Fatalf("HighTicks(%d,%d) = %d, want %d", tc.period, tc.compare, got, tc.high)
		}
		if got := Pulses(tc.period, tc.compare); got != tc.pulses {
			t.Fatalf("Pulses(%d,%d) = %v", tc.period, tc.compare, got)
		}
	}
}
