package mathx

import (
	"math"

	"golang.org/x/exp/constraints"
)

// MapRange maps x in [inMin,inMax] linearly onto [outMin,outMax].
// The input is not clamped; callers clamp the result where the output range is a hard limit.
// A degenerate input range maps everything to outMin.
func MapRange[T constraints.Float](x, inMin, inMax, outMin, outMax T) T {
	if inMax == inMin {
		return outMin
	}
	return outMin + (x-inMin)*(outMax-outMin)/(inMax-inMin)
}

// RoundU16 rounds to nearest and saturates to the uint16 register range.
// NaN reads as 0.
func RoundU16(x float64) uint16 {
	if math.IsNaN(x) || x <= 0 {
		return 0
	}
	r := math.Round(x)
	if r >= math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(r)
}
