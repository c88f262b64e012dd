package conv

import "math"

// Fixed writes v with the given number of decimals (0..6), rounding half away
// from zero. NaN and infinities are written as "nan".
func Fixed(buf []byte, v float64, decimals int) []byte {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		if len(buf) < 3 {
			return buf[:0]
		}
		return append(buf[:0], "nan"...)
	}
	if decimals < 0 {
		decimals = 0
	}
	if decimals > 6 {
		decimals = 6
	}
	scale := math.Pow10(decimals)
	neg := v < 0
	u := uint64(math.Round(math.Abs(v) * scale))
	whole, frac := u/uint64(scale), u%uint64(scale)

	i := len(buf)
	if decimals > 0 {
		i = putUint(buf, i, frac, decimals)
		if i <= 0 {
			return buf[:0]
		}
		i--
		buf[i] = '.'
	}
	i = putUint(buf, i, whole, 1)
	if i < 0 {
		return buf[:0]
	}
	if neg && u != 0 && i > 0 {
		i--
		buf[i] = '-'
	}
	return buf[i:]
}

// Bool writes "1" or "0".
func Bool(buf []byte, b bool) []byte {
	if len(buf) == 0 {
		return buf[:0]
	}
	buf[len(buf)-1] = '0'
	if b {
		buf[len(buf)-1] = '1'
	}
	return buf[len(buf)-1:]
}
