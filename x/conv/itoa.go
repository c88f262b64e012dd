package conv

// Itoa writes base-10 representation of n into buf and returns the used slice.
// buf should be length >= 20 for int64. Negative numbers supported.
func Itoa(buf []byte, n int64) []byte {
	if len(buf) == 0 {
		return buf[:0]
	}
	i := len(buf)
	neg := n < 0
	var u uint64
	if neg {
		u = uint64(-n)
	} else {
		u = uint64(n)
	}
	i = putUint(buf, i, u, 1)
	if i < 0 {
		return buf[:0]
	}
	if neg && i > 0 {
		i--
		buf[i] = '-'
	}
	return buf[i:]
}

// putUint writes u right-aligned ending at buf[end] with at least minDigits
// digits and returns the start index, or -1 when buf is too short.
func putUint(buf []byte, end int, u uint64, minDigits int) int {
	i := end
	for n := 0; u > 0 || n < minDigits; n++ {
		if i == 0 {
			return -1
		}
		i--
		buf[i] = byte('0' + (u % 10))
		u /= 10
	}
	return i
}
