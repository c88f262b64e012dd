package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// TicksFor converts d into whole ticks of a timer running at rateHz (truncating).
func TicksFor(d time.Duration, rateHz uint32) uint64 {
	if d <= 0 || rateHz == 0 {
		return 0
	}
	return uint64(d) * uint64(rateHz) / uint64(time.Second)
}

// DurationOf converts ticks of a timer running at rateHz into a duration.
func DurationOf(ticks uint64, rateHz uint32) time.Duration {
	if rateHz == 0 {
		return 0
	}
	return time.Duration(ticks * uint64(time.Second) / uint64(rateHz))
}
