// services/control/internal/capture/buffer.go
package capture

import "sync/atomic"

// Sample is one measurement window in raw 16-bit timer ticks.
// PriorRising, Rising and Falling always come from the same window.
type Sample struct {
	PriorRising uint16
	Rising      uint16
	Falling     uint16
}

// Buffer holds the latest Sample. One writer (the capture interrupt) and any
// number of readers. Readers never observe fields from two different windows:
// the writer moves seq to odd before storing and back to even after, and a
// reader retries until it sees the same even seq on both sides of its copy.
type Buffer struct {
	seq     atomic.Uint32
	prior   atomic.Uint32
	rising  atomic.Uint32
	falling atomic.Uint32
}

// Publish stores s. Must only be called from the owning writer.
func (b *Buffer) Publish(s Sample) {
	b.seq.Add(1)
	b.prior.Store(uint32(s.PriorRising))
	b.rising.Store(uint32(s.Rising))
	b.falling.Store(uint32(s.Falling))
	b.seq.Add(1)
}

// Load returns a consistent copy of the latest Sample and the number of
// publications so far. A zero count means nothing has been published.
func (b *Buffer) Load() (Sample, uint32) {
	for {
		s1 := b.seq.Load()
		if s1&1 != 0 {
			continue
		}
		s := Sample{
			PriorRising: uint16(b.prior.Load()),
			Rising:      uint16(b.rising.Load()),
			Falling:     uint16(b.falling.Load()),
		}
		if b.seq.Load() == s1 {
			return s, s1 / 2
		}
	}
}
