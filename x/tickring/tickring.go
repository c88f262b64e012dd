// Package tickring is a single-producer, single-consumer ring of 16-bit timer
// captures. It models the small FIFO that sits behind an input-capture unit.
package tickring

import "sync/atomic"

// Ring holds up to Cap() ticks. The producer side (Push) and the consumer side
// (Pop, Drain) may run in different contexts without further locking.
type Ring struct {
	buf  []uint16
	mask uint32
	rd   atomic.Uint32 // consumer index (monotonic)
	wr   atomic.Uint32 // producer index (monotonic)

	overruns atomic.Uint32
}

// New allocates a ring of the given power-of-two size (>= 2).
func New(size int) *Ring {
	if size < 2 || (size&(size-1)) != 0 {
		panic("tickring: size must be power of two >= 2")
	}
	return &Ring{
		buf:  make([]uint16, size),
		mask: uint32(size - 1),
	}
}

func (r *Ring) Cap() int { return len(r.buf) }

// Len is the number of buffered ticks.
func (r *Ring) Len() int {
	rd := r.rd.Load()
	wr := r.wr.Load()
	return int(wr - rd)
}

// Empty reports whether nothing is buffered.
func (r *Ring) Empty() bool { return r.Len() == 0 }

// Producer side

// Push appends v. When full the new value is dropped, the overrun counter is
// bumped and false is returned; existing entries are kept in order.
func (r *Ring) Push(v uint16) bool {
	rd := r.rd.Load()
	wr := r.wr.Load()
	if wr-rd >= uint32(len(r.buf)) {
		r.overruns.Add(1)
		return false
	}
	r.buf[wr&r.mask] = v
	r.wr.Store(wr + 1) // release
	return true
}

// Consumer side

// Pop removes the oldest tick. ok is false when empty.
func (r *Ring) Pop() (v uint16, ok bool) {
	rd := r.rd.Load()
	wr := r.wr.Load() // acquire
	if wr == rd {
		return 0, false
	}
	v = r.buf[rd&r.mask]
	r.rd.Store(rd + 1) // release
	return v, true
}

// Drain discards everything buffered and returns how many ticks were dropped.
func (r *Ring) Drain() int {
	n := 0
	for {
		if _, ok := r.Pop(); !ok {
			return n
		}
		n++
	}
}

// Overruns counts values dropped by Push on a full ring.
func (r *Ring) Overruns() uint32 { return r.overruns.Load() }
