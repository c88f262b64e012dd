package tickring

import (
	"sync"
	"testing"
)

func TestFIFOOrderAndOverrun(t *testing.T) {
	r := New(4)
	for i := uint16(1); i <= 4; i++ {
		if !r.Push(i) {
			t.Fatalf("push %d refused", i)
		}
	}
	if r.Push(5) {
		t.Fatal("push on full ring should fail")
	}
	if r.Overruns() != 1 {
		t.Fatalf("overruns = %d, want 1", r.Overruns())
	}
	for want := uint16(1); want <= 4; want++ {
		v, ok := r.Pop()
		if !ok || v != want {
			t.Fatalf("pop = %d,%v want %d", v, ok, want)
		}
	}
	if _, ok := r.Pop(); ok {
		t.Fatal("pop on empty ring should fail")
	}
}

func TestDrain(t *testing.T) {
	r := New(8)
	r.Push(10)
	r.Push(11)
	r.Push(12)
	if n := r.Drain(); n != 3 {
		t.Fatalf("drained %d, want 3", n)
	}
	if !r.Empty() {
		t.Fatal("ring not empty after drain")
	}
}

func TestOrderAcrossWrapConcurrent(t *testing.T) {
	r := New(4)
	const N = 5000
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < N; {
			if r.Push(uint16(i)) {
				i++
			}
		}
	}()
	for want := 0; want < N; {
		v, ok := r.Pop()
		if !ok {
			continue
		}
		if v != uint16(want) {
			t.Fatalf("mismatch at %d: got %d", want, v)
		}
		want++
	}
	wg.Wait()
}

func TestNewRejectsBadSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on non power-of-two size")
		}
	}()
	New(3)
}
