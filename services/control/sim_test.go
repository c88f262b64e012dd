// services/control/sim_test.go
//go:build !rp2040

package control

import (
	"math"
	"testing"
	"time"
)

func TestSimStepsInLoopIntervals(t *testing.T) {
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewSim(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.SetInputs(9.008, 9.008, 12, 5.563)
	var last float64
	for i := 0; i < 10; i++ {
		last = s.Step().ServoDuty
	}
	if s.Elapsed() != 10*s.Interval() || s.Interval() != 20*time.Millisecond {
		t.Fatalf("elapsed %v interval %v", s.Elapsed(), s.Interval())
	}
	if s.Loop().Killed() || math.Abs(last-6.8) > 0.05 {
		t.Fatalf("killed=%v servo=%.3f", s.Loop().Killed(), last)
	}
}

func TestSimSilencedKillEngages(t *testing.T) {
	cfg, _ := DefaultConfig()
	cfg.Inputs.Kill.SmoothingWeight = 0
	s, err := NewSim(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.SetInputs(9.008, 9.008, 12, 5.563)
	for i := 0; i < 5; i++ {
		s.Step()
	}
	if s.Loop().Killed() {
		t.Fatal("expected released")
	}
	s.SetInputs(9.008, 9.008, 0, 5.563)
	for i := 0; i < 8; i++ {
		s.Step()
	}
	if !s.Loop().Killed() {
		t.Fatal("expected kill after the receiver went quiet")
	}
}
