// services/control/sim.go
//go:build !rp2040

package control

import (
	"time"

	"hovercode-go/services/control/internal/platform"
	"hovercode-go/types"
)

// Sim runs the control loop against the simulated board, one loop interval
// of simulated time per Step.
type Sim struct {
	rig      *platform.Rig
	loop     *Loop
	interval time.Duration
}

// NewSim builds and initializes a loop on a fresh rig. All receiver channels
// start silent.
func NewSim(cfg types.ControlConfig) (*Sim, error) {
	rig := platform.NewRig()
	l, err := NewLoop(rig.Board(), cfg)
	if err != nil {
		return nil, err
	}
	if err := l.Init(); err != nil {
		return nil, err
	}
	return &Sim{
		rig:      rig,
		loop:     l,
		interval: time.Duration(cfg.LoopIntervalUs) * time.Microsecond,
	}, nil
}

func setChannel(g *platform.SignalGen, duty float64) {
	if duty <= 0 {
		g.Stop()
		return
	}
	g.Set(duty, 50)
}

// SetInputs drives the receiver channels at 50 Hz with the given duty
// cycles. A duty of zero or less silences that channel.
func (s *Sim) SetInputs(throttle, steering, kill, brake float64) {
	setChannel(s.rig.Throttle, throttle)
	setChannel(s.rig.Steering, steering)
	setChannel(s.rig.Kill, kill)
	setChannel(s.rig.Brake, brake)
}

// Step advances one loop interval and runs one iteration.
func (s *Sim) Step() types.ControlState {
	s.rig.Advance(s.interval)
	return s.loop.Step()
}

func (s *Sim) Elapsed() time.Duration  { return s.rig.Sim.Now() }
func (s *Sim) Interval() time.Duration { return s.interval }
func (s *Sim) Loop() *Loop             { return s.loop }
func (s *Sim) Close() error            { return s.loop.Close() }
