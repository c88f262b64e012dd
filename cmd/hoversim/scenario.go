//go:build !rp2040

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"hovercode-go/errcode"
	"hovercode-go/services/control"
	"hovercode-go/types"
	"hovercode-go/x/ramp"
)

// Phase holds the receiver duty cycles (percent) for a stretch of time. A
// duty of zero silences that channel. RampMs moves linearly from the
// previous phase's values at the start of the phase.
type Phase struct {
	Name       string  `yaml:"name"`
	DurationMs int     `yaml:"duration_ms"`
	RampMs     int     `yaml:"ramp_ms"`
	Throttle   float64 `yaml:"throttle"`
	Steering   float64 `yaml:"steering"`
	Kill       float64 `yaml:"kill"`
	Brake      float64 `yaml:"brake"`
}

// Scenario is a YAML file of phases. Config overlays the embedded control
// configuration using its JSON field names.
type Scenario struct {
	Config map[string]any `yaml:"config"`
	Phases []Phase        `yaml:"phases"`
}

func invalid(format string, a ...any) error {
	return errcode.Wrap(errcode.InvalidConfig, "scenario", fmt.Sprintf(format, a...))
}

func ParseScenario(b []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(b, &sc); err != nil {
		return nil, &errcode.E{C: errcode.InvalidPayload, Op: "scenario", Err: err}
	}
	if len(sc.Phases) == 0 {
		return nil, invalid("no phases")
	}
	for i, p := range sc.Phases {
		if p.Name == "" {
			sc.Phases[i].Name = fmt.Sprintf("phase%d", i+1)
		}
		if p.DurationMs <= 0 {
			return nil, invalid("%s: duration_ms must be positive", sc.Phases[i].Name)
		}
		if p.RampMs < 0 || p.RampMs > p.DurationMs {
			return nil, invalid("%s: ramp_ms must be within the phase", sc.Phases[i].Name)
		}
		for _, d := range []float64{p.Throttle, p.Steering, p.Kill, p.Brake} {
			if d < 0 || d > 100 {
				return nil, invalid("%s: duty %v out of range", sc.Phases[i].Name, d)
			}
		}
	}
	return &sc, nil
}

// ControlConfig returns the embedded defaults with the scenario overlay.
func (sc *Scenario) ControlConfig() (types.ControlConfig, error) {
	cfg, err := control.DefaultConfig()
	if err != nil {
		return cfg, err
	}
	if len(sc.Config) > 0 {
		b, err := json.Marshal(sc.Config)
		if err != nil {
			return cfg, &errcode.E{C: errcode.InvalidConfig, Op: "scenario", Msg: "config overlay", Err: err}
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, &errcode.E{C: errcode.InvalidConfig, Op: "scenario", Msg: "config overlay", Err: err}
		}
	}
	return cfg, control.Validate(cfg)
}

// Report receives every iteration's state; end marks the last one of a phase.
type Report func(p *Phase, at time.Duration, st types.ControlState, end bool)

func lerp(a, b, f float64) float64 { return a + (b-a)*f }

// Run plays the scenario through a simulated board. maxIter caps the total
// number of loop iterations (0 = no cap). It returns the iterations run.
func Run(ctx context.Context, sc *Scenario, cfg types.ControlConfig, maxIter int, report Report) (int, error) {
	sim, err := control.NewSim(cfg)
	if err != nil {
		return 0, err
	}
	defer sim.Close()

	var (
		prev  Phase
		iters int
		last  types.ControlState
	)
	for i := range sc.Phases {
		p := &sc.Phases[i]
		step := func(time.Duration) bool {
			if ctx.Err() != nil || (maxIter > 0 && iters >= maxIter) {
				return false
			}
			last = sim.Step()
			iters++
			report(p, sim.Elapsed(), last, false)
			return true
		}

		interval := sim.Interval()
		total := int(time.Duration(p.DurationMs) * time.Millisecond / interval)
		rampSteps := int(time.Duration(p.RampMs) * time.Millisecond / interval)
		done := 0
		stopped := false
		if rampSteps > 0 {
			from := prev
			ramp.Linear(0, 1, time.Duration(p.RampMs)*time.Millisecond, rampSteps, func(d time.Duration) bool {
				if !step(d) {
					stopped = true
					return false
				}
				done++
				return true
			}, func(f float64) {
				sim.SetInputs(lerp(from.Throttle, p.Throttle, f), lerp(from.Steering, p.Steering, f),
					lerp(from.Kill, p.Kill, f), lerp(from.Brake, p.Brake, f))
			})
		} else {
			sim.SetInputs(p.Throttle, p.Steering, p.Kill, p.Brake)
		}
		for ; !stopped && done < total; done++ {
			stopped = !step(interval)
		}
		if done > 0 {
			report(p, sim.Elapsed(), last, true)
		}
		if stopped {
			break
		}
		prev = *p
	}
	return iters, ctx.Err()
}
