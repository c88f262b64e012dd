// cmd/boardtest/main.go
package main

import (
	"context"
	"fmt"
	"time"

	"hovercode-go/bus"
	"hovercode-go/services/config"
	"hovercode-go/services/control"
	"hovercode-go/types"
)

// ---------- Configuration ----------

const (
	readyTimeout = 5 * time.Second

	// One report per cycle.
	cycleLength = 5 * time.Second

	// Freshness of control/state
	freshMaxAge = 2 * time.Second

	// Cycles: 0 = loop forever
	cyclesToRun = 0
)

// ---------- Helpers ----------

func waitReady(c *bus.Connection, d time.Duration) bool {
	sub := c.Subscribe(control.TopicService)
	defer c.Unsubscribe(sub)

	dead := time.After(d)
	for {
		select {
		case m := <-sub.Channel():
			if st, ok := m.Payload.(types.ServiceState); ok {
				if st.Level == "ready" {
					return true
				}
				println("[boardtest] control:", st.Level, st.Status)
			}
		case <-dead:
			return false
		}
	}
}

// tally tracks what the operator exercised on the transmitter during a cycle.
type tally struct {
	seen       time.Time
	last       types.ControlState
	kills      int
	releases   int
	brakes     int
	steerMoves int
}

func (t *tally) add(st types.ControlState, now time.Time) {
	if !t.seen.IsZero() {
		switch {
		case st.Killed && !t.last.Killed:
			t.kills++
		case !st.Killed && t.last.Killed:
			t.releases++
		}
		if st.Brake && !t.last.Brake {
			t.brakes++
		}
		if st.StepperDesired != t.last.StepperDesired {
			t.steerMoves++
		}
	}
	t.seen, t.last = now, st
}

// ---------- Main ----------

func main() {
	time.Sleep(2 * time.Second)
	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, config.DefaultDevice)

	b := bus.NewBus(8)
	ui := b.NewConnection("ui")
	sub := ui.Subscribe(control.TopicState)
	defer ui.Unsubscribe(sub)

	control.NewDefaultService().Start(ctx, b.NewConnection("control"))
	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	if !waitReady(ui, readyTimeout) {
		println("[boardtest] control not ready within timeout; continuing")
	}

	cycle := 0
	for {
		cycle++
		println("=== boardtest: cycle", cycle, "===")
		println("toggle kill, brake and steering on the transmitter")

		var t tally
		end := time.After(cycleLength)
	collect:
		for {
			select {
			case m := <-sub.Channel():
				if st, ok := m.Payload.(types.ControlState); ok {
					t.add(st, time.Now())
				}
			case <-end:
				break collect
			}
		}

		st := t.last
		fresh := !t.seen.IsZero() && time.Since(t.seen) <= freshMaxAge
		if fresh {
			fmt.Printf("[PASS] control/state fresh: iter=%d killed=%t lost=%t servo=%.2f motor=%.1f steer=%d/%d %s\n",
				st.Iteration, st.Killed, st.Lost, st.ServoDuty, st.MotorDuty, st.StepperCounted, st.StepperDesired, st.StepperState)
		} else {
			println("[FAIL] control/state missing or stale")
		}
		fmt.Printf("kill engaged %d, released %d, brake %d, steering moves %d\n", t.kills, t.releases, t.brakes, t.steerMoves)

		if cyclesToRun > 0 && cycle >= cyclesToRun {
			println("completed", cycle, "cycles; halting")
			return
		}
	}
}
