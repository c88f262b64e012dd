// services/control/service_test.go
package control

import (
	"context"
	"testing"
	"time"

	"hovercode-go/bus"
	"hovercode-go/services/config"
	"hovercode-go/services/control/internal/platform"
	"hovercode-go/types"
)

func waitFor[T any](t *testing.T, sub *bus.Subscription, match func(T) bool) T {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case m := <-sub.Channel():
			if v, ok := m.Payload.(T); ok && match(v) {
				return v
			}
		case <-deadline:
			var zero T
			t.Fatal("timeout waiting for message")
			return zero
		}
	}
}

func TestServiceRunsFromRetainedConfig(t *testing.T) {
	b := bus.NewBus(32)
	conn := b.NewConnection("test")

	m, err := config.Embedded(config.DefaultDevice)
	if err != nil {
		t.Fatal(err)
	}
	conn.Publish(conn.NewMessage(config.Topic("control"), m["control"], true))

	states := conn.Subscribe(TopicState)
	svcStates := conn.Subscribe(TopicService)

	ctx, cancel := context.WithCancel(context.Background())
	svc := NewService(platform.NewRig().Board())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx, conn)
		close(done)
	}()

	waitFor(t, svcStates, func(s types.ServiceState) bool { return s.Level == "ready" })
	st := waitFor(t, states, func(s types.ControlState) bool { return s.Iteration > 0 })
	if !st.Killed || !st.RelayLift || !st.RelayThrust {
		t.Fatalf("silent receiver must stay killed: %+v", st)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("service did not stop")
	}
	waitFor(t, svcStates, func(s types.ServiceState) bool { return s.Level == "stopped" })
}

func TestServiceRejectsInvalidConfig(t *testing.T) {
	b := bus.NewBus(32)
	conn := b.NewConnection("test")
	svcStates := conn.Subscribe(TopicService)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := NewService(platform.NewRig().Board())
	go svc.Run(ctx, conn)

	waitFor(t, svcStates, func(s types.ServiceState) bool { return s.Status == "awaiting_config" })
	conn.Publish(conn.NewMessage(config.Topic("control"), map[string]any{
		"inputs": map[string]any{"tick_rate_hz": 0},
	}, true))
	st := waitFor(t, svcStates, func(s types.ServiceState) bool { return s.Status != "awaiting_config" })
	if st.Level != "idle" || st.Status != "invalid_config" {
		t.Fatalf("unexpected service state %+v", st)
	}
}

func TestStatusEvery(t *testing.T) {
	cfg := types.ControlConfig{LoopIntervalUs: 20000, StatusIntervalMs: 1000}
	if statusEvery(cfg) != 50 {
		t.Fatalf("got %d", statusEvery(cfg))
	}
	cfg.StatusIntervalMs = 0
	if statusEvery(cfg) != 1 {
		t.Fatal("zero interval should publish every iteration")
	}
}
