package heartbeat

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"hovercode-go/bus"
	"hovercode-go/types"
)

func TestLineWaiting(t *testing.T) {
	var buf [96]byte
	at := time.Date(2026, 1, 1, 12, 0, 1, 0, time.UTC)
	got := string(Line(buf[:], at, nil))
	if got != "[heartbeat] 12:00:01 control=waiting" {
		t.Fatalf("got %q", got)
	}
}

func TestLineState(t *testing.T) {
	var buf [160]byte
	at := time.Date(2026, 1, 1, 8, 30, 0, 0, time.UTC)
	st := &types.ControlState{
		Iteration:      42,
		Killed:         true,
		ServoDuty:      1.8,
		MotorDuty:      0,
		StepperCounted: -12,
		StepperDesired: 0,
		StepperState:   "holding",
	}
	want := "[heartbeat] 08:30:00 iter=42 killed=1 brake=0 servo=1.80 motor=0.0 steer=-12/0 holding"
	if got := string(Line(buf[:], at, st)); got != want {
		t.Fatalf("got  %q\nwant %q", got, want)
	}
}

func TestIntervalFrom(t *testing.T) {
	if d, ok := intervalFrom(json.RawMessage(`{"interval": 0.5}`)); !ok || d != 500*time.Millisecond {
		t.Fatalf("got %v %v", d, ok)
	}
	if _, ok := intervalFrom(json.RawMessage(`{"interval": 0}`)); ok {
		t.Fatal("zero interval accepted")
	}
	if _, ok := intervalFrom(map[string]any{"interval": "fast"}); ok {
		t.Fatal("string interval accepted")
	}
}

func TestServiceReportsLatestState(t *testing.T) {
	b := bus.NewBus(8)
	conn := b.NewConnection("test")
	conn.Publish(conn.NewMessage(topicConfigHeartbeat, json.RawMessage(`{"interval": 0.01}`), true))
	conn.Publish(conn.NewMessage(topicControlState, types.ControlState{Iteration: 7, StepperState: "holding"}, true))

	lines := make(chan string, 64)
	s := &Service{Out: func(l string) {
		select {
		case lines <- l:
		default:
		}
	}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = s.Start(ctx, conn)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case l := <-lines:
			if strings.Contains(l, "iter=7 ") {
				return
			}
		case <-deadline:
			t.Fatal("no heartbeat with control state")
		}
	}
}
