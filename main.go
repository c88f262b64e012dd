package main

import (
	"context"
	"time"

	"hovercode-go/bus"
	"hovercode-go/services/config"
	"hovercode-go/services/control"
	"hovercode-go/services/heartbeat"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, config.DefaultDevice)
	b := bus.NewBus(8)

	// Subscribers first so retained config is picked up either way.
	control.NewDefaultService().Start(ctx, b.NewConnection("control"))
	_ = heartbeat.NewService().Start(ctx, b.NewConnection("heartbeat"))
	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	select {}
}
