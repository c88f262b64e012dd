package heartbeat

import (
	"context"
	"time"

	"hovercode-go/bus"
	"hovercode-go/services/internal/util"
	"hovercode-go/types"
	"hovercode-go/x/conv"
)

var (
	topicConfigHeartbeat = bus.T("config", "heartbeat")
	topicControlState    = bus.T("control", "state")
)

const defaultInterval = 1 * time.Second

type Service struct {
	// Out receives each liveness line. Defaults to println.
	Out func(string)
}

func NewService() *Service { return &Service{} }

func (s *Service) emit(line []byte) {
	if s.Out != nil {
		s.Out(string(line))
		return
	}
	println(string(line))
}

// Line renders one liveness report. A nil state means the control loop has
// not published yet.
func Line(buf []byte, now time.Time, st *types.ControlState) []byte {
	var num [24]byte
	out := append(buf[:0], "[heartbeat] "...)
	out = now.AppendFormat(out, "15:04:05")
	if st == nil {
		return append(out, " control=waiting"...)
	}
	out = append(out, " iter="...)
	out = append(out, conv.Itoa(num[:], int64(st.Iteration))...)
	out = append(out, " killed="...)
	out = append(out, conv.Bool(num[:], st.Killed)...)
	out = append(out, " brake="...)
	out = append(out, conv.Bool(num[:], st.Brake)...)
	out = append(out, " servo="...)
	out = append(out, conv.Fixed(num[:], st.ServoDuty, 2)...)
	out = append(out, " motor="...)
	out = append(out, conv.Fixed(num[:], st.MotorDuty, 1)...)
	out = append(out, " steer="...)
	out = append(out, conv.Itoa(num[:], int64(st.StepperCounted))...)
	out = append(out, '/')
	out = append(out, conv.Itoa(num[:], int64(st.StepperDesired))...)
	out = append(out, ' ')
	return append(out, st.StepperState...)
}

func intervalFrom(payload any) (time.Duration, bool) {
	var c types.HeartbeatConfig
	if err := util.DecodeJSON(payload, &c); err != nil || c.Interval <= 0 {
		return 0, false
	}
	return time.Duration(c.Interval * float64(time.Second)), true
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)
	stSub := conn.Subscribe(topicControlState)
	defer conn.Unsubscribe(stSub)

	tick := time.NewTicker(defaultInterval)
	defer tick.Stop()

	var (
		last *types.ControlState
		buf  [160]byte
	)
	for {
		select {
		case <-ctx.Done():
			println("[heartbeat] stopping")
			return
		case t := <-tick.C:
			s.emit(Line(buf[:], t, last))
		case msg := <-stSub.Channel():
			var st types.ControlState
			if err := util.DecodeJSON(msg.Payload, &st); err == nil {
				last = &st
			}
		case msg := <-cfgSub.Channel():
			if d, ok := intervalFrom(msg.Payload); ok {
				tick.Reset(d)
				println("[heartbeat] interval set to", d.String())
			} else {
				println("[heartbeat] ignoring invalid config")
			}
		}
	}
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
