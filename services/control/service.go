// services/control/service.go
package control

import (
	"context"
	"time"

	"hovercode-go/bus"
	"hovercode-go/errcode"
	"hovercode-go/services/config"
	"hovercode-go/services/control/internal/platform"
	"hovercode-go/services/internal/util"
	"hovercode-go/types"
	"hovercode-go/x/timex"
)

var (
	TopicState   = bus.T("control", "state")
	TopicService = bus.T("control", "service")
)

// Service runs the control loop on a board, configured from config/control.
type Service struct {
	board platform.Board
	loop  *Loop
}

func NewService(b platform.Board) *Service { return &Service{board: b} }

// NewDefaultService runs on the board this binary was built for: the RP2040
// pins, or a paced simulation on the host.
func NewDefaultService() *Service { return NewService(platform.DefaultBoard()) }

// Loop is nil until the first valid configuration arrived.
func (s *Service) Loop() *Loop { return s.loop }

func publishService(conn *bus.Connection, level, status string) {
	conn.Publish(conn.NewMessage(TopicService, types.ServiceState{
		Level:  level,
		Status: status,
		TSms:   timex.NowMs(),
	}, true))
}

func decodeConfig(payload any) (types.ControlConfig, error) {
	var cfg types.ControlConfig
	if err := util.DecodeJSON(payload, &cfg); err != nil {
		return cfg, &errcode.E{C: errcode.InvalidPayload, Op: "control.config", Err: err}
	}
	return cfg, Validate(cfg)
}

// statusEvery converts the status interval into loop iterations.
func statusEvery(cfg types.ControlConfig) uint64 {
	if cfg.LoopIntervalUs == 0 {
		return 1
	}
	n := uint64(cfg.StatusIntervalMs) * 1000 / uint64(cfg.LoopIntervalUs)
	if n == 0 {
		n = 1
	}
	return n
}

// Run blocks until ctx is cancelled. Outputs stay killed until a valid
// configuration arrives and the kill switch is released.
func (s *Service) Run(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(config.Topic(configKey))
	defer conn.Unsubscribe(cfgSub)

	publishService(conn, "idle", "awaiting_config")

	for s.loop == nil {
		select {
		case <-ctx.Done():
			publishService(conn, "stopped", "cancelled")
			return
		case msg := <-cfgSub.Channel():
			cfg, err := decodeConfig(msg.Payload)
			if err != nil {
				println("[control] config rejected:", err.Error())
				publishService(conn, "idle", string(errcode.Of(err)))
				continue
			}
			l, err := NewLoop(s.board, cfg)
			if err == nil {
				err = l.Init()
			}
			if err != nil {
				println("[control] init failed:", err.Error())
				publishService(conn, "idle", string(errcode.Of(err)))
				continue
			}
			s.loop = l
		}
	}
	defer func() {
		_ = s.loop.Close()
		publishService(conn, "stopped", "cancelled")
	}()

	publishService(conn, "ready", "running")
	println("[control] running")

	every := statusEvery(s.loop.Config())
	interval := time.Duration(s.loop.Config().LoopIntervalUs) * time.Microsecond
	lastKilled := !s.loop.Killed()
	var sincePub uint64

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-cfgSub.Channel():
			cfg, err := decodeConfig(msg.Payload)
			if err == nil {
				err = s.loop.Apply(cfg)
			}
			if err != nil {
				println("[control] config rejected:", err.Error())
			} else {
				every = statusEvery(cfg)
				interval = time.Duration(cfg.LoopIntervalUs) * time.Microsecond
				println("[control] config applied")
			}
		default:
		}

		st := s.loop.Step()
		sincePub++
		if st.Killed != lastKilled || sincePub >= every {
			conn.Publish(conn.NewMessage(TopicState, st, true))
			if s.loop.Config().Verbose {
				println("[control] iter", st.Iteration, "killed", util.BoolToInt(st.Killed),
					"servo_permille", int(st.ServoDuty*10), "steer", st.StepperCounted, "/", st.StepperDesired)
			}
			lastKilled = st.Killed
			sincePub = 0
		}

		if !s.board.Tick(interval) {
			return
		}
	}
}

// Start launches the service in a goroutine.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	go s.Run(ctx, conn)
}
