//go:build !rp2040

// Command hoversim plays receiver scenarios through the control loop on a
// simulated board.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/spf13/cobra"

	"hovercode-go/services/config"
	"hovercode-go/types"
)

// Options are read from the environment first; flags override them.
type Options struct {
	Device     string `env:"HOVERSIM_DEVICE" envDefault:"hovercraft"`
	Iterations int    `env:"HOVERSIM_ITERATIONS" envDefault:"0"`
	Verbose    bool   `env:"HOVERSIM_VERBOSE" envDefault:"false"`
}

func printState(w io.Writer, p *Phase, at time.Duration, st types.ControlState) {
	fmt.Fprintf(w, "%8.3fs %-10s iter=%-5d killed=%-5t lost=%-5t brake=%-5t relays=%t/%t servo=%6.2f motor=%6.2f steer=%5d/%-5d %s\n",
		at.Seconds(), p.Name, st.Iteration, st.Killed, st.Lost, st.Brake, st.RelayLift, st.RelayThrust,
		st.ServoDuty, st.MotorDuty, st.StepperCounted, st.StepperDesired, st.StepperState)
}

func newRunCmd(opts *Options) *cobra.Command {
	var scenario string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play a YAML scenario through the control loop",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := os.ReadFile(scenario)
			if err != nil {
				return err
			}
			sc, err := ParseScenario(b)
			if err != nil {
				return err
			}
			cfg, err := sc.ControlConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			out := cmd.OutOrStdout()
			n, err := Run(ctx, sc, cfg, opts.Iterations, func(p *Phase, at time.Duration, st types.ControlState, end bool) {
				if end || opts.Verbose {
					printState(out, p, at, st)
				}
			})
			fmt.Fprintf(out, "%d iterations\n", n)
			return err
		},
	}
	cmd.Flags().StringVarP(&scenario, "scenario", "s", "", "scenario YAML file")
	_ = cmd.MarkFlagRequired("scenario")
	cmd.Flags().IntVarP(&opts.Iterations, "iterations", "n", opts.Iterations, "stop after N loop iterations (0 = whole scenario)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", opts.Verbose, "print every iteration")
	return cmd
}

func newDefaultsCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Print the embedded device configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := config.Embedded(opts.Device)
			if err != nil {
				return err
			}
			raw, err := json.Marshal(m)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := json.Indent(&buf, raw, "", "  "); err != nil {
				return err
			}
			buf.WriteByte('\n')
			_, err = buf.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().StringVarP(&opts.Device, "device", "d", opts.Device, "embedded device config")
	return cmd
}

func newRootCmd(opts *Options) *cobra.Command {
	root := &cobra.Command{
		Use:          "hoversim",
		Short:        "Hovercraft control loop simulator",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd(opts), newDefaultsCmd(opts))
	return root
}

func main() {
	opts := &Options{}
	if err := env.Parse(opts); err != nil {
		fmt.Fprintln(os.Stderr, "hoversim:", err)
		os.Exit(2)
	}
	if err := newRootCmd(opts).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
