package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/server"
	"github.com/matzehuels/forcegraph/pkg/sim"
)

// serveCommand creates the serve command for running a live simulation.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		tickRate float64
		flags    simFlags
	)

	cmd := &cobra.Command{
		Use:   "serve [graph.json]",
		Short: "Run a live simulation behind an HTTP API",
		Long: `Run a live simulation behind an HTTP API.

The server ticks the simulation at --tick-rate until it settles and exposes
its state at /api/state and /api/layout. Pinning a node (POST
/api/nodes/{id}/pin) reheats the simulation the way a mouse drag does;
releasing it lets the layout cool down again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, simCfg, err := c.resolve(cmd, &flags)
			if err != nil {
				return err
			}
			srvCfg := server.Config{
				Addr:     cfg.Server.Addr,
				TickRate: cfg.Server.TickRate,
				Labels:   cfg.Render.Labels,
				Logger:   c.Logger,
			}
			if cmd.Flags().Changed("addr") {
				srvCfg.Addr = addr
			}
			if cmd.Flags().Changed("tick-rate") {
				srvCfg.TickRate = tickRate
			}
			return c.runServe(cmd.Context(), args[0], simCfg, srvCfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().Float64Var(&tickRate, "tick-rate", server.DefaultTickRate, "simulation ticks per second")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, input string, simCfg sim.Config, srvCfg server.Config) error {
	g, err := loadGraph(ctx, input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	s, err := sim.New(g, simCfg)
	if err != nil {
		return fmt.Errorf("create simulation: %w", err)
	}

	srv, err := server.New(s, srvCfg)
	if err != nil {
		_ = s.Dispose()
		return err
	}

	printSuccess("Serving %s", input)
	printKeyValue("Address", srvCfg.Addr)
	printKeyValue("Session", srv.Session())
	printKeyValue("Nodes", fmt.Sprint(g.NodeCount()))
	printNewline()

	return srv.Run(ctx)
}
