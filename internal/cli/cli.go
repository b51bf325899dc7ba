// Package cli implements the forcegraph command-line interface.
//
// This package provides commands for settling force-directed layouts,
// rendering them, previewing a live simulation in the terminal and serving
// one over HTTP. The CLI is built using cobra and supports verbose logging
// via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - layout: Settle a graph and write the positioned snapshot
//   - render: Settle a graph (or load a snapshot) and write SVG, PNG, PDF, DOT or JSON
//   - watch: Animate the simulation in the terminal with keyboard dragging
//   - serve: Run a live simulation behind an HTTP API
//   - config: Create and inspect the configuration file
//
// # Configuration
//
// Settings come from the config file (see [config.Path]), overridden by
// flags. --config selects another file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// installs log-backed observability hooks.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/buildinfo"
	"github.com/matzehuels/forcegraph/pkg/config"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/observability"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
	"github.com/matzehuels/forcegraph/pkg/sim"
)

// appName is the application name used for display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag; empty means the default location.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. Debug level also routes
// observability events to the logger.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		observability.NewLogHooks(c.Logger).Install()
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "forcegraph lays out graphs with a force-directed simulation",
		Long:         `forcegraph computes stable 2D positions for weighted graphs by simulating springs along links, repulsion between nodes, centering and collision, then renders or serves the result.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/forcegraph/config.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())
	registerCompletions(root)

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads --config, or the default file when the flag is empty.
// A missing default file is not an error; a missing --config file is.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.configPath != "" {
		return config.Load(c.configPath)
	}
	cfg, path, err := config.LoadDefault()
	if err != nil {
		return config.Config{}, err
	}
	c.Logger.Debug("loaded config", "path", path)
	return cfg, nil
}

// simFlags are the simulation overrides shared by every command that runs
// a simulation. Only flags the user set override the config file.
type simFlags struct {
	width    float64
	height   float64
	seed     uint64
	seeding  string
	charge   float64
	theta    float64
	maxTicks int
}

func (f *simFlags) register(cmd *cobra.Command) {
	d := config.Default()
	cmd.Flags().Float64Var(&f.width, "width", d.Viewport.Width, "viewport width")
	cmd.Flags().Float64Var(&f.height, "height", d.Viewport.Height, "viewport height")
	cmd.Flags().Uint64Var(&f.seed, "seed", d.Simulation.Seed, "random seed for initial placement and jitter")
	cmd.Flags().StringVar(&f.seeding, "seeding", d.Simulation.Seeding, "initial placement: phyllotaxis, random")
	cmd.Flags().Float64Var(&f.charge, "charge", d.Forces.Charge.Strength, "many-body strength (negative repels)")
	cmd.Flags().Float64Var(&f.theta, "theta", d.Forces.Charge.Theta, "Barnes-Hut accuracy (0 or negative: exact)")
	cmd.Flags().IntVar(&f.maxTicks, "max-ticks", d.Simulation.MaxTicks, "tick budget for batch layouts")
}

// apply copies changed flags over cfg.
func (f *simFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("width") {
		cfg.Viewport.Width = f.width
	}
	if changed("height") {
		cfg.Viewport.Height = f.height
	}
	if changed("seed") {
		cfg.Simulation.Seed = f.seed
	}
	if changed("seeding") {
		cfg.Simulation.Seeding = f.seeding
	}
	if changed("charge") {
		cfg.Forces.Charge.Strength = f.charge
	}
	if changed("theta") {
		cfg.Forces.Charge.Theta = f.theta
	}
	if changed("max-ticks") {
		cfg.Simulation.MaxTicks = f.maxTicks
	}
}

// resolve loads the config file, applies flag overrides and validates.
func (c *CLI) resolve(cmd *cobra.Command, f *simFlags) (config.Config, sim.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return config.Config{}, sim.Config{}, err
	}
	f.apply(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, sim.Config{}, err
	}
	simCfg, err := cfg.SimConfig(c.Logger)
	if err != nil {
		return config.Config{}, sim.Config{}, err
	}
	return cfg, simCfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner() *pipeline.Runner {
	return pipeline.NewRunner(c.Logger)
}

// loadGraph reads and validates a graph file, logging its size.
func loadGraph(ctx context.Context, path string) (graph.Graph, error) {
	g, err := graph.ReadGraphFile(path)
	if err != nil {
		return graph.Graph{}, err
	}
	loggerFromContext(ctx).Debug("loaded graph", "path", path, "nodes", g.NodeCount(), "links", g.LinkCount())
	return g, nil
}
