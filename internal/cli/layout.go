package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
)

// layoutSuffix marks positioned snapshots written by the layout command.
const layoutSuffix = ".layout.json"

// layoutCommand creates the layout command for settling a graph.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		flags  simFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Settle a graph and write the positioned layout",
		Long: `Settle a graph and write the positioned layout.

The layout command runs the force simulation on a graph.json file until it
settles (or --max-ticks runs out) and writes the node positions and link
segments to a layout.json file. The layout can be rendered later with
'render' without running the simulation again.

The run is deterministic: the same graph, config and --seed always produce
the same positions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, simCfg, err := c.resolve(cmd, &flags)
			if err != nil {
				return err
			}
			opts := pipeline.Options{Sim: simCfg, MaxTicks: cfg.Simulation.MaxTicks, Logger: c.Logger}
			return c.runLayout(cmd.Context(), args[0], output, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	flags.register(cmd)

	return cmd
}

// runLayout loads the graph, settles it and writes the snapshot.
func (c *CLI) runLayout(ctx context.Context, input, output string, opts pipeline.Options) error {
	g, err := loadGraph(ctx, input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	spinner := newSpinner(ctx, "Settling layout...")
	spinner.Start()
	prog := newProgress(c.Logger)

	layout, err := c.newRunner().Layout(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	prog.done("layout finished", "ticks", layout.Tick, "settled", layout.Settled)

	outputPath := output
	if outputPath == "" {
		outputPath = trimGraphExt(input) + layoutSuffix
	}
	if err := graph.WriteLayoutFile(layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(layout.Nodes), len(layout.Links), layout.Tick, layout.Settled)
	printNewline()
	printNextStep("Render", appName+" render "+outputPath)

	return nil
}

// trimGraphExt strips ".layout.json" or the plain extension from path.
func trimGraphExt(path string) string {
	if strings.HasSuffix(path, layoutSuffix) {
		return strings.TrimSuffix(path, layoutSuffix)
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}
