package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
)

// renderCommand creates the render command for producing visualizations.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		flags      simFlags
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [graph.json | layout.json]",
		Short: "Render a graph to SVG, PNG, PDF, DOT or JSON",
		Long: `Render a graph to SVG, PNG, PDF, DOT or JSON.

Given a graph.json, render settles the simulation first and then writes one
file per format. Given a *.layout.json written by 'layout', the positions are
rendered as-is and the simulation flags are ignored.

PNG and PDF need rsvg-convert (librsvg). Without it PNG falls back to
Graphviz's neato renderer; PDF is not available.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, simCfg, err := c.resolve(cmd, &flags)
			if err != nil {
				return err
			}
			opts.Sim = simCfg
			opts.MaxTicks = cfg.Simulation.MaxTicks
			opts.Logger = c.Logger
			opts.Formats = cfg.Render.Formats
			if formatsStr != "" {
				opts.Formats = pipeline.ParseFormats(formatsStr)
			}
			if !cmd.Flags().Changed("labels") {
				opts.Labels = cfg.Render.Labels
			}
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], output, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (default: input without extension)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): "+strings.Join(pipeline.FormatNames(), ", ")+" (comma-separated)")
	cmd.Flags().BoolVar(&opts.Labels, "labels", true, "draw node ids next to nodes")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include group and position in DOT labels")
	cmd.Flags().BoolVar(&opts.Pinned, "pinned", false, "outline pinned nodes")
	cmd.Flags().StringVar(&opts.Title, "title", "", "document title")
	cmd.Flags().Float64Var(&opts.Scale, "scale", pipeline.DefaultScale, "rasterization scale for PNG")
	flags.register(cmd)

	return cmd
}

// runRender settles or loads the layout and writes one file per format.
func (c *CLI) runRender(ctx context.Context, input, output string, opts pipeline.Options) error {
	layout, err := c.layoutFor(ctx, input, opts)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	artifacts, err := c.newRunner().Render(ctx, layout, opts)
	if err != nil {
		return err
	}
	prog.done("rendered", "formats", opts.Formats)

	base := basePath(output, input)
	var written []string
	for _, format := range opts.Formats {
		path := base + "." + format
		if format == pipeline.FormatJSON && !strings.HasSuffix(path, layoutSuffix) {
			path = base + layoutSuffix
		}
		if err := writeFile(path, artifacts[format]); err != nil {
			return err
		}
		written = append(written, path)
	}

	printSuccess("Rendered %d file(s)", len(written))
	for _, path := range written {
		printFile(path)
	}
	printStats(len(layout.Nodes), len(layout.Links), layout.Tick, layout.Settled)
	return nil
}

// layoutFor reads a snapshot directly or settles a graph file.
func (c *CLI) layoutFor(ctx context.Context, input string, opts pipeline.Options) (graph.Layout, error) {
	if strings.HasSuffix(input, layoutSuffix) {
		c.Logger.Debug("rendering saved layout", "path", input)
		return graph.ReadLayoutFile(input)
	}

	g, err := loadGraph(ctx, input)
	if err != nil {
		return graph.Layout{}, fmt.Errorf("load graph %s: %w", input, err)
	}

	spinner := newSpinner(ctx, "Settling layout...")
	spinner.Start()
	layout, err := c.newRunner().Layout(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return graph.Layout{}, fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	if !layout.Settled {
		printWarning("stopped after %d ticks before settling", layout.Tick)
	}
	return layout, nil
}

// basePath derives the base output path from the output and input paths.
// A known format extension on output is stripped.
func basePath(output, input string) string {
	if output == "" {
		return trimGraphExt(input)
	}
	if strings.HasSuffix(output, layoutSuffix) {
		return strings.TrimSuffix(output, layoutSuffix)
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	if slices.Contains(pipeline.FormatNames(), ext) {
		return strings.TrimSuffix(output, "."+ext)
	}
	return output
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
