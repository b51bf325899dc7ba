package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/render"
	"github.com/matzehuels/forcegraph/pkg/render/nodelink"
	"github.com/matzehuels/forcegraph/pkg/render/svg"
)

// RenderLayout generates output artifacts in the requested formats.
// SVG and PDF go through the svgo sink, DOT through Graphviz. PNG is
// rasterized from the SVG when rsvg-convert is installed and rendered by
// Graphviz otherwise.
func RenderLayout(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	opts.SetRenderDefaults()

	// One palette for every format keeps colours consistent across artifacts.
	palette := render.NewPalette(l)
	svgOpts := buildSVGOptions(opts, palette)
	dot := ""
	dotFor := func() string {
		if dot == "" {
			dot = nodelink.ToDOT(l, nodelink.Options{Detailed: opts.Detailed, Palette: palette})
		}
		return dot
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = svg.RenderSVG(l, svgOpts...)
		case FormatPDF:
			data, err = render.ToPDF(svg.RenderSVG(l, svgOpts...))
		case FormatPNG:
			if render.Available() {
				data, err = render.ToPNG(svg.RenderSVG(l, svgOpts...), opts.Scale)
			} else {
				data, err = nodelink.RenderPNG(ctx, dotFor())
			}
		case FormatDOT:
			data = []byte(dotFor())
		case FormatJSON:
			data, err = graph.MarshalLayout(l)
		default:
			err = ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		opts.Logger.Debug("rendered artifact", "format", format, "bytes", len(data))
		artifacts[format] = data
	}

	return artifacts, nil
}

func buildSVGOptions(opts Options, palette *render.Palette) []svg.Option {
	svgOpts := []svg.Option{svg.WithLabels(opts.Labels), svg.WithPalette(palette)}
	if opts.Title != "" {
		svgOpts = append(svgOpts, svg.WithTitle(opts.Title))
	}
	if opts.Pinned {
		svgOpts = append(svgOpts, svg.WithPinnedMarkers())
	}
	return svgOpts
}
