package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/render"
)

// pointsPerInch converts layout units (points) to Graphviz node sizes.
const pointsPerInch = 72.0

// Options configures node-link diagram export.
type Options struct {
	// Detailed includes the group and coordinates in node labels.
	// When false, only the node ID is shown.
	Detailed bool

	// Palette overrides group colouring. Nil builds one from the layout.
	Palette *render.Palette
}

// ToDOT converts a layout to Graphviz DOT with every node pinned at its
// simulated position. The result can be rendered with [RenderSVG] or [RenderPNG].
func ToDOT(l graph.Layout, opts Options) string {
	palette := opts.Palette
	if palette == nil {
		palette = render.NewPalette(l)
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, color=\"" + render.NodeStroke + "\", penwidth=1.5, fontsize=10, fontname=\"sans-serif\"];\n")
	buf.WriteString("  edge [color=\"#99999999\"];\n") // #999 at 0.6 opacity
	buf.WriteString("\n")

	for _, n := range l.Nodes {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed), palette.Color(n.Group))
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, s := range l.Links {
		fmt.Fprintf(&buf, "  %q -- %q [penwidth=%s];\n", s.Source, s.Target, fmtFloat(math.Max(math.Sqrt(s.Value), 0.5)))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n graph.PlacedNode, detailed bool) string {
	if !detailed {
		return n.ID
	}
	parts := []string{n.ID}
	if n.Group != "" {
		parts = append(parts, "group: "+n.Group)
	}
	parts = append(parts, fmt.Sprintf("(%.0f, %.0f)", n.X, n.Y))
	return strings.Join(parts, "\n")
}

func fmtAttrs(n graph.PlacedNode, label, fill string) []string {
	size := fmtFloat(2 * n.Radius / pointsPerInch)
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(n.X), fmtFloat(-n.Y)),
		"width=" + size,
		"height=" + size,
		fmt.Sprintf("fillcolor=%q", fill),
	}
	if n.Pinned {
		attrs = append(attrs, "style=\"filled,dashed\"")
	}
	return attrs
}

func fmtFloat(f float64) string {
	if f == 0 {
		f = 0 // drop negative zero
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := renderDOT(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.PNG)
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// unitless, responsive one.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(root))
}
