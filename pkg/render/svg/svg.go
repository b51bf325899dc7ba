package svg

import (
	"bytes"
	"fmt"
	"math"

	svgo "github.com/ajstarks/svgo/float"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/render"
)

const (
	defaultFontSize = 10.0
	pinnedDash      = "4,2"
)

// Option configures SVG rendering.
type Option func(*svgRenderer)

type svgRenderer struct {
	labels   bool
	title    string
	fontSize float64
	palette  *render.Palette
	pinned   bool
}

// WithLabels draws the node id at each node centre.
func WithLabels(on bool) Option { return func(r *svgRenderer) { r.labels = on } }

// WithTitle adds a document <title>.
func WithTitle(s string) Option { return func(r *svgRenderer) { r.title = s } }

// WithFontSize sets the label font size in pixels.
func WithFontSize(px float64) Option { return func(r *svgRenderer) { r.fontSize = px } }

// WithPalette shares a palette across renders so group colours stay stable
// between frames.
func WithPalette(p *render.Palette) Option { return func(r *svgRenderer) { r.palette = p } }

// WithPinnedMarkers outlines pinned nodes with a dashed stroke.
func WithPinnedMarkers() Option { return func(r *svgRenderer) { r.pinned = true } }

// RenderSVG renders the layout as an SVG document.
func RenderSVG(l graph.Layout, opts ...Option) []byte {
	r := svgRenderer{fontSize: defaultFontSize}
	for _, opt := range opts {
		opt(&r)
	}
	if r.palette == nil {
		r.palette = render.NewPalette(l)
	}

	var buf bytes.Buffer
	canvas := svgo.New(&buf)
	d := canvas.Decimals
	canvas.Start(l.Width, l.Height,
		fmt.Sprintf(`viewBox="%.*f %.*f %.*f %.*f"`, d, -l.Width/2, d, -l.Height/2, d, l.Width, d, l.Height),
		`style="max-width: 100%; height: auto;"`)
	if r.title != "" {
		canvas.Title(r.title)
	}

	r.renderLinks(canvas, l.Links)
	r.renderNodes(canvas, l.Nodes)
	if r.labels {
		r.renderLabels(canvas, l.Nodes)
	}

	canvas.End()
	return buf.Bytes()
}

func (r *svgRenderer) renderLinks(canvas *svgo.SVG, links []graph.Segment) {
	canvas.Group(`class="links"`, fmt.Sprintf(`stroke="%s"`, render.LinkColor),
		fmt.Sprintf(`stroke-opacity="%g"`, render.LinkOpacity))
	for _, s := range links {
		canvas.Line(s.X1, s.Y1, s.X2, s.Y2, fmt.Sprintf(`stroke-width="%.2f"`, strokeWidth(s.Value)))
	}
	canvas.Gend()
}

func (r *svgRenderer) renderNodes(canvas *svgo.SVG, nodes []graph.PlacedNode) {
	canvas.Group(`class="nodes"`, fmt.Sprintf(`stroke="%s"`, render.NodeStroke),
		fmt.Sprintf(`stroke-width="%g"`, render.NodeStrokeWidth))
	for _, n := range nodes {
		attrs := []string{fmt.Sprintf(`fill="%s"`, r.palette.Color(n.Group))}
		if r.pinned && n.Pinned {
			attrs = append(attrs, fmt.Sprintf(`stroke-dasharray="%s"`, pinnedDash), `stroke="#333"`)
		}
		canvas.Group()
		canvas.Title(n.ID)
		canvas.Circle(n.X, n.Y, n.Radius, attrs...)
		canvas.Gend()
	}
	canvas.Gend()
}

func (r *svgRenderer) renderLabels(canvas *svgo.SVG, nodes []graph.PlacedNode) {
	canvas.Gstyle(fmt.Sprintf("font-family:sans-serif;font-size:%gpx;text-anchor:middle;pointer-events:none", r.fontSize))
	for _, n := range nodes {
		canvas.Text(n.X, n.Y, n.ID, `dy=".35em"`)
	}
	canvas.Gend()
}

// strokeWidth maps a link value to its stroke width. Zero-weight links keep
// a hairline so they stay visible.
func strokeWidth(value float64) float64 {
	w := math.Sqrt(value)
	if w < 0.5 {
		return 0.5
	}
	return w
}

// RenderPNG renders the layout as PNG via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(l graph.Layout, scale float64, opts ...Option) ([]byte, error) {
	return render.ToPNG(RenderSVG(l, opts...), scale)
}

// RenderPDF renders the layout as PDF via SVG conversion.
func RenderPDF(l graph.Layout, opts ...Option) ([]byte, error) {
	return render.ToPDF(RenderSVG(l, opts...))
}
