// Package render provides shared helpers for drawing layout snapshots.
//
// # Overview
//
// The engine never draws anything: it hands out [graph.Layout] snapshots and
// leaves presentation to external collaborators. This package and its
// subpackages are such collaborators:
//
//   - Group colouring with the category10 palette ([Palette])
//   - Generic format conversion (SVG to PDF/PNG)
//   - Direct SVG drawing (in [svg] subpackage)
//   - Graphviz export with pinned positions (in [nodelink] subpackage)
//
// # Colours
//
// Groups map to colours in first-seen order, cycling through [Category10]
// once more than ten groups exist:
//
//	p := render.NewPalette(layout)
//	fill := p.Color(node.Group)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg, err := svg.Render(layout, svg.Options{Labels: true})
//	png, err := render.ToPNG(svg, 2.0) // 2x scale
//
// [svg]: github.com/matzehuels/forcegraph/pkg/render/svg
// [nodelink]: github.com/matzehuels/forcegraph/pkg/render/nodelink
package render
