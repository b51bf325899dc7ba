// Package svg draws layout snapshots as standalone SVG documents.
//
// The drawing follows the classic d3 force-directed look: grey links whose
// stroke width grows with the square root of the link value, white-outlined
// discs filled by group colour, a tooltip title per node and an optional
// centred label. The viewBox is centred on the origin, matching simulation
// space, so no coordinate transform is applied:
//
//	data := svg.RenderSVG(layout, svg.WithLabels(true))
//
// [RenderPNG] and [RenderPDF] convert the result with rsvg-convert.
package svg
