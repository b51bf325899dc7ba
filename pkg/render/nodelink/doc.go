// Package nodelink exports layout snapshots as Graphviz node-link diagrams.
//
// # Overview
//
// The force simulation already decided where every node goes, so the DOT
// produced here pins each node with pos="x,y!" and asks Graphviz for the
// neato engine, which honours pinned positions instead of computing its own.
// This makes the export useful both for in-process rendering and for
// post-processing with external Graphviz tools.
//
// # Usage
//
//	dot := nodelink.ToDOT(layout, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// # Coordinates
//
// Simulation space has y growing downwards while Graphviz has it growing
// upwards, so y is negated on export. inputscale=72 makes one layout unit
// one point.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering;
// no system Graphviz installation is needed.
package nodelink
