// Package pkg provides the core libraries for forcegraph force-directed layouts.
//
// # Overview
//
// forcegraph computes stable 2D positions for weighted graphs by simulating
// springs along links, repulsion between nodes, centering and collision. The
// pkg directory is organized into four areas:
//
//  1. Engine: [graph], [quadtree], [force] and [sim]
//  2. Output: [render] and its svg and nodelink subpackages
//  3. Orchestration: [pipeline] (layout → render) and [server] (live HTTP)
//  4. Support: [config], [errors], [observability] and [buildinfo]
//
// # Architecture
//
// The typical data flow through forcegraph:
//
//	graph.json
//	     ↓
//	[graph] package (validate nodes and links)
//	     ↓
//	[sim] package (tick forces until alpha cools)
//	     ↓
//	[graph.Layout] snapshot
//	     ↓
//	SVG/PNG/PDF/DOT/JSON output
//
// # Quick Start
//
//	g, _ := graph.ReadGraphFile("graph.json")
//
//	s, _ := sim.New(g, sim.Config{Seed: 1})
//	defer s.Dispose()
//	s.Run(ctx, 1000)
//
//	l, _ := s.Snapshot()
//	out := svg.RenderSVG(l, svg.WithLabels(true))
//
// # Main Packages
//
// [sim] owns the body state and the cooling schedule. Each tick applies
// link, many-body (Barnes-Hut over [quadtree]), centering and collision
// forces from [force], then integrates velocities with decay. Pin, Unpin and
// Reheat implement pointer dragging; Resize and Restart follow the viewport.
//
// [pipeline] settles a graph in one call and renders it; the CLI and tests
// use it so that every entry point produces the same bytes for the same seed.
//
// [server] keeps one simulation ticking behind a chi router so that a
// browser or script can drag nodes over HTTP.
package pkg
