// Package graph provides the input and output data formats of the layout engine.
//
// This package defines the canonical wire format for forcegraph's graph data,
// used for JSON files, HTTP responses and renderers. It is the only place
// where node identities are strings; the simulation itself works on dense
// integer handles (see pkg/sim).
//
// # Core Types
//
//   - [Graph]: Node-link input description (nodes + weighted links)
//   - [Layout]: Positioned snapshot emitted after a simulation tick
//   - [Position], [Segment]: Per-frame outputs consumed by renderers
//
// # Graph Serialization
//
// Graphs use the node-link JSON format of d3-force datasets:
//
//	{
//	  "nodes": [{"id": "Go", "group": "Language"}, {"id": "gRPC", "group": "Project", "radius": 30}],
//	  "links": [{"source": "Go", "target": "gRPC", "value": 4}]
//	}
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("graph.json")   // File → Graph (validated)
//	graph.WriteGraphFile(g, "output.json")      // Graph → File
//	data, _ := graph.MarshalGraph(g)            // Graph → []byte
//	parsed, _ := graph.UnmarshalGraph(data)     // []byte → Graph (not validated)
//
// # Validation
//
// [Graph.Validate] enforces the construction-time invariants: unique,
// non-empty node ids, non-negative radii and link values, and no link that
// names a node absent from the node set.
//
// # Layout Serialization
//
//	layout, _ := graph.ReadLayoutFile("graph.layout.json")
//	for _, n := range layout.Nodes {
//	    fmt.Println(n.ID, n.X, n.Y)
//	}
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
