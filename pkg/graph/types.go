package graph

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/forcegraph/pkg/errors"
)

// DefaultRadius is the node radius used when the input omits one.
const DefaultRadius = 20.0

// =============================================================================
// Graph - Input Description
// =============================================================================

// Graph is the input description of a layout: an ordered node set and an
// ordered list of weighted links. Order is significant: it fixes the integer
// handles assigned by the simulation and therefore the deterministic
// initial placement.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// Node is a node record of the input description.
type Node struct {
	ID     string  `json:"id"`
	Group  string  `json:"group,omitempty"`
	Radius float64 `json:"radius,omitempty"` // 0 means DefaultRadius

	// Optional preset position. Nodes without one are seeded by the simulation.
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
}

// EffectiveRadius returns the radius, falling back to DefaultRadius.
func (n Node) EffectiveRadius() float64 {
	if n.Radius > 0 {
		return n.Radius
	}
	return DefaultRadius
}

// HasPosition reports whether both preset coordinates are present.
func (n Node) HasPosition() bool { return n.X != nil && n.Y != nil }

// Link is a weighted, ordered pair of node ids.
type Link struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Value  float64 `json:"value"`
}

// NodeCount returns the number of nodes.
func (g Graph) NodeCount() int { return len(g.Nodes) }

// LinkCount returns the number of links.
func (g Graph) LinkCount() int { return len(g.Links) }

// Index maps each node id to its position in Nodes. Later duplicates
// overwrite earlier ones; call Validate first to rule them out.
func (g Graph) Index() map[string]int {
	idx := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		idx[n.ID] = i
	}
	return idx
}

// Validate checks the construction-time invariants of the description.
// It reports the first violation found, scanning nodes before links.
func (g Graph) Validate() error {
	seen := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if err := errors.ValidateNodeID(n.ID); err != nil {
			return err
		}
		if seen[n.ID] {
			return errors.New(errors.ErrCodeDuplicateNodeID, "duplicate node id %q", n.ID)
		}
		seen[n.ID] = true

		if err := errors.ValidateRadius(n.ID, n.Radius); err != nil {
			return err
		}
		if (n.X == nil) != (n.Y == nil) {
			return errors.New(errors.ErrCodeInvalidInput, "node %q: preset position needs both x and y", n.ID)
		}
		if n.HasPosition() {
			if err := errors.ValidateCoordinate(*n.X, *n.Y); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "node %q", n.ID)
			}
		}
	}

	for i, l := range g.Links {
		if !seen[l.Source] {
			return errors.New(errors.ErrCodeDanglingLink, "link %d: unknown source node %q", i, l.Source)
		}
		if !seen[l.Target] {
			return errors.New(errors.ErrCodeDanglingLink, "link %d: unknown target node %q", i, l.Target)
		}
		if err := errors.ValidateWeight(l.Source, l.Target, l.Value); err != nil {
			return err
		}
	}
	return nil
}

// Groups returns the distinct group labels in first-seen order.
// Renderers use the order to assign stable colours.
func (g Graph) Groups() []string {
	var out []string
	seen := make(map[string]bool)
	for _, n := range g.Nodes {
		if !seen[n.Group] {
			seen[n.Group] = true
			out = append(out, n.Group)
		}
	}
	return out
}

// UnmarshalGraph deserializes JSON bytes to a Graph without validating it.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode graph")
	}
	return g, nil
}

// =============================================================================
// Per-frame outputs
// =============================================================================

// Position is the location of one node after a tick.
type Position struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Segment is a link resolved to the current positions of its endpoints.
type Segment struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Value  float64 `json:"value"`
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
}

// String implements fmt.Stringer for log output.
func (s Segment) String() string {
	return fmt.Sprintf("%s→%s (%.1f,%.1f)-(%.1f,%.1f)", s.Source, s.Target, s.X1, s.Y1, s.X2, s.Y2)
}
