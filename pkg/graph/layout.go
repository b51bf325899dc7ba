package graph

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/matzehuels/forcegraph/pkg/errors"
)

// =============================================================================
// Layout - Positioned Snapshot
// =============================================================================

// Layout is a positioned snapshot of a simulation, the output format shared by
// the CLI, the HTTP server and the renderers.
//
// Coordinates are in simulation space: the viewport is centred on the origin,
// so a renderer maps it with viewBox = [-Width/2, -Height/2, Width, Height].
type Layout struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Tick    int     `json:"tick"`
	Alpha   float64 `json:"alpha"`
	Settled bool    `json:"settled"`

	Nodes []PlacedNode `json:"nodes"`
	Links []Segment    `json:"links"`
}

// PlacedNode is a node with its current position.
type PlacedNode struct {
	ID     string  `json:"id"`
	Group  string  `json:"group,omitempty"`
	Radius float64 `json:"radius"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Pinned bool    `json:"pinned,omitempty"`
}

// Bounds returns the axis-aligned box enclosing all node discs.
// An empty layout yields a zero box.
func (l Layout) Bounds() (minX, minY, maxX, maxY float64) {
	if len(l.Nodes) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, n := range l.Nodes {
		minX = math.Min(minX, n.X-n.Radius)
		minY = math.Min(minY, n.Y-n.Radius)
		maxX = math.Max(maxX, n.X+n.Radius)
		maxY = math.Max(maxY, n.Y+n.Radius)
	}
	return minX, minY, maxX, maxY
}

// Positions returns the node positions in node order.
func (l Layout) Positions() []Position {
	out := make([]Position, len(l.Nodes))
	for i, n := range l.Nodes {
		out[i] = Position{ID: n.ID, X: n.X, Y: n.Y}
	}
	return out
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	if l.Nodes == nil {
		l.Nodes = []PlacedNode{}
	}
	if l.Links == nil {
		l.Links = []Segment{}
	}
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Validates the viewport dimensions and that every coordinate is finite.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unmarshal layout")
	}
	if err := errors.ValidateDimensions(l.Width, l.Height); err != nil {
		return Layout{}, err
	}
	for _, n := range l.Nodes {
		if err := errors.ValidateCoordinate(n.X, n.Y); err != nil {
			return Layout{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "node %q", n.ID)
		}
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Layout{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
