package quadtree

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultMaxDepth bounds subdivision so coincident points cannot recurse forever.
const DefaultMaxDepth = 32

// jitterScale is the magnitude of the offset applied to coincident points.
const jitterScale = 1e-6

// Point is an indexed location with a radius.
type Point struct {
	Pos    r2.Vec
	Radius float64
}

// JitterFunc returns a tiny offset used to separate coincident points.
type JitterFunc func() float64

// NewJitter returns a deterministic JitterFunc seeded with seed.
func NewJitter(seed uint64) JitterFunc {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return func() float64 { return (rng.Float64() - 0.5) * jitterScale }
}

// Options configures tree construction.
type Options struct {
	// MaxDepth caps subdivision. Zero means DefaultMaxDepth.
	MaxDepth int
	// Jitter separates coincident points. Nil means NewJitter(1).
	Jitter JitterFunc
}

// Cell is a square region of the plane.
//
// Internal cells have at least one non-nil child and no Bodies; leaves have
// no children and list the indices of the points they hold.
type Cell struct {
	Bounds    r2.Box
	Depth     int
	Mass      float64 // number of points in the subtree
	Centroid  r2.Vec  // mean position of the points in the subtree
	MaxRadius float64 // largest point radius in the subtree
	Bodies    []int
	Children  [4]*Cell
}

// IsLeaf reports whether the cell has no children.
func (c *Cell) IsLeaf() bool {
	return c.Children == [4]*Cell{}
}

// Size returns the side length of the cell.
func (c *Cell) Size() float64 {
	return c.Bounds.Max.X - c.Bounds.Min.X
}

// Contains reports whether p lies inside the closed bounds of the cell.
func (c *Cell) Contains(p r2.Vec) bool {
	return p.X >= c.Bounds.Min.X && p.X <= c.Bounds.Max.X &&
		p.Y >= c.Bounds.Min.Y && p.Y <= c.Bounds.Max.Y
}

// Tree is a Barnes–Hut quadtree over a fixed set of points.
type Tree struct {
	points   []Point
	root     *Cell
	maxDepth int
	jitter   JitterFunc
}

// Build constructs a tree over points. The slice is retained, not copied;
// callers must not modify it while the tree is in use.
func Build(points []Point, opts Options) *Tree {
	t := &Tree{
		points:   points,
		maxDepth: opts.MaxDepth,
		jitter:   opts.Jitter,
	}
	if t.maxDepth <= 0 {
		t.maxDepth = DefaultMaxDepth
	}
	if t.jitter == nil {
		t.jitter = NewJitter(1)
	}
	if len(points) == 0 {
		return t
	}

	idx := make([]int, len(points))
	for i := range idx {
		idx[i] = i
	}
	t.root = t.build(rootBounds(points), idx, 0)
	return t
}

// Len returns the number of indexed points.
func (t *Tree) Len() int { return len(t.points) }

// Point returns the i-th indexed point.
func (t *Tree) Point(i int) Point { return t.points[i] }

// Root returns the root cell, or nil for an empty tree.
func (t *Tree) Root() *Cell { return t.root }

// Jitter returns a tiny offset from the tree's jitter source.
func (t *Tree) Jitter() float64 { return t.jitter() }

// Visit walks the cells in pre-order. Returning true from fn skips the
// children of that cell.
func (t *Tree) Visit(fn func(*Cell) bool) {
	if t.root == nil {
		return
	}
	stack := []*Cell{t.root}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if fn(c) {
			continue
		}
		// Push in reverse so children are visited in quadrant order.
		for q := 3; q >= 0; q-- {
			if ch := c.Children[q]; ch != nil {
				stack = append(stack, ch)
			}
		}
	}
}

// rootBounds returns a square box covering all points, padded so points on
// the maximum edge fall strictly inside.
func rootBounds(points []Point) r2.Box {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.Pos.X)
		minY = math.Min(minY, p.Pos.Y)
		maxX = math.Max(maxX, p.Pos.X)
		maxY = math.Max(maxY, p.Pos.Y)
	}
	size := math.Max(maxX-minX, maxY-minY)
	if size == 0 {
		size = 1
	}
	size *= 1 + 1e-9
	return r2.Box{
		Min: r2.Vec{X: minX, Y: minY},
		Max: r2.Vec{X: minX + size, Y: minY + size},
	}
}

func (t *Tree) build(bounds r2.Box, idx []int, depth int) *Cell {
	c := &Cell{Bounds: bounds, Depth: depth}
	c.Mass = float64(len(idx))
	var sum r2.Vec
	for _, i := range idx {
		p := t.points[i]
		sum = r2.Add(sum, p.Pos)
		c.MaxRadius = math.Max(c.MaxRadius, p.Radius)
	}
	c.Centroid = r2.Scale(1/c.Mass, sum)

	if len(idx) <= 1 || depth >= t.maxDepth || t.coincident(idx) {
		c.Bodies = idx
		return c
	}

	mid := r2.Scale(0.5, r2.Add(bounds.Min, bounds.Max))
	var parts [4][]int
	for _, i := range idx {
		q := quadrant(t.points[i].Pos, mid)
		parts[q] = append(parts[q], i)
	}
	for q, part := range parts {
		if len(part) == 0 {
			continue
		}
		c.Children[q] = t.build(childBounds(bounds, mid, q), part, depth+1)
	}
	return c
}

func (t *Tree) coincident(idx []int) bool {
	first := t.points[idx[0]].Pos
	for _, i := range idx[1:] {
		if t.points[i].Pos != first {
			return false
		}
	}
	return true
}

// quadrant numbers children 0=SW, 1=SE, 2=NW, 3=NE.
func quadrant(p, mid r2.Vec) int {
	q := 0
	if p.X >= mid.X {
		q |= 1
	}
	if p.Y >= mid.Y {
		q |= 2
	}
	return q
}

func childBounds(b r2.Box, mid r2.Vec, q int) r2.Box {
	out := b
	if q&1 == 0 {
		out.Max.X = mid.X
	} else {
		out.Min.X = mid.X
	}
	if q&2 == 0 {
		out.Max.Y = mid.Y
	} else {
		out.Min.Y = mid.Y
	}
	return out
}
