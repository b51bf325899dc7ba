package force

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/forcegraph/pkg/quadtree"
)

// epsilon floors distances so no force divides by zero.
const epsilon = 1e-6

// Body is a simulated node.
type Body struct {
	ID     string
	Group  string
	Radius float64

	Pos r2.Vec
	Vel r2.Vec

	// Fix is the pinned location, valid while Pinned is set.
	Fix    r2.Vec
	Pinned bool
}

// Edge is a weighted link between two body handles.
type Edge struct {
	Source int
	Target int
	Weight float64
}

// Force contributes to body velocities once per tick.
type Force interface {
	// Name identifies the force in logs.
	Name() string
	// Initialize is called once the body and edge sets are known, and again
	// whenever they are reseeded.
	Initialize(bodies []Body, edges []Edge)
	// Apply updates bodies for the given cooling alpha.
	Apply(bodies []Body, alpha float64)
}

// Resizer is implemented by forces that depend on the viewport.
type Resizer interface {
	Resize(width, height float64)
}

// jiggle replaces a zero component by a tiny offset.
func jiggle(v float64, jitter quadtree.JitterFunc) float64 {
	if v == 0 {
		return jitter()
	}
	return v
}

func orDefaultJitter(j quadtree.JitterFunc) quadtree.JitterFunc {
	if j == nil {
		return quadtree.NewJitter(1)
	}
	return j
}

// predicted returns the position a body will reach if its velocity is applied
// unchanged.
func predicted(b *Body) r2.Vec {
	return r2.Add(b.Pos, b.Vel)
}
