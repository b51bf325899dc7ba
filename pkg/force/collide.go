package force

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/forcegraph/pkg/quadtree"
)

// DefaultCollidePadding is the gap kept between node discs.
const DefaultCollidePadding = 2.0

// Collide pushes apart bodies whose discs of radius + Padding overlap.
// The correction is positional in effect but applied through velocities,
// and is not scaled by alpha.
type Collide struct {
	Padding    float64
	Strength   float64
	Iterations int
	Jitter     quadtree.JitterFunc

	points []quadtree.Point
}

// NewCollide returns a collision force with default padding and full strength.
func NewCollide() *Collide {
	return &Collide{Padding: DefaultCollidePadding, Strength: 1, Iterations: 1}
}

// Name implements Force.
func (c *Collide) Name() string { return "collide" }

// Initialize implements Force.
func (c *Collide) Initialize(bodies []Body, _ []Edge) {
	if c.Iterations <= 0 {
		c.Iterations = 1
	}
	c.Jitter = orDefaultJitter(c.Jitter)
	c.points = make([]quadtree.Point, len(bodies))
}

// Apply implements Force.
func (c *Collide) Apply(bodies []Body, _ float64) {
	if len(bodies) < 2 {
		return
	}
	if len(c.points) != len(bodies) {
		c.points = make([]quadtree.Point, len(bodies))
	}
	for range c.Iterations {
		for i := range bodies {
			c.points[i] = quadtree.Point{Pos: predicted(&bodies[i]), Radius: bodies[i].Radius + c.Padding}
		}
		tree := quadtree.Build(c.points, quadtree.Options{Jitter: c.Jitter})
		for i := range bodies {
			c.resolve(tree, bodies, i)
		}
	}
}

// resolve separates body i from every later body it overlaps. Each pair is
// handled once, by its lower index.
func (c *Collide) resolve(tree *quadtree.Tree, bodies []Body, i int) {
	ri := c.points[i].Radius
	ri2 := ri * ri
	pi := predicted(&bodies[i])

	tree.Visit(func(cell *quadtree.Cell) bool {
		reach := ri + cell.MaxRadius
		b := cell.Bounds
		if b.Min.X > pi.X+reach || b.Max.X < pi.X-reach ||
			b.Min.Y > pi.Y+reach || b.Max.Y < pi.Y-reach {
			return true
		}
		if !cell.IsLeaf() {
			return false
		}
		for _, j := range cell.Bodies {
			if j <= i {
				continue
			}
			rj := c.points[j].Radius
			r := ri + rj
			d := r2.Sub(pi, predicted(&bodies[j]))
			l2 := r2.Norm2(d)
			if l2 >= r*r {
				continue
			}
			d.X = jiggle(d.X, c.Jitter)
			d.Y = jiggle(d.Y, c.Jitter)
			l := math.Max(r2.Norm(d), epsilon)
			d = r2.Scale((r-l)/l*c.Strength, d)

			rj2 := rj * rj
			share := rj2 / (ri2 + rj2)
			bodies[i].Vel = r2.Add(bodies[i].Vel, r2.Scale(share, d))
			bodies[j].Vel = r2.Sub(bodies[j].Vel, r2.Scale(1-share, d))
		}
		return true
	})
}
