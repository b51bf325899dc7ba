package quadtree

import "gonum.org/v1/gonum/spatial/r2"

// Law evaluates the contribution of a (pseudo-)body of the given mass at
// offset delta from the queried point. dist2 is |delta|² and is never zero.
type Law func(delta r2.Vec, dist2, mass float64) r2.Vec

// Accumulate sums law over every point other than i.
//
// A cell is collapsed into a pseudo-body at its centroid when
// size²/distance² < theta² and the cell does not contain point i;
// otherwise its children are visited. theta <= 0 visits every point.
func (t *Tree) Accumulate(i int, theta float64, law Law) r2.Vec {
	var sum r2.Vec
	if t.root == nil {
		return sum
	}
	p := t.points[i].Pos
	theta2 := theta * theta

	t.Visit(func(c *Cell) bool {
		if c.IsLeaf() {
			for _, j := range c.Bodies {
				if j == i {
					continue
				}
				sum = r2.Add(sum, t.eval(r2.Sub(t.points[j].Pos, p), 1, law))
			}
			return true
		}
		if theta2 <= 0 || c.Contains(p) {
			return false
		}
		delta := r2.Sub(c.Centroid, p)
		size := c.Size()
		if size*size < theta2*r2.Norm2(delta) {
			sum = r2.Add(sum, t.eval(delta, c.Mass, law))
			return true
		}
		return false
	})
	return sum
}

func (t *Tree) eval(delta r2.Vec, mass float64, law Law) r2.Vec {
	if delta.X == 0 {
		delta.X = t.jitter()
	}
	if delta.Y == 0 {
		delta.Y = t.jitter()
	}
	return law(delta, r2.Norm2(delta), mass)
}
