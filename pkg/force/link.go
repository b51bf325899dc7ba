package force

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/forcegraph/pkg/quadtree"
)

// DistanceFunc returns a rest-length function base + scale·sqrt(weight).
// Heavier links are drawn longer, leaving room for their thicker strokes.
func DistanceFunc(base, scale float64) func(weight float64) float64 {
	return func(weight float64) float64 {
		return base + scale*math.Sqrt(weight)
	}
}

// Link pulls the endpoints of every edge towards its rest length.
type Link struct {
	// Distance maps an edge weight to its rest length.
	// Nil means DistanceFunc(100, 10).
	Distance func(weight float64) float64
	// Strength overrides the per-edge stiffness. Zero means
	// 1/min(deg(source), deg(target)), which keeps hubs from being
	// yanked around by their many links.
	Strength float64
	// Iterations is the number of relaxation passes per tick.
	Iterations int
	// Jitter separates endpoints that share a predicted position.
	Jitter quadtree.JitterFunc

	edges     []Edge
	rest      []float64
	bias      []float64
	strengths []float64
}

// NewLink returns a link force with default rest length and stiffness.
func NewLink() *Link {
	return &Link{Distance: DistanceFunc(100, 10), Iterations: 1}
}

// Name implements Force.
func (l *Link) Name() string { return "link" }

// Initialize precomputes rest lengths, stiffness and degree bias.
func (l *Link) Initialize(bodies []Body, edges []Edge) {
	if l.Distance == nil {
		l.Distance = DistanceFunc(100, 10)
	}
	if l.Iterations <= 0 {
		l.Iterations = 1
	}
	l.Jitter = orDefaultJitter(l.Jitter)

	degree := make([]int, len(bodies))
	for _, e := range edges {
		degree[e.Source]++
		degree[e.Target]++
	}

	l.edges = edges
	l.rest = make([]float64, len(edges))
	l.bias = make([]float64, len(edges))
	l.strengths = make([]float64, len(edges))
	for i, e := range edges {
		ds, dt := float64(degree[e.Source]), float64(degree[e.Target])
		l.rest[i] = l.Distance(e.Weight)
		l.bias[i] = ds / (ds + dt)
		if l.Strength != 0 {
			l.strengths[i] = l.Strength
		} else {
			l.strengths[i] = 1 / math.Min(ds, dt)
		}
	}
}

// RestLength returns the rest length of the i-th edge.
func (l *Link) RestLength(i int) float64 { return l.rest[i] }

// Apply implements Force.
func (l *Link) Apply(bodies []Body, alpha float64) {
	for range l.Iterations {
		for i, e := range l.edges {
			if e.Source == e.Target {
				continue
			}
			src, tgt := &bodies[e.Source], &bodies[e.Target]

			d := r2.Sub(predicted(tgt), predicted(src))
			d.X = jiggle(d.X, l.Jitter)
			d.Y = jiggle(d.Y, l.Jitter)
			dist := math.Max(r2.Norm(d), epsilon)

			k := (dist - l.rest[i]) / dist * alpha * l.strengths[i]
			d = r2.Scale(k, d)

			b := l.bias[i]
			if !tgt.Pinned {
				tgt.Vel = r2.Sub(tgt.Vel, r2.Scale(b, d))
			}
			if !src.Pinned {
				src.Vel = r2.Add(src.Vel, r2.Scale(1-b, d))
			}
		}
	}
}
