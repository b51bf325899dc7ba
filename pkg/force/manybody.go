package force

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/forcegraph/pkg/quadtree"
)

// Defaults for ManyBody.
const (
	DefaultCharge      = -30.0
	DefaultTheta       = 0.9
	DefaultDistanceMin = 1.0
)

// ViewportStrength returns a StrengthFunc that scales base by
// width/refWidth, clamped to [minFactor, 1]. Narrow viewports get weaker
// repulsion so the layout stays on screen.
func ViewportStrength(base, refWidth, minFactor float64) func(width float64) float64 {
	return func(width float64) float64 {
		f := 1.0
		if refWidth > 0 {
			f = width / refWidth
		}
		f = math.Max(minFactor, math.Min(1, f))
		return base * f
	}
}

// ManyBody applies a pairwise inverse-distance force between all bodies,
// approximated with a Barnes–Hut quadtree. Negative strength repels.
type ManyBody struct {
	// Strength is the per-body charge, used when StrengthFunc is nil.
	Strength float64
	// StrengthFunc derives the charge from the viewport width on Resize.
	StrengthFunc func(width float64) float64
	// Theta is the Barnes–Hut accuracy parameter; zero is exact.
	Theta float64
	// DistanceMin softens the force between very close bodies.
	DistanceMin float64
	// DistanceMax limits the interaction range. Zero means unlimited.
	DistanceMax float64
	// Jitter separates coincident bodies.
	Jitter quadtree.JitterFunc

	strength float64
	points   []quadtree.Point
}

// NewManyBody returns a repulsive many-body force with default settings.
func NewManyBody() *ManyBody {
	return &ManyBody{
		Strength:    DefaultCharge,
		Theta:       DefaultTheta,
		DistanceMin: DefaultDistanceMin,
	}
}

// Name implements Force.
func (m *ManyBody) Name() string { return "charge" }

// Initialize implements Force.
func (m *ManyBody) Initialize(bodies []Body, _ []Edge) {
	m.Jitter = orDefaultJitter(m.Jitter)
	if m.StrengthFunc == nil {
		m.strength = m.Strength
	}
	m.points = make([]quadtree.Point, len(bodies))
}

// Resize re-evaluates StrengthFunc for the new viewport width.
func (m *ManyBody) Resize(width, _ float64) {
	if m.StrengthFunc != nil {
		m.strength = m.StrengthFunc(width)
	}
}

// CurrentStrength returns the charge in effect.
func (m *ManyBody) CurrentStrength() float64 { return m.strength }

// Apply implements Force.
func (m *ManyBody) Apply(bodies []Body, alpha float64) {
	if len(bodies) < 2 || m.strength == 0 {
		return
	}
	if len(m.points) != len(bodies) {
		m.points = make([]quadtree.Point, len(bodies))
	}
	for i := range bodies {
		m.points[i] = quadtree.Point{Pos: bodies[i].Pos, Radius: bodies[i].Radius}
	}
	tree := quadtree.Build(m.points, quadtree.Options{Jitter: m.Jitter})

	dmin2 := m.DistanceMin * m.DistanceMin
	dmax2 := math.Inf(1)
	if m.DistanceMax > 0 {
		dmax2 = m.DistanceMax * m.DistanceMax
	}
	k := m.strength * alpha
	law := func(delta r2.Vec, l2, mass float64) r2.Vec {
		if l2 >= dmax2 {
			return r2.Vec{}
		}
		if l2 < dmin2 {
			l2 = math.Sqrt(dmin2 * l2)
		}
		l2 = math.Max(l2, epsilon)
		return r2.Scale(k*mass/l2, delta)
	}

	theta := math.Max(m.Theta, 0)
	for i := range bodies {
		bodies[i].Vel = r2.Add(bodies[i].Vel, tree.Accumulate(i, theta, law))
	}
}
