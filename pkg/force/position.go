package force

import "gonum.org/v1/gonum/spatial/r2"

// DefaultAxisStrength is the default stiffness of X and Y.
const DefaultAxisStrength = 0.1

// X pulls unpinned bodies towards a vertical line.
type X struct {
	Target   float64
	Strength float64
}

// NewX returns an X force centred on the origin.
func NewX() *X { return &X{Strength: DefaultAxisStrength} }

// Name implements Force.
func (f *X) Name() string { return "x" }

// Initialize implements Force.
func (f *X) Initialize([]Body, []Edge) {}

// Apply implements Force.
func (f *X) Apply(bodies []Body, alpha float64) {
	k := f.Strength * alpha
	for i := range bodies {
		b := &bodies[i]
		if b.Pinned {
			continue
		}
		b.Vel.X += (f.Target - b.Pos.X) * k
	}
}

// Y pulls unpinned bodies towards a horizontal line.
type Y struct {
	Target   float64
	Strength float64
}

// NewY returns a Y force centred on the origin.
func NewY() *Y { return &Y{Strength: DefaultAxisStrength} }

// Name implements Force.
func (f *Y) Name() string { return "y" }

// Initialize implements Force.
func (f *Y) Initialize([]Body, []Edge) {}

// Apply implements Force.
func (f *Y) Apply(bodies []Body, alpha float64) {
	k := f.Strength * alpha
	for i := range bodies {
		b := &bodies[i]
		if b.Pinned {
			continue
		}
		b.Vel.Y += (f.Target - b.Pos.Y) * k
	}
}

// Center translates unpinned bodies so that the mean position of all bodies
// moves towards Target. Unlike the other forces it shifts positions, not
// velocities, and ignores alpha.
type Center struct {
	Target   r2.Vec
	Strength float64
}

// NewCenter returns a Center force on the origin with full strength.
func NewCenter() *Center { return &Center{Strength: 1} }

// Name implements Force.
func (f *Center) Name() string { return "center" }

// Initialize implements Force.
func (f *Center) Initialize([]Body, []Edge) {}

// Apply implements Force.
func (f *Center) Apply(bodies []Body, _ float64) {
	if len(bodies) == 0 {
		return
	}
	var mean r2.Vec
	for i := range bodies {
		mean = r2.Add(mean, bodies[i].Pos)
	}
	mean = r2.Scale(1/float64(len(bodies)), mean)
	shift := r2.Scale(f.Strength, r2.Sub(mean, f.Target))
	for i := range bodies {
		if bodies[i].Pinned {
			continue
		}
		bodies[i].Pos = r2.Sub(bodies[i].Pos, shift)
	}
}
