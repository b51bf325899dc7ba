package sim

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/force"
)

// integrate damps velocities and moves bodies. Pinned bodies keep their
// velocity but stay at their pin.
func integrate(bodies []force.Body, velocityDecay float64) {
	for i := range bodies {
		b := &bodies[i]
		b.Vel = r2.Scale(velocityDecay, b.Vel)
		if b.Pinned {
			b.Pos = b.Fix
			continue
		}
		b.Pos = r2.Add(b.Pos, b.Vel)
	}
}

// firstNonFinite returns the index of the first body with a NaN or infinite
// position or velocity, or -1.
func firstNonFinite(bodies []force.Body) int {
	for i := range bodies {
		b := &bodies[i]
		if !errors.IsFinite(b.Pos.X) || !errors.IsFinite(b.Pos.Y) ||
			!errors.IsFinite(b.Vel.X) || !errors.IsFinite(b.Vel.Y) {
			return i
		}
	}
	return -1
}
