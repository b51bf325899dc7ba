package sim

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"
)

const phyllotaxisRadius = 10.0

// phyllotaxisAngle is the golden angle.
var phyllotaxisAngle = math.Pi * (3 - math.Sqrt(5))

// newRand returns the simulation's deterministic generator for seed.
func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// phyllotaxis returns the i-th point of a sunflower spiral around the origin.
func phyllotaxis(i int) r2.Vec {
	radius := phyllotaxisRadius * math.Sqrt(0.5+float64(i))
	angle := float64(i) * phyllotaxisAngle
	return r2.Vec{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)}
}

// scatter returns a uniform point in a viewport centred on the origin.
func scatter(rng *rand.Rand, width, height float64) r2.Vec {
	return r2.Vec{
		X: (rng.Float64() - 0.5) * width,
		Y: (rng.Float64() - 0.5) * height,
	}
}

// seedPositions places every body without a preset, zeroes velocities and
// snaps pinned bodies to their pins. Every body draws its seeded candidate
// whether or not it is used, so pins never shift the placement of others.
func (s *Simulation) seedPositions() {
	s.rng = newRand(s.cfg.Seed)
	for i := range s.bodies {
		b := &s.bodies[i]
		var p r2.Vec
		if s.cfg.Seeding == SeedRandom {
			p = scatter(s.rng, s.width, s.height)
		} else {
			p = phyllotaxis(i)
		}
		if s.presets[i] != nil {
			p = *s.presets[i]
		}
		if b.Pinned {
			p = b.Fix
		}
		b.Pos = p
		b.Vel = r2.Vec{}
	}
}
