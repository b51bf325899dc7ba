package sim

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/force"
)

// Seeding selects how bodies without a preset position are placed.
type Seeding int

const (
	// SeedPhyllotaxis places bodies on a sunflower spiral around the origin.
	// It is fully deterministic and independent of Seed.
	SeedPhyllotaxis Seeding = iota
	// SeedRandom scatters bodies uniformly over the viewport using Seed.
	SeedRandom
)

// String returns the configuration name of the seeding strategy.
func (s Seeding) String() string {
	switch s {
	case SeedPhyllotaxis:
		return "phyllotaxis"
	case SeedRandom:
		return "random"
	default:
		return "unknown"
	}
}

// ParseSeeding converts a configuration name to a Seeding.
func ParseSeeding(name string) (Seeding, error) {
	switch name {
	case "", "phyllotaxis":
		return SeedPhyllotaxis, nil
	case "random":
		return SeedRandom, nil
	default:
		return 0, errors.New(errors.ErrCodeInvalidConfig, "unknown seeding %q (want phyllotaxis or random)", name)
	}
}

// Default values, matching d3-force.
const (
	DefaultWidth         = 960.0
	DefaultHeight        = 600.0
	DefaultAlphaMin      = 0.001
	DefaultVelocityDecay = 0.6
	DefaultCoolingAlpha  = 0.1
	DefaultDragAlpha     = 0.3
)

// DefaultAlphaDecay cools from 1 to DefaultAlphaMin in 300 ticks.
var DefaultAlphaDecay = 1 - math.Pow(DefaultAlphaMin, 1.0/300)

// Config parameterizes a Simulation. Zero fields take their defaults, except
// the pointer fields, where zero is a meaningful setting and only nil means
// "use the default". Set them with [Float].
type Config struct {
	Width  float64
	Height float64

	Seed    uint64
	Seeding Seeding

	AlphaMin      float64
	AlphaDecay    float64
	AlphaTarget   float64
	VelocityDecay float64 // multiplier applied to velocities each tick
	CoolingAlpha  float64 // alpha below which the state reports Cooling

	// Link force.
	DisableLink    bool
	LinkDistance   func(weight float64) float64
	LinkStrength   float64
	LinkIterations int

	// Many-body force. ChargeFunc, when set, overrides Charge and is
	// re-evaluated on every Resize. Theta <= 0 selects the exact sum.
	DisableCharge bool
	Charge        *float64
	ChargeFunc    func(width float64) float64
	Theta         *float64
	DistanceMin   float64
	DistanceMax   float64

	// Centering forces.
	DisableAxis  bool
	AxisStrength *float64

	// Collision force.
	DisableCollide    bool
	CollidePadding    *float64
	CollideStrength   float64
	CollideIterations int

	// Center enables the mean-shift force after collide.
	Center bool

	// Logger receives debug events. Nil discards them.
	Logger *log.Logger
}

// Float returns a pointer to v for the optional Config fields.
func Float(v float64) *float64 { return &v }

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
	if c.AlphaMin == 0 {
		c.AlphaMin = DefaultAlphaMin
	}
	if c.AlphaDecay == 0 {
		c.AlphaDecay = 1 - math.Pow(c.AlphaMin, 1.0/300)
	}
	if c.VelocityDecay == 0 {
		c.VelocityDecay = DefaultVelocityDecay
	}
	if c.CoolingAlpha == 0 {
		c.CoolingAlpha = DefaultCoolingAlpha
	}
	if c.LinkDistance == nil {
		c.LinkDistance = force.DistanceFunc(100, 10)
	}
	if c.LinkIterations == 0 {
		c.LinkIterations = 1
	}
	if c.Charge == nil {
		c.Charge = Float(force.DefaultCharge)
	}
	if c.Theta == nil {
		c.Theta = Float(force.DefaultTheta)
	}
	if c.DistanceMin == 0 {
		c.DistanceMin = force.DefaultDistanceMin
	}
	if c.AxisStrength == nil {
		c.AxisStrength = Float(force.DefaultAxisStrength)
	}
	if c.CollidePadding == nil {
		c.CollidePadding = Float(force.DefaultCollidePadding)
	}
	if c.CollideStrength == 0 {
		c.CollideStrength = 1
	}
	if c.CollideIterations == 0 {
		c.CollideIterations = 1
	}
	return c
}

// Validate reports the first invalid setting as INVALID_CONFIG.
func (c Config) Validate() error {
	// Unset optional fields are checked at their defaults.
	opt := c.withDefaults()
	if err := errors.ValidateDimensions(c.Width, c.Height); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "viewport")
	}
	checks := []struct {
		name     string
		v        float64
		min, max float64
	}{
		{"alpha_min", c.AlphaMin, 0, 1},
		{"alpha_decay", c.AlphaDecay, 0, 1},
		{"alpha_target", c.AlphaTarget, 0, 1},
		{"velocity_decay", c.VelocityDecay, 0, 1},
		{"cooling_alpha", c.CoolingAlpha, 0, 1},
		{"link_strength", c.LinkStrength, 0, math.MaxFloat64},
		{"distance_min", c.DistanceMin, 0, math.MaxFloat64},
		{"distance_max", c.DistanceMax, 0, math.MaxFloat64},
		{"axis_strength", *opt.AxisStrength, 0, math.MaxFloat64},
		{"collide_padding", *opt.CollidePadding, 0, math.MaxFloat64},
		{"collide_strength", c.CollideStrength, 0, 1},
	}
	for _, chk := range checks {
		if !errors.IsFinite(chk.v) || chk.v < chk.min || chk.v > chk.max {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must be in [%g, %g] (got %g)", chk.name, chk.min, chk.max, chk.v)
		}
	}
	if c.AlphaMin == 0 || c.AlphaDecay == 0 || c.VelocityDecay == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "alpha_min, alpha_decay and velocity_decay must be positive")
	}
	if !errors.IsFinite(*opt.Charge) || !errors.IsFinite(*opt.Theta) {
		return errors.New(errors.ErrCodeInvalidConfig, "charge and theta must be finite")
	}
	if c.LinkIterations < 0 || c.CollideIterations < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "iterations must not be negative")
	}
	if c.Seeding != SeedPhyllotaxis && c.Seeding != SeedRandom {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown seeding %d", int(c.Seeding))
	}
	return nil
}
