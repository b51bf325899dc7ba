package sim

// State is the coarse phase of the cooling schedule.
type State int

const (
	// StateRunning means alpha is at or above CoolingAlpha.
	StateRunning State = iota
	// StateCooling means alpha is below CoolingAlpha but not yet settled.
	StateCooling
	// StateSettled means alpha and AlphaTarget are both below AlphaMin.
	StateSettled
	// StateInteractive means AlphaTarget holds the system warm, e.g. during a drag.
	StateInteractive
	// StateDisposed means the simulation has been released.
	StateDisposed
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCooling:
		return "cooling"
	case StateSettled:
		return "settled"
	case StateInteractive:
		return "interactive"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// cooling tracks alpha, the global temperature that scales most forces.
type cooling struct {
	alpha        float64
	alphaMin     float64
	alphaDecay   float64
	alphaTarget  float64
	coolingAlpha float64
}

func newCooling(cfg Config) cooling {
	return cooling{
		alpha:        1,
		alphaMin:     cfg.AlphaMin,
		alphaDecay:   cfg.AlphaDecay,
		alphaTarget:  cfg.AlphaTarget,
		coolingAlpha: cfg.CoolingAlpha,
	}
}

func (c *cooling) settled() bool {
	return c.alpha < c.alphaMin && c.alphaTarget < c.alphaMin
}

// step moves alpha towards alphaTarget.
func (c *cooling) step() {
	c.alpha += (c.alphaTarget - c.alpha) * c.alphaDecay
}

func (c *cooling) state() State {
	switch {
	case c.alphaTarget >= c.alphaMin:
		return StateInteractive
	case c.settled():
		return StateSettled
	case c.alpha >= c.coolingAlpha:
		return StateRunning
	default:
		return StateCooling
	}
}
