// Package sim drives the force-directed layout: it owns the body arena,
// applies the forces in a fixed order every tick, integrates velocities and
// cools the system until it settles.
//
// # Lifecycle
//
//	s, err := sim.New(g, sim.DefaultConfig())   // validate, seed, wire forces
//	for {
//	    res, err := s.Tick()                     // one step
//	    if err != nil || !res.Moving {
//	        break
//	    }
//	    draw(res.Positions, res.Segments)
//	}
//	s.Dispose()
//
// [Simulation.Run] settles a layout in one call for batch use.
//
// # Tick
//
// A tick applies link, charge, x, y and collide (then center, when enabled),
// multiplies every velocity by VelocityDecay, moves unpinned bodies by their
// velocity, snaps pinned bodies to their pin, and finally moves alpha towards
// AlphaTarget by AlphaDecay. Once alpha and AlphaTarget are both below
// AlphaMin the simulation is settled and Tick returns Moving=false without
// touching any state.
//
// # Interaction
//
// A pointer drag maps to Find + Pin + Reheat(0.3) on press, Pin on move and
// Unpin + Reheat(0) on release. Pinned bodies keep integrating velocity, so a
// released body continues with whatever momentum it has accumulated.
//
// # Concurrency
//
// A Simulation is not safe for concurrent use. Embedders that drive ticks from
// one goroutine and handle input on another must serialize calls with a
// single mutex (see pkg/server). Overlapping Tick calls are detected and fail
// with CONCURRENT_TICK instead of corrupting state.
package sim
