package sim

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"slices"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/quadtree"
)

// TickResult reports the outcome of one Tick.
type TickResult struct {
	Tick      int              // number of ticks performed so far
	Alpha     float64          // alpha after the tick
	Moving    bool             // false when the tick was skipped because the layout is settled
	Positions []graph.Position // node positions in input order
	Segments  []graph.Segment  // link endpoints in input order
}

// Simulation is a running force layout. Create one with New.
type Simulation struct {
	cfg     Config
	logger  *log.Logger
	bodies  []force.Body
	edges   []force.Edge
	links   []graph.Link
	presets []*r2.Vec
	index   map[string]int
	forces  []force.Force

	cool          cooling
	width, height float64
	ticks         int
	rng           *rand.Rand

	ticking  atomic.Bool
	disposed atomic.Bool
}

// New validates g and cfg, builds the body arena, seeds initial positions and
// wires the forces. Nothing is simulated until the first Tick.
func New(g graph.Graph, cfg Config) (*Simulation, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := &Simulation{
		cfg:     cfg,
		logger:  logger,
		bodies:  make([]force.Body, len(g.Nodes)),
		edges:   make([]force.Edge, len(g.Links)),
		links:   slices.Clone(g.Links),
		presets: make([]*r2.Vec, len(g.Nodes)),
		index:   g.Index(),
		cool:    newCooling(cfg),
		width:   cfg.Width,
		height:  cfg.Height,
	}
	for i, n := range g.Nodes {
		s.bodies[i] = force.Body{ID: n.ID, Group: n.Group, Radius: n.EffectiveRadius()}
		if n.HasPosition() {
			s.presets[i] = &r2.Vec{X: *n.X, Y: *n.Y}
		}
	}
	for i, l := range g.Links {
		s.edges[i] = force.Edge{Source: s.index[l.Source], Target: s.index[l.Target], Weight: l.Value}
	}

	s.seedPositions()
	s.forces = s.buildForces()
	for _, f := range s.forces {
		f.Initialize(s.bodies, s.edges)
	}
	s.resizeForces()

	s.logger.Debug("simulation initialized",
		"nodes", len(s.bodies),
		"links", len(s.edges),
		"seeding", cfg.Seeding,
		"width", s.width,
		"height", s.height)
	return s, nil
}

// jitter draws a tiny offset from the simulation's generator. It reads s.rng
// on every call so reseeding takes effect immediately.
func (s *Simulation) jitter() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}

func (s *Simulation) buildForces() []force.Force {
	var forces []force.Force
	if !s.cfg.DisableLink {
		link := force.NewLink()
		link.Distance = s.cfg.LinkDistance
		link.Strength = s.cfg.LinkStrength
		link.Iterations = s.cfg.LinkIterations
		link.Jitter = s.jitter
		forces = append(forces, link)
	}
	if !s.cfg.DisableCharge {
		charge := force.NewManyBody()
		charge.Strength = *s.cfg.Charge
		charge.StrengthFunc = s.cfg.ChargeFunc
		charge.Theta = math.Max(*s.cfg.Theta, 0)
		charge.DistanceMin = s.cfg.DistanceMin
		charge.DistanceMax = s.cfg.DistanceMax
		charge.Jitter = s.jitter
		forces = append(forces, charge)
	}
	if !s.cfg.DisableAxis {
		x, y := force.NewX(), force.NewY()
		x.Strength = *s.cfg.AxisStrength
		y.Strength = *s.cfg.AxisStrength
		forces = append(forces, x, y)
	}
	if !s.cfg.DisableCollide {
		collide := force.NewCollide()
		collide.Padding = *s.cfg.CollidePadding
		collide.Strength = s.cfg.CollideStrength
		collide.Iterations = s.cfg.CollideIterations
		collide.Jitter = s.jitter
		forces = append(forces, collide)
	}
	if s.cfg.Center {
		forces = append(forces, force.NewCenter())
	}
	return forces
}

func (s *Simulation) resizeForces() {
	for _, f := range s.forces {
		if r, ok := f.(force.Resizer); ok {
			r.Resize(s.width, s.height)
		}
	}
}

// guard rejects calls on a disposed simulation or while a tick is running.
func (s *Simulation) guard() error {
	if s.disposed.Load() {
		return errors.New(errors.ErrCodeDisposed, "simulation has been disposed")
	}
	if s.ticking.Load() {
		return errors.New(errors.ErrCodeConcurrentTick, "a tick is in progress")
	}
	return nil
}

// =============================================================================
// Stepping
// =============================================================================

// Tick advances the simulation by one step. When the layout is settled Tick
// changes nothing and reports Moving=false with the current positions.
func (s *Simulation) Tick() (TickResult, error) {
	if s.disposed.Load() {
		return TickResult{}, errors.New(errors.ErrCodeDisposed, "simulation has been disposed")
	}
	if !s.ticking.CompareAndSwap(false, true) {
		return TickResult{}, errors.New(errors.ErrCodeConcurrentTick, "tick called while another tick is running")
	}
	defer s.ticking.Store(false)

	if s.cool.settled() {
		return s.result(false), nil
	}

	backup := slices.Clone(s.bodies)
	alpha := s.cool.alpha
	for _, f := range s.forces {
		f.Apply(s.bodies, alpha)
	}
	integrate(s.bodies, s.cfg.VelocityDecay)

	if i := firstNonFinite(s.bodies); i >= 0 {
		copy(s.bodies, backup)
		return TickResult{}, errors.New(errors.ErrCodeNonFiniteState, "node %q reached a non-finite state", s.bodies[i].ID)
	}

	s.cool.step()
	s.ticks++
	if s.cool.settled() {
		s.logger.Debug("simulation settled", "ticks", s.ticks, "alpha", s.cool.alpha)
	}
	return s.result(true), nil
}

// Run ticks until the layout settles, maxTicks ticks have been performed
// (maxTicks <= 0 means no limit) or ctx is cancelled. It returns the number
// of ticks performed by this call.
func (s *Simulation) Run(ctx context.Context, maxTicks int) (int, error) {
	n := 0
	for maxTicks <= 0 || n < maxTicks {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		res, err := s.Tick()
		if err != nil {
			return n, err
		}
		if !res.Moving {
			break
		}
		n++
	}
	return n, nil
}

func (s *Simulation) result(moving bool) TickResult {
	return TickResult{
		Tick:      s.ticks,
		Alpha:     s.cool.alpha,
		Moving:    moving,
		Positions: s.positions(),
		Segments:  s.segments(),
	}
}

// =============================================================================
// Interaction
// =============================================================================

// Pin fixes node id at (x, y). The body is moved there immediately and stays
// there until Unpin, whatever the forces do.
func (s *Simulation) Pin(id string, x, y float64) error {
	if err := s.guard(); err != nil {
		return err
	}
	if err := errors.ValidateCoordinate(x, y); err != nil {
		return err
	}
	i, err := s.lookup(id)
	if err != nil {
		return err
	}
	b := &s.bodies[i]
	b.Pinned = true
	b.Fix = r2.Vec{X: x, Y: y}
	b.Pos = b.Fix
	return nil
}

// Unpin releases node id. Its accumulated velocity is kept.
func (s *Simulation) Unpin(id string) error {
	if err := s.guard(); err != nil {
		return err
	}
	i, err := s.lookup(id)
	if err != nil {
		return err
	}
	s.bodies[i].Pinned = false
	return nil
}

// Reheat sets the alpha target. A target at or above AlphaMin keeps the
// simulation moving indefinitely; zero lets it cool down again.
func (s *Simulation) Reheat(alphaTarget float64) error {
	if err := s.guard(); err != nil {
		return err
	}
	if !errors.IsFinite(alphaTarget) || alphaTarget < 0 || alphaTarget > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "alpha target must be in [0, 1] (got %g)", alphaTarget)
	}
	s.cool.alphaTarget = alphaTarget
	s.logger.Debug("simulation reheated", "alpha_target", alphaTarget, "alpha", s.cool.alpha)
	return nil
}

// Restart reseeds every unpinned body, zeroes velocities and resets alpha to
// 1. Pins and the alpha target are kept.
func (s *Simulation) Restart() error {
	if err := s.guard(); err != nil {
		return err
	}
	s.seedPositions()
	s.cool.alpha = 1
	s.ticks = 0
	s.logger.Debug("simulation restarted")
	return nil
}

// Resize records a new viewport. Only viewport-dependent forces change; the
// simulation is not reheated.
func (s *Simulation) Resize(width, height float64) error {
	if err := s.guard(); err != nil {
		return err
	}
	if err := errors.ValidateDimensions(width, height); err != nil {
		return err
	}
	s.width, s.height = width, height
	s.resizeForces()
	s.logger.Debug("simulation resized", "width", width, "height", height)
	return nil
}

// Dispose releases the simulation. Every later call fails with DISPOSED.
func (s *Simulation) Dispose() error {
	if err := s.guard(); err != nil {
		return err
	}
	s.disposed.Store(true)
	s.bodies, s.edges, s.forces, s.presets = nil, nil, nil, nil
	s.logger.Debug("simulation disposed")
	return nil
}

// =============================================================================
// Queries
// =============================================================================

// Positions returns the current node positions in input order.
func (s *Simulation) Positions() ([]graph.Position, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.positions(), nil
}

// Segments returns the current link endpoints in input order.
func (s *Simulation) Segments() ([]graph.Segment, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.segments(), nil
}

// Snapshot returns the full positioned layout.
func (s *Simulation) Snapshot() (graph.Layout, error) {
	if err := s.guard(); err != nil {
		return graph.Layout{}, err
	}
	nodes := make([]graph.PlacedNode, len(s.bodies))
	for i, b := range s.bodies {
		nodes[i] = placed(b)
	}
	return graph.Layout{
		Width:   s.width,
		Height:  s.height,
		Tick:    s.ticks,
		Alpha:   s.cool.alpha,
		Settled: s.cool.settled(),
		Nodes:   nodes,
		Links:   s.segments(),
	}, nil
}

// Node returns the current placement of node id.
func (s *Simulation) Node(id string) (graph.PlacedNode, error) {
	if err := s.guard(); err != nil {
		return graph.PlacedNode{}, err
	}
	i, err := s.lookup(id)
	if err != nil {
		return graph.PlacedNode{}, err
	}
	return placed(s.bodies[i]), nil
}

// Find returns the node closest to (x, y) within radius. A radius <= 0
// searches without limit. It fails with NODE_NOT_FOUND when no node qualifies.
func (s *Simulation) Find(x, y, radius float64) (string, error) {
	if err := s.guard(); err != nil {
		return "", err
	}
	best, bestD2 := -1, math.Inf(1)
	if radius > 0 {
		bestD2 = radius * radius
	}
	p := r2.Vec{X: x, Y: y}
	for i, b := range s.bodies {
		if d2 := r2.Norm2(r2.Sub(b.Pos, p)); d2 < bestD2 {
			best, bestD2 = i, d2
		}
	}
	if best < 0 {
		return "", errors.New(errors.ErrCodeNodeNotFound, "no node within %g of (%g, %g)", radius, x, y)
	}
	return s.bodies[best].ID, nil
}

// Alpha returns the current alpha.
func (s *Simulation) Alpha() float64 { return s.cool.alpha }

// Ticks returns the number of ticks performed since New or Restart.
func (s *Simulation) Ticks() int { return s.ticks }

// State returns the phase of the cooling schedule.
func (s *Simulation) State() State {
	if s.disposed.Load() {
		return StateDisposed
	}
	return s.cool.state()
}

// Viewport returns the current viewport size.
func (s *Simulation) Viewport() (width, height float64) { return s.width, s.height }

// Index builds a quadtree over the current positions, e.g. for hit-testing
// many pointer events against one frame.
func (s *Simulation) Index() (*quadtree.Tree, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	pts := make([]quadtree.Point, len(s.bodies))
	for i, b := range s.bodies {
		pts[i] = quadtree.Point{Pos: b.Pos, Radius: b.Radius}
	}
	return quadtree.Build(pts, quadtree.Options{Jitter: s.jitter}), nil
}

func (s *Simulation) lookup(id string) (int, error) {
	i, ok := s.index[id]
	if !ok {
		return 0, errors.New(errors.ErrCodeNodeNotFound, "unknown node %q", id)
	}
	return i, nil
}

func (s *Simulation) positions() []graph.Position {
	out := make([]graph.Position, len(s.bodies))
	for i, b := range s.bodies {
		out[i] = graph.Position{ID: b.ID, X: b.Pos.X, Y: b.Pos.Y}
	}
	return out
}

func (s *Simulation) segments() []graph.Segment {
	out := make([]graph.Segment, len(s.edges))
	for i, e := range s.edges {
		src, tgt := s.bodies[e.Source].Pos, s.bodies[e.Target].Pos
		out[i] = graph.Segment{
			Source: s.links[i].Source,
			Target: s.links[i].Target,
			Value:  e.Weight,
			X1:     src.X,
			Y1:     src.Y,
			X2:     tgt.X,
			Y2:     tgt.Y,
		}
	}
	return out
}

func placed(b force.Body) graph.PlacedNode {
	return graph.PlacedNode{
		ID:     b.ID,
		Group:  b.Group,
		Radius: b.Radius,
		X:      b.Pos.X,
		Y:      b.Pos.Y,
		Pinned: b.Pinned,
	}
}
