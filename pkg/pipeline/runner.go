package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/observability"
	"github.com/matzehuels/forcegraph/pkg/sim"
)

// Runner encapsulates pipeline execution.
//
// The Runner is stateless except for the logger: every call builds and
// disposes its own simulation, so multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger falls back to log.Default().
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute runs the complete layout → render pipeline.
func (r *Runner) Execute(ctx context.Context, g graph.Graph, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	runID := uuid.NewString()
	logger := opts.Logger.With("run", runID[:8])
	opts.Logger = logger

	result := &Result{
		RunID:     runID,
		Artifacts: make(map[string][]byte),
	}
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.LinkCount = g.LinkCount()

	// Stage 1: Layout
	layoutStart := time.Now()
	layout, err := r.Layout(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = layout
	result.Stats.Ticks = layout.Tick
	result.Stats.Settled = layout.Settled
	result.Stats.LayoutTime = time.Since(layoutStart)

	logger.Info("computed layout",
		"nodes", g.NodeCount(),
		"links", g.LinkCount(),
		"ticks", layout.Tick,
		"settled", layout.Settled,
		"duration", result.Stats.LayoutTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, err := r.Render(ctx, layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Layout ticks a fresh simulation of g until it settles, opts.MaxTicks is
// reached or ctx is cancelled, and returns the final snapshot.
// Hitting the tick budget is not an error: the snapshot reports Settled=false.
func (r *Runner) Layout(ctx context.Context, g graph.Graph, opts Options) (l graph.Layout, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, err
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, g.NodeCount(), g.LinkCount())
	start := time.Now()
	defer func() {
		hooks.OnLayoutComplete(ctx, l.Tick, time.Since(start), err)
	}()

	cfg := opts.Sim
	if cfg.Logger == nil {
		cfg.Logger = opts.Logger
	}
	s, err := sim.New(g, cfg)
	if err != nil {
		return graph.Layout{}, err
	}
	defer s.Dispose()

	if _, err := s.Run(ctx, opts.MaxTicks); err != nil {
		return graph.Layout{}, err
	}
	if s.State() != sim.StateSettled {
		opts.Logger.Warn("tick budget exhausted before settling",
			"max_ticks", opts.MaxTicks, "alpha", s.Alpha())
	}
	return s.Snapshot()
}

// Render generates artifacts for every requested format.
func (r *Runner) Render(ctx context.Context, l graph.Layout, opts Options) (artifacts map[string][]byte, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() {
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	}()

	return RenderLayout(ctx, l, opts)
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
