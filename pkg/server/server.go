package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/observability"
	"github.com/matzehuels/forcegraph/pkg/sim"
)

const (
	// DefaultAddr is the listen address when none is configured.
	DefaultAddr = ":8080"

	// DefaultTickRate is the tick loop frequency in ticks per second.
	DefaultTickRate = 60.0

	shutdownTimeout = 5 * time.Second
)

// Config configures the HTTP server.
type Config struct {
	Addr     string
	TickRate float64 // ticks per second
	Labels   bool    // draw labels in ?format=svg
	Logger   *log.Logger
}

// Server owns a simulation and serves it over HTTP.
type Server struct {
	cfg     Config
	session string
	logger  *log.Logger
	limiter *rate.Limiter
	router  chi.Router

	mu      sync.Mutex
	sim     *sim.Simulation
	settled bool

	// failing is set while consecutive ticks are rejected. Owned by loop.
	failing bool
}

// New wraps s. The server takes ownership: it ticks s and disposes it when
// Run returns.
func New(s *sim.Simulation, cfg Config) (*Server, error) {
	if s == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "simulation is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.TickRate == 0 {
		cfg.TickRate = DefaultTickRate
	}
	if !errors.IsFinite(cfg.TickRate) || cfg.TickRate < 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "tick rate must be positive (got %g)", cfg.TickRate)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	srv := &Server{
		cfg:     cfg,
		session: uuid.NewString(),
		limiter: rate.NewLimiter(rate.Limit(cfg.TickRate), 1),
		sim:     s,
	}
	srv.logger = cfg.Logger.With("session", srv.session[:8])
	srv.router = srv.routes()
	return srv, nil
}

// Session returns the server's session id.
func (s *Server) Session() string { return s.session }

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/layout", s.handleLayout)
		r.Get("/nodes/{id}", s.handleNode)
		r.Post("/nodes/{id}/pin", s.handlePin)
		r.Delete("/nodes/{id}/pin", s.handleUnpin)
		r.Post("/find", s.handleFind)
		r.Post("/resize", s.handleResize)
		r.Post("/restart", s.handleRestart)
	})
	return r
}

// observe reports requests to the HTTP hooks keyed by route pattern, so
// /api/nodes/a/pin and /api/nodes/b/pin aggregate together.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, route)
		hooks.OnResponse(r.Context(), r.Method, route, ww.Status(), time.Since(start))
	})
}

// =============================================================================
// Tick Loop
// =============================================================================

// Step performs one tick under the mutex. It reports whether the layout
// moved. Settled simulations are skipped without ticking.
func (s *Server) Step(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sim.State() == sim.StateSettled {
		return false, nil
	}
	res, err := s.sim.Tick()
	if err != nil {
		return false, err
	}

	settled := s.sim.State() == sim.StateSettled
	if settled && !s.settled {
		s.logger.Debug("layout settled", "ticks", res.Tick)
		observability.Session().OnSettled(ctx, s.session, res.Tick)
	}
	s.settled = settled
	return res.Moving, nil
}

// loop ticks at the configured rate until ctx is cancelled.
func (s *Server) loop(ctx context.Context) error {
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		_, err := s.Step(ctx)
		if err == nil {
			s.failing = false
			continue
		}
		if err := s.tickFailed(ctx, err); err != nil {
			return err
		}
	}
}

// tickFailed reports a rejected tick. A non-finite state has already been
// rolled back by the simulation, so the server warns once per run of
// failures and keeps serving; pins or a restart can recover the layout.
// Any other error ends the loop.
func (s *Server) tickFailed(ctx context.Context, err error) error {
	if !errors.Is(err, errors.ErrCodeNonFiniteState) {
		return fmt.Errorf("tick: %w", err)
	}
	observability.Session().OnTickError(ctx, s.session, err)
	if !s.failing {
		s.logger.Warn("tick rejected, layout unchanged", "err", err)
	}
	s.failing = true
	return nil
}

// Run serves HTTP and ticks the simulation until ctx is cancelled, then
// shuts the listener down gracefully and disposes the simulation.
func (s *Server) Run(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.loop(ctx) })
	g.Go(func() error {
		s.logger.Info("listening", "addr", s.cfg.Addr, "tick_rate", s.cfg.TickRate)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if derr := s.sim.Dispose(); derr != nil && err == nil {
		err = derr
	}
	return err
}
