package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/observability"
	"github.com/matzehuels/forcegraph/pkg/sim"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	g := graph.Graph{
		Nodes: []graph.Node{{ID: "a", Group: "1"}, {ID: "b", Group: "1"}, {ID: "c", Group: "2"}},
		Links: []graph.Link{{Source: "a", Target: "b", Value: 1}, {Source: "b", Target: "c", Value: 1}},
	}
	s, err := sim.New(g, sim.Config{Seed: 1})
	if err != nil {
		t.Fatalf("sim.New() error: %v", err)
	}
	srv, err := New(s, Config{Labels: true})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return srv
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func state(t *testing.T, srv *Server) StateResponse {
	t.Helper()
	rec := do(t, srv, http.MethodGet, "/api/state", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/state = %d", rec.Code)
	}
	return decode[StateResponse](t, rec)
}

func TestNewValidation(t *testing.T) {
	if _, err := New(nil, Config{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("New(nil) error = %v, want INVALID_INPUT", err)
	}
	s, _ := sim.New(graph.Graph{}, sim.Config{})
	if _, err := New(s, Config{TickRate: -1}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("New(rate -1) error = %v, want INVALID_CONFIG", err)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decode[map[string]string](t, rec)
	if body["status"] != "ok" || body["session"] != srv.Session() || body["version"] == "" {
		t.Errorf("body = %v", body)
	}
}

func TestLayout(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		query       string
		status      int
		contentType string
		contains    string
	}{
		{"", http.StatusOK, "application/json", `"nodes"`},
		{"?format=json", http.StatusOK, "application/json", `"links"`},
		{"?format=svg", http.StatusOK, "image/svg+xml", "<svg"},
		{"?format=dot", http.StatusOK, "text/vnd.graphviz", "graph G {"},
		{"?format=gif", http.StatusBadRequest, "application/json", "INVALID_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := do(t, srv, http.MethodGet, "/api/layout"+tt.query, "")
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if ct := rec.Header().Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", ct, tt.contentType)
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("body missing %q", tt.contains)
			}
		})
	}
}

func TestDragLifecycle(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	rec := do(t, srv, http.MethodPost, "/api/nodes/a/pin", `{"x": 40, "y": -25}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("pin status = %d: %s", rec.Code, rec.Body.String())
	}
	n := decode[graph.PlacedNode](t, rec)
	if n.X != 40 || n.Y != -25 || !n.Pinned {
		t.Errorf("pinned node = %+v", n)
	}
	if st := state(t, srv); st.State != "interactive" {
		t.Errorf("state after pin = %s, want interactive", st.State)
	}

	for range 20 {
		if _, err := srv.Step(ctx); err != nil {
			t.Fatalf("Step() error: %v", err)
		}
	}
	n = decode[graph.PlacedNode](t, do(t, srv, http.MethodGet, "/api/nodes/a", ""))
	if n.X != 40 || n.Y != -25 {
		t.Errorf("pinned node moved to (%v, %v)", n.X, n.Y)
	}

	rec = do(t, srv, http.MethodDelete, "/api/nodes/a/pin", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("unpin status = %d", rec.Code)
	}
	if st := state(t, srv); st.State == "interactive" {
		t.Error("state still interactive after release")
	}
}

func TestErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   errors.Code
	}{
		{"unknown node", http.MethodGet, "/api/nodes/ghost", "", 404, errors.ErrCodeNodeNotFound},
		{"pin unknown", http.MethodPost, "/api/nodes/ghost/pin", `{"x":1,"y":1}`, 404, errors.ErrCodeNodeNotFound},
		{"unpin unknown", http.MethodDelete, "/api/nodes/ghost/pin", "", 404, errors.ErrCodeNodeNotFound},
		{"bad body", http.MethodPost, "/api/nodes/a/pin", `{"x":`, 400, errors.ErrCodeInvalidInput},
		{"unknown field", http.MethodPost, "/api/resize", `{"w":1}`, 400, errors.ErrCodeInvalidInput},
		{"bad size", http.MethodPost, "/api/resize", `{"width":0,"height":10}`, 400, errors.ErrCodeInvalidInput},
		{"find miss", http.MethodPost, "/api/find", `{"x":5000,"y":5000,"radius":1}`, 404, errors.ErrCodeNodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, tt.method, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if got := decode[errorResponse](t, rec); got.Code != tt.code {
				t.Errorf("code = %s, want %s", got.Code, tt.code)
			}
		})
	}
}

func TestFindResizeRestart(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	do(t, srv, http.MethodPost, "/api/nodes/c/pin", `{"x": 300, "y": 200}`)
	rec := do(t, srv, http.MethodPost, "/api/find", `{"x": 298, "y": 201, "radius": 20}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("find status = %d: %s", rec.Code, rec.Body.String())
	}
	if id := decode[map[string]string](t, rec)["id"]; id != "c" {
		t.Errorf("find = %q, want c", id)
	}

	if rec := do(t, srv, http.MethodPost, "/api/resize", `{"width": 400, "height": 300}`); rec.Code != http.StatusNoContent {
		t.Fatalf("resize status = %d", rec.Code)
	}
	if st := state(t, srv); st.Width != 400 || st.Height != 300 {
		t.Errorf("viewport = %vx%v, want 400x300", st.Width, st.Height)
	}

	for range 5 {
		_, _ = srv.Step(ctx)
	}
	if rec := do(t, srv, http.MethodPost, "/api/restart", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("restart status = %d", rec.Code)
	}
	if st := state(t, srv); st.Tick != 0 || st.Alpha != 1 {
		t.Errorf("after restart tick=%d alpha=%v, want 0 and 1", st.Tick, st.Alpha)
	}
}

type hookRecorder struct {
	observability.NoopSessionHooks
	observability.NoopHTTPHooks
	mu      sync.Mutex
	settled    int
	pins       []string
	routes     []string
	tickErrors []error
}

func (h *hookRecorder) OnSettled(context.Context, string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.settled++
}

func (h *hookRecorder) OnTickError(_ context.Context, _ string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tickErrors = append(h.tickErrors, err)
}

func (h *hookRecorder) OnPin(_ context.Context, _ string, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pins = append(h.pins, id)
}

func (h *hookRecorder) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, method+" "+route)
}

func TestHooks(t *testing.T) {
	h := &hookRecorder{}
	observability.SetSessionHooks(h)
	observability.SetHTTPHooks(h)
	t.Cleanup(observability.Reset)

	srv := newTestServer(t)
	do(t, srv, http.MethodPost, "/api/nodes/b/pin", `{"x": 0, "y": 0}`)
	do(t, srv, http.MethodDelete, "/api/nodes/b/pin", "")

	ctx := context.Background()
	for range 1000 {
		if _, err := srv.Step(ctx); err != nil {
			t.Fatalf("Step() error: %v", err)
		}
	}

	if h.settled != 1 {
		t.Errorf("OnSettled called %d times, want 1", h.settled)
	}
	if len(h.pins) != 1 || h.pins[0] != "b" {
		t.Errorf("pins = %v, want [b]", h.pins)
	}
	want := []string{"POST /api/nodes/{id}/pin", "DELETE /api/nodes/{id}/pin"}
	if strings.Join(h.routes, ",") != strings.Join(want, ",") {
		t.Errorf("routes = %v, want %v", h.routes, want)
	}
}

func TestTickFailed(t *testing.T) {
	h := &hookRecorder{}
	observability.SetSessionHooks(h)
	t.Cleanup(observability.Reset)

	var buf bytes.Buffer
	srv := newTestServer(t)
	srv.logger = log.New(&buf)
	ctx := context.Background()

	nonFinite := errors.New(errors.ErrCodeNonFiniteState, "node %q reached a non-finite state", "a")
	for range 3 {
		if err := srv.tickFailed(ctx, nonFinite); err != nil {
			t.Fatalf("tickFailed(non-finite) = %v, want nil", err)
		}
	}
	if len(h.tickErrors) != 3 {
		t.Errorf("OnTickError called %d times, want 3", len(h.tickErrors))
	}
	if n := strings.Count(buf.String(), "tick rejected"); n != 1 {
		t.Errorf("logged %d warnings for one run of failures, want 1:\n%s", n, buf.String())
	}

	// The server keeps serving after a rejected tick.
	if rec := do(t, srv, http.MethodGet, "/api/state", ""); rec.Code != http.StatusOK {
		t.Errorf("state status = %d after rejected tick", rec.Code)
	}

	disposed := errors.New(errors.ErrCodeDisposed, "simulation has been disposed")
	if err := srv.tickFailed(ctx, disposed); !errors.Is(err, errors.ErrCodeDisposed) {
		t.Errorf("tickFailed(disposed) = %v, want %s", err, errors.ErrCodeDisposed)
	}
	if len(h.tickErrors) != 3 {
		t.Errorf("fatal tick errors should not reach OnTickError")
	}
}

func TestRunShutdown(t *testing.T) {
	srv := newTestServer(t)
	srv.cfg.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
	if st := srv.sim.State(); st != sim.StateDisposed {
		t.Errorf("state = %s, want disposed", st)
	}
}
