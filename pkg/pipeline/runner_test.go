package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/observability"
	"github.com/matzehuels/forcegraph/pkg/sim"
)

func triangle() graph.Graph {
	return graph.Graph{
		Nodes: []graph.Node{{ID: "a", Group: "1"}, {ID: "b", Group: "1"}, {ID: "c", Group: "2"}},
		Links: []graph.Link{
			{Source: "a", Target: "b", Value: 1},
			{Source: "b", Target: "c", Value: 4},
			{Source: "c", Target: "a", Value: 1},
		},
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
	ticks  int
}

func (h *recordingHooks) record(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnLayoutStart(context.Context, int, int) { h.record("layout-start") }
func (h *recordingHooks) OnLayoutComplete(_ context.Context, ticks int, _ time.Duration, _ error) {
	h.ticks = ticks
	h.record("layout-complete")
}
func (h *recordingHooks) OnRenderStart(context.Context, []string) { h.record("render-start") }
func (h *recordingHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.record("render-complete")
}

func TestExecute(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	r := NewRunner(nil)
	res, err := r.Execute(context.Background(), triangle(), Options{
		Formats: []string{FormatSVG, FormatJSON, FormatDOT},
		Labels:  true,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if res.RunID == "" {
		t.Error("RunID is empty")
	}
	if !res.Layout.Settled || !res.Stats.Settled {
		t.Errorf("layout not settled after %d ticks", res.Stats.Ticks)
	}
	if res.Stats.NodeCount != 3 || res.Stats.LinkCount != 3 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if len(res.Artifacts) != 3 {
		t.Fatalf("got %d artifacts, want 3", len(res.Artifacts))
	}
	if !bytes.Contains(res.Artifacts[FormatSVG], []byte("<svg")) {
		t.Error("svg artifact missing <svg")
	}
	if !strings.HasPrefix(string(res.Artifacts[FormatDOT]), "graph G {") {
		t.Error("dot artifact malformed")
	}

	var l graph.Layout
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &l); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if len(l.Nodes) != 3 || l.Tick != res.Stats.Ticks {
		t.Errorf("json artifact = %d nodes at tick %d, want 3 at %d", len(l.Nodes), l.Tick, res.Stats.Ticks)
	}

	want := []string{"layout-start", "layout-complete", "render-start", "render-complete"}
	if strings.Join(hooks.events, ",") != strings.Join(want, ",") {
		t.Errorf("hook events = %v, want %v", hooks.events, want)
	}
	if hooks.ticks != res.Stats.Ticks {
		t.Errorf("hook ticks = %d, want %d", hooks.ticks, res.Stats.Ticks)
	}
}

func TestLayoutDeterministic(t *testing.T) {
	r := NewRunner(nil)
	opts := Options{Sim: sim.Config{Seed: 7, Seeding: sim.SeedRandom}}

	a, err := r.Layout(context.Background(), triangle(), opts)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	b, err := r.Layout(context.Background(), triangle(), opts)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	for i := range a.Nodes {
		if a.Nodes[i] != b.Nodes[i] {
			t.Errorf("node %d differs: %+v vs %+v", i, a.Nodes[i], b.Nodes[i])
		}
	}
}

func TestLayoutTickBudget(t *testing.T) {
	r := NewRunner(nil)
	l, err := r.Layout(context.Background(), triangle(), Options{MaxTicks: 5})
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if l.Tick != 5 || l.Settled {
		t.Errorf("Tick = %d, Settled = %v; want 5, false", l.Tick, l.Settled)
	}
}

func TestLayoutErrors(t *testing.T) {
	r := NewRunner(nil)

	t.Run("dangling link", func(t *testing.T) {
		g := graph.Graph{
			Nodes: []graph.Node{{ID: "a"}},
			Links: []graph.Link{{Source: "a", Target: "ghost"}},
		}
		_, err := r.Layout(context.Background(), g, Options{})
		if !errors.Is(err, errors.ErrCodeDanglingLink) {
			t.Errorf("error = %v, want DANGLING_LINK_REFERENCE", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := r.Layout(context.Background(), triangle(), Options{Sim: sim.Config{VelocityDecay: 2}})
		if !errors.Is(err, errors.ErrCodeInvalidConfig) {
			t.Errorf("error = %v, want INVALID_CONFIG", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := r.Layout(ctx, triangle(), Options{}); err != context.Canceled {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func TestRenderUnknownFormat(t *testing.T) {
	r := NewRunner(nil)
	_, err := r.Render(context.Background(), graph.Layout{Width: 10, Height: 10}, Options{Formats: []string{"gif"}})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestExecuteSampleGraph(t *testing.T) {
	g, err := graph.ReadGraphFile("../../examples/graphs/services.json")
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}

	res, err := NewRunner(nil).Execute(context.Background(), g, Options{Formats: []string{FormatJSON}})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.Stats.Settled {
		t.Errorf("sample graph did not settle in %d ticks", res.Stats.Ticks)
	}
	if res.Stats.NodeCount != len(g.Nodes) || len(res.Layout.Nodes) != len(g.Nodes) {
		t.Errorf("layout has %d nodes, want %d", len(res.Layout.Nodes), len(g.Nodes))
	}
}
