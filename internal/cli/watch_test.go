package cli

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/sim"
)

func newTestWatchModel(t *testing.T) watchModel {
	t.Helper()
	s, err := sim.New(testGraph(), sim.Config{})
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}
	t.Cleanup(func() { _ = s.Dispose() })

	m, err := newWatchModel(s, time.Millisecond)
	if err != nil {
		t.Fatalf("newWatchModel: %v", err)
	}
	return m
}

func update(t *testing.T, m watchModel, msg tea.Msg) (watchModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	wm, ok := next.(watchModel)
	if !ok {
		t.Fatalf("Update returned %T, want watchModel", next)
	}
	if wm.err != nil {
		t.Fatalf("model error: %v", wm.err)
	}
	return wm, cmd
}

func TestWatchResize(t *testing.T) {
	m := newTestWatchModel(t)
	if got := m.View(); got != "starting..." {
		t.Errorf("View() before sizing = %q", got)
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	w, h := m.sim.Viewport()
	if w != 80*cellWidth || h != 22*cellHeight {
		t.Errorf("Viewport() = %gx%g, want %gx%g", w, h, 80*cellWidth, 22*cellHeight)
	}
	if m.layout.Width != w {
		t.Errorf("layout width = %g, want refreshed snapshot %g", m.layout.Width, w)
	}

	lines := strings.Split(m.View(), "\n")
	if len(lines) != 24 {
		t.Errorf("View() has %d lines, want 24", len(lines))
	}
	if !strings.Contains(m.View(), "tick 0") {
		t.Errorf("status line missing tick count:\n%s", m.View())
	}
}

func TestWatchFrames(t *testing.T) {
	m := newTestWatchModel(t)

	m, cmd := update(t, m, frameMsg(time.Now()))
	if m.sim.Ticks() != 1 {
		t.Errorf("Ticks() = %d after one frame, want 1", m.sim.Ticks())
	}
	if cmd == nil {
		t.Error("frame should schedule the next frame")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(" ")})
	if !m.paused {
		t.Fatal("space should pause")
	}
	m, _ = update(t, m, frameMsg(time.Now()))
	if m.sim.Ticks() != 1 {
		t.Errorf("Ticks() = %d while paused, want 1", m.sim.Ticks())
	}
}

func TestWatchSelection(t *testing.T) {
	m := newTestWatchModel(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.selected != 0 {
		t.Fatalf("selected = %d after tab, want 0", m.selected)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.selected != len(m.ids)-1 {
		t.Errorf("selected = %d after shift+tab, want %d", m.selected, len(m.ids)-1)
	}
}

func TestWatchDragLifecycle(t *testing.T) {
	m := newTestWatchModel(t)

	// Dragging without a selection is a no-op.
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if m.sim.State() == sim.StateInteractive {
		t.Fatal("drag without selection should not reheat")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	id := m.ids[0]
	before, err := m.sim.Node(id)
	if err != nil {
		t.Fatal(err)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})

	after, err := m.sim.Node(id)
	if err != nil {
		t.Fatal(err)
	}
	if !after.Pinned {
		t.Error("dragged node should be pinned")
	}
	if after.X != before.X+dragStep || after.Y != before.Y+dragStep {
		t.Errorf("dragged to (%g, %g), want (%g, %g)", after.X, after.Y, before.X+dragStep, before.Y+dragStep)
	}
	if m.sim.State() != sim.StateInteractive {
		t.Errorf("State() = %v while dragging, want interactive", m.sim.State())
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("u")})
	released, err := m.sim.Node(id)
	if err != nil {
		t.Fatal(err)
	}
	if released.Pinned {
		t.Error("released node should be unpinned")
	}
	if m.sim.State() == sim.StateInteractive {
		t.Error("State() should leave interactive after release")
	}
}

func TestWatchRestart(t *testing.T) {
	m := newTestWatchModel(t)
	for range 5 {
		m, _ = update(t, m, frameMsg(time.Now()))
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if m.sim.Ticks() != 0 || m.sim.Alpha() != 1 {
		t.Errorf("after restart Ticks() = %d, Alpha() = %g; want 0, 1", m.sim.Ticks(), m.sim.Alpha())
	}
}

func TestWatchQuit(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		t.Run(key.String(), func(t *testing.T) {
			m := newTestWatchModel(t)
			_, cmd := update(t, m, key)
			if cmd == nil {
				t.Fatal("quit key returned no command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("quit key should return tea.Quit")
			}
		})
	}
}

func TestRasterize(t *testing.T) {
	l := graph.Layout{
		Width:  100,
		Height: 100,
		Nodes: []graph.PlacedNode{
			{ID: "a", X: -40, Y: 0, Radius: 5},
			{ID: "b", X: 40, Y: 0, Radius: 5, Pinned: true},
			{ID: "far", X: 1000, Y: 1000, Radius: 5},
		},
		Links: []graph.Segment{{Source: "a", Target: "b", X1: -40, Y1: 0, X2: 40, Y2: 0}},
	}

	c := rasterize(l, 10, 5, "a")

	tests := []struct {
		x, y int
		want rune
	}{
		{1, 2, glyphNode},
		{9, 2, glyphPinned},
		{5, 2, glyphLink},
		{2, 2, glyphLink},
		{8, 2, glyphLink},
		{0, 0, ' '},
		{5, 3, ' '},
	}
	for _, tt := range tests {
		if got := c.at(tt.x, tt.y); got != tt.want {
			t.Errorf("cell (%d, %d) = %q, want %q", tt.x, tt.y, got, tt.want)
		}
	}

	lines := c.lines(newTestWatchModel(t).palette)
	if len(lines) != 5 {
		t.Fatalf("lines() = %d rows, want 5", len(lines))
	}
	if !strings.Contains(lines[2], string(glyphNode)) || !strings.Contains(lines[2], string(glyphPinned)) {
		t.Errorf("row 2 = %q, want both node glyphs", lines[2])
	}
}

func TestRasterizeDiagonal(t *testing.T) {
	l := graph.Layout{
		Width:  100,
		Height: 100,
		Links:  []graph.Segment{{X1: -50, Y1: -50, X2: 40, Y2: 40}},
	}
	c := rasterize(l, 10, 10, "")
	for i := range 10 {
		if c.at(i, i) != glyphLink {
			t.Errorf("cell (%d, %d) = %q, want link", i, i, c.at(i, i))
		}
	}
}

func TestRasterizeEmptyViewport(t *testing.T) {
	c := rasterize(graph.Layout{}, 3, 2, "")
	for y := range 2 {
		for x := range 3 {
			if c.at(x, y) != ' ' {
				t.Errorf("cell (%d, %d) = %q, want blank", x, y, c.at(x, y))
			}
		}
	}
}
