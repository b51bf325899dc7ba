package render

import (
	"testing"

	"github.com/matzehuels/forcegraph/pkg/graph"
)

func TestPaletteFirstSeenOrder(t *testing.T) {
	l := graph.Layout{Nodes: []graph.PlacedNode{
		{ID: "a", Group: "2"},
		{ID: "b", Group: "1"},
		{ID: "c", Group: "2"},
	}}
	p := NewPalette(l)

	if got := p.Color("2"); got != Category10[0] {
		t.Errorf("Color(2) = %s, want %s", got, Category10[0])
	}
	if got := p.Color("1"); got != Category10[1] {
		t.Errorf("Color(1) = %s, want %s", got, Category10[1])
	}
	if p.Len() != 2 {
		t.Errorf("Len() = %d, want 2", p.Len())
	}
}

func TestPaletteCycles(t *testing.T) {
	var p Palette
	for i := range len(Category10) {
		p.Color(string(rune('a' + i)))
	}
	if got := p.Color("overflow"); got != Category10[0] {
		t.Errorf("11th group = %s, want %s", got, Category10[0])
	}
	if got := p.Color("a"); got != Category10[0] {
		t.Errorf("Color(a) = %s, want stable %s", got, Category10[0])
	}
}

func TestToPNGWithoutRsvg(t *testing.T) {
	if Available() {
		t.Skip("rsvg-convert installed")
	}
	if _, err := ToPNG([]byte("<svg/>"), 2); err == nil {
		t.Error("expected error when rsvg-convert is missing")
	}
}
