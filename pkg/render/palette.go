package render

import "github.com/matzehuels/forcegraph/pkg/graph"

// Category10 is the ten-colour categorical scheme used for node groups.
var Category10 = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Fixed drawing constants shared by the renderers.
const (
	LinkColor       = "#999"
	LinkOpacity     = 0.6
	NodeStroke      = "#fff"
	NodeStrokeWidth = 1.5
)

// Palette assigns colours to groups in first-seen order.
// The zero value is usable and assigns lazily.
type Palette struct {
	scheme []string
	index  map[string]int
}

// NewPalette returns a palette pre-populated with the groups of l in node order,
// so colours do not depend on lookup order.
func NewPalette(l graph.Layout) *Palette {
	p := &Palette{}
	for _, n := range l.Nodes {
		p.Color(n.Group)
	}
	return p
}

// Color returns the colour for group, assigning the next free one on first use.
func (p *Palette) Color(group string) string {
	if p.scheme == nil {
		p.scheme = Category10
	}
	if p.index == nil {
		p.index = make(map[string]int)
	}
	i, ok := p.index[group]
	if !ok {
		i = len(p.index)
		p.index[group] = i
	}
	return p.scheme[i%len(p.scheme)]
}

// Len returns the number of groups seen so far.
func (p *Palette) Len() int { return len(p.index) }
