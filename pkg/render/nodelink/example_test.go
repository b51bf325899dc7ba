package nodelink_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/render/nodelink"
)

func ExampleToDOT() {
	l := graph.Layout{
		Width:  200,
		Height: 200,
		Nodes: []graph.PlacedNode{
			{ID: "app", Radius: 20, X: 0, Y: -40},
			{ID: "db", Radius: 20, X: 0, Y: 40},
		},
		Links: []graph.Segment{{Source: "app", Target: "db", Value: 1}},
	}

	dot := nodelink.ToDOT(l, nodelink.Options{})
	for _, line := range strings.Split(dot, "\n") {
		if strings.Contains(line, "pos=") || strings.Contains(line, "--") {
			fmt.Println(strings.TrimSpace(line))
		}
	}
	// Output:
	// "app" [label="app", pos="0.00,40.00!", width=0.56, height=0.56, fillcolor="#1f77b4"];
	// "db" [label="db", pos="0.00,-40.00!", width=0.56, height=0.56, fillcolor="#1f77b4"];
	// "app" -- "db" [penwidth=1.00];
}
