package quadtree

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"
)

func gravity(delta r2.Vec, dist2, mass float64) r2.Vec {
	return r2.Scale(mass/(dist2*math.Sqrt(dist2)), delta)
}

func randomPoints(n int, seed uint64) []Point {
	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = Point{
			Pos:    r2.Vec{X: 1000 * rng.Float64(), Y: 1000 * rng.Float64()},
			Radius: 1 + 10*rng.Float64(),
		}
	}
	return pts
}

func bruteForce(pts []Point, i int, law Law) r2.Vec {
	var sum r2.Vec
	for j, p := range pts {
		if j == i {
			continue
		}
		d := r2.Sub(p.Pos, pts[i].Pos)
		sum = r2.Add(sum, law(d, r2.Norm2(d), 1))
	}
	return sum
}

func TestBuildAggregates(t *testing.T) {
	pts := []Point{
		{Pos: r2.Vec{X: 0, Y: 0}, Radius: 1},
		{Pos: r2.Vec{X: 10, Y: 0}, Radius: 5},
		{Pos: r2.Vec{X: 0, Y: 10}, Radius: 2},
		{Pos: r2.Vec{X: 10, Y: 10}, Radius: 3},
	}
	tree := Build(pts, Options{})
	root := tree.Root()
	if root == nil {
		t.Fatal("root is nil")
	}
	if root.Mass != 4 {
		t.Errorf("mass = %v, want 4", root.Mass)
	}
	if root.Centroid != (r2.Vec{X: 5, Y: 5}) {
		t.Errorf("centroid = %v, want (5,5)", root.Centroid)
	}
	if root.MaxRadius != 5 {
		t.Errorf("max radius = %v, want 5", root.MaxRadius)
	}
	for i, p := range pts {
		if !root.Contains(p.Pos) {
			t.Errorf("root does not contain point %d", i)
		}
	}
}

func TestLeavesHoldOnePoint(t *testing.T) {
	pts := randomPoints(200, 7)
	tree := Build(pts, Options{})

	seen := make(map[int]bool)
	tree.Visit(func(c *Cell) bool {
		if c.IsLeaf() {
			if len(c.Bodies) != 1 {
				t.Errorf("leaf at depth %d holds %d points", c.Depth, len(c.Bodies))
			}
			for _, i := range c.Bodies {
				if !c.Contains(pts[i].Pos) {
					t.Errorf("point %d outside its leaf", i)
				}
				seen[i] = true
			}
		}
		return false
	})
	if len(seen) != len(pts) {
		t.Errorf("visited %d points, want %d", len(seen), len(pts))
	}
}

func TestCoincidentPoints(t *testing.T) {
	pts := make([]Point, 6)
	for i := range pts {
		pts[i] = Point{Pos: r2.Vec{X: 3, Y: 3}, Radius: 1}
	}
	tree := Build(pts, Options{Jitter: NewJitter(42)})

	root := tree.Root()
	if !root.IsLeaf() || len(root.Bodies) != 6 {
		t.Fatalf("coincident points should share one leaf, got leaf=%v bodies=%d", root.IsLeaf(), len(root.Bodies))
	}
	for i := range pts {
		f := tree.Accumulate(i, 0.9, gravity)
		if math.IsNaN(f.X) || math.IsNaN(f.Y) || math.IsInf(f.X, 0) || math.IsInf(f.Y, 0) {
			t.Fatalf("non-finite accumulation for point %d: %v", i, f)
		}
	}
}

func TestMaxDepth(t *testing.T) {
	pts := []Point{
		{Pos: r2.Vec{X: 0, Y: 0}},
		{Pos: r2.Vec{X: 1e-9, Y: 0}},
		{Pos: r2.Vec{X: 100, Y: 100}},
	}
	tree := Build(pts, Options{MaxDepth: 3})
	maxDepth := 0
	tree.Visit(func(c *Cell) bool {
		if c.Depth > maxDepth {
			maxDepth = c.Depth
		}
		return false
	})
	if maxDepth > 3 {
		t.Errorf("depth %d exceeds cap 3", maxDepth)
	}
}

func TestAccumulateExcludesSelf(t *testing.T) {
	tree := Build([]Point{{Pos: r2.Vec{X: 1, Y: 2}}}, Options{})
	if f := tree.Accumulate(0, 0.9, gravity); f != (r2.Vec{}) {
		t.Errorf("lone point accumulated %v, want zero", f)
	}

	empty := Build(nil, Options{})
	if empty.Root() != nil {
		t.Errorf("empty tree should have nil root")
	}
}

func TestAccumulateExact(t *testing.T) {
	pts := randomPoints(100, 3)
	tree := Build(pts, Options{})
	for i := range pts {
		got := tree.Accumulate(i, 0, gravity)
		want := bruteForce(pts, i, gravity)
		if d := r2.Norm(r2.Sub(got, want)); d > 1e-9*math.Max(1, r2.Norm(want)) {
			t.Fatalf("point %d: got %v, want %v", i, got, want)
		}
	}
}

func TestAccumulateApproximation(t *testing.T) {
	pts := randomPoints(500, 11)
	tree := Build(pts, Options{})

	for _, tt := range []struct {
		theta float64
		tol   float64
	}{
		{0.5, 0.05},
		{0.9, 0.15},
	} {
		var errSum, normSum float64
		for i := range pts {
			got := tree.Accumulate(i, tt.theta, gravity)
			want := bruteForce(pts, i, gravity)
			errSum += r2.Norm(r2.Sub(got, want))
			normSum += r2.Norm(want)
		}
		if rel := errSum / normSum; rel > tt.tol {
			t.Errorf("theta=%v: relative error %.4f exceeds %.2f", tt.theta, rel, tt.tol)
		}
	}
}

type particle struct {
	pos r2.Vec
}

func (p *particle) Coord2() r2.Vec { return p.pos }
func (p *particle) Mass() float64  { return 1 }

func TestAgreesWithGonumBarnesHut(t *testing.T) {
	pts := randomPoints(150, 5)
	ps := make([]barneshut.Particle2, len(pts))
	for i, p := range pts {
		ps[i] = &particle{pos: p.Pos}
	}
	plane, err := barneshut.NewPlane(ps)
	if err != nil {
		t.Fatalf("NewPlane: %v", err)
	}

	tree := Build(pts, Options{})
	for i := range pts {
		got := r2.Norm(tree.Accumulate(i, 0, gravity))
		want := r2.Norm(plane.ForceOn(ps[i], 0, barneshut.Gravity2))
		if math.Abs(got-want) > 1e-9*math.Max(1, want) {
			t.Fatalf("point %d: |F| = %v, gonum reports %v", i, got, want)
		}
	}
}

func TestVisitPrune(t *testing.T) {
	tree := Build(randomPoints(64, 9), Options{})
	visited := 0
	tree.Visit(func(c *Cell) bool {
		visited++
		return true
	})
	if visited != 1 {
		t.Errorf("pruning root visited %d cells, want 1", visited)
	}
}

func TestJitterDeterministic(t *testing.T) {
	a, b := NewJitter(5), NewJitter(5)
	for range 10 {
		x, y := a(), b()
		if x != y {
			t.Fatalf("jitter diverged: %v vs %v", x, y)
		}
		if math.Abs(x) > jitterScale {
			t.Fatalf("jitter %v exceeds scale", x)
		}
	}
}
