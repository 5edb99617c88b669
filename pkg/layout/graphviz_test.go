package layout

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestApplyGraphviz(t *testing.T) {
	nodes, edges := pipeline([]string{"1", "2", "3"}, [2]string{"1", "2"}, [2]string{"2", "3"})

	tests := []struct {
		dir   Direction
		check func(a, b float64) bool
		axis  func(x, y float64) float64
	}{
		{LeftToRight, func(a, b float64) bool { return a < b }, func(x, _ float64) float64 { return x }},
		{RightToLeft, func(a, b float64) bool { return a > b }, func(x, _ float64) float64 { return x }},
		{TopToBottom, func(a, b float64) bool { return a < b }, func(_, y float64) float64 { return y }},
		{BottomToTop, func(a, b float64) bool { return a > b }, func(_, y float64) float64 { return y }},
	}

	for _, tt := range tests {
		t.Run(string(tt.dir), func(t *testing.T) {
			res, err := Apply(context.Background(), nodes, edges, Options{Engine: EngineGraphviz, Direction: tt.dir})
			if err != nil {
				t.Fatalf("Apply() error: %v", err)
			}
			p := positions(res)
			a := tt.axis(p["1"].X, p["1"].Y)
			b := tt.axis(p["2"].X, p["2"].Y)
			c := tt.axis(p["3"].X, p["3"].Y)
			if !tt.check(a, b) || !tt.check(b, c) {
				t.Errorf("ranks out of order along flow axis: %v", p)
			}
			for id, pos := range p {
				if pos.X < -0.5 || pos.Y < -0.5 {
					t.Errorf("node %s top-left %v lies outside the drawing", id, pos)
				}
			}
			if diff := cmp.Diff(edges, res.Edges); diff != "" {
				t.Errorf("edges changed (-input +result):\n%s", diff)
			}
		})
	}
}

func TestApplyGraphviz_Deterministic(t *testing.T) {
	nodes, edges := pipeline([]string{"a", "b", "c", "d"},
		[2]string{"a", "b"}, [2]string{"a", "c"}, [2]string{"b", "d"}, [2]string{"c", "d"})

	first, err := Apply(context.Background(), nodes, edges, Options{})
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	second, err := Apply(context.Background(), nodes, edges, Options{})
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("graphviz layout not deterministic (-first +second):\n%s", diff)
	}

	// Nodes in one rank share the flow coordinate.
	p := positions(first)
	if math.Abs(p["b"].X-p["c"].X) > 0.5 {
		t.Errorf("b and c should share a rank: %v", p)
	}
}
