package features

import (
	"math"
	"testing"
)

func TestNaturalVisibilityConvexSeries(t *testing.T) {
	// A strictly convex series puts every intermediate point below every
	// connecting line: the graph is complete.
	y := make([]float64, 6)
	for i := range y {
		y[i] = float64(i * i)
	}
	adj := naturalVisibility(y)
	for i := range adj {
		for j := range adj[i] {
			if i != j && !adj[i][j] {
				t.Fatalf("convex series: %d and %d not mutually visible", i, j)
			}
		}
	}

	pathLen, eff := shortestPathMetrics(adj)
	if pathLen != 1 || eff != 1 {
		t.Fatalf("complete graph metrics = (%v, %v), want (1, 1)", pathLen, eff)
	}
	closed, open := clusteringCoefficients(adj)
	if closed != 1 || open != 1 {
		t.Fatalf("complete graph clustering = (%v, %v), want (1, 1)", closed, open)
	}
	if le := localEfficiency(adj); le != 1 {
		t.Fatalf("complete graph local efficiency = %v, want 1", le)
	}
}

func TestNaturalVisibilityCollinearSeries(t *testing.T) {
	// Collinear points block each other: only neighbors connect, a chain.
	y := []float64{0, 1, 2, 3}
	adj := naturalVisibility(y)
	for i := range adj {
		for j := range adj[i] {
			want := j-i == 1 || i-j == 1
			if i != j && adj[i][j] != want {
				t.Fatalf("edge (%d,%d) = %v, want %v", i, j, adj[i][j], want)
			}
		}
	}

	pathLen, eff := shortestPathMetrics(adj)
	if math.Abs(pathLen-20.0/12.0) > 1e-12 {
		t.Fatalf("chain path length = %v, want %v", pathLen, 20.0/12.0)
	}
	wantEff := (6 + 4.0/2 + 2.0/3) / 12
	if math.Abs(eff-wantEff) > 1e-12 {
		t.Fatalf("chain efficiency = %v, want %v", eff, wantEff)
	}
	closed, open := clusteringCoefficients(adj)
	if closed != 0 || open != 0 {
		t.Fatalf("chain clustering = (%v, %v), want (0, 0)", closed, open)
	}
}

func TestVisibilityComputeShortSeries(t *testing.T) {
	vals, err := Visibility{}.Compute(&Context{PPI: []float64{900, 1000}, Params: DefaultParams()})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(vals) != len(visibilityColumns) {
		t.Fatalf("len = %d, want %d", len(vals), len(visibilityColumns))
	}
	for i, v := range vals {
		if !math.IsNaN(v) {
			t.Fatalf("vals[%d] = %v, want NaN", i, v)
		}
	}
}
