package features

import (
	"math"
	"testing"
)

func TestTriangularInterpIdenticalIntervals(t *testing.T) {
	ppi := make([]float64, 10)
	for i := range ppi {
		ppi[i] = 800
	}
	tinn, tri := triangularInterp(ppi, 10)
	// One bin holds all mass: index = total/modal = 1, and the one-sided
	// degeneration on both sides leaves a single-bin triangle.
	if tri != 1 {
		t.Fatalf("triangular index = %v, want 1", tri)
	}
	if tinn != 10 {
		t.Fatalf("tinn = %v, want one bin width (10)", tinn)
	}
}

func TestTriangularInterpTriangleHistogram(t *testing.T) {
	// Bins at 705..745 (width 10) with counts 1,2,3,2,1.
	ppi := []float64{705, 715, 715, 725, 725, 725, 735, 735, 745}
	tinn, tri := triangularInterp(ppi, 10)
	if math.Abs(tri-3) > 1e-12 {
		t.Fatalf("triangular index = %v, want 9/3 = 3", tri)
	}
	// The best-fit base spans the whole histogram: 705 to 755.
	if math.Abs(tinn-50) > 1e-9 {
		t.Fatalf("tinn = %v, want 50", tinn)
	}
}

func TestTriangularInterpEmpty(t *testing.T) {
	tinn, tri := triangularInterp(nil, 10)
	if !math.IsNaN(tinn) || !math.IsNaN(tri) {
		t.Fatalf("empty series = (%v, %v), want NaN", tinn, tri)
	}
}
