package features

import (
	"math"
	"testing"
)

func TestRecurrenceAllWithinEps(t *testing.T) {
	x := []float64{1, 5, 2, 8, 3}
	rr, det := recurrenceRates(x, 100, 2)
	if rr != 1 {
		t.Fatalf("rr = %v, want 1 when eps covers the full range", rr)
	}
	if det != 1 {
		t.Fatalf("det = %v, want 1 when every diagonal is one long run", det)
	}
}

func TestRecurrenceDiagonalOnly(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	rr, det := recurrenceRates(x, 1e-9, 2)
	want := 1.0 / float64(len(x))
	if math.Abs(rr-want) > 1e-15 {
		t.Fatalf("rr = %v, want 1/N = %v for distinct increasing values", rr, want)
	}
	// The main diagonal is one run of length N.
	if det != 1 {
		t.Fatalf("det = %v, want 1", det)
	}
}

func TestRecurrenceComputeShortSignal(t *testing.T) {
	vals, err := Recurrence{}.Compute(&Context{Signal: []float64{1}, Params: DefaultParams()})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for i, v := range vals {
		if !math.IsNaN(v) {
			t.Fatalf("vals[%d] = %v, want NaN", i, v)
		}
	}
}
