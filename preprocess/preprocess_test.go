package preprocess

import (
	"math"
	"testing"
)

func TestBandpassValidation(t *testing.T) {
	x := make([]float64, 64)
	if _, err := Bandpass(x, 0, 0.5, 8); err == nil {
		t.Fatal("zero sampling rate must fail")
	}
	if _, err := Bandpass(x, 128, 0, 8); err == nil {
		t.Fatal("non-positive low cutoff must fail")
	}
	if _, err := Bandpass(x, 128, 8, 0.5); err == nil {
		t.Fatal("inverted band must fail")
	}
	if _, err := Bandpass(x, 128, 0.5, 100); err == nil {
		t.Fatal("low-pass cutoff past Nyquist must fail")
	}
}

func TestBandpassAttenuatesDrift(t *testing.T) {
	fs := 128.0
	n := int(fs) * 20
	x := make([]float64, n)
	for i := range x {
		ts := float64(i) / fs
		// 1 Hz pulse riding a slow 0.02 Hz drift.
		x[i] = math.Sin(2*math.Pi*ts) + 5*math.Sin(2*math.Pi*0.02*ts)
	}
	out, err := Bandpass(x, fs, 0.5, 8)
	if err != nil {
		t.Fatalf("Bandpass: %v", err)
	}
	if len(out) != n {
		t.Fatalf("len = %d, want %d", len(out), n)
	}
	// After the filter settles the output should stay well inside the
	// drift's amplitude.
	for i := n / 2; i < n; i++ {
		if math.Abs(out[i]) > 3 {
			t.Fatalf("sample %d = %v, drift not attenuated", i, out[i])
		}
	}
}

func TestMovingAverage(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	out := MovingAverage(x, 3)
	want := []float64{1.5, 2, 3, 4, 4.5}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-12 {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}

	same := MovingAverage(x, 1)
	for i := range x {
		if same[i] != x[i] {
			t.Fatal("window 1 must be identity")
		}
	}
}

func TestZNormalize(t *testing.T) {
	out := ZNormalize([]float64{1, 2, 3, 4, 5})
	var sum, ss float64
	for _, v := range out {
		sum += v
	}
	mean := sum / float64(len(out))
	if math.Abs(mean) > 1e-12 {
		t.Fatalf("mean = %v, want 0", mean)
	}
	for _, v := range out {
		ss += (v - mean) * (v - mean)
	}
	if sd := math.Sqrt(ss / float64(len(out)-1)); math.Abs(sd-1) > 1e-12 {
		t.Fatalf("sd = %v, want 1", sd)
	}

	flat := ZNormalize([]float64{4, 4, 4})
	for _, v := range flat {
		if v != 0 {
			t.Fatalf("constant signal should center to 0, got %v", v)
		}
	}
}

func TestMinMaxNormalize(t *testing.T) {
	out := MinMaxNormalize([]float64{2, 4, 6})
	want := []float64{0, 0.5, 1}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-12 {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}

	flat := MinMaxNormalize([]float64{7, 7, 7})
	for _, v := range flat {
		if v != 0 {
			t.Fatalf("constant signal should map to 0, got %v", v)
		}
	}

	if got := MinMaxNormalize(nil); len(got) != 0 {
		t.Fatalf("nil input produced %d samples", len(got))
	}
}

func TestSavitzkyGolayReproducesPolynomials(t *testing.T) {
	const window, order = 11, 2
	n := 64

	flat := make([]float64, n)
	for i := range flat {
		flat[i] = 5
	}
	out, err := SavitzkyGolay(flat, window, order)
	if err != nil {
		t.Fatalf("SavitzkyGolay: %v", err)
	}
	if len(out) != n {
		t.Fatalf("len = %d, want %d", len(out), n)
	}
	for i := window; i < n-window; i++ {
		if math.Abs(out[i]-5) > 1e-9 {
			t.Fatalf("constant: out[%d] = %v, want 5", i, out[i])
		}
	}

	line := make([]float64, n)
	for i := range line {
		line[i] = 2*float64(i) + 1
	}
	out, err = SavitzkyGolay(line, window, order)
	if err != nil {
		t.Fatalf("SavitzkyGolay: %v", err)
	}
	for i := window; i < n-window; i++ {
		if math.Abs(out[i]-line[i]) > 1e-6 {
			t.Fatalf("line: out[%d] = %v, want %v", i, out[i], line[i])
		}
	}
}
