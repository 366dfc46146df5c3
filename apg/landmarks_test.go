package apg

import (
	"math"
	"testing"
)

func TestSecondDerivative(t *testing.T) {
	sd := SecondDerivative([]float64{0, 1, 4, 9, 16})
	want := []float64{2, 2, 2}
	if len(sd) != len(want) {
		t.Fatalf("len = %d, want %d", len(sd), len(want))
	}
	for i := range want {
		if sd[i] != want[i] {
			t.Fatalf("sd[%d] = %v, want %v", i, sd[i], want[i])
		}
	}
	if SecondDerivative([]float64{1, 2}) != nil {
		t.Fatal("two samples cannot have a second derivative")
	}
}

func TestDetectSingleCycle(t *testing.T) {
	// Hand-built second derivative: a at 1, b at 3 (deepest negative
	// excursion), e at 5 inside the half-second tail window.
	sd := []float64{0, 5, 0, -4, 0, 2, 0, 1, 0}
	marks := Detect(sd, []int{6}, []int{0}, 10)

	if marks.Len() != 1 {
		t.Fatalf("Len = %d, want 1", marks.Len())
	}
	if marks.A[0] != 1 || marks.B[0] != 3 || marks.E[0] != 5 {
		t.Fatalf("triple = (%d, %d, %d), want (1, 3, 5)", marks.A[0], marks.B[0], marks.E[0])
	}
}

func TestDetectDiscardsInvertedTriple(t *testing.T) {
	// e's excursion tops a's, which is not physiological; the whole triple
	// must go.
	sd := []float64{0, 2, 0, -4, 0, 5, 0}
	marks := Detect(sd, []int{4}, []int{0}, 10)
	if marks.Len() != 0 {
		t.Fatalf("Len = %d, want 0 after amplitude filter", marks.Len())
	}
}

func TestDetectPropertiesOnPulseTrain(t *testing.T) {
	fs := 128.0
	n := int(fs) * 30
	sig := make([]float64, n)
	for i := range sig {
		ts := float64(i) / fs
		sig[i] = math.Sin(2*math.Pi*ts) + 0.3*math.Sin(4*math.Pi*ts)
	}
	sd := SecondDerivative(sig)

	// One synthetic cycle per second: onset near the trough, peak near the
	// crest.
	var peaks, onsets []int
	for c := 0; c < 29; c++ {
		onsets = append(onsets, c*128+90)
		peaks = append(peaks, (c+1)*128+20)
	}

	marks := Detect(sd, peaks, onsets, fs)
	if len(marks.A) != len(marks.B) || len(marks.B) != len(marks.E) {
		t.Fatalf("misaligned triples: %d/%d/%d", len(marks.A), len(marks.B), len(marks.E))
	}
	for i := 0; i < marks.Len(); i++ {
		a, b, e := marks.A[i], marks.B[i], marks.E[i]
		if !(a < b && b < e) {
			t.Fatalf("triple %d out of order: a=%d b=%d e=%d", i, a, b, e)
		}
		if sd[e] > sd[a] {
			t.Fatalf("triple %d survived with sd[e]=%v > sd[a]=%v", i, sd[e], sd[a])
		}
	}
}
