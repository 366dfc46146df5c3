package features

import (
	"math"
	"math/rand"
	"testing"
)

func TestOverallDFAWhiteNoise(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	x := make([]float64, 4096)
	for i := range x {
		x[i] = rng.NormFloat64()
	}
	alpha := overallDFA(x)
	if math.IsNaN(alpha) || math.Abs(alpha-0.5) > 0.1 {
		t.Fatalf("white noise alpha = %v, want 0.5 +/- 0.1", alpha)
	}
}

func TestOverallDFARandomWalk(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	x := make([]float64, 4096)
	acc := 0.0
	for i := range x {
		acc += rng.NormFloat64()
		x[i] = acc
	}
	alpha := overallDFA(x)
	if math.IsNaN(alpha) || math.Abs(alpha-1.5) > 0.15 {
		t.Fatalf("random walk alpha = %v, want 1.5 +/- 0.15", alpha)
	}
}

func TestGeneralDFAShortSeries(t *testing.T) {
	if !math.IsNaN(generalDFA([]float64{1, 2, 3}, []int{3, 4})) {
		t.Fatal("short series must yield NaN")
	}
	if !math.IsNaN(overallDFA(make([]float64, 10))) {
		t.Fatal("series too short for scale 4..N/4 must yield NaN")
	}
}

func TestLogSpacedScales(t *testing.T) {
	scales := logSpacedScales(4, 1024, 30)
	if len(scales) == 0 {
		t.Fatal("no scales")
	}
	if scales[0] != 4 || scales[len(scales)-1] != 1024 {
		t.Fatalf("endpoints = %d..%d, want 4..1024", scales[0], scales[len(scales)-1])
	}
	for i := 1; i < len(scales); i++ {
		if scales[i] <= scales[i-1] {
			t.Fatalf("scales not strictly increasing at %d: %v", i, scales)
		}
	}
	if logSpacedScales(10, 5, 30) != nil {
		t.Fatal("inverted range should yield nil")
	}
}

func TestDMAOnNoise(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	x := make([]float64, 512)
	for i := range x {
		x[i] = rng.NormFloat64()
	}
	if v := dma(x, dmaScales); math.IsNaN(v) || v <= 0 {
		t.Fatalf("dma = %v, want positive", v)
	}
	if !math.IsNaN(dma([]float64{1, 2}, dmaScales)) {
		t.Fatal("short series must yield NaN")
	}
}
