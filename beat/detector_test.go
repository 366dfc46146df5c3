package beat

import (
	"errors"
	"math"
	"testing"
)

// pulseTrain synthesizes a 1 Hz pulsatile signal with a sharpening harmonic.
func pulseTrain(fs float64, seconds int) []float64 {
	n := int(fs) * seconds
	x := make([]float64, n)
	for i := range x {
		ts := float64(i) / fs
		x[i] = math.Sin(2*math.Pi*ts) + 0.3*math.Sin(4*math.Pi*ts)
	}
	return x
}

func TestMSPTDPulseTrain(t *testing.T) {
	fs := 128.0
	sig := pulseTrain(fs, 30)

	peaks, onsets, err := MSPTD{}.Detect(sig, fs)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(peaks) < 28 || len(peaks) > 31 {
		t.Fatalf("found %d peaks in a 30-cycle train", len(peaks))
	}
	if len(onsets) != len(peaks) {
		t.Fatalf("peaks/onsets misaligned: %d vs %d", len(peaks), len(onsets))
	}
	for i := range peaks {
		if onsets[i] >= peaks[i] {
			t.Fatalf("onset %d at %d not before its peak at %d", i, onsets[i], peaks[i])
		}
		if i > 0 && peaks[i] <= peaks[i-1] {
			t.Fatalf("peaks not strictly increasing at %d", i)
		}
	}
	if Railing(peaks, DefaultRailingGap) {
		t.Fatal("clean pulse train flagged as railing")
	}

	ppi := Intervals(peaks, fs)
	if len(ppi) != len(peaks)-1 {
		t.Fatalf("len(ppi) = %d, want %d", len(ppi), len(peaks)-1)
	}
	var sum float64
	for _, v := range ppi {
		sum += v
	}
	mean := sum / float64(len(ppi))
	if mean < 950 || mean > 1050 {
		t.Fatalf("mean PPI = %.1f ms, want about 1000", mean)
	}
	var ss float64
	for _, v := range ppi {
		d := v - mean
		ss += d * d
	}
	if sd := math.Sqrt(ss / float64(len(ppi)-1)); sd >= 50 {
		t.Fatalf("PPI SD = %.1f ms, want < 50", sd)
	}
}

func TestMSPTDNoBeats(t *testing.T) {
	if _, _, err := (MSPTD{}).Detect(make([]float64, 256), 128); !errors.Is(err, ErrNoBeats) {
		t.Fatalf("flat signal error = %v, want ErrNoBeats", err)
	}
	if _, _, err := (MSPTD{}).Detect([]float64{1, 2}, 128); !errors.Is(err, ErrNoBeats) {
		t.Fatalf("two-sample signal error = %v, want ErrNoBeats", err)
	}
}

func TestIntervals(t *testing.T) {
	ppi := Intervals([]int{0, 128, 256, 384}, 128)
	if len(ppi) != 3 {
		t.Fatalf("len = %d, want 3", len(ppi))
	}
	for i, v := range ppi {
		if v != 1000 {
			t.Fatalf("ppi[%d] = %v, want 1000", i, v)
		}
	}
	if Intervals([]int{5}, 128) != nil {
		t.Fatal("one peak should yield no intervals")
	}
	if Intervals(nil, 128) != nil {
		t.Fatal("no peaks should yield no intervals")
	}
}

func TestIntervalMidpoints(t *testing.T) {
	mid := IntervalMidpoints([]int{0, 128, 384}, 128)
	want := []float64{0.5, 2}
	if len(mid) != len(want) {
		t.Fatalf("len = %d, want %d", len(mid), len(want))
	}
	for i := range want {
		if math.Abs(mid[i]-want[i]) > 1e-12 {
			t.Fatalf("mid[%d] = %v, want %v", i, mid[i], want[i])
		}
	}
}
