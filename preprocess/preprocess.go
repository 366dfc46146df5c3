// Package preprocess holds the filtering and normalization applied to raw
// PPG signals before epoch segmentation and beat detection.
package preprocess

import (
	"fmt"
	"math"

	"github.com/jfcg/butter"
	"github.com/pconstantinou/savitzkygolay"
	"gonum.org/v1/gonum/stat"
)

// Bandpass runs a first-order Butterworth high-pass/low-pass chain over the
// signal. Cutoffs are in Hz; valid normalized cutoffs are bounded by the
// filter package (0.0001 < wc < pi).
func Bandpass(x []float64, fs, lowHz, highHz float64) ([]float64, error) {
	if fs <= 0 {
		return nil, fmt.Errorf("sampling rate must be positive, got %v", fs)
	}
	if lowHz <= 0 || highHz <= lowHz {
		return nil, fmt.Errorf("bad band [%v, %v] Hz", lowHz, highHz)
	}
	wcBase := 2 * math.Pi / fs
	hp := butter.NewHighPass1(lowHz * wcBase)
	lp := butter.NewLowPass1(highHz * wcBase)
	if hp == nil {
		return nil, fmt.Errorf("invalid high-pass cutoff %v Hz at fs %v", lowHz, fs)
	}
	if lp == nil {
		return nil, fmt.Errorf("invalid low-pass cutoff %v Hz at fs %v", highHz, fs)
	}

	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = hp.Next(lp.Next(v))
	}
	return out, nil
}

// MovingAverage smooths the signal with a centered window of width w.
// Window edges shrink near the signal boundaries.
func MovingAverage(x []float64, w int) []float64 {
	if w <= 1 || len(x) == 0 {
		out := make([]float64, len(x))
		copy(out, x)
		return out
	}
	half := w / 2
	out := make([]float64, len(x))
	for i := range x {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi >= len(x) {
			hi = len(x) - 1
		}
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += x[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}

// SavitzkyGolay smooths the signal with a Savitzky-Golay filter of the given
// window length and polynomial order.
func SavitzkyGolay(x []float64, window, order int) ([]float64, error) {
	filter, err := savitzkygolay.NewFilter(window, 0, order)
	if err != nil {
		return nil, fmt.Errorf("savitzky-golay filter: %w", err)
	}
	t := make([]float64, len(x))
	for i := range t {
		t[i] = float64(i)
	}
	out, err := filter.Process(x, t)
	if err != nil {
		return nil, fmt.Errorf("savitzky-golay process: %w", err)
	}
	return out, nil
}

// MinMaxNormalize rescales the signal onto [0, 1]. A constant signal maps
// to zeros.
func MinMaxNormalize(x []float64) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}
	lo, hi := x[0], x[0]
	for _, v := range x[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	for i, v := range x {
		if span > 0 {
			out[i] = (v - lo) / span
		}
	}
	return out
}

// ZNormalize returns the signal centered to zero mean and scaled to unit
// variance. A zero-variance signal is returned centered only.
func ZNormalize(x []float64) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}
	mean := stat.Mean(x, nil)
	sd := stat.StdDev(x, nil)
	for i, v := range x {
		if sd > 0 && !math.IsNaN(sd) {
			out[i] = (v - mean) / sd
		} else {
			out[i] = v - mean
		}
	}
	return out
}
