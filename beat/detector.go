// Package beat locates systolic peaks and pulse onsets in PPG epochs,
// rejects railing artifacts, and derives peak-to-peak interval series.
package beat

import (
	"errors"
	"fmt"
)

// ErrNoBeats reports that detection produced no usable peaks or onsets.
// Epochs failing this way are excluded from all downstream processing.
var ErrNoBeats = errors.New("no beats detected")

// Detector locates systolic peaks and onsets in one epoch's signal.
// Implementations must return strictly increasing in-bounds indices; they
// are best-effort and make no one-peak-per-cycle guarantee.
type Detector interface {
	Detect(signal []float64, fs float64) (peaks, onsets []int, err error)
}

// MSPTD is a multi-scale peak and trough detector. For every scale k a
// sample counts as a scale-k maximum when it exceeds both neighbors at
// distance k; the most populated scale bounds the window sizes a true peak
// must win at. Troughs are found the same way on the negated signal and
// serve as pulse onsets.
type MSPTD struct {
	// MaxScale caps the largest neighbor distance considered, in samples.
	// Zero means half the signal length.
	MaxScale int
}

// Detect runs peak and trough detection and pairs one onset before each
// peak. Peaks with no preceding onset are dropped.
func (d MSPTD) Detect(signal []float64, fs float64) ([]int, []int, error) {
	if len(signal) < 3 {
		return nil, nil, fmt.Errorf("signal of %d samples: %w", len(signal), ErrNoBeats)
	}

	detrended := removeLinearTrend(signal)
	maxima := d.multiScaleExtrema(detrended, false)
	minima := d.multiScaleExtrema(detrended, true)
	if len(maxima) == 0 || len(minima) == 0 {
		return nil, nil, ErrNoBeats
	}

	peaks, onsets := pairOnsets(maxima, minima)
	if len(peaks) == 0 || len(onsets) == 0 {
		return nil, nil, ErrNoBeats
	}
	return peaks, onsets, nil
}

// multiScaleExtrema returns the indices that are local maxima (or minima
// when invert is set) at every scale up to the most populated one.
func (d MSPTD) multiScaleExtrema(x []float64, invert bool) []int {
	n := len(x)
	maxScale := n/2 - 1
	if d.MaxScale > 0 && d.MaxScale < maxScale {
		maxScale = d.MaxScale
	}
	if maxScale < 1 {
		maxScale = 1
	}

	higher := func(a, b float64) bool { return a > b }
	if invert {
		higher = func(a, b float64) bool { return a < b }
	}

	// First pass: count scale-k extrema, pick the most populated scale.
	lambda, best := 1, -1
	for k := 1; k <= maxScale; k++ {
		count := 0
		for i := k; i < n-k; i++ {
			if higher(x[i], x[i-k]) && higher(x[i], x[i+k]) {
				count++
			}
		}
		if count > best {
			best = count
			lambda = k
		}
	}
	if best <= 0 {
		return nil
	}

	// Second pass: a sample is an extremum only if it wins at every scale
	// up to lambda.
	out := make([]int, 0, best)
	for i := lambda; i < n-lambda; i++ {
		ok := true
		for k := 1; k <= lambda; k++ {
			if !higher(x[i], x[i-k]) || !higher(x[i], x[i+k]) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, i)
		}
	}
	return out
}

// pairOnsets keeps, for each peak, the nearest trough strictly before it.
// Peaks sharing a trough collapse to the first peak after that trough.
func pairOnsets(maxima, minima []int) (peaks, onsets []int) {
	peaks = make([]int, 0, len(maxima))
	onsets = make([]int, 0, len(maxima))
	j := 0
	lastOnset := -1
	for _, p := range maxima {
		for j < len(minima) && minima[j] < p {
			j++
		}
		if j == 0 {
			continue // no trough before the first peak
		}
		onset := minima[j-1]
		if onset == lastOnset {
			continue // second peak inside the same cycle
		}
		peaks = append(peaks, p)
		onsets = append(onsets, onset)
		lastOnset = onset
	}
	return peaks, onsets
}

func removeLinearTrend(x []float64) []float64 {
	n := len(x)
	out := make([]float64, n)
	if n < 2 {
		copy(out, x)
		return out
	}
	// Least-squares line through (i, x[i]).
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range x {
		fi := float64(i)
		sumX += fi
		sumY += v
		sumXY += fi * v
		sumXX += fi * fi
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		copy(out, x)
		return out
	}
	slope := (fn*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / fn
	for i, v := range x {
		out[i] = v - (intercept + slope*float64(i))
	}
	return out
}
