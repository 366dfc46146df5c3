package features

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Daubechies-4 decomposition filters (8 taps). The high-pass filter is the
// quadrature mirror of the low-pass one.
var (
	db4Lo = []float64{
		-0.010597401784997278, 0.032883011666982945,
		0.030841381835986965, -0.18703481171888114,
		-0.02798376941698385, 0.6308807679295904,
		0.7148465705525415, 0.23037781330885523,
	}
	db4Hi = []float64{
		0.23037781330885523, -0.7148465705525415,
		0.6308807679295904, 0.02798376941698385,
		-0.18703481171888114, -0.030841381835986965,
		0.032883011666982945, 0.010597401784997278,
	}
)

// Wavelet decomposes the epoch signal with a multilevel db4 DWT and emits
// energy, mean, SD, and variance of each detail level plus the final
// approximation.
type Wavelet struct {
	// Levels defaults to 5 when zero.
	Levels int
}

func (w Wavelet) levels() int {
	if w.Levels > 0 {
		return w.Levels
	}
	return 5
}

func (w Wavelet) Name() string { return "wav" }

func (w Wavelet) Columns() []string {
	var cols []string
	for l := 1; l <= w.levels(); l++ {
		for _, s := range []string{"energy", "mean", "sd", "var"} {
			cols = append(cols, fmt.Sprintf("wav_d%d_%s", l, s))
		}
	}
	for _, s := range []string{"energy", "mean", "sd", "var"} {
		cols = append(cols, fmt.Sprintf("wav_a%d_%s", w.levels(), s))
	}
	return cols
}

func (w Wavelet) Compute(c *Context) ([]float64, error) {
	cols := w.Columns()
	approx := c.Signal
	row := make([]float64, 0, len(cols))
	for l := 1; l <= w.levels(); l++ {
		if len(approx) < len(db4Lo) {
			row = append(row, nanRow(len(cols)-len(row))...)
			return row, nil
		}
		detail := dwtStep(approx, db4Hi)
		approx = dwtStep(approx, db4Lo)
		row = append(row, coeffStats(detail)...)
	}
	row = append(row, coeffStats(approx)...)
	return row, nil
}

func coeffStats(c []float64) []float64 {
	energy := 0.0
	for _, v := range c {
		energy += v * v
	}
	sd := stat.StdDev(c, nil)
	return []float64{energy, stat.Mean(c, nil), sd, sd * sd}
}

// dwtStep convolves with the filter under half-sample symmetric extension
// and downsamples by two.
func dwtStep(x, filt []float64) []float64 {
	n := len(x)
	l := len(filt)
	outLen := (n + l - 1) / 2
	out := make([]float64, outLen)
	for i := 0; i < outLen; i++ {
		acc := 0.0
		for k := 0; k < l; k++ {
			acc += filt[k] * symmetricAt(x, 2*i+1-k)
		}
		out[i] = acc
	}
	return out
}

func symmetricAt(x []float64, i int) float64 {
	n := len(x)
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		}
		if i >= n {
			i = 2*n - i - 1
		}
	}
	return x[i]
}
