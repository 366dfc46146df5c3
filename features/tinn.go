package features

import (
	"math"
)

// TINN computes the triangular interpolation of the PPI histogram and the
// triangular index.
type TINN struct{}

func (TINN) Name() string { return "tinn" }

var tinnColumns = []string{"tinn_ms", "tinn_triangular_index"}

func (TINN) Columns() []string { return tinnColumns }

func (TINN) Compute(c *Context) ([]float64, error) {
	width := c.Params.TINNBinWidthMS
	if width <= 0 {
		width = DefaultParams().TINNBinWidthMS
	}
	tinn, tri := triangularInterp(c.PPI, width)
	return []float64{tinn, tri}, nil
}

// triangularInterp histograms the interval series at the given bin width,
// then searches each side of the modal bin for the triangle base endpoint
// minimizing squared error against an idealized ramp, with histogram mass
// outside the candidate triangle counted as error. When the mode sits on the
// histogram boundary the empty side degenerates to the modal bin edge itself
// (one-sided triangle).
//
// Returns the triangle base width in ms and the triangular index
// (total count over modal count).
func triangularInterp(ppi []float64, binWidth float64) (tinn, triangularIndex float64) {
	if len(ppi) == 0 || binWidth <= 0 {
		return math.NaN(), math.NaN()
	}

	lo, hi := ppi[0], ppi[0]
	for _, v := range ppi[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	nBins := int((hi-lo)/binWidth) + 1
	hist := make([]float64, nBins)
	for _, v := range ppi {
		b := int((v - lo) / binWidth)
		if b >= nBins {
			b = nBins - 1
		}
		hist[b]++
	}

	mode, modeCount := 0, hist[0]
	for i, h := range hist {
		if h > modeCount {
			mode, modeCount = i, h
		}
	}
	triangularIndex = float64(len(ppi)) / modeCount

	nBest := bestTriangleEdge(hist, mode, modeCount, true)
	mBest := bestTriangleEdge(hist, mode, modeCount, false)

	leftEdge := lo + float64(nBest)*binWidth
	rightEdge := lo + float64(mBest+1)*binWidth
	return rightEdge - leftEdge, triangularIndex
}

// bestTriangleEdge scans one side of the mode for the base endpoint bin.
// With no bins on that side it returns the modal bin itself.
func bestTriangleEdge(hist []float64, mode int, modeCount float64, left bool) int {
	if left {
		if mode == 0 {
			return mode
		}
		best, bestErr := mode, math.Inf(1)
		for n := 0; n < mode; n++ {
			err := 0.0
			// Mass before the triangle counts fully as error.
			for i := 0; i < n; i++ {
				err += hist[i] * hist[i]
			}
			// Ramp from 0 at bin n to modeCount at the mode.
			span := float64(mode - n)
			for i := n; i <= mode; i++ {
				ideal := modeCount * float64(i-n) / span
				d := hist[i] - ideal
				err += d * d
			}
			if err < bestErr {
				best, bestErr = n, err
			}
		}
		return best
	}

	last := len(hist) - 1
	if mode == last {
		return mode
	}
	best, bestErr := mode, math.Inf(1)
	for m := mode + 1; m <= last; m++ {
		err := 0.0
		for i := m + 1; i <= last; i++ {
			err += hist[i] * hist[i]
		}
		span := float64(m - mode)
		for i := mode; i <= m; i++ {
			ideal := modeCount * float64(m-i) / span
			d := hist[i] - ideal
			err += d * d
		}
		if err < bestErr {
			best, bestErr = m, err
		}
	}
	return best
}
