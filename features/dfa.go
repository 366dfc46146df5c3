package features

import (
	"math"

	"github.com/SeanJxie/polygo"
	"github.com/openacid/slimarray/polyfit"
	"gonum.org/v1/gonum/stat"
)

// DFA computes the detrended-fluctuation-analysis family: overall scaling
// exponents for the signal and the PPI series, the short/long split on the
// PPI series, progressive and windowed variants on the signal, and the
// detrended-moving-average estimate for both series.
type DFA struct{}

func (DFA) Name() string { return "dfa" }

var dfaColumns = []string{
	"dfa_sig_alpha", "dfa_ppi_alpha",
	"dfa_ppi_short", "dfa_ppi_long",
	"dfa_sig_progressive", "dfa_sig_windowed",
	"dfa_sig_dma", "dfa_ppi_dma",
}

func (DFA) Columns() []string { return dfaColumns }

var dmaScales = []int{4, 8, 16, 32, 64}

func (DFA) Compute(c *Context) ([]float64, error) {
	p := c.Params
	segLen := p.DFAProgressiveSegment
	if segLen <= 0 {
		segLen = DefaultParams().DFAProgressiveSegment
	}
	window := p.DFAWindow
	if window <= 0 {
		window = DefaultParams().DFAWindow
	}

	row := []float64{
		overallDFA(c.Signal),
		overallDFA(c.PPI),
		generalDFA(c.PPI, []int{3, 4}),
		generalDFA(c.PPI, intRange(6, min(30, len(c.PPI)))),
		progressiveDFA(c.Signal, segLen),
		windowedDFA(c.Signal, window),
		dma(c.Signal, dmaScales),
		dma(c.PPI, dmaScales),
	}
	return row, nil
}

// generalDFA integrates the mean-centered series, removes a per-window
// linear trend at every scale, and fits log(scale) against log(RMS
// residual). NaN without at least two usable scales.
func generalDFA(series []float64, scales []int) float64 {
	if len(series) < 8 {
		return math.NaN()
	}
	y := cumulativeSum(series)

	var logS, logF []float64
	for _, s := range scales {
		if s < 2 || s > len(y) {
			continue
		}
		f := scaleFluctuation(y, s)
		if math.IsNaN(f) || f <= 0 {
			continue
		}
		logS = append(logS, math.Log(float64(s)))
		logF = append(logF, math.Log(f))
	}
	if len(logS) < 2 {
		return math.NaN()
	}
	_, slope := stat.LinearRegression(logS, logF, nil, false)
	return slope
}

// scaleFluctuation is the RMS residual after linear detrending over
// non-overlapping windows of the given scale.
func scaleFluctuation(y []float64, scale int) float64 {
	windows := len(y) / scale
	if windows == 0 {
		return math.NaN()
	}
	xs := make([]float64, scale)
	for i := range xs {
		xs[i] = float64(i)
	}
	total := 0.0
	for w := 0; w < windows; w++ {
		seg := y[w*scale : (w+1)*scale]
		fit := polyfit.NewFit(xs, seg, 1)
		trend, err := polygo.NewRealPolynomial(fit.Solve())
		if err != nil {
			return math.NaN()
		}
		for i, v := range seg {
			d := v - trend.At(xs[i])
			total += d * d
		}
	}
	return math.Sqrt(total / float64(windows*scale))
}

// overallDFA runs generalDFA with up to 30 log-spaced scales between 4 and
// a quarter of the series length.
func overallDFA(series []float64) float64 {
	maxScale := len(series) / 4
	if maxScale < 4 {
		return math.NaN()
	}
	return generalDFA(series, logSpacedScales(4, maxScale, 30))
}

// progressiveDFA splits the series into non-overlapping fixed-length
// segments, analyzes each independently, and averages the exponents. NaN
// when not even one full segment fits.
func progressiveDFA(series []float64, segLen int) float64 {
	if segLen <= 0 || len(series) < segLen {
		return math.NaN()
	}
	var exps []float64
	for start := 0; start+segLen <= len(series); start += segLen {
		a := overallDFA(series[start : start+segLen])
		if !math.IsNaN(a) {
			exps = append(exps, a)
		}
	}
	return nanMean(exps)
}

// windowedDFA slides an overlapping window (half-window step) and averages
// the per-window exponents at scales 4..window/2.
func windowedDFA(series []float64, window int) float64 {
	if window <= 0 || len(series) < window {
		return math.NaN()
	}
	scales := logSpacedScales(4, window/2, 30)
	step := window / 2
	var exps []float64
	for start := 0; start+window <= len(series); start += step {
		a := generalDFA(series[start:start+window], scales)
		if !math.IsNaN(a) {
			exps = append(exps, a)
		}
	}
	return nanMean(exps)
}

// dma detrends the integrated series with a trailing moving average at each
// scale and averages the per-scale RMS residuals. A different detrending
// kernel from the polynomial fit of classic DFA.
func dma(series []float64, scales []int) float64 {
	if len(series) < 4 {
		return math.NaN()
	}
	y := cumulativeSum(series)
	var rmss []float64
	for _, s := range scales {
		if s < 2 || s > len(y) {
			continue
		}
		sum := 0.0
		count := 0
		acc := 0.0
		for i := range y {
			acc += y[i]
			if i >= s {
				acc -= y[i-s]
			}
			if i >= s-1 {
				ma := acc / float64(s)
				d := y[i] - ma
				sum += d * d
				count++
			}
		}
		if count > 0 {
			rmss = append(rmss, math.Sqrt(sum/float64(count)))
		}
	}
	return nanMean(rmss)
}

// logSpacedScales returns up to count distinct integer scales spread
// logarithmically over [lo, hi].
func logSpacedScales(lo, hi, count int) []int {
	if lo < 2 {
		lo = 2
	}
	if hi < lo {
		return nil
	}
	if count < 2 {
		count = 2
	}
	logLo, logHi := math.Log(float64(lo)), math.Log(float64(hi))
	var out []int
	last := 0
	for i := 0; i < count; i++ {
		f := logLo + (logHi-logLo)*float64(i)/float64(count-1)
		s := int(math.Round(math.Exp(f)))
		if s > last {
			out = append(out, s)
			last = s
		}
	}
	return out
}

func intRange(lo, hi int) []int {
	if hi < lo {
		return nil
	}
	out := make([]int, 0, hi-lo+1)
	for s := lo; s <= hi; s++ {
		out = append(out, s)
	}
	return out
}
