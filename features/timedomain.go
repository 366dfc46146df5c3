package features

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// TimeDomain computes the statistical feature battery over either the epoch
// signal or its PPI series: central tendency, dispersion, shape, Hjorth
// parameters, Poincare descriptors, threshold counts, hypothesis-test
// p-values, and Teager-energy statistics.
type TimeDomain struct {
	Series SeriesKind
}

func (m TimeDomain) Name() string { return "td_" + m.Series.prefix() }

var timeDomainSuffixes = []string{
	"mean", "median", "trim25", "trim50",
	"std", "var", "mad", "iqr",
	"p5", "p10", "p25", "p75", "p90", "p95", "range",
	"skew", "kurt", "shape_factor",
	"hjorth_activity", "hjorth_mobility", "hjorth_complexity",
	"sd1", "sd2", "sd_ratio", "ccm",
	"sv1", "sv2",
	"nn50", "pnn50", "nn20", "pnn20",
	"signtest_p", "signtest_h",
	"normtest_p", "normtest_h",
	"acf1",
	"teager_mean",
	"teager_max_amp_mean", "teager_max_amp_sd",
	"teager_max_ivl_mean", "teager_max_ivl_sd",
	"teager_max_prop",
	"teager_trans_amp_mean", "teager_trans_amp_sd",
	"teager_trans_ivl_mean", "teager_trans_ivl_sd",
	"teager_trans_prop",
}

func (m TimeDomain) Columns() []string {
	cols := make([]string, len(timeDomainSuffixes))
	for i, s := range timeDomainSuffixes {
		cols[i] = fmt.Sprintf("td_%s_%s", m.Series.prefix(), s)
	}
	return cols
}

func (m TimeDomain) Compute(c *Context) ([]float64, error) {
	x := m.Series.pick(c)
	if len(x) < 3 {
		return nanRow(len(timeDomainSuffixes)), nil
	}

	mean := stat.Mean(x, nil)
	sd := stat.StdDev(x, nil)
	variance := sd * sd

	d1 := diff(x)
	d2 := diff(d1)

	row := make([]float64, 0, len(timeDomainSuffixes))
	row = append(row,
		mean,
		quantile(0.5, x),
		trimmedMean(x, 25),
		trimmedMean(x, 50),
		sd,
		variance,
		medianAbsDeviation(x),
		quantile(0.75, x)-quantile(0.25, x),
		quantile(0.05, x),
		quantile(0.10, x),
		quantile(0.25, x),
		quantile(0.75, x),
		quantile(0.90, x),
		quantile(0.95, x),
		seriesRange(x),
		stat.Skew(x, nil),
		stat.ExKurtosis(x, nil)+3,
		shapeFactor(x),
	)
	row = append(row, hjorth(x, d1, d2)...)
	row = append(row, poincare(x, d1)...)
	row = append(row, singularValues(x)...)
	row = append(row, thresholdCounts(d1, 50)...)
	row = append(row, thresholdCounts(d1, 20)...)
	row = append(row, signTest(x)...)
	row = append(row, jarqueBera(x)...)
	row = append(row, autocorrLag1(x))
	row = append(row, teagerFeatures(x)...)

	return row, nil
}

// trimmedMean drops pct percent of the total mass, split between both tails,
// before averaging.
func trimmedMean(x []float64, pct float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	sorted := sortedCopy(x)
	k := int(float64(len(sorted)) * pct / 200)
	trimmed := sorted[k : len(sorted)-k]
	if len(trimmed) == 0 {
		return math.NaN()
	}
	return stat.Mean(trimmed, nil)
}

func medianAbsDeviation(x []float64) float64 {
	med := quantile(0.5, x)
	dev := make([]float64, len(x))
	for i, v := range x {
		dev[i] = math.Abs(v - med)
	}
	return quantile(0.5, dev)
}

func seriesRange(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
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
	return hi - lo
}

// shapeFactor is RMS over the mean root amplitude.
func shapeFactor(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	var sq, rt float64
	for _, v := range x {
		sq += v * v
		rt += math.Sqrt(math.Abs(v))
	}
	rms := math.Sqrt(sq / float64(len(x)))
	denom := rt / float64(len(x))
	if denom == 0 {
		return math.NaN()
	}
	return rms / denom
}

// hjorth returns activity, mobility, and complexity. Complexity clamps the
// variance ratio at one so the square root never goes negative.
func hjorth(x, d1, d2 []float64) []float64 {
	activity := stat.Variance(x, nil)
	if activity <= 0 || len(d1) < 2 || len(d2) < 2 {
		return []float64{activity, math.NaN(), math.NaN()}
	}
	v1 := stat.Variance(d1, nil)
	v2 := stat.Variance(d2, nil)
	mobility := math.Sqrt(v1 / activity)
	complexity := math.NaN()
	if v1 > 0 {
		complexity = math.Sqrt(math.Max(v2/v1-1, 0))
	}
	return []float64{activity, mobility, complexity}
}

// poincare returns SD1, SD2, their ratio, and the complex correlation
// measure (mean triangle area of three consecutive Poincare points over
// pi*SD1*SD2).
func poincare(x, d1 []float64) []float64 {
	if len(x) < 4 || len(d1) < 2 {
		return []float64{math.NaN(), math.NaN(), math.NaN(), math.NaN()}
	}
	sd1 := stat.StdDev(d1, nil) / math.Sqrt2
	cov := stat.Covariance(x[:len(x)-1], x[1:], nil)
	sd2sq := 2*stat.Variance(x, nil) - cov
	sd2 := math.NaN()
	if sd2sq >= 0 {
		sd2 = math.Sqrt(sd2sq)
	}
	ratio := math.NaN()
	if sd2 > 0 {
		ratio = sd1 / sd2
	}

	ccm := math.NaN()
	if sd1 > 0 && sd2 > 0 && len(x) >= 4 {
		sum, n := 0.0, 0
		for i := 0; i+3 < len(x); i++ {
			// Triangle over Poincare points (x[i],x[i+1]), (x[i+1],x[i+2]),
			// (x[i+2],x[i+3]).
			ax, ay := x[i], x[i+1]
			bx, by := x[i+1], x[i+2]
			cx, cy := x[i+2], x[i+3]
			area := math.Abs((bx-ax)*(cy-ay)-(cx-ax)*(by-ay)) / 2
			sum += area
			n++
		}
		if n > 0 {
			ccm = (sum / float64(n)) / (math.Pi * sd1 * sd2)
		}
	}
	return []float64{sd1, sd2, ratio, ccm}
}

// singularValues returns the two singular values of the lag-2 delay
// embedding of the series.
func singularValues(x []float64) []float64 {
	if len(x) < 3 {
		return []float64{math.NaN(), math.NaN()}
	}
	rows := len(x) - 1
	data := make([]float64, 0, rows*2)
	for i := 0; i+1 < len(x); i++ {
		data = append(data, x[i], x[i+1])
	}
	var svd mat.SVD
	if ok := svd.Factorize(mat.NewDense(rows, 2, data), mat.SVDNone); !ok {
		return []float64{math.NaN(), math.NaN()}
	}
	vals := svd.Values(nil)
	if len(vals) < 2 {
		return []float64{math.NaN(), math.NaN()}
	}
	return []float64{vals[0], vals[1]}
}

// thresholdCounts counts successive differences exceeding the threshold in
// magnitude and the corresponding percentage, the NN50/NN20 family.
func thresholdCounts(d1 []float64, threshold float64) []float64 {
	if len(d1) == 0 {
		return []float64{math.NaN(), math.NaN()}
	}
	count := 0
	for _, v := range d1 {
		if math.Abs(v) > threshold {
			count++
		}
	}
	return []float64{float64(count), float64(count) / float64(len(d1)) * 100}
}

// signTest is the two-sided exact sign test that the series median is zero.
// Returns the p-value and the 5% rejection decision.
func signTest(x []float64) []float64 {
	pos, n := 0, 0
	for _, v := range x {
		if v > 0 {
			pos++
			n++
		} else if v < 0 {
			n++
		}
	}
	if n == 0 {
		return []float64{math.NaN(), math.NaN()}
	}
	b := distuv.Binomial{N: float64(n), P: 0.5}
	lower := b.CDF(float64(pos))
	upper := 1 - b.CDF(float64(pos-1))
	p := 2 * math.Min(lower, upper)
	if p > 1 {
		p = 1
	}
	h := 0.0
	if p < 0.05 {
		h = 1
	}
	return []float64{p, h}
}

// jarqueBera is the skewness/kurtosis normality test. Returns the p-value
// (chi-squared with two degrees of freedom) and the 5% rejection decision.
func jarqueBera(x []float64) []float64 {
	if len(x) < 4 {
		return []float64{math.NaN(), math.NaN()}
	}
	s := stat.Skew(x, nil)
	k := stat.ExKurtosis(x, nil)
	if math.IsNaN(s) || math.IsNaN(k) {
		return []float64{math.NaN(), math.NaN()}
	}
	jb := float64(len(x)) / 6 * (s*s + k*k/4)
	p := distuv.ChiSquared{K: 2}.Survival(jb)
	h := 0.0
	if p < 0.05 {
		h = 1
	}
	return []float64{p, h}
}

// teagerSeries is the Teager energy operator x[i]^2 - x[i+1]*x[i-1].
func teagerSeries(x []float64) []float64 {
	if len(x) < 3 {
		return nil
	}
	out := make([]float64, len(x)-2)
	for i := 1; i+1 < len(x); i++ {
		out[i-1] = x[i]*x[i] - x[i+1]*x[i-1]
	}
	return out
}

// teagerFeatures averages the Teager energy and decomposes it into
// local-maxima and transition-point (mean-crossing) event statistics.
func teagerFeatures(x []float64) []float64 {
	te := teagerSeries(x)
	if len(te) == 0 {
		return nanRow(11)
	}
	maxStats := summarizeEvents(te, localMaxima(te))
	transStats := summarizeEvents(te, meanCrossingIndices(te))
	return []float64{
		nanMean(te),
		maxStats.AmpMean, maxStats.AmpSD,
		maxStats.SpacingMean, maxStats.SpacingSD,
		maxStats.Proportion,
		transStats.AmpMean, transStats.AmpSD,
		transStats.SpacingMean, transStats.SpacingSD,
		transStats.Proportion,
	}
}

// meanCrossingIndices returns the sample indices where the series crosses
// its mean.
func meanCrossingIndices(x []float64) []int {
	if len(x) < 2 {
		return nil
	}
	mean := nanMean(x)
	var out []int
	prev := x[0] - mean
	for i := 1; i < len(x); i++ {
		cur := x[i] - mean
		if (prev < 0 && cur >= 0) || (prev > 0 && cur <= 0) {
			out = append(out, i)
		}
		prev = cur
	}
	return out
}
