package features

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// nanRow returns n NaN cells, the sentinel row for an epoch where a module's
// prerequisites are missing.
func nanRow(n int) []float64 {
	row := make([]float64, n)
	for i := range row {
		row[i] = math.NaN()
	}
	return row
}

// nanMean averages the defined entries of x; NaN when none are defined.
func nanMean(x []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range x {
		if !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// nanStd is the sample standard deviation over defined entries; NaN with
// fewer than two of them.
func nanStd(x []float64) float64 {
	mean := nanMean(x)
	if math.IsNaN(mean) {
		return math.NaN()
	}
	sum, n := 0.0, 0
	for _, v := range x {
		if !math.IsNaN(v) {
			d := v - mean
			sum += d * d
			n++
		}
	}
	if n < 2 {
		return math.NaN()
	}
	return math.Sqrt(sum / float64(n-1))
}

func diff(x []float64) []float64 {
	if len(x) < 2 {
		return nil
	}
	out := make([]float64, len(x)-1)
	for i := 0; i+1 < len(x); i++ {
		out[i] = x[i+1] - x[i]
	}
	return out
}

// trapz integrates y over unit sample spacing.
func trapz(y []float64) float64 {
	if len(y) < 2 {
		return math.NaN()
	}
	sum := 0.0
	for i := 0; i+1 < len(y); i++ {
		sum += (y[i] + y[i+1]) / 2
	}
	return sum
}

func absSlice(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = math.Abs(v)
	}
	return out
}

func sortedCopy(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	sort.Float64s(out)
	return out
}

// quantile evaluates the empirical p-quantile (0..1) of x.
func quantile(p float64, x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return stat.Quantile(p, stat.Empirical, sortedCopy(x), nil)
}

// localMaxima returns indices of strict interior local maxima; plateaus
// resolve to their first sample.
func localMaxima(x []float64) []int {
	var out []int
	for i := 1; i+1 < len(x); i++ {
		if x[i] > x[i-1] && x[i] >= x[i+1] {
			out = append(out, i)
		}
	}
	return out
}

// eventStats summarizes a point-process over a series: amplitude mean/SD at
// the event indices, inter-event spacing mean/SD in samples, and the
// fraction of samples flagged as events. Empty events yield all NaN except
// the zero proportion.
type eventStats struct {
	AmpMean     float64
	AmpSD       float64
	SpacingMean float64
	SpacingSD   float64
	Proportion  float64
}

func summarizeEvents(x []float64, events []int) eventStats {
	if len(x) == 0 {
		return eventStats{AmpMean: math.NaN(), AmpSD: math.NaN(), SpacingMean: math.NaN(), SpacingSD: math.NaN(), Proportion: math.NaN()}
	}
	s := eventStats{Proportion: float64(len(events)) / float64(len(x))}
	if len(events) == 0 {
		s.AmpMean, s.AmpSD = math.NaN(), math.NaN()
		s.SpacingMean, s.SpacingSD = math.NaN(), math.NaN()
		return s
	}
	amps := make([]float64, len(events))
	for i, e := range events {
		amps[i] = x[e]
	}
	s.AmpMean = nanMean(amps)
	s.AmpSD = nanStd(amps)

	if len(events) < 2 {
		s.SpacingMean, s.SpacingSD = math.NaN(), math.NaN()
		return s
	}
	spacing := make([]float64, len(events)-1)
	for i := 0; i+1 < len(events); i++ {
		spacing[i] = float64(events[i+1] - events[i])
	}
	s.SpacingMean = nanMean(spacing)
	s.SpacingSD = nanStd(spacing)
	return s
}

// meanCrossings counts sign changes of x around its mean.
func meanCrossings(x []float64) int {
	if len(x) < 2 {
		return 0
	}
	mean := nanMean(x)
	count := 0
	prev := x[0] - mean
	for _, v := range x[1:] {
		cur := v - mean
		if (prev < 0 && cur >= 0) || (prev > 0 && cur <= 0) {
			count++
		}
		prev = cur
	}
	return count
}

// autocorrLag1 is the sample correlation between x[:-1] and x[1:].
func autocorrLag1(x []float64) float64 {
	if len(x) < 3 {
		return math.NaN()
	}
	return stat.Correlation(x[:len(x)-1], x[1:], nil)
}

// cumulativeSum integrates the mean-centered series, the shared first step
// of every fluctuation analysis.
func cumulativeSum(x []float64) []float64 {
	mean := stat.Mean(x, nil)
	out := make([]float64, len(x))
	acc := 0.0
	for i, v := range x {
		acc += v - mean
		out[i] = acc
	}
	return out
}
