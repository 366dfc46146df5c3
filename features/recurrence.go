package features

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Recurrence computes the recurrence rate and determinism of the epoch
// signal. The recurrence matrix entry (i,j) is 1 iff |x[i]-x[j]| <= eps with
// eps = RecurrenceEpsFactor * SD. The matrix is never materialized: every
// diagonal offset from -(N-1) to N-1, including the main diagonal, is
// scanned for runs on the fly, which keeps the O(N^2) pass allocation-free.
type Recurrence struct{}

func (Recurrence) Name() string { return "rqa" }

var recurrenceColumns = []string{"rqa_rr", "rqa_det"}

func (Recurrence) Columns() []string { return recurrenceColumns }

func (Recurrence) Compute(c *Context) ([]float64, error) {
	factor := c.Params.RecurrenceEpsFactor
	if factor <= 0 {
		factor = DefaultParams().RecurrenceEpsFactor
	}
	lMin := c.Params.RecurrenceLMin
	if lMin <= 0 {
		lMin = DefaultParams().RecurrenceLMin
	}
	x := c.Signal
	if len(x) < 2 {
		return []float64{math.NaN(), math.NaN()}, nil
	}
	eps := factor * stat.StdDev(x, nil)
	rr, det := recurrenceRates(x, eps, lMin)
	return []float64{rr, det}, nil
}

// recurrenceRates returns RR (fraction of recurrent matrix entries) and DET
// (fraction of recurrent points on diagonal runs of length >= lMin). DET is
// zero when no diagonal points exist.
func recurrenceRates(x []float64, eps float64, lMin int) (rr, det float64) {
	n := len(x)
	var recurrent, inLongRuns float64

	// Off-diagonal offsets contribute symmetrically; scan d >= 0 and weight
	// d > 0 twice.
	for d := 0; d < n; d++ {
		weight := 2.0
		if d == 0 {
			weight = 1
		}
		run := 0
		for i := 0; i+d < n; i++ {
			if math.Abs(x[i]-x[i+d]) <= eps {
				run++
				continue
			}
			recurrent += weight * float64(run)
			if run >= lMin {
				inLongRuns += weight * float64(run)
			}
			run = 0
		}
		recurrent += weight * float64(run)
		if run >= lMin {
			inLongRuns += weight * float64(run)
		}
	}

	rr = recurrent / float64(n) / float64(n)
	if recurrent == 0 {
		return rr, 0
	}
	return rr, inLongRuns / recurrent
}
