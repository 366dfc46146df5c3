package features

import (
	"math"
)

// Geometric computes per-cycle timing, amplitude, and area features from the
// raw pulse waveform, reduced to epoch-level mean and standard deviation.
// Crossing searches can fail per cycle; reductions skip those cycles.
type Geometric struct{}

func (Geometric) Name() string { return "geo" }

var geometricColumns = []string{
	"geo_sys_time_mean", "geo_sys_time_sd",
	"geo_dia_time_mean", "geo_dia_time_sd",
	"geo_cycle_time_mean", "geo_cycle_time_sd",
	"geo_sys_amp_mean", "geo_sys_amp_sd",
	"geo_sys_area_mean", "geo_sys_area_sd",
	"geo_dia_area_mean", "geo_dia_area_sd",
	"geo_cycle_area_mean", "geo_cycle_area_sd",
	"geo_sys_area_abs_mean", "geo_sys_area_abs_sd",
	"geo_dia_area_abs_mean", "geo_dia_area_abs_sd",
	"geo_cycle_area_abs_mean", "geo_cycle_area_abs_sd",
	"geo_half_width_mean", "geo_half_width_sd",
	"geo_width10_mean", "geo_width10_sd",
	"geo_pwv_spread",
	"geo_ans_state_mean", "geo_ans_state_sd",
}

func (Geometric) Columns() []string { return geometricColumns }

// cycle is one complete cardiac cycle: onset, its systolic peak, and the
// next cycle's onset.
type cycle struct {
	onset, peak, next int
}

func completeCycles(c *Context) []cycle {
	n := len(c.Peaks)
	if len(c.Onsets) < n {
		n = len(c.Onsets)
	}
	var out []cycle
	for i := 0; i+1 < n; i++ {
		o, p, nx := c.Onsets[i], c.Peaks[i], c.Onsets[i+1]
		if o < p && p < nx && nx <= len(c.Signal) {
			out = append(out, cycle{onset: o, peak: p, next: nx})
		}
	}
	return out
}

func (Geometric) Compute(c *Context) ([]float64, error) {
	cycles := completeCycles(c)
	if len(cycles) == 0 || c.FS <= 0 {
		return nanRow(len(geometricColumns)), nil
	}
	x := c.Signal
	fs := c.FS

	var (
		sysTime, diaTime, cycTime    []float64
		sysAmp                       []float64
		sysArea, diaArea, cycArea    []float64
		sysAreaA, diaAreaA, cycAreaA []float64
		halfWidth, width10           []float64
	)
	for _, cy := range cycles {
		sysTime = append(sysTime, float64(cy.peak-cy.onset)/fs)
		diaTime = append(diaTime, float64(cy.next-cy.peak)/fs)
		cycTime = append(cycTime, float64(cy.next-cy.onset)/fs)

		amp := x[cy.peak] - x[cy.onset]
		sysAmp = append(sysAmp, amp)

		sysArea = append(sysArea, trapz(x[cy.onset:cy.peak+1])/fs)
		diaArea = append(diaArea, trapz(x[cy.peak:cy.next])/fs)
		cycArea = append(cycArea, trapz(x[cy.onset:cy.next])/fs)
		sysAreaA = append(sysAreaA, trapz(absSlice(x[cy.onset:cy.peak+1]))/fs)
		diaAreaA = append(diaAreaA, trapz(absSlice(x[cy.peak:cy.next]))/fs)
		cycAreaA = append(cycAreaA, trapz(absSlice(x[cy.onset:cy.next]))/fs)

		halfWidth = append(halfWidth, crossingWidth(x, cy, x[cy.onset]+0.5*amp, fs))
		width10 = append(width10, crossingWidth(x, cy, x[cy.onset]+0.1*amp, fs))
	}

	// Pulse-wave-velocity surrogate: spread of systolic amplitudes across
	// the epoch, normalized by their mean.
	pwv := math.NaN()
	if m := nanMean(sysAmp); m != 0 && !math.IsNaN(m) {
		pwv = nanStd(sysAmp) / math.Abs(m)
	}

	ans := ansState(cycTime, sysAmp)

	row := []float64{
		nanMean(sysTime), nanStd(sysTime),
		nanMean(diaTime), nanStd(diaTime),
		nanMean(cycTime), nanStd(cycTime),
		nanMean(sysAmp), nanStd(sysAmp),
		nanMean(sysArea), nanStd(sysArea),
		nanMean(diaArea), nanStd(diaArea),
		nanMean(cycArea), nanStd(cycArea),
		nanMean(sysAreaA), nanStd(sysAreaA),
		nanMean(diaAreaA), nanStd(diaAreaA),
		nanMean(cycAreaA), nanStd(cycAreaA),
		nanMean(halfWidth), nanStd(halfWidth),
		nanMean(width10), nanStd(width10),
		pwv,
		nanMean(ans), nanStd(ans),
	}
	return row, nil
}

// crossingWidth finds the time between the first rising-side sample at or
// above the target amplitude (searched onset to peak) and the first
// falling-side sample at or below it (searched peak toward the next onset).
// NaN when either crossing is missing.
func crossingWidth(x []float64, cy cycle, target, fs float64) float64 {
	rise := -1
	for i := cy.onset; i <= cy.peak; i++ {
		if x[i] >= target {
			rise = i
			break
		}
	}
	if rise < 0 {
		return math.NaN()
	}
	fall := -1
	for i := cy.peak; i < cy.next; i++ {
		if x[i] <= target {
			fall = i
			break
		}
	}
	if fall < 0 {
		return math.NaN()
	}
	return float64(fall-rise) / fs
}

// ansState is the autonomic-state index: per cycle, the product of the
// cycle duration and systolic amplitude, each normalized by its epoch mean.
func ansState(cycTime, sysAmp []float64) []float64 {
	mt, ma := nanMean(cycTime), nanMean(sysAmp)
	if mt == 0 || ma == 0 || math.IsNaN(mt) || math.IsNaN(ma) {
		return nil
	}
	out := make([]float64, len(cycTime))
	for i := range cycTime {
		out[i] = (cycTime[i] / mt) * (sysAmp[i] / ma)
	}
	return out
}
