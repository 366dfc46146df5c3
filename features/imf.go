package features

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"
)

// IMF extracts the first intrinsic mode function by empirical mode
// decomposition and derives Hilbert instantaneous amplitude/phase/frequency
// statistics, event statistics, band-energy ratios, and amplitude-envelope
// shape features from it.
type IMF struct{}

func (IMF) Name() string { return "imf" }

var imfColumns = []string{
	"imf_amp_mean", "imf_amp_sd", "imf_amp_min", "imf_amp_max", "imf_amp_var",
	"imf_freq_mean", "imf_freq_sd", "imf_freq_min", "imf_freq_max", "imf_freq_var",
	"imf_phase_mean", "imf_phase_sd", "imf_phase_min", "imf_phase_max", "imf_phase_var",
	"imf_max_amp_mean", "imf_max_amp_sd", "imf_max_ivl_mean", "imf_max_ivl_sd", "imf_max_prop",
	"imf_trans_amp_mean", "imf_trans_amp_sd", "imf_trans_ivl_mean", "imf_trans_ivl_sd", "imf_trans_prop",
	"imf_lf_hf_ratio", "imf_lf_total_ratio", "imf_hf_total_ratio",
	"imf_env_energy", "imf_env_area", "imf_env_skew", "imf_env_kurt",
	"imf_env_peak_spacing", "imf_env_crossing_rate",
}

func (IMF) Columns() []string { return imfColumns }

func (IMF) Compute(c *Context) ([]float64, error) {
	if len(c.Signal) < 16 || c.FS <= 0 {
		return nanRow(len(imfColumns)), nil
	}
	imf := firstIMF(c.Signal)
	amp, phase := hilbertAmplitudePhase(imf)
	if len(amp) == 0 {
		return nanRow(len(imfColumns)), nil
	}
	freq := make([]float64, len(phase)-1)
	for i := 0; i+1 < len(phase); i++ {
		freq[i] = (phase[i+1] - phase[i]) * c.FS / (2 * math.Pi)
	}

	row := make([]float64, 0, len(imfColumns))
	row = append(row, fiveStats(amp)...)
	row = append(row, fiveStats(freq)...)
	row = append(row, fiveStats(phase)...)

	maxStats := summarizeEvents(amp, localMaxima(amp))
	row = append(row, maxStats.AmpMean, maxStats.AmpSD, maxStats.SpacingMean, maxStats.SpacingSD, maxStats.Proportion)
	transStats := summarizeEvents(amp, meanCrossingIndices(amp))
	row = append(row, transStats.AmpMean, transStats.AmpSD, transStats.SpacingMean, transStats.SpacingSD, transStats.Proportion)

	freqs, psd := welchPSD(imf, c.FS, len(imf))
	lf := bandPower(freqs, psd, classicBands[1])
	hf := bandPower(freqs, psd, classicBands[2])
	total := bandPower(freqs, psd, classicBands[3])
	row = append(row, ratioOrNaN(lf, hf), ratioOrNaN(lf, total), ratioOrNaN(hf, total))

	row = append(row, envelopeShape(amp, c.FS)...)
	return row, nil
}

func fiveStats(x []float64) []float64 {
	if len(x) == 0 {
		return nanRow(5)
	}
	sd := stat.StdDev(x, nil)
	lo, hi := x[0], x[0]
	for _, v := range x[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return []float64{stat.Mean(x, nil), sd, lo, hi, sd * sd}
}

// envelopeShape summarizes the amplitude envelope: energy, area under the
// curve, skewness, kurtosis, mean spacing between envelope peaks, and the
// mean-crossing rate.
func envelopeShape(amp []float64, fs float64) []float64 {
	if len(amp) < 3 {
		return nanRow(6)
	}
	energy := 0.0
	for _, v := range amp {
		energy += v * v
	}
	area := trapz(amp) / fs

	peaks := localMaxima(amp)
	spacing := math.NaN()
	if len(peaks) >= 2 {
		sum := 0.0
		for i := 0; i+1 < len(peaks); i++ {
			sum += float64(peaks[i+1] - peaks[i])
		}
		spacing = sum / float64(len(peaks)-1)
	}
	crossingRate := float64(meanCrossings(amp)) / float64(len(amp))

	return []float64{
		energy, area,
		stat.Skew(amp, nil), stat.ExKurtosis(amp, nil) + 3,
		spacing, crossingRate,
	}
}

// firstIMF sifts out the first intrinsic mode. Sifting stops on the usual
// standard-deviation criterion or after a fixed iteration cap. A signal
// with too few extrema is its own mode.
func firstIMF(x []float64) []float64 {
	const (
		sdStop   = 0.3
		maxSifts = 12
	)
	h := make([]float64, len(x))
	copy(h, x)

	for iter := 0; iter < maxSifts; iter++ {
		upper, lower, ok := envelopes(h)
		if !ok {
			return h
		}
		next := make([]float64, len(h))
		num, den := 0.0, 0.0
		for i := range h {
			m := (upper[i] + lower[i]) / 2
			next[i] = h[i] - m
			d := h[i] - next[i]
			num += d * d
			den += h[i] * h[i]
		}
		h = next
		if den > 0 && num/den < sdStop {
			break
		}
	}
	return h
}

// envelopes builds natural-cubic upper and lower envelopes through the
// signal extrema, pinned at both signal endpoints. Returns ok=false when
// there are not enough extrema to sift.
func envelopes(x []float64) (upper, lower []float64, ok bool) {
	maxIdx := localMaxima(x)
	minIdx := localMinima(x)
	if len(maxIdx) < 2 || len(minIdx) < 2 {
		return nil, nil, false
	}
	upper = splineThrough(x, maxIdx)
	lower = splineThrough(x, minIdx)
	if upper == nil || lower == nil {
		return nil, nil, false
	}
	return upper, lower, true
}

func localMinima(x []float64) []int {
	var out []int
	for i := 1; i+1 < len(x); i++ {
		if x[i] < x[i-1] && x[i] <= x[i+1] {
			out = append(out, i)
		}
	}
	return out
}

func splineThrough(x []float64, anchors []int) []float64 {
	xs := make([]float64, 0, len(anchors)+2)
	ys := make([]float64, 0, len(anchors)+2)
	if anchors[0] != 0 {
		xs = append(xs, 0)
		ys = append(ys, x[0])
	}
	for _, a := range anchors {
		xs = append(xs, float64(a))
		ys = append(ys, x[a])
	}
	if anchors[len(anchors)-1] != len(x)-1 {
		xs = append(xs, float64(len(x)-1))
		ys = append(ys, x[len(x)-1])
	}

	var spline interp.NaturalCubic
	if err := spline.Fit(xs, ys); err != nil {
		return nil
	}
	out := make([]float64, len(x))
	for i := range out {
		out[i] = spline.Predict(float64(i))
	}
	return out
}

// hilbertAmplitudePhase returns the instantaneous amplitude and unwrapped
// phase of the analytic signal, computed by zeroing negative FFT
// frequencies.
func hilbertAmplitudePhase(x []float64) (amp, phase []float64) {
	n := len(x)
	if n < 4 {
		return nil, nil
	}
	src := make([]complex128, n)
	for i, v := range x {
		src[i] = complex(v, 0)
	}
	fft := fourier.NewCmplxFFT(n)
	coeffs := fft.Coefficients(nil, src)

	half := n / 2
	for i := 1; i < half; i++ {
		coeffs[i] *= 2
	}
	if n%2 == 1 {
		coeffs[half] *= 2
	}
	for i := half + 1; i < n; i++ {
		coeffs[i] = 0
	}

	analytic := fft.Sequence(nil, coeffs)
	amp = make([]float64, n)
	phase = make([]float64, n)
	prev := 0.0
	offset := 0.0
	for i, z := range analytic {
		z /= complex(float64(n), 0)
		amp[i] = cmplx.Abs(z)
		p := cmplx.Phase(z)
		if i > 0 {
			d := p - prev
			if d > math.Pi {
				offset -= 2 * math.Pi
			} else if d < -math.Pi {
				offset += 2 * math.Pi
			}
		}
		prev = p
		phase[i] = p + offset
	}
	return amp, phase
}
