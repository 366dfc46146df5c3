package features

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/interp"
)

// band is one literature-defined frequency band in Hz.
type band struct {
	name   string
	lo, hi float64
}

// Two competing band definitions are kept as separately named groups rather
// than merged; downstream significance testing treats them as distinct
// feature families.
var (
	classicBands = []band{
		{"vlf", 0.0033, 0.04},
		{"lf", 0.04, 0.15},
		{"hf", 0.15, 0.40},
		{"total", 0.0033, 0.40},
	}
	extendedBands = []band{
		{"vlf", 0.005, 0.045},
		{"lf", 0.045, 0.15},
		{"mf", 0.10, 0.15},
		{"hf", 0.15, 0.45},
		{"total", 0.005, 0.45},
	}
)

// FrequencyDomain estimates Welch and FFT spectra for the signal or the PPI
// series and integrates band powers, log powers, peak frequencies, and band
// ratios. The PPI series is linearly interpolated onto a uniform grid
// anchored at inter-peak midpoints first, because it is irregularly sampled
// in time.
type FrequencyDomain struct {
	Series SeriesKind
}

func (m FrequencyDomain) Name() string { return "fd_" + m.Series.prefix() }

func (m FrequencyDomain) Columns() []string {
	var cols []string
	p := m.Series.prefix()
	for _, b := range classicBands {
		cols = append(cols,
			fmt.Sprintf("fd_%s_classic_%s_power", p, b.name),
			fmt.Sprintf("fd_%s_classic_%s_logpower", p, b.name),
			fmt.Sprintf("fd_%s_classic_%s_peakfreq", p, b.name),
		)
	}
	for _, b := range extendedBands {
		cols = append(cols,
			fmt.Sprintf("fd_%s_ext_%s_power", p, b.name),
			fmt.Sprintf("fd_%s_ext_%s_logpower", p, b.name),
			fmt.Sprintf("fd_%s_ext_%s_peakfreq", p, b.name),
		)
	}
	cols = append(cols,
		"fd_"+p+"_lf_hf_ratio",
		"fd_"+p+"_mf_hf_ratio",
		"fd_"+p+"_lf_mf_ratio",
		"fd_"+p+"_lf_total_ratio",
		"fd_"+p+"_hf_total_ratio",
		"fd_"+p+"_lf_norm",
	)
	for _, b := range classicBands {
		cols = append(cols, fmt.Sprintf("fd_%s_fft_%s_energy", p, b.name))
	}
	return cols
}

func (m FrequencyDomain) Compute(c *Context) ([]float64, error) {
	var x []float64
	var fs float64
	switch m.Series {
	case SeriesPPI:
		rate := c.Params.ResampleHz
		if rate <= 0 {
			rate = DefaultParams().ResampleHz
		}
		x = resampleUniform(c.PPI, c.PPITimes, rate)
		fs = rate
	default:
		x = c.Signal
		fs = c.FS
	}
	if len(x) < 8 || fs <= 0 {
		return nanRow(len(m.Columns())), nil
	}

	// The waveform series needs full-epoch resolution: at waveform rates a
	// 512-sample segment spaces bins too far apart to land inside the
	// sub-hertz bands. The 4 Hz PPI grid resolves them at 512 already.
	segLen := len(x)
	if m.Series == SeriesPPI {
		segLen = 512
	}
	freqs, psd := welchPSD(x, fs, segLen)
	if len(freqs) == 0 {
		return nanRow(len(m.Columns())), nil
	}

	row := make([]float64, 0, len(m.Columns()))
	powers := map[string]float64{}
	for _, b := range classicBands {
		p := bandPower(freqs, psd, b)
		row = append(row, p, logOrNaN(p), peakFrequency(freqs, psd, b))
		powers["classic_"+b.name] = p
	}
	for _, b := range extendedBands {
		p := bandPower(freqs, psd, b)
		row = append(row, p, logOrNaN(p), peakFrequency(freqs, psd, b))
		powers["ext_"+b.name] = p
	}

	lf := powers["classic_lf"]
	hf := powers["classic_hf"]
	total := powers["classic_total"]
	mf := powers["ext_mf"]
	row = append(row,
		ratioOrNaN(lf, hf),
		ratioOrNaN(mf, hf),
		ratioOrNaN(lf, mf),
		ratioOrNaN(lf, total),
		ratioOrNaN(hf, total),
		ratioOrNaN(lf, lf+hf),
	)

	fftFreqs, fftMag := magnitudeSpectrum(x, fs)
	for _, b := range classicBands {
		row = append(row, bandPower(fftFreqs, fftMag, b))
	}
	return row, nil
}

// resampleUniform linearly interpolates the (t, v) series onto a uniform
// grid at the given rate. Needs at least two anchor points.
func resampleUniform(v, t []float64, rate float64) []float64 {
	if len(v) < 2 || len(t) != len(v) || rate <= 0 {
		return nil
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(t, v); err != nil {
		return nil
	}
	step := 1 / rate
	n := int((t[len(t)-1]-t[0])/step) + 1
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, pl.Predict(t[0]+float64(i)*step))
	}
	return out
}

// welchPSD estimates the one-sided power spectral density with Hamming
// windows at 50% overlap. Segment length shrinks to the series length when
// the series is short.
func welchPSD(x []float64, fs float64, segLen int) (freqs, psd []float64) {
	if segLen > len(x) {
		segLen = len(x)
	}
	if segLen%2 == 1 {
		segLen--
	}
	if segLen < 8 || fs <= 0 {
		return nil, nil
	}
	step := segLen / 2

	window := make([]float64, segLen)
	u := 0.0
	for i := range window {
		window[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(segLen-1))
		u += window[i] * window[i]
	}

	fft := fourier.NewFFT(segLen)
	nBins := segLen/2 + 1
	psd = make([]float64, nBins)
	coeffs := make([]complex128, nBins)
	seg := make([]float64, segLen)

	segments := 0
	for start := 0; start+segLen <= len(x); start += step {
		mean := 0.0
		for _, v := range x[start : start+segLen] {
			mean += v
		}
		mean /= float64(segLen)
		for i := 0; i < segLen; i++ {
			seg[i] = (x[start+i] - mean) * window[i]
		}
		fft.Coefficients(coeffs, seg)
		for j := 0; j < nBins; j++ {
			p := cmplx.Abs(coeffs[j])
			p = p * p / (fs * u)
			if j > 0 && j < nBins-1 {
				p *= 2
			}
			psd[j] += p
		}
		segments++
	}
	if segments == 0 {
		return nil, nil
	}

	freqs = make([]float64, nBins)
	for j := 0; j < nBins; j++ {
		freqs[j] = fft.Freq(j) * fs
		psd[j] /= float64(segments)
	}
	return freqs, psd
}

// magnitudeSpectrum is the one-sided squared FFT magnitude of the whole
// series, used for band energy integration.
func magnitudeSpectrum(x []float64, fs float64) (freqs, mag []float64) {
	n := len(x)
	if n%2 == 1 {
		n--
	}
	if n < 8 {
		return nil, nil
	}
	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, x[:n])
	freqs = make([]float64, len(coeffs))
	mag = make([]float64, len(coeffs))
	for j, c := range coeffs {
		freqs[j] = fft.Freq(j) * fs
		a := cmplx.Abs(c)
		mag[j] = a * a / float64(n)
	}
	return freqs, mag
}

// bandPower integrates the spectrum over [b.lo, b.hi] with the trapezoid
// rule.
func bandPower(freqs, spec []float64, b band) float64 {
	var fsBand, sBand []float64
	for i, f := range freqs {
		if f >= b.lo && f <= b.hi {
			fsBand = append(fsBand, f)
			sBand = append(sBand, spec[i])
		}
	}
	if len(fsBand) < 2 {
		return math.NaN()
	}
	sum := 0.0
	for i := 0; i+1 < len(fsBand); i++ {
		sum += (sBand[i] + sBand[i+1]) / 2 * (fsBand[i+1] - fsBand[i])
	}
	return sum
}

// peakFrequency is the frequency of the largest spectral value in the band.
func peakFrequency(freqs, spec []float64, b band) float64 {
	best, bestF := math.Inf(-1), math.NaN()
	for i, f := range freqs {
		if f >= b.lo && f <= b.hi && spec[i] > best {
			best, bestF = spec[i], f
		}
	}
	return bestF
}

func logOrNaN(v float64) float64 {
	if v <= 0 || math.IsNaN(v) {
		return math.NaN()
	}
	return math.Log(v)
}

func ratioOrNaN(num, den float64) float64 {
	if den == 0 || math.IsNaN(num) || math.IsNaN(den) {
		return math.NaN()
	}
	return num / den
}
