// Package features implements the per-epoch feature modules of the PPG
// sleep-feature pipeline. Every module is a pure function of one epoch's
// derived data with a fixed column schema; undefined values are NaN, never
// errors, so the output schema stays stable across files.
package features

import (
	"github.com/lucasjlepore/ppg-analyzer/apg"
)

// Context carries one epoch's signal and everything derived from it. Feature
// modules only read a Context, never mutate it.
type Context struct {
	Signal []float64
	FS     float64

	Peaks  []int
	Onsets []int

	// SD is the second derivative of Signal; Marks are its valid a/b/e
	// landmark triples.
	SD    []float64
	Marks apg.Landmarks

	// PPI is the peak-to-peak interval series in milliseconds, and
	// PPITimes its inter-peak midpoint anchors in seconds.
	PPI      []float64
	PPITimes []float64

	Params Params
}

// Module computes one named group of features for an epoch. Columns must be
// constant and unique across modules; Compute returns exactly one value per
// column. A returned error marks the module failed for the whole file.
type Module interface {
	Name() string
	Columns() []string
	Compute(c *Context) ([]float64, error)
}

// Params are the numeric knobs shared by the feature modules.
type Params struct {
	// Entropy embedding dimension and tolerance factor (times epoch SD).
	EntropyDim     int     `yaml:"entropy_dim"`
	EntropyRFactor float64 `yaml:"entropy_r_factor"`

	// Recurrence threshold factor (times epoch SD) and the minimum
	// diagonal run length counted as deterministic.
	RecurrenceEpsFactor float64 `yaml:"recurrence_eps_factor"`
	RecurrenceLMin      int     `yaml:"recurrence_l_min"`

	// Uniform grid rate for PPI spectral estimation, in Hz.
	ResampleHz float64 `yaml:"resample_hz"`

	// TINN histogram bin width in milliseconds.
	TINNBinWidthMS float64 `yaml:"tinn_bin_width_ms"`

	// Discrete wavelet decomposition depth.
	WaveletLevels int `yaml:"wavelet_levels"`

	// DFA segment/window sizes in samples.
	DFAProgressiveSegment int `yaml:"dfa_progressive_segment"`
	DFAWindow             int `yaml:"dfa_window"`
}

// DefaultParams returns the standard knob values for 30 s epochs.
func DefaultParams() Params {
	return Params{
		EntropyDim:            2,
		EntropyRFactor:        0.15,
		RecurrenceEpsFactor:   0.1,
		RecurrenceLMin:        2,
		ResampleHz:            4,
		TINNBinWidthMS:        1000.0 / 128.0,
		WaveletLevels:         5,
		DFAProgressiveSegment: 512,
		DFAWindow:             1024,
	}
}

// DefaultModules returns every feature module in stable aggregation order.
func DefaultModules() []Module {
	return []Module{
		Geometric{},
		APG{},
		TimeDomain{Series: SeriesSignal},
		TimeDomain{Series: SeriesPPI},
		TINN{},
		FrequencyDomain{Series: SeriesSignal},
		FrequencyDomain{Series: SeriesPPI},
		Wavelet{},
		IMF{},
		Entropy{Series: SeriesSignal},
		Entropy{Series: SeriesPPI},
		Recurrence{},
		DFA{},
		Visibility{},
	}
}

// SeriesKind selects which per-epoch series a dual-domain module runs on.
type SeriesKind int

const (
	SeriesSignal SeriesKind = iota
	SeriesPPI
)

func (k SeriesKind) prefix() string {
	if k == SeriesPPI {
		return "ppi"
	}
	return "sig"
}

func (k SeriesKind) pick(c *Context) []float64 {
	if k == SeriesPPI {
		return c.PPI
	}
	return c.Signal
}
