package pipeline

import (
	"fmt"
	"os"

	"github.com/lucasjlepore/ppg-analyzer/features"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Options configures one ppg_extract run over a single input file.
type Options struct {
	// InPath is the input file; .edf files are read as EDF recordings,
	// anything else as a CSV epoch matrix.
	InPath string
	OutDir string

	// Format selects the feature-table encoding, parquet or csv.
	Format string

	// FS is the sampling rate in Hz. Required for CSV input; EDF input
	// carries its own rate and ignores this.
	FS float64

	// Channel names the EDF signal to extract. EDF input only.
	Channel string
	// EpochSeconds is the EDF segmentation length. Defaults to 30.
	EpochSeconds int

	Params Params

	// Logger receives per-failure structured records. Nil means no logging.
	Logger *zap.Logger
}

// Params are the run-level knobs, loadable from YAML.
type Params struct {
	Features features.Params `yaml:"features"`

	// Workers sizes the epoch worker pool. Values below one fall back to
	// a single worker.
	Workers int `yaml:"workers"`

	// EpochTimeoutMS bounds one epoch's feature computation. The deadline
	// is checked between modules; zero disables it.
	EpochTimeoutMS int `yaml:"epoch_timeout_ms"`

	// RailingGap is the minimum sample span of any three consecutive
	// peaks.
	RailingGap int `yaml:"railing_gap"`

	// MaxScale caps the beat detector's scale search; zero means
	// unbounded.
	MaxScale int `yaml:"max_scale"`

	Preprocess PreprocessParams `yaml:"preprocess"`
}

// PreprocessParams controls the optional per-epoch conditioning stage.
type PreprocessParams struct {
	Enabled bool `yaml:"enabled"`

	// Bandpass corner frequencies in Hz. Zero on either side skips the
	// corresponding filter.
	LowHz  float64 `yaml:"low_hz"`
	HighHz float64 `yaml:"high_hz"`

	// MAWindow is the width of the centered moving average applied after
	// the bandpass. Values below 2 skip the smoothing pass.
	MAWindow int `yaml:"ma_window"`

	// SGWindow and SGOrder apply a Savitzky-Golay smoothing pass when
	// SGWindow is positive. The window must be odd and wider than the
	// polynomial order.
	SGWindow int `yaml:"sg_window"`
	SGOrder  int `yaml:"sg_order"`

	// Normalize selects the per-epoch scaling applied last: "none" (or
	// empty), "zscore", or "minmax".
	Normalize string `yaml:"normalize"`
}

// DefaultParams returns the reference extraction settings.
func DefaultParams() Params {
	return Params{
		Features:   features.DefaultParams(),
		Workers:    4,
		RailingGap: 20,
		Preprocess: PreprocessParams{
			Enabled:  false,
			LowHz:    0.5,
			HighHz:   8,
			MAWindow: 10,
		},
	}
}

// LoadParams reads a YAML parameter file over the defaults.
func LoadParams(path string) (Params, error) {
	p := DefaultParams()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read params: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse params: %w", err)
	}
	return p, nil
}

// Result reports what one run produced.
type Result struct {
	RunID          string   `json:"run_id"`
	OutputDir      string   `json:"output_dir"`
	TablePath      string   `json:"table_path"`
	FailureLogPath string   `json:"failure_log_path"`
	Epochs         int      `json:"epochs"`
	ValidEpochs    int      `json:"valid_epochs"`
	Columns        []string `json:"columns"`
	FailedModules  []string `json:"failed_modules,omitempty"`
}

// Failure is one recorded fault, scoped to an epoch, a module, or a whole
// module-for-file combination. Epoch is -1 when the scope has no epoch.
type Failure struct {
	Scope   string `json:"scope"` // epoch|module
	Epoch   int    `json:"epoch"`
	Module  string `json:"module,omitempty"`
	Message string `json:"message"`
}

// FailureLog is the JSON artifact written next to the feature table.
type FailureLog struct {
	RunID      string    `json:"run_id"`
	File       string    `json:"file"`
	CreatedUTC string    `json:"created_utc"`
	Failures   []Failure `json:"failures"`
}

// FeatureTable is the aggregated per-file output: the label column first,
// then every surviving module's columns in registration order. Rows are
// epochs in index order; features of invalid epochs are NaN.
type FeatureTable struct {
	Columns []string
	Rows    [][]float64
}
