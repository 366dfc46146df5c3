// Package pipeline orchestrates per-file feature extraction: epoch loading,
// beat detection, artifact filtering, the feature modules, aggregation into a
// columnar table, and the failure log.
package pipeline

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lucasjlepore/ppg-analyzer/apg"
	"github.com/lucasjlepore/ppg-analyzer/beat"
	"github.com/lucasjlepore/ppg-analyzer/epoch"
	"github.com/lucasjlepore/ppg-analyzer/features"
	"github.com/lucasjlepore/ppg-analyzer/preprocess"
	"go.uber.org/zap"
)

// epochState carries one epoch through the stages of a run.
type epochState struct {
	label  int
	signal []float64

	peaks  []int
	onsets []int

	valid    bool
	epochErr error

	values  map[string][]float64
	modErrs map[string]error
}

// Run executes the full extraction for one input file and writes the feature
// table plus the JSON failure log.
func Run(opts Options) (*Result, error) {
	if strings.TrimSpace(opts.InPath) == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "parquet"
	}
	if format != "parquet" && format != "csv" {
		return nil, fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	params := opts.Params
	if params.RailingGap <= 0 {
		params.RailingGap = beat.DefaultRailingGap
	}
	runID := uuid.NewString()

	epochs, fs, err := loadInput(opts)
	if err != nil {
		return nil, fmt.Errorf("load input: %w", err)
	}
	if len(epochs) == 0 {
		return nil, fmt.Errorf("input has no epochs")
	}
	logger.Info("run started",
		zap.String("run_id", runID),
		zap.String("file", opts.InPath),
		zap.Int("epochs", len(epochs)),
		zap.Float64("fs", fs))

	states := make([]*epochState, len(epochs))
	for i, e := range epochs {
		states[i] = &epochState{label: e.Label, signal: e.Signal}
	}

	pool := NewPool(params.Workers)
	modules := features.DefaultModules()

	var failures []Failure

	// Stage 1: condition the signal and detect beats.
	detector := beat.MSPTD{MaxScale: params.MaxScale}
	detectErrs := pool.Map(len(states), func(i int) error {
		s := states[i]
		sig, err := conditionSignal(s.signal, fs, params.Preprocess)
		if err != nil {
			s.epochErr = err
			return nil
		}
		s.signal = sig
		peaks, onsets, err := detector.Detect(s.signal, fs)
		if err != nil {
			s.epochErr = err
			return nil
		}
		s.peaks, s.onsets = peaks, onsets
		return nil
	})
	for i, err := range detectErrs {
		if err != nil && states[i].epochErr == nil {
			states[i].epochErr = err
		}
	}

	// Stage 2: drop epochs whose peak sets show the railing artifact.
	peaksPerEpoch := make(map[int][]int, len(states))
	for i, s := range states {
		if s.epochErr == nil {
			peaksPerEpoch[i] = s.peaks
		}
	}
	validByEpoch, removed := beat.FilterRailing(peaksPerEpoch, params.RailingGap)
	for _, i := range removed {
		states[i].epochErr = fmt.Errorf("railing artifact (gap < %d samples)", params.RailingGap)
	}
	for i, s := range states {
		s.valid = s.epochErr == nil && validByEpoch[i]
	}

	// Stage 3: landmarks, intervals, and every feature module per epoch.
	timeout := time.Duration(params.EpochTimeoutMS) * time.Millisecond
	poolErrs := pool.Map(len(states), func(i int) error {
		s := states[i]
		if !s.valid {
			return nil
		}
		computeEpoch(s, fs, modules, params.Features, timeout)
		return nil
	})
	for i, err := range poolErrs {
		if err != nil {
			states[i].valid = false
			states[i].epochErr = err
		}
	}

	// A module error on any epoch fails that module for the whole file.
	failedSet := make(map[string]error)
	for i, s := range states {
		if s.epochErr != nil {
			failures = append(failures, Failure{
				Scope:   "epoch",
				Epoch:   i,
				Message: s.epochErr.Error(),
			})
			logger.Warn("epoch failed",
				zap.String("run_id", runID),
				zap.String("file", opts.InPath),
				zap.Int("epoch", i),
				zap.Error(s.epochErr))
			continue
		}
		for name, err := range s.modErrs {
			if _, seen := failedSet[name]; !seen {
				failedSet[name] = err
			}
			failures = append(failures, Failure{
				Scope:   "module",
				Epoch:   i,
				Module:  name,
				Message: err.Error(),
			})
			logger.Warn("module failed",
				zap.String("run_id", runID),
				zap.String("file", opts.InPath),
				zap.Int("epoch", i),
				zap.String("module", name),
				zap.Error(err))
		}
	}

	valid := 0
	for _, s := range states {
		if s.valid {
			valid++
		}
	}
	if valid == 0 {
		return nil, fmt.Errorf("no valid epochs in %s", opts.InPath)
	}

	table := aggregate(states, modules, failedSet)

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(opts.InPath), filepath.Ext(opts.InPath))

	tablePath := filepath.Join(opts.OutDir, base+"_features."+format)
	switch format {
	case "csv":
		err = writeTableCSV(tablePath, table)
	case "parquet":
		err = writeTableParquet(tablePath, table)
	}
	if err != nil {
		return nil, fmt.Errorf("write feature table: %w", err)
	}

	failurePath := filepath.Join(opts.OutDir, base+"_failures.json")
	log := FailureLog{
		RunID:      runID,
		File:       opts.InPath,
		CreatedUTC: time.Now().UTC().Format(time.RFC3339),
		Failures:   failures,
	}
	if err := writeJSON(failurePath, log); err != nil {
		return nil, fmt.Errorf("write failure log: %w", err)
	}

	failedModules := make([]string, 0, len(failedSet))
	for name := range failedSet {
		failedModules = append(failedModules, name)
	}
	sort.Strings(failedModules)

	logger.Info("run finished",
		zap.String("run_id", runID),
		zap.Int("valid_epochs", valid),
		zap.Int("columns", len(table.Columns)),
		zap.Strings("failed_modules", failedModules))

	return &Result{
		RunID:          runID,
		OutputDir:      opts.OutDir,
		TablePath:      tablePath,
		FailureLogPath: failurePath,
		Epochs:         len(states),
		ValidEpochs:    valid,
		Columns:        table.Columns,
		FailedModules:  failedModules,
	}, nil
}

// loadInput reads the epochs and sampling rate from the input file. EDF
// files carry their own rate; CSV matrices need Options.FS.
func loadInput(opts Options) ([]epoch.Epoch, float64, error) {
	if strings.EqualFold(filepath.Ext(opts.InPath), ".edf") {
		seconds := opts.EpochSeconds
		if seconds <= 0 {
			seconds = 30
		}
		return epoch.LoadEDF(opts.InPath, opts.Channel, seconds, nil)
	}
	if opts.FS <= 0 {
		return nil, 0, fmt.Errorf("sampling rate is required for CSV input")
	}
	epochs, err := epoch.LoadCSV(opts.InPath)
	return epochs, opts.FS, err
}

func conditionSignal(x []float64, fs float64, p PreprocessParams) ([]float64, error) {
	if !p.Enabled {
		return x, nil
	}
	out, err := preprocess.Bandpass(x, fs, p.LowHz, p.HighHz)
	if err != nil {
		return nil, fmt.Errorf("bandpass: %w", err)
	}
	if p.MAWindow > 1 {
		out = preprocess.MovingAverage(out, p.MAWindow)
	}
	if p.SGWindow > 0 {
		out, err = preprocess.SavitzkyGolay(out, p.SGWindow, p.SGOrder)
		if err != nil {
			return nil, fmt.Errorf("savitzky-golay: %w", err)
		}
	}
	switch strings.ToLower(p.Normalize) {
	case "", "none":
	case "zscore":
		out = preprocess.ZNormalize(out)
	case "minmax":
		out = preprocess.MinMaxNormalize(out)
	default:
		return nil, fmt.Errorf("unknown normalize mode %q", p.Normalize)
	}
	return out, nil
}

// computeEpoch derives the landmark and interval series for one epoch and
// runs every module against it, checking the deadline between modules.
func computeEpoch(s *epochState, fs float64, modules []features.Module, p features.Params, timeout time.Duration) {
	sd := apg.SecondDerivative(s.signal)
	ctx := &features.Context{
		Signal:   s.signal,
		FS:       fs,
		Peaks:    s.peaks,
		Onsets:   s.onsets,
		SD:       sd,
		Marks:    apg.Detect(sd, s.peaks, s.onsets, fs),
		PPI:      beat.Intervals(s.peaks, fs),
		PPITimes: beat.IntervalMidpoints(s.peaks, fs),
		Params:   p,
	}

	s.values = make(map[string][]float64, len(modules))
	s.modErrs = make(map[string]error)
	deadline := time.Now().Add(timeout)
	for _, m := range modules {
		if timeout > 0 && time.Now().After(deadline) {
			s.valid = false
			s.epochErr = fmt.Errorf("epoch deadline exceeded after %s", timeout)
			return
		}
		vals, err := computeModule(m, ctx)
		if err != nil {
			s.modErrs[m.Name()] = err
			continue
		}
		if len(vals) != len(m.Columns()) {
			s.modErrs[m.Name()] = fmt.Errorf("module %s returned %d values for %d columns", m.Name(), len(vals), len(m.Columns()))
			continue
		}
		s.values[m.Name()] = vals
	}
}

func computeModule(m features.Module, ctx *features.Context) (vals []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("module %s panicked: %v", m.Name(), r)
		}
	}()
	return m.Compute(ctx)
}

// aggregate builds the feature table: label first, then each surviving
// module's columns in registration order. Invalid epochs keep their label
// and get NaN features.
func aggregate(states []*epochState, modules []features.Module, failed map[string]error) FeatureTable {
	columns := []string{"label"}
	kept := make([]features.Module, 0, len(modules))
	for _, m := range modules {
		if _, bad := failed[m.Name()]; bad {
			continue
		}
		kept = append(kept, m)
		columns = append(columns, m.Columns()...)
	}

	rows := make([][]float64, 0, len(states))
	for _, s := range states {
		row := make([]float64, 0, len(columns))
		row = append(row, float64(s.label))
		for _, m := range kept {
			vals, ok := s.values[m.Name()]
			if !ok {
				for range m.Columns() {
					row = append(row, math.NaN())
				}
				continue
			}
			row = append(row, vals...)
		}
		rows = append(rows, row)
	}
	return FeatureTable{Columns: columns, Rows: rows}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
