package features

import (
	"math"
	"testing"

	"github.com/lucasjlepore/ppg-analyzer/apg"
	"github.com/lucasjlepore/ppg-analyzer/beat"
)

// pulseContext builds a full epoch context from a clean 1 Hz pulse train.
func pulseContext(t *testing.T) *Context {
	t.Helper()
	fs := 128.0
	n := int(fs) * 30
	sig := make([]float64, n)
	for i := range sig {
		ts := float64(i) / fs
		sig[i] = math.Sin(2*math.Pi*ts) + 0.3*math.Sin(4*math.Pi*ts)
	}

	peaks, onsets, err := beat.MSPTD{}.Detect(sig, fs)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	sd := apg.SecondDerivative(sig)
	return &Context{
		Signal:   sig,
		FS:       fs,
		Peaks:    peaks,
		Onsets:   onsets,
		SD:       sd,
		Marks:    apg.Detect(sd, peaks, onsets, fs),
		PPI:      beat.Intervals(peaks, fs),
		PPITimes: beat.IntervalMidpoints(peaks, fs),
		Params:   DefaultParams(),
	}
}

func TestModulesSchemaAndShape(t *testing.T) {
	ctx := pulseContext(t)
	seen := make(map[string]string)
	for _, m := range DefaultModules() {
		cols := m.Columns()
		if len(cols) == 0 {
			t.Fatalf("module %s has no columns", m.Name())
		}
		for _, col := range cols {
			if owner, dup := seen[col]; dup {
				t.Fatalf("column %q defined by both %s and %s", col, owner, m.Name())
			}
			seen[col] = m.Name()
		}

		vals, err := m.Compute(ctx)
		if err != nil {
			t.Fatalf("module %s: %v", m.Name(), err)
		}
		if len(vals) != len(cols) {
			t.Fatalf("module %s returned %d values for %d columns", m.Name(), len(vals), len(cols))
		}
	}
}

func TestModulesDegradeToNaNOnEmptyEpoch(t *testing.T) {
	ctx := &Context{Params: DefaultParams()}
	for _, m := range DefaultModules() {
		vals, err := m.Compute(ctx)
		if err != nil {
			t.Fatalf("module %s errored on empty epoch: %v", m.Name(), err)
		}
		if len(vals) != len(m.Columns()) {
			t.Fatalf("module %s returned %d values for %d columns", m.Name(), len(vals), len(m.Columns()))
		}
		for i, v := range vals {
			if !math.IsNaN(v) {
				t.Fatalf("module %s value %d = %v on empty epoch, want NaN", m.Name(), i, v)
			}
		}
	}
}

func TestModulesPulseTrainSanity(t *testing.T) {
	ctx := pulseContext(t)

	tinnVals, err := TINN{}.Compute(ctx)
	if err != nil {
		t.Fatalf("tinn: %v", err)
	}
	if !(tinnVals[1] >= 1) {
		t.Fatalf("triangular index = %v, want >= 1", tinnVals[1])
	}

	tdVals, err := TimeDomain{Series: SeriesPPI}.Compute(ctx)
	if err != nil {
		t.Fatalf("timedomain: %v", err)
	}
	// First time-domain column is the mean; the train beats at 1 Hz.
	if mean := tdVals[0]; mean < 950 || mean > 1050 {
		t.Fatalf("PPI mean = %v ms, want about 1000", mean)
	}
}
