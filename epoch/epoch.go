// Package epoch models fixed-duration, labeled PPG signal segments and
// parses the per-file matrix layout produced by the preprocessing stage.
package epoch

import (
	"fmt"
)

// Epoch is one fixed-duration segment of a single PPG channel. The label is
// assigned at construction and never mutated by the feature pipeline.
type Epoch struct {
	Index  int
	Label  int
	Signal []float64
}

// Matrix is the numeric per-file layout: the first row holds one integer
// label per epoch, remaining rows hold samples, columns are epochs.
type Matrix [][]float64

// Epochs converts the matrix into one Epoch per column.
func (m Matrix) Epochs() ([]Epoch, error) {
	if len(m) < 2 {
		return nil, fmt.Errorf("matrix needs a label row and at least one sample row, got %d rows", len(m))
	}
	cols := len(m[0])
	if cols == 0 {
		return nil, fmt.Errorf("matrix has no epochs")
	}
	for r, row := range m {
		if len(row) != cols {
			return nil, fmt.Errorf("ragged matrix: row %d has %d columns, want %d", r, len(row), cols)
		}
	}

	epochs := make([]Epoch, 0, cols)
	samples := len(m) - 1
	for c := 0; c < cols; c++ {
		sig := make([]float64, samples)
		for r := 1; r < len(m); r++ {
			sig[r-1] = m[r][c]
		}
		epochs = append(epochs, Epoch{
			Index:  c,
			Label:  int(m[0][c]),
			Signal: sig,
		})
	}
	return epochs, nil
}

// Segment slices a continuous signal into fixed-length epochs and attaches
// one label per epoch. Trailing samples that do not fill a whole epoch are
// dropped. A nil label slice marks every epoch unlabeled (-1); a non-nil one
// must cover every whole epoch, extra labels are ignored.
func Segment(signal []float64, samplesPerEpoch int, labels []int) ([]Epoch, error) {
	if samplesPerEpoch <= 0 {
		return nil, fmt.Errorf("samples per epoch must be positive, got %d", samplesPerEpoch)
	}
	n := len(signal) / samplesPerEpoch
	if n == 0 {
		return nil, fmt.Errorf("signal of %d samples shorter than one epoch (%d)", len(signal), samplesPerEpoch)
	}
	if labels != nil && len(labels) < n {
		return nil, fmt.Errorf("have %d labels for %d epochs", len(labels), n)
	}
	epochs := make([]Epoch, 0, n)
	for i := 0; i < n; i++ {
		seg := signal[i*samplesPerEpoch : (i+1)*samplesPerEpoch]
		sig := make([]float64, len(seg))
		copy(sig, seg)
		label := -1
		if labels != nil {
			label = labels[i]
		}
		epochs = append(epochs, Epoch{Index: i, Label: label, Signal: sig})
	}
	return epochs, nil
}
