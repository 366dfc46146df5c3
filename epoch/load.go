package epoch

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ishiikurisu/edf"
)

// LoadCSV reads a matrix file in the label-row layout (first row = labels,
// columns = epochs) and returns its epochs.
func LoadCSV(path string) ([]Epoch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open matrix csv: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read matrix csv: %w", err)
	}
	m := make(Matrix, 0, len(records))
	for r, rec := range records {
		row := make([]float64, len(rec))
		for c, cell := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("matrix cell [%d,%d] %q: %w", r, c, cell, err)
			}
			row[c] = v
		}
		m = append(m, row)
	}
	return m.Epochs()
}

// LoadEDF reads one channel of an EDF recording, segments it into epochs of
// epochSeconds, and attaches the supplied sleep-stage labels. It returns the
// epochs and the channel's sampling rate.
func LoadEDF(path, channel string, epochSeconds int, labels []int) ([]Epoch, float64, error) {
	data := edf.ReadFile(path)
	if len(data.PhysicalRecords) == 0 {
		return nil, 0, fmt.Errorf("edf %s: no physical records", path)
	}

	idx := -1
	for i, label := range data.GetLabels() {
		if strings.EqualFold(strings.TrimSpace(label), channel) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, 0, fmt.Errorf("edf %s: channel %q not found", path, channel)
	}

	duration := data.GetDuration()
	if duration <= 0 {
		return nil, 0, fmt.Errorf("edf %s: non-positive record duration", path)
	}
	fs := float64(data.GetSampling()) / duration
	signal := data.PhysicalRecords[idx]

	epochs, err := Segment(signal, epochSamples(fs, epochSeconds), labels)
	if err != nil {
		return nil, 0, fmt.Errorf("segment edf channel %q: %w", channel, err)
	}
	return epochs, fs, nil
}

// epochSamples rounds fs*seconds to the nearest sample so non-integer EDF
// rates do not lose samples to truncation.
func epochSamples(fs float64, seconds int) int {
	return int(math.Round(fs * float64(seconds)))
}
