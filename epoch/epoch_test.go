package epoch

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMatrixEpochs(t *testing.T) {
	m := Matrix{
		{2, 3},
		{0.1, 1.1},
		{0.2, 1.2},
		{0.3, 1.3},
	}
	epochs, err := m.Epochs()
	if err != nil {
		t.Fatalf("Epochs: %v", err)
	}
	if len(epochs) != 2 {
		t.Fatalf("len = %d, want 2", len(epochs))
	}
	if epochs[0].Label != 2 || epochs[1].Label != 3 {
		t.Fatalf("labels = %d, %d, want 2, 3", epochs[0].Label, epochs[1].Label)
	}
	if epochs[0].Index != 0 || epochs[1].Index != 1 {
		t.Fatalf("indices = %d, %d", epochs[0].Index, epochs[1].Index)
	}
	want := []float64{1.1, 1.2, 1.3}
	for i, v := range want {
		if epochs[1].Signal[i] != v {
			t.Fatalf("epoch 1 sample %d = %v, want %v", i, epochs[1].Signal[i], v)
		}
	}
}

func TestMatrixEpochsErrors(t *testing.T) {
	if _, err := (Matrix{{1, 2}}).Epochs(); err == nil {
		t.Fatal("label-only matrix must fail")
	}
	if _, err := (Matrix{{1, 2}, {0.1}}).Epochs(); err == nil {
		t.Fatal("ragged matrix must fail")
	}
	if _, err := (Matrix{{}, {}}).Epochs(); err == nil {
		t.Fatal("empty matrix must fail")
	}
}

func TestSegment(t *testing.T) {
	signal := []float64{0, 1, 2, 3, 4, 5, 6}
	epochs, err := Segment(signal, 3, []int{7, 8})
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(epochs) != 2 {
		t.Fatalf("len = %d, want 2 (trailing sample dropped)", len(epochs))
	}
	if epochs[1].Label != 8 || epochs[1].Signal[0] != 3 {
		t.Fatalf("epoch 1 = %+v", epochs[1])
	}

	// Epochs own their samples.
	signal[0] = 99
	if epochs[0].Signal[0] != 0 {
		t.Fatal("epoch aliases the source signal")
	}
}

func TestSegmentNilLabels(t *testing.T) {
	epochs, err := Segment([]float64{0, 1, 2, 3}, 2, nil)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	for _, e := range epochs {
		if e.Label != -1 {
			t.Fatalf("unlabeled epoch got label %d", e.Label)
		}
	}
}

func TestSegmentErrors(t *testing.T) {
	if _, err := Segment([]float64{1, 2}, 0, nil); err == nil {
		t.Fatal("non-positive epoch length must fail")
	}
	if _, err := Segment([]float64{1, 2}, 5, nil); err == nil {
		t.Fatal("signal shorter than one epoch must fail")
	}
	if _, err := Segment([]float64{1, 2, 3, 4}, 2, []int{1}); err == nil {
		t.Fatal("too few labels must fail")
	}
}

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "m.csv")
	data := "1,0\n0.5,0.6\n0.7,0.8\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	epochs, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if len(epochs) != 2 {
		t.Fatalf("len = %d, want 2", len(epochs))
	}
	if epochs[0].Label != 1 || epochs[0].Signal[1] != 0.7 {
		t.Fatalf("epoch 0 = %+v", epochs[0])
	}

	bad := filepath.Join(dir, "bad.csv")
	if err := os.WriteFile(bad, []byte("1,x\n2,3\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadCSV(bad); err == nil {
		t.Fatal("non-numeric cell must fail")
	}
}

func TestEpochSamplesRounding(t *testing.T) {
	cases := []struct {
		fs      float64
		seconds int
		want    int
	}{
		{128, 30, 3840},
		{127.5, 30, 3825},
		{99.99, 30, 3000},
	}
	for _, c := range cases {
		if got := epochSamples(c.fs, c.seconds); got != c.want {
			t.Fatalf("epochSamples(%v, %d) = %d, want %d", c.fs, c.seconds, got, c.want)
		}
	}
}
