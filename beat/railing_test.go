package beat

import "testing"

func TestRailing(t *testing.T) {
	cases := []struct {
		name   string
		peaks  []int
		minGap int
		want   bool
	}{
		{"tight triple rails", []int{10, 15, 18, 200, 400}, 20, true},
		{"violating peak removed", []int{10, 15, 200, 400}, 20, false},
		{"two peaks never rail", []int{10, 12}, 20, false},
		{"empty", nil, 20, false},
		{"gap exactly at threshold", []int{0, 10, 20}, 20, false},
		{"gap one under threshold", []int{0, 10, 19}, 20, true},
		{"late triple rails", []int{0, 200, 400, 405, 410}, 20, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Railing(tc.peaks, tc.minGap); got != tc.want {
				t.Fatalf("Railing(%v, %d) = %v, want %v", tc.peaks, tc.minGap, got, tc.want)
			}
		})
	}
}

func TestFilterRailing(t *testing.T) {
	valid, removed := FilterRailing(map[int][]int{
		0: {10, 15, 18, 200, 400},
		1: {0, 130, 260, 390},
		2: {},
	}, 20)

	if valid[0] {
		t.Fatal("railing epoch 0 marked valid")
	}
	if !valid[1] {
		t.Fatal("clean epoch 1 marked invalid")
	}
	if !valid[2] {
		t.Fatal("empty peak set cannot rail")
	}
	if len(removed) != 1 || removed[0] != 0 {
		t.Fatalf("removed = %v, want [0]", removed)
	}
}
