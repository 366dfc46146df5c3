package beat

// DefaultRailingGap is the minimum span, in samples, that any three
// consecutive peaks must cover for the epoch to count as physiological.
const DefaultRailingGap = 20

// Railing reports whether the peak set shows the railing artifact: some
// triple of consecutive peaks i, i+2 spanning fewer than minGap samples.
// The scan short-circuits on the first violating triple. The check is
// deliberately limited to 3-peak windows; it is not a pairwise-gap check.
func Railing(peaks []int, minGap int) bool {
	for i := 0; i+2 < len(peaks); i++ {
		if peaks[i+2]-peaks[i] < minGap {
			return true
		}
	}
	return false
}

// FilterRailing marks each epoch's peak set valid or railing-invalid and
// returns the indices of removed epochs. peaksPerEpoch is indexed by epoch.
func FilterRailing(peaksPerEpoch map[int][]int, minGap int) (valid map[int]bool, removed []int) {
	valid = make(map[int]bool, len(peaksPerEpoch))
	for idx, peaks := range peaksPerEpoch {
		bad := Railing(peaks, minGap)
		valid[idx] = !bad
		if bad {
			removed = append(removed, idx)
		}
	}
	return valid, removed
}
