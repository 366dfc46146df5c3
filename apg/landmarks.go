// Package apg computes the accelerated plethysmogram (second derivative of
// the PPG) and locates its per-cycle a, b, and e landmarks.
package apg

// Landmarks holds positionally aligned a/b/e sample indices into the second
// derivative, one triple per valid cardiac cycle. Cycles whose detection
// failed, or whose triple violated the amplitude invariant, are absent.
type Landmarks struct {
	A []int
	B []int
	E []int
}

// Len returns the number of complete valid triples.
func (l Landmarks) Len() int { return len(l.A) }

// SecondDerivative returns two successive first-differences of the signal.
// The result is two samples shorter than the input.
func SecondDerivative(x []float64) []float64 {
	if len(x) < 3 {
		return nil
	}
	first := make([]float64, len(x)-1)
	for i := 0; i+1 < len(x); i++ {
		first[i] = x[i+1] - x[i]
	}
	second := make([]float64, len(first)-1)
	for i := 0; i+1 < len(first); i++ {
		second[i] = first[i+1] - first[i]
	}
	return second
}

// minSegment is the exclusive lower bound on search-segment length; shorter
// segments leave the landmark undefined for that cycle.
const minSegment = 2

// Detect locates the a, b, and e landmarks for each cardiac cycle given the
// epoch's second derivative and its paired onset/peak indices.
//
// Per cycle: a is the most prominent local maximum of sd in [onset, peak];
// b is the most prominent local maximum of -sd in [a, peak]; e is the most
// prominent local maximum of sd in [b, next cycle's a], or for the last
// cycle in [b, min(end, b+0.5s)]. An undefined a leaves b undefined, and an
// undefined b leaves e undefined. Triples where sd[e] > sd[a] are discarded
// whole: a higher e than a is not physiological.
func Detect(sd []float64, peaks, onsets []int, fs float64) Landmarks {
	n := len(peaks)
	if len(onsets) < n {
		n = len(onsets)
	}
	if n == 0 || len(sd) == 0 {
		return Landmarks{}
	}

	clamp := func(i int) int {
		if i < 0 {
			return 0
		}
		if i > len(sd) {
			return len(sd)
		}
		return i
	}

	// Pass 1: a points. b and e both depend on a, and e additionally needs
	// the next cycle's a, so a must exist for every cycle first.
	as := make([]int, n)
	for c := 0; c < n; c++ {
		as[c] = -1
		lo, hi := clamp(onsets[c]), clamp(peaks[c]+1)
		if hi-lo <= minSegment {
			continue
		}
		if idx, ok := mostProminentMax(sd, lo, hi, false); ok {
			as[c] = idx
		}
	}

	// Pass 2: b points inside [a, peak] on the negated second derivative.
	bs := make([]int, n)
	for c := 0; c < n; c++ {
		bs[c] = -1
		if as[c] < 0 {
			continue
		}
		lo, hi := as[c], clamp(peaks[c]+1)
		if hi-lo <= minSegment {
			continue
		}
		if idx, ok := mostProminentMax(sd, lo, hi, true); ok {
			bs[c] = idx
		}
	}

	// Pass 3: e points between b and the next cycle's a, capped at half a
	// second past b for the final cycle.
	es := make([]int, n)
	for c := 0; c < n; c++ {
		es[c] = -1
		if bs[c] < 0 {
			continue
		}
		var hi int
		if c+1 < n && as[c+1] >= 0 {
			hi = as[c+1] + 1
		} else {
			hi = bs[c] + int(0.5*fs)
		}
		lo, hi := bs[c], clamp(hi)
		if hi-lo <= minSegment {
			continue
		}
		if idx, ok := mostProminentMax(sd, lo, hi, false); ok {
			es[c] = idx
		}
	}

	var out Landmarks
	for c := 0; c < n; c++ {
		if as[c] < 0 || bs[c] < 0 || es[c] < 0 {
			continue
		}
		if sd[es[c]] > sd[as[c]] {
			continue
		}
		out.A = append(out.A, as[c])
		out.B = append(out.B, bs[c])
		out.E = append(out.E, es[c])
	}
	return out
}

// mostProminentMax finds the highest interior local maximum of sd (or of
// -sd when invert is set) in the half-open window [lo, hi). Ties keep the
// first occurrence. Returns false when the window has no local maximum.
func mostProminentMax(sd []float64, lo, hi int, invert bool) (int, bool) {
	sign := 1.0
	if invert {
		sign = -1
	}
	bestIdx, found := -1, false
	var bestVal float64
	for i := lo + 1; i < hi-1; i++ {
		v := sign * sd[i]
		if v > sign*sd[i-1] && v >= sign*sd[i+1] {
			if !found || v > bestVal {
				bestIdx, bestVal, found = i, v, true
			}
		}
	}
	return bestIdx, found
}
