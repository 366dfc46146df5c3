package beat

// Intervals derives the peak-to-peak interval series in milliseconds.
// The result has length len(peaks)-1; fewer than two peaks yield an empty
// series and all interval-dependent features downstream become NaN.
func Intervals(peaks []int, fs float64) []float64 {
	if len(peaks) < 2 || fs <= 0 {
		return nil
	}
	ppi := make([]float64, len(peaks)-1)
	for i := 0; i+1 < len(peaks); i++ {
		ppi[i] = float64(peaks[i+1]-peaks[i]) / fs * 1000
	}
	return ppi
}

// IntervalMidpoints returns, for each interval, the time in seconds of the
// midpoint between the two peaks that bound it. Used to anchor the PPI
// series on a uniform grid before spectral estimation.
func IntervalMidpoints(peaks []int, fs float64) []float64 {
	if len(peaks) < 2 || fs <= 0 {
		return nil
	}
	mid := make([]float64, len(peaks)-1)
	for i := 0; i+1 < len(peaks); i++ {
		mid[i] = (float64(peaks[i]) + float64(peaks[i+1])) / 2 / fs
	}
	return mid
}
