package analysis

import "sort"

// RollingMedian applies a centered median filter over values.
// An even window is widened by one. Windows are clipped at the edges, so the
// first and last outputs are medians of fewer samples; an even-length clipped
// window yields the mean of its two middle values.
func RollingMedian(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	if window < 1 {
		window = 1
	}
	if window%2 == 0 {
		window++
	}
	half := window / 2

	buf := make([]float64, 0, window)
	for i := range values {
		start := max(0, i-half)
		end := min(len(values), i+half+1)

		buf = append(buf[:0], values[start:end]...)
		out[i] = median(buf)
	}
	return out
}

// median sorts vals in place and returns the middle value
func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 0 {
		return (vals[mid-1] + vals[mid]) / 2
	}
	return vals[mid]
}
