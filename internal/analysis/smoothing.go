package analysis

import "math"

// SmoothDrag moves the elevation of points[target] to newElevation and pulls the
// neighbours within radius toward it. A neighbour at offset k is blended by
// strength * (1 - k/(radius+1)). Elevations never go below zero.
//
// The input slice is not modified. An out-of-range target returns an unchanged copy.
func SmoothDrag(points []TrackPoint, target int, newElevation float64, radius int, strength float64) []TrackPoint {
	out := ClonePoints(points)
	if target < 0 || target >= len(points) {
		return out
	}
	radius = max(radius, 0)
	strength = clampUnit(strength)

	targetEle := math.Max(newElevation, 0)
	out[target].Elevation = targetEle

	for offset := 1; offset <= radius; offset++ {
		influence := strength * distanceFactor(offset, radius)
		for _, idx := range [2]int{target - offset, target + offset} {
			if idx < 0 || idx >= len(points) {
				continue
			}
			ele := points[idx].Elevation
			out[idx].Elevation = math.Max(ele+(targetEle-ele)*influence, 0)
		}
	}

	return out
}

// SmoothClick flattens the window [target-radius, target+radius] toward its mean
// elevation, weighting each sample by its distance from the target the same way
// SmoothDrag does. With radius 0 only the target itself is blended.
//
// The input slice is not modified. Strength 0 or an out-of-range target return an unchanged copy.
func SmoothClick(points []TrackPoint, target, radius int, strength float64) []TrackPoint {
	out := ClonePoints(points)
	strength = clampUnit(strength)
	if strength == 0 || target < 0 || target >= len(points) {
		return out
	}
	radius = max(radius, 0)

	lo := max(0, target-radius)
	hi := min(len(points)-1, target+radius)

	var sum float64
	for i := lo; i <= hi; i++ {
		sum += points[i].Elevation
	}
	mean := sum / float64(hi-lo+1)

	for i := lo; i <= hi; i++ {
		offset := i - target
		if offset < 0 {
			offset = -offset
		}
		influence := strength * distanceFactor(offset, radius)
		ele := points[i].Elevation
		out[i].Elevation = math.Max(ele+(mean-ele)*influence, 0)
	}

	return out
}

// InterpolateRange replaces the samples strictly between lo and hi with a
// distance-proportional line between points[lo] and points[hi].
// Invalid or adjacent bounds return an unchanged copy.
func InterpolateRange(points []TrackPoint, lo, hi int) []TrackPoint {
	out := ClonePoints(points)
	if lo < 0 || hi >= len(points) || hi-lo < 2 {
		return out
	}

	startEle := points[lo].Elevation
	endEle := points[hi].Elevation
	span := points[hi].Distance - points[lo].Distance

	for i := lo + 1; i < hi; i++ {
		var t float64
		if span > 0 {
			t = (points[i].Distance - points[lo].Distance) / span
		} else {
			// duplicate distances: fall back to sample position
			t = float64(i-lo) / float64(hi-lo)
		}
		out[i].Elevation = math.Max(startEle+(endEle-startEle)*t, 0)
	}

	return out
}

// distanceFactor is the falloff weight for a sample offset samples from the target
func distanceFactor(offset, radius int) float64 {
	return math.Max(0, 1-float64(offset)/float64(radius+1))
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
