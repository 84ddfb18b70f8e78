package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Anomaly detection tuning
const (
	MinAnomalyPoints       = 10   // fewer samples cannot establish a baseline gradient
	MinGradientThreshold   = 0.05 // 5% grade floor so near-flat tracks don't trigger on noise
	GradientMultiplier     = 3.0  // steep = this many times the track's average gradient
	GradientCheckMaxThresh = 50.0 // thresholds at or above this only look at absolute jumps
	MaxGapSegments         = 5    // non-steep segments bridged inside one region
	MinRegionSegments      = 3    // regions shorter than this are single-sample blips
)

// DetectAnomalies finds distance intervals whose elevation changes are implausible.
//
// A segment (pair of consecutive samples) is steep when its absolute elevation
// change is at least threshold meters, or, for thresholds below 50 m, when its
// gradient exceeds max(3 * average gradient, 5%). Steep segments are grouped
// left to right, bridging up to five non-steep segments. A region covering at
// least three segments is widened by one sample on each side and emitted.
//
// Results are in ascending distance order. Tracks with fewer than ten samples
// return an empty result.
func DetectAnomalies(points []TrackPoint, threshold float64) []AnomalyRegion {
	if len(points) < MinAnomalyPoints {
		return []AnomalyRegion{}
	}

	segments := len(points) - 1
	gradients := make([]float64, segments)
	deltas := make([]float64, segments)
	for i := 0; i < segments; i++ {
		dEle := points[i+1].Elevation - points[i].Elevation
		dDist := math.Max(points[i+1].Distance-points[i].Distance, 1)
		gradients[i] = math.Abs(dEle / dDist)
		deltas[i] = math.Abs(dEle)
	}

	avgGradient := floats.Sum(gradients) / float64(segments)
	gradientThreshold := math.Max(avgGradient*GradientMultiplier, MinGradientThreshold)
	useGradient := threshold < GradientCheckMaxThresh

	isSteep := func(i int) bool {
		if deltas[i] >= threshold {
			return true
		}
		return useGradient && gradients[i] > gradientThreshold
	}

	regions := []AnomalyRegion{}
	var (
		inRegion  bool
		firstSeg  int
		lastSeg   int
		gap       int
		peakRatio float64
	)

	closeRegion := func() {
		inRegion = false
		if lastSeg-firstSeg+1 < MinRegionSegments {
			return
		}
		// segment i spans samples i and i+1; widen by one sample each side
		startIdx := max(0, firstSeg-1)
		endIdx := min(len(points)-1, lastSeg+2)
		regions = append(regions, AnomalyRegion{
			StartDistance: points[startIdx].Distance,
			EndDistance:   points[endIdx].Distance,
			Severity:      peakRatio,
		})
	}

	for i := 0; i < segments; i++ {
		if isSteep(i) {
			if !inRegion {
				inRegion = true
				firstSeg = i
				peakRatio = 0
			}
			lastSeg = i
			gap = 0
			peakRatio = math.Max(peakRatio, gradients[i]/gradientThreshold)
			continue
		}

		if inRegion {
			gap++
			if gap > MaxGapSegments {
				closeRegion()
			}
		}
	}
	if inRegion {
		closeRegion()
	}

	return regions
}

// FilterIgnored drops regions whose key is in ignored, preserving order
func FilterIgnored(regions []AnomalyRegion, ignored map[RegionKey]bool) []AnomalyRegion {
	out := make([]AnomalyRegion, 0, len(regions))
	for _, r := range regions {
		if ignored[r.Key()] {
			continue
		}
		out = append(out, r)
	}
	return out
}
