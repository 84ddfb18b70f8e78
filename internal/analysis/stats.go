package analysis

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

const (
	// AscentMedianWindow suppresses single-sample GPS noise before summing gain/loss
	AscentMedianWindow = 3
	// AscentStepThreshold drops smaller smoothed deltas entirely (meters)
	AscentStepThreshold = 2.5
)

// CalculateStats derives elevation and motion metrics for a track.
//
// Min/max elevation use the raw samples; an empty track reports +Inf/-Inf.
// Ascent and descent sum the deltas of the 3-sample rolling median whose
// magnitude is at least 2.5 m. Duration and speeds only consider consecutive
// pairs where both samples carry a timestamp and time moves forward.
func CalculateStats(points []TrackPoint, totalDistance float64, editedCount int) ElevationStats {
	stats := ElevationStats{
		MinElevation:  math.Inf(1),
		MaxElevation:  math.Inf(-1),
		TotalDistance: totalDistance,
		EditedCount:   editedCount,
	}
	if len(points) == 0 {
		return stats
	}

	elevations := Elevations(points)
	stats.MinElevation = floats.Min(elevations)
	stats.MaxElevation = floats.Max(elevations)

	stats.TotalAscent, stats.TotalDescent = ascentDescent(elevations)

	var (
		elapsed  time.Duration
		distance float64
		maxSpeed *float64
	)
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		if prev.Time.IsZero() || cur.Time.IsZero() {
			continue
		}
		dt := cur.Time.Sub(prev.Time)
		if dt <= 0 {
			continue
		}

		elapsed += dt
		dDist := cur.Distance - prev.Distance
		distance += dDist

		if dDist > 0 {
			speed := dDist / dt.Seconds()
			if maxSpeed == nil || speed > *maxSpeed {
				maxSpeed = &speed
			}
		}
	}

	stats.TotalDuration = elapsed
	stats.MaxSpeed = maxSpeed
	if elapsed > 0 {
		avg := distance / elapsed.Seconds()
		stats.AverageSpeed = &avg
	}

	return stats
}

// ascentDescent sums filtered gain and loss over the median-smoothed profile
func ascentDescent(elevations []float64) (ascent, descent float64) {
	smoothed := RollingMedian(elevations, AscentMedianWindow)
	for i := 1; i < len(smoothed); i++ {
		delta := smoothed[i] - smoothed[i-1]
		if math.Abs(delta) < AscentStepThreshold {
			continue
		}
		if delta > 0 {
			ascent += delta
		} else {
			descent -= delta
		}
	}
	return ascent, descent
}
