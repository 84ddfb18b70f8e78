package analysis

import (
	"sort"
	"time"
)

// TrackPoint is a single GPS sample of a loaded track
type TrackPoint struct {
	Lat       float64
	Lon       float64
	Elevation float64   // meters
	Distance  float64   // cumulative meters from track start
	Time      time.Time // zero when the sample has no usable timestamp
}

// AnomalyRegion is a distance interval flagged as an implausible elevation change
type AnomalyRegion struct {
	StartDistance float64 // meters
	EndDistance   float64 // meters
	Severity      float64 // peak gradient relative to the track's gradient threshold
}

// RegionKey identifies an anomaly region across recomputation.
// Indices into a detection result are not stable; the distance pair is.
type RegionKey struct {
	Start float64
	End   float64
}

// Key returns the stable identity of the region
func (r AnomalyRegion) Key() RegionKey {
	return RegionKey{Start: r.StartDistance, End: r.EndDistance}
}

// Contains reports whether distance falls inside the region
func (r AnomalyRegion) Contains(distance float64) bool {
	return distance >= r.StartDistance && distance <= r.EndDistance
}

// ElevationStats is a derived snapshot of a track's elevation and motion metrics
type ElevationStats struct {
	MinElevation  float64 // +Inf for an empty track
	MaxElevation  float64 // -Inf for an empty track
	TotalAscent   float64
	TotalDescent  float64
	TotalDistance float64
	EditedCount   int
	TotalDuration time.Duration
	AverageSpeed  *float64 // m/s, nil when no valid timed pairs
	MaxSpeed      *float64 // m/s, nil when never computed
}

// ClonePoints returns a copy of points that shares no backing array with the input
func ClonePoints(points []TrackPoint) []TrackPoint {
	if points == nil {
		return nil
	}
	out := make([]TrackPoint, len(points))
	copy(out, points)
	return out
}

// Elevations extracts the elevation channel
func Elevations(points []TrackPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Elevation
	}
	return out
}

// IndexRange returns the first and last sample indices whose distance lies in [start, end].
// ok is false when no sample falls inside the interval.
func IndexRange(points []TrackPoint, start, end float64) (lo, hi int, ok bool) {
	lo = sort.Search(len(points), func(i int) bool {
		return points[i].Distance >= start
	})
	hi = sort.Search(len(points), func(i int) bool {
		return points[i].Distance > end
	}) - 1
	if lo >= len(points) || hi < lo {
		return 0, 0, false
	}
	return lo, hi, true
}

// NearestIndex returns the index of the sample closest to distance, or -1 for an empty track
func NearestIndex(points []TrackPoint, distance float64) int {
	if len(points) == 0 {
		return -1
	}
	i := sort.Search(len(points), func(i int) bool {
		return points[i].Distance >= distance
	})
	if i == 0 {
		return 0
	}
	if i >= len(points) {
		return len(points) - 1
	}
	if distance-points[i-1].Distance <= points[i].Distance-distance {
		return i - 1
	}
	return i
}
