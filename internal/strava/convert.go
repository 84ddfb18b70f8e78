package strava

import (
	"errors"
	"fmt"
	"time"

	"elevedit/internal/analysis"
)

// ErrNoAltitude is returned for activities recorded without elevation
var ErrNoAltitude = errors.New("activity has no altitude stream")

// TrackPoints rebuilds track samples from an activity's streams. Sample times
// are the activity start plus the time stream offset. Distance comes from
// the distance stream and is forced non-decreasing.
func TrackPoints(activity *Activity, streams *Streams) ([]analysis.TrackPoint, error) {
	if !streams.HasAltitude() {
		return nil, ErrNoAltitude
	}
	n := len(streams.Altitude.Data)
	if streams.Distance == nil || len(streams.Distance.Data) != n {
		return nil, fmt.Errorf("distance stream length does not match altitude (%d samples)", n)
	}

	hasTime := streams.Time != nil && len(streams.Time.Data) == n
	hasLatLng := streams.LatLng != nil && len(streams.LatLng.Data) == n

	points := make([]analysis.TrackPoint, n)
	var last float64
	for i := range points {
		dist := max(streams.Distance.Data[i], last)
		last = dist

		points[i] = analysis.TrackPoint{
			Elevation: streams.Altitude.Data[i],
			Distance:  dist,
		}
		if hasLatLng {
			points[i].Lat = streams.LatLng.Data[i][0]
			points[i].Lon = streams.LatLng.Data[i][1]
		}
		if hasTime && activity != nil && !activity.StartDate.IsZero() {
			points[i].Time = activity.StartDate.Add(time.Duration(streams.Time.Data[i]) * time.Second)
		}
	}
	return points, nil
}
