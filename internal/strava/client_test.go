package strava

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"elevedit/internal/timeutil"
)

const activityJSON = `{
	"id": 987,
	"athlete": {"id": 5},
	"name": "Lunch Ride",
	"type": "Ride",
	"sport_type": "Ride",
	"start_date": "2024-06-01T10:00:00Z",
	"distance": 200.0,
	"moving_time": 40,
	"elapsed_time": 45,
	"total_elevation_gain": 12.0
}`

const streamsJSON = `{
	"time": {"data": [0, 10, 20], "series_type": "distance", "original_size": 3, "resolution": "high"},
	"latlng": {"data": [[46.0, 7.0], [46.0005, 7.0], [46.001, 7.0]]},
	"altitude": {"data": [500.0, 505.5, 512.0]},
	"distance": {"data": [0.0, 55.6, 111.2]}
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/activities/987", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("X-RateLimit-Limit", "100,1000")
		w.Header().Set("X-RateLimit-Usage", "10,200")
		w.Write([]byte(activityJSON))
	})
	mux.HandleFunc("/activities/987/streams", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, streamKeys, r.URL.Query().Get("keys"))
		assert.Equal(t, "true", r.URL.Query().Get("key_by_type"))
		w.Write([]byte(streamsJSON))
	})
	mux.HandleFunc("/athlete/activities", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		w.Write([]byte("[" + activityJSON + "]"))
	})
	mux.HandleFunc("/activities/404", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Record Not Found"}`, http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})
	limiter := newRateLimiter(timeutil.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)), 0)
	return NewClient(ts, WithBaseURL(srv.URL), WithRateLimiter(limiter))
}

func TestGetActivityAndStreams(t *testing.T) {
	client := newTestClient(newTestServer(t))
	ctx := context.Background()

	activity, err := client.GetActivity(ctx, 987)
	require.NoError(t, err)
	assert.Equal(t, "Lunch Ride", activity.Name)
	assert.Equal(t, 200.0, activity.Distance)

	short, daily := client.RateLimitStatus()
	assert.Equal(t, 90, short)
	assert.Equal(t, 800, daily)

	streams, err := client.GetActivityStreams(ctx, 987)
	require.NoError(t, err)
	assert.Equal(t, 3, streams.Len())
	assert.True(t, streams.HasAltitude())

	points, err := TrackPoints(activity, streams)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, 505.5, points[1].Elevation)
	assert.Equal(t, 111.2, points[2].Distance)
	assert.Equal(t, 46.001, points[2].Lat)
	assert.True(t, points[2].Time.Equal(time.Date(2024, 6, 1, 10, 0, 20, 0, time.UTC)))
}

func TestGetActivities(t *testing.T) {
	client := newTestClient(newTestServer(t))

	activities, err := client.GetActivities(context.Background(), 2, 30)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, int64(987), activities[0].ID)
}

func TestAPIError(t *testing.T) {
	client := newTestClient(newTestServer(t))

	_, err := client.GetActivity(context.Background(), 404)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "err = %v", err)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestTrackPointsValidation(t *testing.T) {
	_, err := TrackPoints(nil, &Streams{})
	assert.True(t, errors.Is(err, ErrNoAltitude))

	_, err = TrackPoints(nil, &Streams{
		Altitude: &StreamData[float64]{Data: []float64{1, 2}},
		Distance: &StreamData[float64]{Data: []float64{0}},
	})
	assert.Error(t, err)
}

func TestTrackPointsWithoutTimeOrPosition(t *testing.T) {
	points, err := TrackPoints(nil, &Streams{
		Altitude: &StreamData[float64]{Data: []float64{10, 11, 12}},
		Distance: &StreamData[float64]{Data: []float64{0, 5, 4}}, // GPS glitch goes backwards
	})
	require.NoError(t, err)
	assert.Equal(t, 5.0, points[2].Distance, "distance is forced non-decreasing")
	assert.True(t, points[0].Time.IsZero())
	assert.Zero(t, points[0].Lat)
}
