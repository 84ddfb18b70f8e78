package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elevedit/internal/config"
	"elevedit/internal/store"
	"elevedit/internal/strava"
)

type fakeSource struct {
	activities []strava.Activity
	activity   *strava.Activity
	streams    *strava.Streams
	err        error
}

func (f *fakeSource) GetActivities(ctx context.Context, page, perPage int) ([]strava.Activity, error) {
	if len(f.activities) > perPage {
		return f.activities[:perPage], f.err
	}
	return f.activities, f.err
}

func (f *fakeSource) GetActivity(ctx context.Context, activityID int64) (*strava.Activity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.activity, nil
}

func (f *fakeSource) GetActivityStreams(ctx context.Context, activityID int64) (*strava.Streams, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.streams, nil
}

func rideStreams() *strava.Streams {
	return &strava.Streams{
		Time:     &strava.StreamData[int]{Data: []int{0, 10, 20, 30}},
		LatLng:   &strava.StreamData[[2]float64]{Data: [][2]float64{{46, 7}, {46.001, 7}, {46.002, 7}, {46.003, 7}}},
		Altitude: &strava.StreamData[float64]{Data: []float64{400, 404, 409, 411}},
		Distance: &strava.StreamData[float64]{Data: []float64{0, 111, 222, 333}},
	}
}

func TestImport(t *testing.T) {
	tracks, _ := newTrackService(t)
	dir := t.TempDir()
	source := &fakeSource{
		activity: &strava.Activity{ID: 42, Name: "Evening Ride!", StartDate: time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)},
		streams:  rideStreams(),
	}
	svc := NewImportService(source, tracks, dir)

	opened, err := svc.Import(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, "Evening Ride!", opened.Track.Name)
	assert.Equal(t, "strava:42", opened.Record.Path)
	assert.Equal(t, store.SourceStrava, opened.Record.Source)
	assert.InDelta(t, 333, opened.Track.TotalDistance, 1e-9)
	assert.Equal(t, filepath.Join(dir, "strava-42-evening-ride.edited.gpx"), opened.EditedGPXPath())

	out, err := tracks.Export(opened, opened.Track.Points)
	require.NoError(t, err)
	assert.FileExists(t, out)
}

func TestImportErrors(t *testing.T) {
	tracks, _ := newTrackService(t)

	apiErr := &strava.APIError{StatusCode: 404, Body: "not found"}
	svc := NewImportService(&fakeSource{err: apiErr}, tracks, t.TempDir())
	_, err := svc.Import(context.Background(), 7)
	var target *strava.APIError
	assert.ErrorAs(t, err, &target)

	noAltitude := rideStreams()
	noAltitude.Altitude = nil
	svc = NewImportService(&fakeSource{activity: &strava.Activity{ID: 7}, streams: noAltitude}, tracks, t.TempDir())
	_, err = svc.Import(context.Background(), 7)
	assert.ErrorIs(t, err, strava.ErrNoAltitude)
}

func TestRecentActivities(t *testing.T) {
	tracks, _ := newTrackService(t)
	source := &fakeSource{activities: []strava.Activity{{ID: 1}, {ID: 2}, {ID: 3}}}
	svc := NewImportService(source, tracks, t.TempDir())

	got, err := svc.RecentActivities(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

type limitedSource struct {
	fakeSource
}

func (limitedSource) RateLimitStatus() (int, int) { return 97, 990 }

func TestQuota(t *testing.T) {
	tracks, _ := newTrackService(t)

	_, _, ok := NewImportService(&fakeSource{}, tracks, t.TempDir()).Quota()
	assert.False(t, ok)

	short, daily, ok := NewImportService(&limitedSource{}, tracks, t.TempDir()).Quota()
	require.True(t, ok)
	assert.Equal(t, 97, short)
	assert.Equal(t, 990, daily)
}

func TestStravaPath(t *testing.T) {
	id, ok := ParseStravaPath(StravaPath(123456789))
	assert.True(t, ok)
	assert.Equal(t, int64(123456789), id)

	for _, p := range []string{"/tmp/ride.gpx", "strava:", "strava:abc"} {
		_, ok := ParseStravaPath(p)
		assert.False(t, ok, p)
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Evening Ride!":       "evening-ride",
		"  Col du Galibier  ": "col-du-galibier",
		"Lunch / Run #2":      "lunch-run-2",
		"":                    "",
	}
	for in, want := range tests {
		assert.Equal(t, want, slug(in), in)
	}
}

func TestNewStravaClient(t *testing.T) {
	st := store.NewTestStore(t)

	cfg := config.DefaultConfig()
	_, err := NewStravaClient(&cfg, st)
	assert.ErrorIs(t, err, ErrStravaNotConfigured)

	cfg.Strava = config.StravaConfig{ClientID: "YOUR_CLIENT_ID", ClientSecret: "YOUR_CLIENT_SECRET"}
	_, err = NewStravaClient(&cfg, st)
	assert.ErrorIs(t, err, ErrStravaNotConfigured, "placeholders are not credentials")

	cfg.Strava = config.StravaConfig{ClientID: "123", ClientSecret: "secret"}
	_, err = NewStravaClient(&cfg, st)
	assert.True(t, errors.Is(err, store.ErrNoAuth), "got %v", err)

	require.NoError(t, st.SaveAuth(&store.Auth{
		AthleteID:    9,
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}))
	client, err := NewStravaClient(&cfg, st)
	require.NoError(t, err)
	assert.NotNil(t, client)
}
