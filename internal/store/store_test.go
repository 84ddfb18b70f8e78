package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elevedit/internal/analysis"
)

func TestAuth(t *testing.T) {
	s := NewTestStore(t)

	_, err := s.GetAuth()
	assert.True(t, errors.Is(err, ErrNoAuth))

	err = s.UpdateTokens("a", "r", time.Now())
	assert.True(t, errors.Is(err, ErrNoAuth), "updating without a row")

	expires := time.Unix(1_700_000_000, 0)
	require.NoError(t, s.SaveAuth(&Auth{AthleteID: 42, AccessToken: "tok", RefreshToken: "ref", ExpiresAt: expires}))

	auth, err := s.GetAuth()
	require.NoError(t, err)
	assert.Equal(t, int64(42), auth.AthleteID)
	assert.Equal(t, "tok", auth.AccessToken)
	assert.True(t, auth.ExpiresAt.Equal(expires))

	later := expires.Add(6 * time.Hour)
	require.NoError(t, s.UpdateTokens("tok2", "ref2", later))
	auth, err = s.GetAuth()
	require.NoError(t, err)
	assert.Equal(t, "tok2", auth.AccessToken)
	assert.Equal(t, "ref2", auth.RefreshToken)
	assert.True(t, auth.ExpiresAt.Equal(later))

	require.NoError(t, s.DeleteAuth())
	_, err = s.GetAuth()
	assert.True(t, errors.Is(err, ErrNoAuth))
}

func TestPreferences(t *testing.T) {
	s := NewTestStore(t)

	v, err := s.GetPreference(PrefRadius)
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.SetFloatPreference(PrefStrength, 0.75))
	f, ok, err := s.GetFloatPreference(PrefStrength)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0.75, f)

	require.NoError(t, s.SetPreference(PrefThreshold, "not a number"))
	_, ok, err = s.GetFloatPreference(PrefThreshold)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.GetFloatPreference("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecentTracks(t *testing.T) {
	s := NewTestStore(t)
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	first, err := s.TouchRecentTrack(&RecentTrack{Path: "/data/a.gpx", Name: "A", PointCount: 100, Distance: 1500, OpenedAt: base})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, SourceGPX, first.Source)

	_, err = s.TouchRecentTrack(&RecentTrack{Path: "strava:123", Name: "B", PointCount: 50, Distance: 900, Source: SourceStrava, OpenedAt: base.Add(time.Hour)})
	require.NoError(t, err)

	// reopening keeps the id and moves the track to the top
	again, err := s.TouchRecentTrack(&RecentTrack{Path: "/data/a.gpx", Name: "A renamed", PointCount: 101, Distance: 1510, OpenedAt: base.Add(2 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	tracks, err := s.ListRecentTracks(10)
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "A renamed", tracks[0].Name)
	assert.Equal(t, 101, tracks[0].PointCount)
	assert.True(t, tracks[0].OpenedAt.Equal(base.Add(2*time.Hour)))
	assert.Equal(t, SourceStrava, tracks[1].Source)

	limited, err := s.ListRecentTracks(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	byPath, err := s.GetRecentTrackByPath("strava:123")
	require.NoError(t, err)
	assert.Equal(t, "B", byPath.Name)

	got, err := s.GetRecentTrack(first.ID)
	require.NoError(t, err)
	assert.Equal(t, "/data/a.gpx", got.Path)

	_, err = s.GetRecentTrack("nope")
	assert.True(t, errors.Is(err, ErrTrackNotFound))

	require.NoError(t, s.DeleteRecentTrack(first.ID))
	assert.True(t, errors.Is(s.DeleteRecentTrack(first.ID), ErrTrackNotFound))
}

func TestIgnoredAnomalies(t *testing.T) {
	s := NewTestStore(t)
	track, err := s.TouchRecentTrack(&RecentTrack{Path: "/data/a.gpx", Name: "A", OpenedAt: time.Now()})
	require.NoError(t, err)

	keys := []analysis.RegionKey{{Start: 900, End: 1000}, {Start: 120.5, End: 180}, {Start: 120.5, End: 180}}
	require.NoError(t, s.SetIgnoredAnomalies(track.ID, keys))

	got, err := s.GetIgnoredAnomalies(track.ID)
	require.NoError(t, err)
	assert.Equal(t, []analysis.RegionKey{{Start: 120.5, End: 180}, {Start: 900, End: 1000}}, got)

	// replace, not append
	require.NoError(t, s.SetIgnoredAnomalies(track.ID, keys[:1]))
	got, err = s.GetIgnoredAnomalies(track.ID)
	require.NoError(t, err)
	assert.Equal(t, keys[:1], got)

	// deleting the track cascades
	require.NoError(t, s.DeleteRecentTrack(track.ID))
	got, err = s.GetIgnoredAnomalies(track.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}
