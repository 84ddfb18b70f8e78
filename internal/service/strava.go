package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/oauth2"

	"elevedit/internal/auth"
	"elevedit/internal/config"
	"elevedit/internal/gpx"
	"elevedit/internal/monitoring"
	"elevedit/internal/store"
	"elevedit/internal/strava"
)

// ErrStravaNotConfigured is returned when the config has no Strava credentials
var ErrStravaNotConfigured = errors.New("strava credentials not configured")

// NewStravaClient builds an API client from the stored tokens. It returns
// store.ErrNoAuth when the user has not logged in yet.
func NewStravaClient(cfg *config.Config, st *store.Store) (*strava.Client, error) {
	if !cfg.HasStrava() {
		return nil, ErrStravaNotConfigured
	}
	storedAuth, err := st.GetAuth()
	if err != nil {
		return nil, err
	}

	oauthCfg := auth.Credentials{
		ClientID:     cfg.Strava.ClientID,
		ClientSecret: cfg.Strava.ClientSecret,
	}.OAuthConfig()
	token := &oauth2.Token{
		AccessToken:  storedAuth.AccessToken,
		RefreshToken: storedAuth.RefreshToken,
		Expiry:       storedAuth.ExpiresAt,
	}
	tokenSource := auth.NewTokenSource(oauthCfg, token, func(newToken *oauth2.Token) error {
		return st.UpdateTokens(newToken.AccessToken, newToken.RefreshToken, newToken.Expiry)
	})

	return strava.NewClient(tokenSource), nil
}

// Login runs the OAuth flow and stores the tokens
func Login(ctx context.Context, cfg *config.Config, st *store.Store, prompt func(authURL string)) (*auth.AuthResult, error) {
	if err := cfg.ValidateStrava(); err != nil {
		return nil, err
	}
	oauthCfg := auth.Credentials{
		ClientID:     cfg.Strava.ClientID,
		ClientSecret: cfg.Strava.ClientSecret,
	}.OAuthConfig()

	result, err := auth.Authenticate(ctx, oauthCfg, prompt)
	if err != nil {
		return nil, err
	}

	storedAuth := &store.Auth{
		AthleteID:    result.AthleteID,
		AccessToken:  result.Token.AccessToken,
		RefreshToken: result.Token.RefreshToken,
		ExpiresAt:    result.Token.Expiry,
	}
	if err := st.SaveAuth(storedAuth); err != nil {
		return nil, fmt.Errorf("saving auth: %w", err)
	}
	return result, nil
}

// ActivitySource is the part of the Strava API used by import
type ActivitySource interface {
	GetActivities(ctx context.Context, page, perPage int) ([]strava.Activity, error)
	GetActivity(ctx context.Context, activityID int64) (*strava.Activity, error)
	GetActivityStreams(ctx context.Context, activityID int64) (*strava.Streams, error)
}

// ImportService turns Strava activities into editable tracks
type ImportService struct {
	source    ActivitySource
	tracks    *TrackService
	exportDir string
}

// NewImportService creates an import service. Imported tracks export into exportDir.
func NewImportService(source ActivitySource, tracks *TrackService, exportDir string) *ImportService {
	return &ImportService{source: source, tracks: tracks, exportDir: exportDir}
}

// RecentActivities lists the athlete's latest activities
func (s *ImportService) RecentActivities(ctx context.Context, limit int) ([]strava.Activity, error) {
	return s.source.GetActivities(ctx, 1, limit)
}

// Quota reports the requests left before Strava throttles the client.
// ok is false when the source does not track rate limits.
func (s *ImportService) Quota() (shortRemaining, dailyRemaining int, ok bool) {
	limited, ok := s.source.(interface {
		RateLimitStatus() (int, int)
	})
	if !ok {
		return 0, 0, false
	}
	shortRemaining, dailyRemaining = limited.RateLimitStatus()
	return shortRemaining, dailyRemaining, true
}

// Import fetches an activity's streams and opens them as a track
func (s *ImportService) Import(ctx context.Context, activityID int64) (*OpenedTrack, error) {
	activity, err := s.source.GetActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	streams, err := s.source.GetActivityStreams(ctx, activityID)
	if err != nil {
		return nil, err
	}
	points, err := strava.TrackPoints(activity, streams)
	if err != nil {
		return nil, fmt.Errorf("converting activity %d: %w", activityID, err)
	}
	if len(points) == 0 {
		return nil, gpx.ErrNoPoints
	}

	name := activity.Name
	if name == "" {
		name = fmt.Sprintf("Strava %d", activityID)
	}
	track := gpx.FromPoints(name, points)
	monitoring.Logf("service: imported strava activity %d (%d points)", activityID, len(points))

	base := filepath.Join(s.exportDir, fmt.Sprintf("strava-%d-%s", activityID, slug(name)))
	return s.tracks.register(track, StravaPath(activityID), store.SourceStrava, base)
}

// StravaPath is the recent-track key of an imported activity
func StravaPath(activityID int64) string {
	return "strava:" + strconv.FormatInt(activityID, 10)
}

// ParseStravaPath extracts the activity id from a StravaPath key
func ParseStravaPath(path string) (int64, bool) {
	rest, ok := strings.CutPrefix(path, "strava:")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	return id, err == nil
}

// slug lowercases name and keeps only filename-safe characters
func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
