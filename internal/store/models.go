package store

import "time"

// Auth represents OAuth tokens for Strava API access
type Auth struct {
	AthleteID    int64     `db:"athlete_id"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"`
}

// Track sources
const (
	SourceGPX    = "gpx"
	SourceStrava = "strava"
)

// RecentTrack is a track the user opened before
type RecentTrack struct {
	ID         string    `db:"id"`   // uuid
	Path       string    `db:"path"` // file path, or strava:<activity id>
	Name       string    `db:"name"`
	PointCount int       `db:"point_count"`
	Distance   float64   `db:"distance"` // meters
	Source     string    `db:"source"`
	OpenedAt   time.Time `db:"opened_at"`
}
