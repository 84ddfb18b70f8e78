package store

import (
	"context"
	"database/sql"
)

// migrate runs all database migrations
func migrate(ctx context.Context, db *sql.DB) error {
	migrations := []string{
		// Authentication (singleton row)
		`CREATE TABLE IF NOT EXISTS auth (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			athlete_id INTEGER NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Preferences (key-value store for last-used editor settings)
		`CREATE TABLE IF NOT EXISTS preferences (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Recently opened tracks
		`CREATE TABLE IF NOT EXISTS recent_tracks (
			id TEXT PRIMARY KEY,
			path TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			point_count INTEGER NOT NULL,
			distance REAL NOT NULL,
			source TEXT NOT NULL DEFAULT 'gpx',
			opened_at TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_recent_tracks_opened ON recent_tracks(opened_at)`,

		// Anomalies the user dismissed, keyed by distance pair per track
		`CREATE TABLE IF NOT EXISTS ignored_anomalies (
			track_id TEXT NOT NULL,
			start_distance REAL NOT NULL,
			end_distance REAL NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (track_id, start_distance, end_distance),
			FOREIGN KEY (track_id) REFERENCES recent_tracks(id) ON DELETE CASCADE
		)`,
	}

	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return err
		}
	}

	return nil
}
