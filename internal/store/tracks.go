package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"elevedit/internal/analysis"
)

// TouchRecentTrack records that the track at path was opened at openedAt.
// An existing entry keeps its id, so ignored anomalies stay attached to it.
func (s *Store) TouchRecentTrack(t *RecentTrack) (*RecentTrack, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Source == "" {
		t.Source = SourceGPX
	}

	var id string
	err := s.db.QueryRowContext(context.Background(), `
		INSERT INTO recent_tracks (id, path, name, point_count, distance, source, opened_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			name = excluded.name,
			point_count = excluded.point_count,
			distance = excluded.distance,
			source = excluded.source,
			opened_at = excluded.opened_at
		RETURNING id
	`, t.ID, t.Path, t.Name, t.PointCount, t.Distance, t.Source, t.OpenedAt.UTC().Format(time.RFC3339)).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("saving recent track: %w", err)
	}

	out := *t
	out.ID = id
	return &out, nil
}

// GetRecentTrack retrieves a recent track by id
func (s *Store) GetRecentTrack(id string) (*RecentTrack, error) {
	row := s.db.QueryRowContext(context.Background(), `
		SELECT id, path, name, point_count, distance, source, opened_at
		FROM recent_tracks
		WHERE id = ?
	`, id)
	t, err := scanRecentTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTrackNotFound
	}
	return t, err
}

// GetRecentTrackByPath retrieves a recent track by its path
func (s *Store) GetRecentTrackByPath(path string) (*RecentTrack, error) {
	row := s.db.QueryRowContext(context.Background(), `
		SELECT id, path, name, point_count, distance, source, opened_at
		FROM recent_tracks
		WHERE path = ?
	`, path)
	t, err := scanRecentTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTrackNotFound
	}
	return t, err
}

// ListRecentTracks returns tracks ordered by last opened, newest first
func (s *Store) ListRecentTracks(limit int) ([]RecentTrack, error) {
	rows, err := s.db.QueryContext(context.Background(), `
		SELECT id, path, name, point_count, distance, source, opened_at
		FROM recent_tracks
		ORDER BY opened_at DESC, name
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []RecentTrack
	for rows.Next() {
		t, err := scanRecentTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, *t)
	}
	return tracks, rows.Err()
}

// DeleteRecentTrack removes a track and its ignored anomalies
func (s *Store) DeleteRecentTrack(id string) error {
	result, err := s.db.ExecContext(context.Background(), `DELETE FROM recent_tracks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTrackNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecentTrack(row rowScanner) (*RecentTrack, error) {
	var t RecentTrack
	var openedAt string
	if err := row.Scan(&t.ID, &t.Path, &t.Name, &t.PointCount, &t.Distance, &t.Source, &openedAt); err != nil {
		return nil, err
	}
	var err error
	t.OpenedAt, err = time.Parse(time.RFC3339, openedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing opened_at %q: %w", openedAt, err)
	}
	return &t, nil
}

// GetIgnoredAnomalies returns the dismissed regions of a track ordered by distance
func (s *Store) GetIgnoredAnomalies(trackID string) ([]analysis.RegionKey, error) {
	rows, err := s.db.QueryContext(context.Background(), `
		SELECT start_distance, end_distance
		FROM ignored_anomalies
		WHERE track_id = ?
		ORDER BY start_distance, end_distance
	`, trackID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []analysis.RegionKey
	for rows.Next() {
		var k analysis.RegionKey
		if err := rows.Scan(&k.Start, &k.End); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// SetIgnoredAnomalies replaces the dismissed regions of a track
func (s *Store) SetIgnoredAnomalies(trackID string, keys []analysis.RegionKey) error {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ignored_anomalies WHERE track_id = ?`, trackID); err != nil {
		return fmt.Errorf("clearing ignored anomalies: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO ignored_anomalies (track_id, start_distance, end_distance)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, k := range keys {
		if _, err := stmt.ExecContext(ctx, trackID, k.Start, k.End); err != nil {
			return fmt.Errorf("inserting ignored anomaly: %w", err)
		}
	}

	return tx.Commit()
}
