package service

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"elevedit/internal/analysis"
	"elevedit/internal/editor"
	"elevedit/internal/gpx"
	"elevedit/internal/monitoring"
	"elevedit/internal/store"
	"elevedit/internal/timeutil"
)

// OpenedTrack is a loaded track plus its persisted bookkeeping
type OpenedTrack struct {
	Record  *store.RecentTrack
	Track   *gpx.Track
	Ignored []analysis.RegionKey // as stored when the track was opened

	// ExportBase is the path prefix for exports: <base>.edited.gpx,
	// <base>.profile.html and <base>.profile.png
	ExportBase string
}

// EditedGPXPath is where an edited copy is written
func (o *OpenedTrack) EditedGPXPath() string {
	return o.ExportBase + ".edited.gpx"
}

// TrackService opens and exports tracks and persists per-track state
type TrackService struct {
	store *store.Store
	clock timeutil.Clock
}

// NewTrackService creates a track service
func NewTrackService(st *store.Store, clock timeutil.Clock) *TrackService {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &TrackService{store: st, clock: clock}
}

// Open loads a GPX file and records it as recently opened
func (s *TrackService) Open(path string) (*OpenedTrack, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	track, err := gpx.Load(abs)
	if err != nil {
		return nil, err
	}
	base := strings.TrimSuffix(abs, filepath.Ext(abs))
	return s.register(track, abs, store.SourceGPX, base)
}

// register records a loaded track and restores its ignored anomalies
func (s *TrackService) register(track *gpx.Track, path, source, exportBase string) (*OpenedTrack, error) {
	record, err := s.store.TouchRecentTrack(&store.RecentTrack{
		Path:       path,
		Name:       track.Name,
		PointCount: len(track.Points),
		Distance:   track.TotalDistance,
		Source:     source,
		OpenedAt:   s.clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	ignored, err := s.store.GetIgnoredAnomalies(record.ID)
	if err != nil {
		return nil, fmt.Errorf("loading ignored anomalies: %w", err)
	}

	return &OpenedTrack{
		Record:     record,
		Track:      track,
		Ignored:    ignored,
		ExportBase: exportBase,
	}, nil
}

// Export writes the edited elevations next to the source and returns the path
func (s *TrackService) Export(t *OpenedTrack, points []analysis.TrackPoint) (string, error) {
	path := t.EditedGPXPath()
	if err := t.Track.Save(path, points); err != nil {
		return "", err
	}
	return path, nil
}

// SaveIgnored persists the dismissed anomalies of a track. It only reads t,
// so it may run off the UI loop; t.Ignored keeps the set loaded at open.
func (s *TrackService) SaveIgnored(t *OpenedTrack, keys []analysis.RegionKey) error {
	if err := s.store.SetIgnoredAnomalies(t.Record.ID, keys); err != nil {
		return fmt.Errorf("saving ignored anomalies: %w", err)
	}
	return nil
}

// Recent lists recently opened tracks, newest first
func (s *TrackService) Recent(limit int) ([]store.RecentTrack, error) {
	return s.store.ListRecentTracks(limit)
}

// Forget removes a track from the recent list
func (s *TrackService) Forget(id string) error {
	err := s.store.DeleteRecentTrack(id)
	if errors.Is(err, store.ErrTrackNotFound) {
		return nil
	}
	return err
}

// LoadSettings overlays the last-used editor settings on defaults
func (s *TrackService) LoadSettings(defaults editor.Settings) editor.Settings {
	out := defaults
	if v, ok, err := s.store.GetFloatPreference(store.PrefRadius); err == nil && ok {
		out.Radius = int(v)
	} else if err != nil {
		monitoring.Logf("service: reading radius preference: %v", err)
	}
	if v, ok, err := s.store.GetFloatPreference(store.PrefStrength); err == nil && ok {
		out.Strength = v
	}
	if v, ok, err := s.store.GetFloatPreference(store.PrefThreshold); err == nil && ok {
		out.Threshold = v
	}
	return out
}

// SaveSettings remembers the editor settings for the next session
func (s *TrackService) SaveSettings(settings editor.Settings) error {
	if err := s.store.SetFloatPreference(store.PrefRadius, float64(settings.Radius)); err != nil {
		return fmt.Errorf("saving radius: %w", err)
	}
	if err := s.store.SetFloatPreference(store.PrefStrength, settings.Strength); err != nil {
		return fmt.Errorf("saving strength: %w", err)
	}
	if err := s.store.SetFloatPreference(store.PrefThreshold, settings.Threshold); err != nil {
		return fmt.Errorf("saving threshold: %w", err)
	}
	return nil
}
