// Package editor holds the mutable editing state of one loaded track: the
// current elevations, which samples were touched, the undo history, an
// in-flight drag and the set of anomalies the user chose to ignore.
package editor

import (
	"cmp"
	"maps"
	"math"
	"slices"

	"elevedit/internal/analysis"
)

// Setting bounds
const (
	MaxRadiusCap = 200
	MinThreshold = 1.0
	MaxThreshold = 100.0
)

// Settings are the user-adjustable editing parameters
type Settings struct {
	Radius    int     // neighbours affected on each side of an edit
	Strength  float64 // 0..1 blend intensity
	Threshold float64 // anomaly threshold in meters
}

// DefaultSettings returns the settings used when nothing is configured
func DefaultSettings() Settings {
	return Settings{Radius: 5, Strength: 0.5, Threshold: 10}
}

// dragState is owned by an active drag only. The snapshot is the state at
// drag start and every DragTo re-applies against it. History is not touched
// until the drag commits, so cancelling never evicts an older entry.
type dragState struct {
	target       int
	snapshot     []analysis.TrackPoint
	editedBefore map[int]struct{}
	moved        bool
}

// Session is the editing state of one track.
// It is not safe for concurrent use; the UI event loop serializes calls.
type Session struct {
	points        []analysis.TrackPoint
	original      []analysis.TrackPoint
	totalDistance float64

	edited  map[int]struct{}
	history *History
	drag    *dragState
	ignored map[analysis.RegionKey]bool

	settings Settings
	// radius is the radius asked for, before clamping to this track
	radius int

	anomalies      []analysis.AnomalyRegion
	anomaliesValid bool
}

// NewSession starts editing points. The slice is copied.
func NewSession(points []analysis.TrackPoint, totalDistance float64, settings Settings, historyLimit int) *Session {
	s := &Session{
		points:        analysis.ClonePoints(points),
		original:      analysis.ClonePoints(points),
		totalDistance: totalDistance,
		edited:        make(map[int]struct{}),
		history:       NewHistory(historyLimit),
		ignored:       make(map[analysis.RegionKey]bool),
	}
	s.SetRadius(settings.Radius)
	s.SetStrength(settings.Strength)
	s.SetThreshold(settings.Threshold)
	return s
}

// Points returns the current samples. Callers must not modify the slice.
func (s *Session) Points() []analysis.TrackPoint {
	return s.points
}

// Original returns the samples as first loaded
func (s *Session) Original() []analysis.TrackPoint {
	return s.original
}

// Len returns the number of samples
func (s *Session) Len() int {
	return len(s.points)
}

// TotalDistance returns the track length in meters
func (s *Session) TotalDistance() float64 {
	return s.totalDistance
}

// Stats recomputes the statistics of the current samples
func (s *Session) Stats() analysis.ElevationStats {
	return analysis.CalculateStats(s.points, s.totalDistance, len(s.edited))
}

// Settings returns the clamped editing parameters
func (s *Session) Settings() Settings {
	return s.settings
}

// Preferences returns the settings as the user chose them. They differ from
// Settings only in a radius above this track's MaxRadius, which a longer
// track may still allow.
func (s *Session) Preferences() Settings {
	p := s.settings
	p.Radius = s.radius
	return p
}

// MaxRadius is the largest radius allowed for this track: an eighth of the
// sample count, capped at 200.
func (s *Session) MaxRadius() int {
	return min(len(s.points)/8, MaxRadiusCap)
}

// SetRadius clamps r to [0, MaxRadius]. The unclamped request is kept for Preferences.
func (s *Session) SetRadius(r int) {
	s.radius = max(0, r)
	s.settings.Radius = min(s.radius, s.MaxRadius())
}

// SetStrength clamps v to [0, 1]
func (s *Session) SetStrength(v float64) {
	if math.IsNaN(v) {
		v = 0
	}
	s.settings.Strength = math.Max(0, math.Min(v, 1))
}

// SetThreshold clamps m to [1, 100] meters
func (s *Session) SetThreshold(m float64) {
	if math.IsNaN(m) {
		m = MinThreshold
	}
	m = math.Max(MinThreshold, math.Min(m, MaxThreshold))
	if m != s.settings.Threshold {
		s.anomaliesValid = false
	}
	s.settings.Threshold = m
}

// AllAnomalies returns every detected region, ignored ones included
func (s *Session) AllAnomalies() []analysis.AnomalyRegion {
	if !s.anomaliesValid {
		s.anomalies = analysis.DetectAnomalies(s.points, s.settings.Threshold)
		s.anomaliesValid = true
	}
	return s.anomalies
}

// Anomalies returns the detected regions the user has not ignored
func (s *Session) Anomalies() []analysis.AnomalyRegion {
	return analysis.FilterIgnored(s.AllAnomalies(), s.ignored)
}

// Ignore hides a region until Unignore. Identity is the distance pair, so the
// choice survives recomputation as long as the region itself is unchanged.
func (s *Session) Ignore(key analysis.RegionKey) {
	s.ignored[key] = true
}

// Unignore shows a previously ignored region again
func (s *Session) Unignore(key analysis.RegionKey) {
	delete(s.ignored, key)
}

// SetIgnored replaces the ignored set, e.g. with keys restored from storage
func (s *Session) SetIgnored(keys []analysis.RegionKey) {
	clear(s.ignored)
	for _, k := range keys {
		s.ignored[k] = true
	}
}

// IgnoredKeys returns the ignored set ordered by start distance
func (s *Session) IgnoredKeys() []analysis.RegionKey {
	keys := slices.Collect(maps.Keys(s.ignored))
	slices.SortFunc(keys, func(a, b analysis.RegionKey) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.End, b.End)
	})
	return keys
}

// EditedCount returns how many samples differ in provenance from the loaded track
func (s *Session) EditedCount() int {
	return len(s.edited)
}

// IsEdited reports whether sample i was touched by an edit
func (s *Session) IsEdited(i int) bool {
	_, ok := s.edited[i]
	return ok
}

// EditedIndices returns the touched samples in ascending order
func (s *Session) EditedIndices() []int {
	return sortedIndices(s.edited)
}

// CanUndo reports whether there is a history entry to restore
func (s *Session) CanUndo() bool {
	return s.history.CanUndo()
}

// HistoryLen returns the number of undoable steps
func (s *Session) HistoryLen() int {
	return s.history.Len()
}

// Dragging reports whether a drag is in progress
func (s *Session) Dragging() bool {
	return s.drag != nil
}

// DragTarget returns the sample index of the active drag, or -1
func (s *Session) DragTarget() int {
	if s.drag == nil {
		return -1
	}
	return s.drag.target
}

// BeginDrag starts a drag on sample i. It returns false if i is out of range
// or a drag is already active.
func (s *Session) BeginDrag(i int) bool {
	if s.drag != nil || i < 0 || i >= len(s.points) {
		return false
	}
	s.drag = &dragState{
		target:       i,
		snapshot:     analysis.ClonePoints(s.points),
		editedBefore: maps.Clone(s.edited),
	}
	return true
}

// DragTo moves the drag target to elevation, smoothing neighbours against the
// drag-start snapshot rather than the previous frame's output.
func (s *Session) DragTo(elevation float64) bool {
	d := s.drag
	if d == nil {
		return false
	}
	next := analysis.SmoothDrag(d.snapshot, d.target, elevation, s.settings.Radius, s.settings.Strength)

	edited := maps.Clone(d.editedBefore)
	markChanged(edited, d.snapshot, next)
	edited[d.target] = struct{}{}

	s.install(next, edited)
	d.moved = true
	return true
}

// DragBy offsets the drag target's current elevation by delta meters
func (s *Session) DragBy(delta float64) bool {
	if s.drag == nil {
		return false
	}
	return s.DragTo(s.points[s.drag.target].Elevation + delta)
}

// EndDrag commits the drag as one history entry holding the drag-start state.
// A drag that left every elevation as it was records nothing.
func (s *Session) EndDrag() {
	d := s.drag
	if d == nil {
		return
	}
	s.drag = nil
	if !d.moved || !changed(d.snapshot, s.points) {
		s.install(d.snapshot, d.editedBefore)
		return
	}
	s.history.Push(d.snapshot, sortedIndices(d.editedBefore))
}

// AbandonDrag restores the drag-start state. History is left as it was.
func (s *Session) AbandonDrag() {
	d := s.drag
	if d == nil {
		return
	}
	s.drag = nil
	s.install(d.snapshot, d.editedBefore)
}

// Click pulls the window around sample i toward its mean elevation.
// It returns false when nothing changed.
func (s *Session) Click(i int) bool {
	if s.drag != nil {
		return false
	}
	next := analysis.SmoothClick(s.points, i, s.settings.Radius, s.settings.Strength)
	return s.commit(next)
}

// FixAnomaly replaces the samples inside region with a straight line between
// its bounding samples. It returns false when the region covers fewer than
// three samples or nothing changed.
func (s *Session) FixAnomaly(region analysis.AnomalyRegion) bool {
	if s.drag != nil {
		return false
	}
	lo, hi, ok := analysis.IndexRange(s.points, region.StartDistance, region.EndDistance)
	if !ok || hi-lo < 2 {
		return false
	}
	return s.commit(analysis.InterpolateRange(s.points, lo, hi))
}

// Reset restores the loaded elevations as one undoable step
func (s *Session) Reset() bool {
	if s.drag != nil {
		s.AbandonDrag()
	}
	if len(s.edited) == 0 && !changed(s.points, s.original) {
		return false
	}
	s.history.Push(s.points, s.EditedIndices())
	s.install(analysis.ClonePoints(s.original), map[int]struct{}{})
	return true
}

// Undo restores the state before the last gesture. An in-flight drag is
// abandoned instead and the history is left for the next Undo.
func (s *Session) Undo() bool {
	if s.drag != nil {
		s.AbandonDrag()
		return true
	}
	entry, ok := s.history.Undo()
	if !ok {
		return false
	}
	edited := make(map[int]struct{}, len(entry.EditedIndices))
	for _, i := range entry.EditedIndices {
		edited[i] = struct{}{}
	}
	s.install(entry.Points, edited)
	return true
}

// commit installs next as a single undoable step if it differs from the current samples
func (s *Session) commit(next []analysis.TrackPoint) bool {
	if !changed(s.points, next) {
		return false
	}
	s.history.Push(s.points, s.EditedIndices())
	edited := maps.Clone(s.edited)
	markChanged(edited, s.points, next)
	s.install(next, edited)
	return true
}

func (s *Session) install(points []analysis.TrackPoint, edited map[int]struct{}) {
	s.points = points
	s.edited = edited
	s.anomaliesValid = false
}

func markChanged(edited map[int]struct{}, before, after []analysis.TrackPoint) {
	for i := range after {
		if i < len(before) && before[i].Elevation != after[i].Elevation {
			edited[i] = struct{}{}
		}
	}
}

func changed(a, b []analysis.TrackPoint) bool {
	if len(a) != len(b) {
		return true
	}
	for i := range a {
		if a[i].Elevation != b[i].Elevation {
			return true
		}
	}
	return false
}

func sortedIndices(set map[int]struct{}) []int {
	return slices.Sorted(maps.Keys(set))
}
