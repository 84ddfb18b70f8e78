// Package gpx reads GPX tracks into editable samples and writes edited
// elevations back into the original document, leaving every other field as
// it was loaded.
package gpx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gpxgo "github.com/tkrajina/gpxgo/gpx"

	"elevedit/internal/analysis"
	"elevedit/internal/monitoring"
)

// ErrNoPoints is returned for documents without any track or route points
var ErrNoPoints = errors.New("gpx contains no points")

// ErrPointCount is returned when exporting a different number of samples than were loaded
var ErrPointCount = errors.New("point count does not match loaded track")

// pointRef locates a sample inside the source document
type pointRef struct {
	route   bool
	outer   int // track or route index
	segment int
	point   int
}

// Track is a parsed GPX document flattened to samples
type Track struct {
	Name          string
	Points        []analysis.TrackPoint
	TotalDistance float64

	// mu guards doc, which Encode rewrites in place
	mu   sync.Mutex
	doc  *gpxgo.GPX
	refs []pointRef
	// known marks samples whose source point carried <ele>; loaded holds
	// the elevations as parsed, gap fills included
	known  []bool
	loaded []float64
}

// Load parses the GPX file at path
func Load(path string) (*Track, error) {
	doc, err := gpxgo.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	t, err := fromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	if t.Name == "" {
		t.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	monitoring.Logf("gpx: loaded %s (%d points, %.0f m)", path, len(t.Points), t.TotalDistance)
	return t, nil
}

// Parse reads a GPX document from r
func Parse(r io.Reader) (*Track, error) {
	doc, err := gpxgo.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing gpx: %w", err)
	}
	return fromDocument(doc)
}

// FromPoints builds a single-segment document around points, for tracks that
// did not come from a GPX file.
func FromPoints(name string, points []analysis.TrackPoint) *Track {
	seg := gpxgo.GPXTrackSegment{Points: make([]gpxgo.GPXPoint, len(points))}
	refs := make([]pointRef, len(points))
	for i, p := range points {
		seg.Points[i] = gpxgo.GPXPoint{
			Point: gpxgo.Point{
				Latitude:  p.Lat,
				Longitude: p.Lon,
				Elevation: *gpxgo.NewNullableFloat64(p.Elevation),
			},
			Timestamp: p.Time,
		}
		refs[i] = pointRef{point: i}
	}

	doc := &gpxgo.GPX{
		Version: "1.1",
		Creator: "elevedit",
		Name:    name,
		Tracks:  []gpxgo.GPXTrack{{Name: name, Segments: []gpxgo.GPXTrackSegment{seg}}},
	}

	var total float64
	if len(points) > 0 {
		total = points[len(points)-1].Distance
	}
	known := make([]bool, len(points))
	for i := range known {
		known[i] = true
	}
	return &Track{
		Name:          name,
		Points:        analysis.ClonePoints(points),
		TotalDistance: total,
		doc:           doc,
		refs:          refs,
		known:         known,
		loaded:        analysis.Elevations(points),
	}
}

func fromDocument(doc *gpxgo.GPX) (*Track, error) {
	t := &Track{doc: doc}

	for ti := range doc.Tracks {
		trk := &doc.Tracks[ti]
		if t.Name == "" {
			t.Name = trk.Name
		}
		for si := range trk.Segments {
			for pi := range trk.Segments[si].Points {
				t.refs = append(t.refs, pointRef{outer: ti, segment: si, point: pi})
			}
		}
	}

	// route-only files are still editable
	if len(t.refs) == 0 {
		for ri := range doc.Routes {
			if t.Name == "" {
				t.Name = doc.Routes[ri].Name
			}
			for pi := range doc.Routes[ri].Points {
				t.refs = append(t.refs, pointRef{route: true, outer: ri, point: pi})
			}
		}
	}
	if len(t.refs) == 0 {
		return nil, ErrNoPoints
	}
	if t.Name == "" {
		t.Name = doc.Name
	}

	t.Points = make([]analysis.TrackPoint, len(t.refs))
	known := make([]bool, len(t.refs))
	var (
		prev  *gpxgo.GPXPoint
		total float64
	)
	for i, ref := range t.refs {
		p := t.point(ref)
		if prev != nil {
			total += prev.Point.Distance2D(&p.Point)
		}
		prev = p

		t.Points[i] = analysis.TrackPoint{
			Lat:      p.Latitude,
			Lon:      p.Longitude,
			Distance: total,
			Time:     p.Timestamp,
		}
		if p.Elevation.NotNull() {
			t.Points[i].Elevation = p.Elevation.Value()
			known[i] = true
		}
	}
	t.TotalDistance = total
	fillElevations(t.Points, known)
	t.known = known
	t.loaded = analysis.Elevations(t.Points)

	return t, nil
}

// fillElevations carries the nearest known elevation into samples that had
// none: forward from the previous known sample, or backward for a leading gap.
func fillElevations(points []analysis.TrackPoint, known []bool) {
	first := -1
	for i, ok := range known {
		if ok {
			first = i
			break
		}
	}
	if first < 0 {
		return
	}
	last := points[first].Elevation
	for i := range points {
		if known[i] {
			last = points[i].Elevation
			continue
		}
		points[i].Elevation = last
	}
}

func (t *Track) point(ref pointRef) *gpxgo.GPXPoint {
	if ref.route {
		return &t.doc.Routes[ref.outer].Points[ref.point]
	}
	return &t.doc.Tracks[ref.outer].Segments[ref.segment].Points[ref.point]
}

// Encode writes the source document with the elevations of points. Only
// elevation values change; points must match the loaded sample count.
// A point that had no <ele> keeps none unless its elevation was edited.
// The document keeps its GPX version. Encode is safe to call concurrently.
func (t *Track) Encode(w io.Writer, points []analysis.TrackPoint) error {
	if len(points) != len(t.refs) {
		return fmt.Errorf("encoding %d points into %d: %w", len(points), len(t.refs), ErrPointCount)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for i, ref := range t.refs {
		ele := &t.point(ref).Elevation
		if t.known[i] || points[i].Elevation != t.loaded[i] {
			ele.SetValue(points[i].Elevation)
		} else {
			ele.SetNull()
		}
	}

	data, err := t.doc.ToXml(gpxgo.ToXmlParams{Indent: true})
	if err != nil {
		return fmt.Errorf("serializing gpx: %w", err)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing gpx: %w", err)
	}
	return nil
}

// Save writes the edited document to path
func (t *Track) Save(path string, points []analysis.TrackPoint) error {
	var buf bytes.Buffer
	if err := t.Encode(&buf, points); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	monitoring.Logf("gpx: saved %s (%d points)", path, len(points))
	return nil
}

// EditedPath derives the export path for an edited copy of path
func EditedPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".edited.gpx"
}
