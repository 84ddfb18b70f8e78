// Package report renders an elevation profile with its anomalies as an
// interactive HTML chart and as a PNG image.
package report

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"elevedit/internal/analysis"
	"elevedit/internal/monitoring"
)

// Distance units
const (
	UnitKilometers = "km"
	UnitMiles      = "mi"
)

const metersPerMile = 1609.34

// Profile is everything a report draws
type Profile struct {
	Name      string
	Points    []analysis.TrackPoint // current elevations
	Original  []analysis.TrackPoint // as loaded; drawn dashed when it differs
	Anomalies []analysis.AnomalyRegion
	Stats     analysis.ElevationStats
	Unit      string
}

// Paths of an exported report pair
type Paths struct {
	HTML string
	PNG  string
}

// PathsFor returns the report files for an export base path
func PathsFor(base string) Paths {
	return Paths{HTML: base + ".profile.html", PNG: base + ".profile.png"}
}

// Export writes both report files next to base
func Export(base string, p Profile) (Paths, error) {
	paths := PathsFor(base)

	var buf bytes.Buffer
	if err := WriteHTML(&buf, p); err != nil {
		return paths, err
	}
	if err := os.WriteFile(paths.HTML, buf.Bytes(), 0644); err != nil {
		return paths, fmt.Errorf("writing %s: %w", paths.HTML, err)
	}

	if err := SavePNG(paths.PNG, p); err != nil {
		return paths, err
	}

	monitoring.Logf("report: wrote %s and %s (%d points, %d anomalies)", paths.HTML, paths.PNG, len(p.Points), len(p.Anomalies))
	return paths, nil
}

// unitScale converts meters into the profile's distance unit
func (p Profile) unitScale() float64 {
	if p.Unit == UnitMiles {
		return 1 / metersPerMile
	}
	return 1.0 / 1000
}

func (p Profile) unitLabel() string {
	if p.Unit == UnitMiles {
		return "Distance (mi)"
	}
	return "Distance (km)"
}

// originalDiffers reports whether the original profile is worth drawing
func (p Profile) originalDiffers() bool {
	if len(p.Original) != len(p.Points) {
		return false
	}
	for i := range p.Points {
		if p.Points[i].Elevation != p.Original[i].Elevation {
			return true
		}
	}
	return false
}

// elevationRange returns padded bounds covering both profiles
func (p Profile) elevationRange() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, set := range [][]analysis.TrackPoint{p.Points, p.Original} {
		for _, pt := range set {
			lo = math.Min(lo, pt.Elevation)
			hi = math.Max(hi, pt.Elevation)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	pad := math.Max((hi-lo)*0.05, 1)
	return math.Max(lo-pad, 0), hi + pad
}

func (p Profile) subtitle() string {
	s := p.Stats
	return fmt.Sprintf("ascent %.0f m, descent %.0f m, %d anomalies, %d edited points",
		s.TotalAscent, s.TotalDescent, len(p.Anomalies), s.EditedCount)
}
