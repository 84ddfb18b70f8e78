package view

import (
	"math"

	"elevedit/internal/analysis"
)

// PlotArea is the horizontal extent of the chart's data area in terminal
// columns, as measured by the renderer after each layout change.
type PlotArea struct {
	Left  int // column of the first data point
	Width int // number of data columns
}

// Column maps distance to a column for the visible domain d
func (a PlotArea) Column(distance float64, d Domain) int {
	if a.Width <= 1 || d.Width() <= 0 {
		return a.Left
	}
	frac := (distance - d.Min) / d.Width()
	return a.Left + int(math.Round(frac*float64(a.Width-1)))
}

// Distance maps a column back to a distance. ok is false for columns outside
// the data area.
func (a PlotArea) Distance(col int, d Domain) (distance float64, ok bool) {
	if a.Width <= 0 || col < a.Left || col >= a.Left+a.Width {
		return 0, false
	}
	if a.Width == 1 {
		return d.Min, true
	}
	frac := float64(col-a.Left) / float64(a.Width-1)
	return d.Min + frac*d.Width(), true
}

// RegionPlacement is where an anomaly region and its action button land on screen
type RegionPlacement struct {
	Region analysis.AnomalyRegion
	Start  int // first highlighted column
	End    int // last highlighted column
	Button int // column the region's label is centred on
}

// PlaceRegions computes the on-screen span of each region that intersects the
// visible domain. Regions are clipped to the domain; those entirely outside
// are omitted. Order follows the input.
func PlaceRegions(regions []analysis.AnomalyRegion, d Domain, area PlotArea) []RegionPlacement {
	var out []RegionPlacement
	for _, r := range regions {
		if r.EndDistance < d.Min || r.StartDistance > d.Max {
			continue
		}
		start := area.Column(math.Max(r.StartDistance, d.Min), d)
		end := area.Column(math.Min(r.EndDistance, d.Max), d)
		out = append(out, RegionPlacement{
			Region: r,
			Start:  start,
			End:    end,
			Button: (start + end) / 2,
		})
	}
	return out
}

// Downsample picks one sample index per data column for the visible domain,
// choosing the sample nearest to each column's distance. It returns nil when
// nothing is visible.
func Downsample(points []analysis.TrackPoint, d Domain, columns int) []int {
	if columns <= 0 || len(points) == 0 || d.Width() <= 0 {
		return nil
	}
	lo, hi, ok := analysis.IndexRange(points, d.Min, d.Max)
	if !ok {
		return nil
	}
	if hi-lo+1 <= columns {
		idx := make([]int, 0, hi-lo+1)
		for i := lo; i <= hi; i++ {
			idx = append(idx, i)
		}
		return idx
	}

	area := PlotArea{Width: columns}
	idx := make([]int, columns)
	for col := range idx {
		dist, _ := area.Distance(col, d)
		idx[col] = analysis.NearestIndex(points, dist)
	}
	return idx
}
