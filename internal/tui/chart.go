package tui

import (
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"elevedit/internal/analysis"
	"elevedit/internal/view"
)

// Chart size limits
const (
	minChartHeight = 6
	minPlotColumns = 10
	labelAllowance = 12 // columns left of the plot for y-axis labels
)

// chartLayout maps terminal cells to distance and elevation for the last
// rendered chart
type chartLayout struct {
	area   view.PlotArea
	domain view.Domain
	top    int // screen row of the first chart line
	rows   int // number of chart lines minus one
	lo, hi float64
}

// elevationAt maps a screen row to an elevation, clamped to the chart bounds
func (l chartLayout) elevationAt(y int) float64 {
	if l.rows <= 0 {
		return l.lo
	}
	r := math.Max(0, math.Min(float64(y-l.top), float64(l.rows)))
	return l.hi - r*(l.hi-l.lo)/float64(l.rows)
}

// contains reports whether (x, y) lies in the plot
func (l chartLayout) contains(x, y int) bool {
	return y >= l.top && y <= l.top+l.rows && x >= l.area.Left && x < l.area.Left+l.area.Width
}

// distanceAt maps a screen column to a distance, clamped into the domain
func (l chartLayout) distanceAt(x int) float64 {
	x = max(l.area.Left, min(x, l.area.Left+l.area.Width-1))
	d, _ := l.area.Distance(x, l.domain)
	return d
}

// columnSeries samples the profile once per plot column. Dense windows use the
// nearest sample, sparse ones interpolate between samples by distance.
func columnSeries(points []analysis.TrackPoint, d view.Domain, columns int) []float64 {
	if len(points) == 0 || columns <= 0 {
		return nil
	}
	if idx := view.Downsample(points, d, columns); len(idx) == columns {
		out := make([]float64, columns)
		for i, j := range idx {
			out[i] = points[j].Elevation
		}
		return out
	}

	area := view.PlotArea{Width: columns}
	out := make([]float64, columns)
	for col := range out {
		dist, _ := area.Distance(col, d)
		out[col] = interpolate(points, dist)
	}
	return out
}

// interpolate returns the elevation at dist by linear interpolation
func interpolate(points []analysis.TrackPoint, dist float64) float64 {
	i := analysis.NearestIndex(points, dist)
	p := points[i]
	j := i + 1
	if dist < p.Distance {
		j = i - 1
	}
	if j < 0 || j >= len(points) {
		return p.Elevation
	}
	q := points[j]
	span := q.Distance - p.Distance
	if span == 0 {
		return p.Elevation
	}
	t := (dist - p.Distance) / span
	return p.Elevation + (q.Elevation-p.Elevation)*t
}

// chartBounds returns padded elevation bounds of the visible window
func chartBounds(series ...[]float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	pad := math.Max((hi-lo)*0.1, 2)
	return math.Max(lo-pad, 0), hi + pad
}

// renderChart draws the profile of the visible window with asciigraph and
// works out where the plot area landed. The original profile is drawn as a
// second series when it differs.
func renderChart(points, original []analysis.TrackPoint, d view.Domain, width, height int, bounds *[2]float64) (string, chartLayout) {
	columns := max(width-labelAllowance, minPlotColumns)
	height = max(height, minChartHeight)

	current := columnSeries(points, d, columns)
	series := [][]float64{current}
	var before []float64
	if original != nil {
		before = columnSeries(original, d, columns)
		if !equalSeries(current, before) {
			series = append([][]float64{before}, current)
		}
	}

	lo, hi := chartBounds(series...)
	if bounds != nil {
		lo = math.Min(lo, bounds[0])
		hi = math.Max(hi, bounds[1])
	}

	layout := chartLayout{domain: d, lo: lo, hi: hi}
	if len(current) == 0 {
		return "", layout
	}

	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Width(columns),
		asciigraph.LowerBound(lo),
		asciigraph.UpperBound(hi),
		asciigraph.Precision(0),
	}
	if len(series) > 1 {
		opts = append(opts, asciigraph.SeriesColors(originalSeriesColor, profileSeriesColor))
	}
	var chart string
	if len(series) > 1 {
		chart = asciigraph.PlotMany(series, opts...)
	} else {
		chart = asciigraph.Plot(current, opts...)
	}

	lines := strings.Split(chart, "\n")
	layout.rows = len(lines) - 1
	layout.area = view.PlotArea{Left: plotLeft(lines), Width: columns}
	return chart, layout
}

// plotLeft finds the first data column by locating the y-axis
func plotLeft(lines []string) int {
	for _, line := range lines {
		col := 0
		for _, r := range stripANSI(line) {
			if r == '┤' || r == '┼' {
				return col + 1
			}
			col++
		}
	}
	return labelAllowance
}

// stripANSI drops colour escape sequences so rune positions match screen columns
func stripANSI(s string) string {
	if !strings.Contains(s, "\x1b[") {
		return s
	}
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			if r >= '@' && r <= '~' && r != '[' {
				inEscape = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func equalSeries(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// overlayRow marks anomaly regions under the chart. Each region gets a
// button glyph at its centre that ignores it when clicked.
func overlayRow(placements []view.RegionPlacement, selected analysis.RegionKey, width int) string {
	cells := make([]rune, width)
	styles := make([]int, width) // 0 none, 1 anomaly, 2 selected
	for i := range cells {
		cells[i] = ' '
	}
	for _, p := range placements {
		style := 1
		if p.Region.Key() == selected {
			style = 2
		}
		for c := max(p.Start, 0); c <= p.End && c < width; c++ {
			cells[c] = '━'
			styles[c] = style
		}
		if p.Button >= 0 && p.Button < width {
			cells[p.Button] = '✕'
		}
	}
	return styleRuns(cells, styles, map[int]func(...string) string{
		1: anomalyStyle.Render,
		2: selectedAnomalyStyle.Render,
	})
}

// markerRow shows the cursor and edited samples under the overlay row
func markerRow(edited []int, cursorCol int, dragging bool, points []analysis.TrackPoint, layout chartLayout, width int) string {
	cells := make([]rune, width)
	styles := make([]int, width)
	for i := range cells {
		cells[i] = ' '
	}
	for _, i := range edited {
		if i >= len(points) {
			continue
		}
		dist := points[i].Distance
		if dist < layout.domain.Min || dist > layout.domain.Max {
			continue
		}
		if c := layout.area.Column(dist, layout.domain); c >= 0 && c < width {
			cells[c] = '·'
			styles[c] = 1
		}
	}
	if cursorCol >= 0 && cursorCol < width {
		cells[cursorCol] = '▲'
		styles[cursorCol] = 2
		if dragging {
			cells[cursorCol] = '◆'
			styles[cursorCol] = 3
		}
	}
	return styleRuns(cells, styles, map[int]func(...string) string{
		1: editedStyle.Render,
		2: cursorStyle.Render,
		3: dragStyle.Render,
	})
}

// styleRuns renders runs of equally styled cells
func styleRuns(cells []rune, styles []int, render map[int]func(...string) string) string {
	var b strings.Builder
	for start := 0; start < len(cells); {
		end := start
		for end < len(cells) && styles[end] == styles[start] {
			end++
		}
		run := string(cells[start:end])
		if f, ok := render[styles[start]]; ok {
			run = f(run)
		}
		b.WriteString(run)
		start = end
	}
	return strings.TrimRight(b.String(), " ")
}
