package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"elevedit/internal/analysis"
)

// WriteHTML renders the profile as a self-contained go-echarts page
func WriteHTML(w io.Writer, p Profile) error {
	scale := p.unitScale()
	lo, hi := p.elevationRange()

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: p.Name + " elevation", Width: "1200px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: p.Name, Subtitle: p.subtitle()}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}, opts.DataZoom{Type: "slider"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: p.unitLabel(), NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Elevation (m)", Min: lo, Max: hi}),
	)

	areas := make([]opts.MarkAreaNameCoordItem, 0, len(p.Anomalies))
	for i, a := range p.Anomalies {
		areas = append(areas, opts.MarkAreaNameCoordItem{
			Name:        fmt.Sprintf("#%d x%.1f", i+1, a.Severity),
			Coordinate0: []interface{}{a.StartDistance * scale, lo},
			Coordinate1: []interface{}{a.EndDistance * scale, hi},
			ItemStyle:   &opts.ItemStyle{Color: "rgba(255, 82, 82, 0.25)"},
		})
	}

	line.AddSeries("elevation", lineData(p.Points, scale),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#26828e"}),
		charts.WithMarkAreaNameCoordItemOpts(areas...),
	)
	if p.originalDiffers() {
		line.AddSeries("original", lineData(p.Original, scale),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#9e9e9e"}),
		)
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("rendering html report: %w", err)
	}
	return nil
}

func lineData(points []analysis.TrackPoint, scale float64) []opts.LineData {
	data := make([]opts.LineData, len(points))
	for i, pt := range points {
		data[i] = opts.LineData{Value: []interface{}{pt.Distance * scale, pt.Elevation}}
	}
	return data
}
