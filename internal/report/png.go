package report

import (
	"fmt"
	"image/color"
	"io"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"elevedit/internal/analysis"
)

// PNG dimensions
const (
	pngWidth  = 14 * vg.Inch
	pngHeight = 5 * vg.Inch
)

var (
	profileColor  = color.RGBA{R: 0x26, G: 0x82, B: 0x8e, A: 255}
	originalColor = color.RGBA{R: 0x9e, G: 0x9e, B: 0x9e, A: 255}
	anomalyColor  = color.RGBA{R: 0xff, G: 0x52, B: 0x52, A: 64}
)

// SavePNG renders the profile to a PNG file
func SavePNG(path string, p Profile) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WritePNG(f, p); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// WritePNG renders the profile as PNG into w
func WritePNG(w io.Writer, p Profile) error {
	pl, err := newPlot(p)
	if err != nil {
		return err
	}
	wt, err := pl.WriterTo(pngWidth, pngHeight, "png")
	if err != nil {
		return fmt.Errorf("preparing png report: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("writing png report: %w", err)
	}
	return nil
}

func newPlot(p Profile) (*plot.Plot, error) {
	scale := p.unitScale()
	lo, hi := p.elevationRange()

	pl := plot.New()
	pl.Title.Text = p.Name + "\n" + p.subtitle()
	pl.X.Label.Text = p.unitLabel()
	pl.Y.Label.Text = "Elevation (m)"
	pl.Y.Min, pl.Y.Max = lo, hi
	pl.Add(plotter.NewGrid())

	// anomaly bands go first so the profile draws over them
	for _, a := range p.Anomalies {
		x0, x1 := a.StartDistance*scale, a.EndDistance*scale
		band, err := plotter.NewPolygon(plotter.XYs{{X: x0, Y: lo}, {X: x1, Y: lo}, {X: x1, Y: hi}, {X: x0, Y: hi}})
		if err != nil {
			return nil, fmt.Errorf("anomaly band: %w", err)
		}
		band.Color = anomalyColor
		band.LineStyle.Width = 0
		pl.Add(band)
	}

	if p.originalDiffers() {
		orig, err := plotter.NewLine(xys(p.Original, scale))
		if err != nil {
			return nil, fmt.Errorf("original line: %w", err)
		}
		orig.Color = originalColor
		orig.Width = vg.Points(1)
		orig.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		pl.Add(orig)
		pl.Legend.Add("original", orig)
	}

	if len(p.Points) > 0 {
		line, err := plotter.NewLine(xys(p.Points, scale))
		if err != nil {
			return nil, fmt.Errorf("profile line: %w", err)
		}
		line.Color = profileColor
		line.Width = vg.Points(1.5)
		pl.Add(line)
		pl.Legend.Add("elevation", line)
	}
	pl.Legend.Top = true

	return pl, nil
}

func xys(points []analysis.TrackPoint, scale float64) plotter.XYs {
	out := make(plotter.XYs, len(points))
	for i, pt := range points {
		out[i] = plotter.XY{X: pt.Distance * scale, Y: pt.Elevation}
	}
	return out
}
