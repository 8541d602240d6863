// Package chart renders the prediction overlay: the raw close series
// with the train-region and test-region predictions drawn on the same
// timeline.
package chart

import (
	"fmt"
	"image/color"
	"math"
	"os"

	"stock-sage/internal/domain"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Renderer writes overlay charts to a fixed path and returns the encoded
// PNG bytes.
type Renderer struct {
	path string
}

func NewRenderer(path string) *Renderer {
	if path == "" {
		path = "chart.png"
	}
	return &Renderer{path: path}
}

// RenderOverlay draws the original series in green, train predictions in
// blue and test predictions in yellow. The aligned prediction slices use
// NaN for days outside their region; those days are simply not drawn.
func (r *Renderer) RenderOverlay(series domain.DailySeries, trainPlot, testPlot []float64) ([]byte, error) {
	p := plot.New()
	p.Title.Text = series.Symbol
	p.X.Label.Text = "Trading day"
	p.Y.Label.Text = "Close"

	grid := plotter.NewGrid()
	dashes := []vg.Length{vg.Points(2), vg.Points(2)}
	grid.Horizontal.Dashes = dashes
	grid.Vertical.Dashes = dashes
	p.Add(grid)

	original := make(plotter.XYs, series.Len())
	for i, point := range series.Points {
		original[i].X = float64(i)
		original[i].Y = point.Close
	}

	lines := []struct {
		label string
		data  plotter.XYs
		color color.RGBA
	}{
		{"Original", original, color.RGBA{G: 160, A: 255}},
		{"Train predict", alignedXYs(trainPlot), color.RGBA{B: 255, A: 255}},
		{"Test predict", alignedXYs(testPlot), color.RGBA{R: 230, G: 190, A: 255}},
	}
	for _, l := range lines {
		if len(l.data) == 0 {
			continue
		}
		line, err := plotter.NewLine(l.data)
		if err != nil {
			return nil, fmt.Errorf("line plot for %s: %w", l.label, err)
		}
		line.LineStyle.Color = l.color
		p.Add(line)
		p.Legend.Add(l.label, line)
	}
	p.Legend.Top = true

	if err := p.Save(12*vg.Inch, 8*vg.Inch, r.path); err != nil {
		return nil, fmt.Errorf("save chart: %w", err)
	}
	return os.ReadFile(r.path)
}

func alignedXYs(aligned []float64) plotter.XYs {
	var out plotter.XYs
	for i, v := range aligned {
		if math.IsNaN(v) {
			continue
		}
		out = append(out, plotter.XY{X: float64(i), Y: v})
	}
	return out
}
