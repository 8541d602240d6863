package chart

import (
	"bytes"
	"math"
	"path/filepath"
	"testing"
	"time"

	"stock-sage/internal/domain"
)

func testSeries(n int) domain.DailySeries {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	points := make([]domain.PricePoint, n)
	for i := range points {
		points[i] = domain.PricePoint{
			Date:  start.AddDate(0, 0, i),
			Close: 100 + float64(i),
		}
	}
	return domain.DailySeries{Symbol: "TEST", Points: points}
}

func TestRenderOverlayProducesPNG(t *testing.T) {
	renderer := NewRenderer(filepath.Join(t.TempDir(), "chart.png"))
	series := testSeries(50)

	trainPlot := make([]float64, 50)
	testPlot := make([]float64, 50)
	for i := range trainPlot {
		trainPlot[i] = math.NaN()
		testPlot[i] = math.NaN()
	}
	for i := 10; i < 30; i++ {
		trainPlot[i] = 100 + float64(i) + 0.5
	}
	for i := 40; i < 49; i++ {
		testPlot[i] = 100 + float64(i) - 0.5
	}

	png, err := renderer.RenderOverlay(series, trainPlot, testPlot)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatalf("expected PNG magic, got % x", png[:min(8, len(png))])
	}
}

func TestRenderOverlayAllNaNPredictions(t *testing.T) {
	renderer := NewRenderer(filepath.Join(t.TempDir(), "chart.png"))
	series := testSeries(12)

	empty := make([]float64, 12)
	for i := range empty {
		empty[i] = math.NaN()
	}

	if _, err := renderer.RenderOverlay(series, empty, empty); err != nil {
		t.Fatalf("empty overlays should still render: %v", err)
	}
}
