// Package quality screens a raw price series for anomalous trading days
// before training, using an isolation forest over day-over-day returns.
// Findings are advisory: anomalies are reported, never dropped, so the
// pipeline's index arithmetic stays untouched.
package quality

import (
	"github.com/narumiruna/go-iforest/pkg/iforest"

	"stock-sage/internal/domain"
)

const (
	minPoints      = 32
	scoreThreshold = 0.65
)

type Anomaly struct {
	Index int
	Date  string
	Score float64
}

// Scores fits an isolation forest over (close, return) pairs and returns
// one anomaly score per trading day after the first. Short series return
// nil; there is nothing meaningful to isolate.
func Scores(series domain.DailySeries) []float64 {
	if series.Len() < minPoints {
		return nil
	}
	values := series.Values()
	samples := make([][]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		ret := 0.0
		if values[i-1] != 0 {
			ret = values[i]/values[i-1] - 1
		}
		samples = append(samples, []float64{values[i], ret})
	}

	forest := iforest.New()
	forest.Fit(samples)
	return forest.Score(samples)
}

// Scan returns the days whose anomaly score crosses the threshold.
func Scan(series domain.DailySeries) []Anomaly {
	scores := Scores(series)
	var anomalies []Anomaly
	for i, score := range scores {
		if score >= scoreThreshold {
			anomalies = append(anomalies, Anomaly{
				Index: i + 1,
				Date:  series.Points[i+1].Date.Format("2006-01-02"),
				Score: score,
			})
		}
	}
	return anomalies
}
