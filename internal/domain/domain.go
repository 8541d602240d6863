package domain

import (
	"errors"
	"time"
)

// Fixed pipeline geometry. The window size feeds both the sequencer and
// the prediction-to-timeline offsets, so it lives here rather than in config.
const (
	HoldoutSize = 20
	WindowSize  = 10
)

// Model kinds stored in the forecast model registry.
const (
	ModelKindRidge     = "ridge_next_close"
	ModelKindDirection = "boost_direction"
)

var (
	ErrDataUnavailable     = errors.New("no data available for ticker")
	ErrInsufficientData    = errors.New("not enough data points for holdout split")
	ErrWindowTooLarge      = errors.New("series too short for sliding window")
	ErrUnrecognizedCommand = errors.New("unrecognized command")
	ErrModelNotTrained     = errors.New("no trained model for ticker")
)

// PricePoint is one trading day of a ticker's close-price series.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// DailySeries is a date-ascending close-price series for one ticker.
// Dates are unique and strictly increasing; missing trading days are
// simply absent. Immutable once loaded for a request.
type DailySeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

func (s DailySeries) Len() int {
	return len(s.Points)
}

// Values returns the close prices in date order.
func (s DailySeries) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i := range s.Points {
		out[i] = s.Points[i].Close
	}
	return out
}

// Dates returns the trading days in order.
func (s DailySeries) Dates() []time.Time {
	out := make([]time.Time, len(s.Points))
	for i := range s.Points {
		out[i] = s.Points[i].Date
	}
	return out
}

type TrendDirection string

const (
	TrendUp      TrendDirection = "up"
	TrendDown    TrendDirection = "down"
	TrendUnknown TrendDirection = "unknown"
)

// Forecast is the latest out-of-sample prediction for a ticker,
// in original price units.
type Forecast struct {
	Symbol       string         `json:"symbol"`
	Price        float64        `json:"price"`
	Direction    TrendDirection `json:"direction"`
	ModelVersion int            `json:"model_version"`
	ForDate      time.Time      `json:"for_date"`
}

// ModelVersion is one persisted row of the per-ticker model registry.
type ModelVersion struct {
	ID              int64
	Symbol          string
	Kind            string
	Version         int
	TrainedFrom     time.Time
	TrainedTo       time.Time
	TrainedAt       time.Time
	HyperparamsJSON string
	MetricsJSON     string
	ArtifactFormat  string
	ArtifactBlob    []byte
	IsActive        bool
	ActivatedAt     *time.Time
	CreatedAt       time.Time
}

// TrainReport summarizes one training run for a ticker.
type TrainReport struct {
	Symbol       string             `json:"symbol"`
	RidgeVersion int                `json:"ridge_version"`
	SampleCount  int                `json:"sample_count"`
	Metrics      map[string]float64 `json:"metrics"`
	AnomalyDays  int                `json:"anomaly_days"`
}
