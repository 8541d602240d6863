// Package forecast orchestrates the full prediction pipeline: load the
// persisted series, split off the holdout, normalize, window, train or
// load the regressor, and realign predictions onto the raw timeline.
// All scaler and model state is request-scoped; nothing survives a
// request except what the registry persists.
package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"

	"stock-sage/internal/domain"
	"stock-sage/internal/ml/models/direction"
	"stock-sage/internal/ml/models/ridge"
	"stock-sage/internal/ml/pipeline"
	"stock-sage/internal/ml/quality"

	"go.opentelemetry.io/otel/trace"
)

type SeriesStore interface {
	GetSeries(ctx context.Context, symbol string) (domain.DailySeries, error)
}

type ModelRegistry interface {
	NextVersion(ctx context.Context, symbol, kind string) (int, error)
	InsertModelVersion(ctx context.Context, model domain.ModelVersion) (*domain.ModelVersion, error)
	GetActiveModel(ctx context.Context, symbol, kind string) (*domain.ModelVersion, error)
	ActivateModel(ctx context.Context, symbol, kind string, version int) error
}

type ChartRenderer interface {
	RenderOverlay(series domain.DailySeries, trainPlot, testPlot []float64) ([]byte, error)
}

type Config struct {
	RidgeL2 float64
}

type Service struct {
	tracer   trace.Tracer
	store    SeriesStore
	registry ModelRegistry
	charts   ChartRenderer
	cfg      Config
}

func NewService(tracer trace.Tracer, store SeriesStore, registry ModelRegistry, charts ChartRenderer, cfg Config) *Service {
	if cfg.RidgeL2 <= 0 {
		cfg.RidgeL2 = ridge.DefaultTrainOptions().L2
	}
	return &Service{
		tracer:   tracer,
		store:    store,
		registry: registry,
		charts:   charts,
		cfg:      cfg,
	}
}

// shaped is the per-request result of the deterministic data shaping.
type shaped struct {
	series domain.DailySeries
	state  pipeline.ScalerState
	xTrain [][]float64
	yTrain []float64
	xTest  [][]float64
	yTest  []float64
}

func (s *Service) shape(series domain.DailySeries) (*shaped, error) {
	train, test, err := pipeline.Split(series.Values(), domain.HoldoutSize)
	if err != nil {
		return nil, err
	}
	state := pipeline.FitScaler(train)
	trainScaled := state.Apply(train)
	testScaled := state.Apply(test)

	xTrain, yTrain, err := pipeline.Sequence(trainScaled, domain.WindowSize)
	if err != nil {
		return nil, fmt.Errorf("sequence train partition: %w", err)
	}
	xTest, yTest, err := pipeline.Sequence(testScaled, domain.WindowSize)
	if err != nil {
		return nil, fmt.Errorf("sequence test partition: %w", err)
	}
	return &shaped{
		series: series,
		state:  state,
		xTrain: xTrain,
		yTrain: yTrain,
		xTest:  xTest,
		yTest:  yTest,
	}, nil
}

// TrainAndChart runs the full pipeline for a ticker: train a fresh
// regressor, persist it, and render the overlay chart. Returns the PNG
// bytes and a training report.
func (s *Service) TrainAndChart(ctx context.Context, symbol string) ([]byte, *domain.TrainReport, error) {
	ctx, span := s.tracer.Start(ctx, "forecast.train-and-chart")
	defer span.End()

	series, err := s.store.GetSeries(ctx, symbol)
	if err != nil {
		return nil, nil, err
	}

	anomalies := quality.Scan(series)
	for _, a := range anomalies {
		log.Printf("anomalous trading day for %s: %s (score %.3f)", symbol, a.Date, a.Score)
	}

	data, err := s.shape(series)
	if err != nil {
		return nil, nil, err
	}

	model, err := ridge.Train(data.xTrain, data.yTrain, ridge.TrainOptions{L2: s.cfg.RidgeL2})
	if err != nil {
		return nil, nil, fmt.Errorf("train regressor: %w", err)
	}

	trainPred := data.state.Invert(model.PredictBatch(data.xTrain))
	testPred := data.state.Invert(model.PredictBatch(data.xTest))
	metrics := holdoutMetrics(data.state.Invert(data.yTest), testPred)

	version, err := s.persistRidge(ctx, symbol, series, model, metrics)
	if err != nil {
		return nil, nil, err
	}
	s.persistDirection(ctx, symbol, series, data)

	trainPlot := pipeline.AlignTrain(series.Len(), trainPred, domain.WindowSize)
	testPlot := pipeline.AlignTest(series.Len(), testPred, domain.WindowSize, len(trainPred))

	png, err := s.charts.RenderOverlay(series, trainPlot, testPlot)
	if err != nil {
		return nil, nil, fmt.Errorf("render chart: %w", err)
	}

	report := &domain.TrainReport{
		Symbol:       symbol,
		RidgeVersion: version,
		SampleCount:  len(data.xTrain),
		Metrics:      metrics,
		AnomalyDays:  len(anomalies),
	}
	return png, report, nil
}

// PredictLatest reruns the shaping pipeline with the stored model (no
// retraining) and extracts the most recent test-region forecast.
func (s *Service) PredictLatest(ctx context.Context, symbol string) (*domain.Forecast, error) {
	ctx, span := s.tracer.Start(ctx, "forecast.predict-latest")
	defer span.End()

	series, err := s.store.GetSeries(ctx, symbol)
	if err != nil {
		return nil, err
	}

	active, err := s.registry.GetActiveModel(ctx, symbol, domain.ModelKindRidge)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrModelNotTrained, symbol)
	}
	model, err := ridge.UnmarshalBinary(active.ArtifactBlob)
	if err != nil {
		return nil, fmt.Errorf("decode stored model: %w", err)
	}

	data, err := s.shape(series)
	if err != nil {
		return nil, err
	}

	trainPred := model.PredictBatch(data.xTrain)
	testPred := data.state.Invert(model.PredictBatch(data.xTest))
	testPlot := pipeline.AlignTest(series.Len(), testPred, domain.WindowSize, len(trainPred))

	price, ok := pipeline.LastAligned(testPlot)
	if !ok {
		return nil, fmt.Errorf("%w: aligned overlay is empty for %s", domain.ErrInsufficientData, symbol)
	}

	forecast := &domain.Forecast{
		Symbol:       symbol,
		Price:        price,
		Direction:    s.latestDirection(ctx, symbol, data),
		ModelVersion: active.Version,
		ForDate:      series.Points[series.Len()-2].Date,
	}
	return forecast, nil
}

// ActiveModel exposes the registry's active regressor row for a ticker.
func (s *Service) ActiveModel(ctx context.Context, symbol string) (*domain.ModelVersion, error) {
	return s.registry.GetActiveModel(ctx, symbol, domain.ModelKindRidge)
}

func (s *Service) persistRidge(ctx context.Context, symbol string, series domain.DailySeries, model *ridge.Model, metrics map[string]float64) (int, error) {
	blob, err := model.MarshalBinary()
	if err != nil {
		return 0, fmt.Errorf("marshal regressor: %w", err)
	}
	version, err := s.registry.NextVersion(ctx, symbol, domain.ModelKindRidge)
	if err != nil {
		return 0, err
	}
	hyperJSON, _ := json.Marshal(map[string]any{"l2": s.cfg.RidgeL2, "window": domain.WindowSize})
	metricJSON, _ := json.Marshal(metrics)

	inserted, err := s.registry.InsertModelVersion(ctx, domain.ModelVersion{
		Symbol:          symbol,
		Kind:            domain.ModelKindRidge,
		Version:         version,
		TrainedFrom:     series.Points[0].Date,
		TrainedTo:       series.Points[series.Len()-1].Date,
		HyperparamsJSON: string(hyperJSON),
		MetricsJSON:     string(metricJSON),
		ArtifactFormat:  "json/ridge-v1",
		ArtifactBlob:    blob,
	})
	if err != nil {
		return 0, err
	}
	if err := s.registry.ActivateModel(ctx, symbol, domain.ModelKindRidge, inserted.Version); err != nil {
		return 0, err
	}
	return inserted.Version, nil
}

// persistDirection trains and stores the up/down classifier. Best
// effort: a partition with only one class simply skips the model.
func (s *Service) persistDirection(ctx context.Context, symbol string, series domain.DailySeries, data *shaped) {
	labels := direction.Labels(data.xTrain, data.yTrain)
	model, err := direction.Train(data.xTrain, labels, direction.DefaultTrainOptions())
	if err != nil {
		log.Printf("direction model skipped for %s: %v", symbol, err)
		return
	}
	blob, err := model.MarshalBinary()
	if err != nil {
		log.Printf("direction model marshal failed for %s: %v", symbol, err)
		return
	}
	version, err := s.registry.NextVersion(ctx, symbol, domain.ModelKindDirection)
	if err != nil {
		log.Printf("direction model version lookup failed for %s: %v", symbol, err)
		return
	}
	inserted, err := s.registry.InsertModelVersion(ctx, domain.ModelVersion{
		Symbol:         symbol,
		Kind:           domain.ModelKindDirection,
		Version:        version,
		TrainedFrom:    series.Points[0].Date,
		TrainedTo:      series.Points[series.Len()-1].Date,
		ArtifactFormat: "json/boo-direction-v1",
		ArtifactBlob:   blob,
	})
	if err != nil {
		log.Printf("direction model insert failed for %s: %v", symbol, err)
		return
	}
	if err := s.registry.ActivateModel(ctx, symbol, domain.ModelKindDirection, inserted.Version); err != nil {
		log.Printf("direction model activation failed for %s: %v", symbol, err)
	}
}

func (s *Service) latestDirection(ctx context.Context, symbol string, data *shaped) domain.TrendDirection {
	active, err := s.registry.GetActiveModel(ctx, symbol, domain.ModelKindDirection)
	if err != nil || active == nil {
		return domain.TrendUnknown
	}
	model, err := direction.UnmarshalBinary(active.ArtifactBlob)
	if err != nil {
		return domain.TrendUnknown
	}
	if len(data.xTest) == 0 {
		return domain.TrendUnknown
	}
	if model.ProbUp(data.xTest[len(data.xTest)-1]) >= 0.5 {
		return domain.TrendUp
	}
	return domain.TrendDown
}

func holdoutMetrics(actual, predicted []float64) map[string]float64 {
	n := len(actual)
	if n == 0 || len(predicted) != n {
		return map[string]float64{"rmse": 0, "mae": 0, "n_test": 0}
	}
	sq := 0.0
	abs := 0.0
	for i := range actual {
		d := predicted[i] - actual[i]
		sq += d * d
		abs += math.Abs(d)
	}
	return map[string]float64{
		"rmse":   math.Sqrt(sq / float64(n)),
		"mae":    abs / float64(n),
		"n_test": float64(n),
	}
}

// FormatPrice renders a forecast value the way the wire protocol reports
// it: a dollar sign and the rounded whole price.
func FormatPrice(price float64) string {
	return fmt.Sprintf("$%d", int64(math.Round(price)))
}
