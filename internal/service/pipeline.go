package service

import (
	"context"

	"stock-sage/internal/domain"
)

// Trainer is the queued training worker.
type Trainer interface {
	Train(ctx context.Context, symbol string) ([]byte, *domain.TrainReport, error)
}

// Forecaster serves predictions from the stored model.
type Forecaster interface {
	PredictLatest(ctx context.Context, symbol string) (*domain.Forecast, error)
}

type TickerValidator interface {
	ValidateTicker(ctx context.Context, symbol string) error
}

// PipelineService is the application surface behind both the TCP
// protocol and the HTTP API: validate, train-and-chart, predict.
type PipelineService struct {
	validator  TickerValidator
	trainer    Trainer
	forecaster Forecaster
}

func NewPipelineService(validator TickerValidator, trainer Trainer, forecaster Forecaster) *PipelineService {
	return &PipelineService{
		validator:  validator,
		trainer:    trainer,
		forecaster: forecaster,
	}
}

func (p *PipelineService) Validate(ctx context.Context, symbol string) error {
	return p.validator.ValidateTicker(ctx, symbol)
}

// Chart trains a fresh model for the ticker and returns the overlay PNG.
func (p *PipelineService) Chart(ctx context.Context, symbol string) ([]byte, error) {
	chart, _, err := p.trainer.Train(ctx, symbol)
	return chart, err
}

// Train exposes the full report alongside the chart.
func (p *PipelineService) Train(ctx context.Context, symbol string) ([]byte, *domain.TrainReport, error) {
	return p.trainer.Train(ctx, symbol)
}

func (p *PipelineService) Predict(ctx context.Context, symbol string) (*domain.Forecast, error) {
	return p.forecaster.PredictLatest(ctx, symbol)
}
