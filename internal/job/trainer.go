// Package job hosts background workers. The trainer serializes model
// training so concurrent requests for the same or different tickers
// never train in parallel.
package job

import (
	"context"
	"log"

	"stock-sage/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// TrainPipeline is the piece of the forecast service the trainer drives.
type TrainPipeline interface {
	TrainAndChart(ctx context.Context, symbol string) ([]byte, *domain.TrainReport, error)
}

// TrainResult is delivered on the channel returned by Submit.
type TrainResult struct {
	Chart  []byte
	Report *domain.TrainReport
	Err    error
}

type trainRequest struct {
	ctx    context.Context
	symbol string
	done   chan TrainResult
}

// Trainer is a single-worker queue over the training pipeline.
type Trainer struct {
	tracer   trace.Tracer
	pipeline TrainPipeline
	queue    chan trainRequest
}

func NewTrainer(tracer trace.Tracer, pipeline TrainPipeline, queueSize int) *Trainer {
	if queueSize <= 0 {
		queueSize = 8
	}
	return &Trainer{
		tracer:   tracer,
		pipeline: pipeline,
		queue:    make(chan trainRequest, queueSize),
	}
}

// Start runs the worker loop. Blocks until ctx is cancelled.
func (t *Trainer) Start(ctx context.Context) {
	log.Println("Training worker starting...")
	for {
		select {
		case <-ctx.Done():
			log.Println("Training worker stopped")
			return
		case req := <-t.queue:
			t.run(req)
		}
	}
}

func (t *Trainer) run(req trainRequest) {
	_, span := t.tracer.Start(req.ctx, "trainer.run")
	defer span.End()

	if err := req.ctx.Err(); err != nil {
		req.done <- TrainResult{Err: err}
		return
	}
	chart, report, err := t.pipeline.TrainAndChart(req.ctx, req.symbol)
	if err != nil {
		log.Printf("training failed for %s: %v", req.symbol, err)
	}
	req.done <- TrainResult{Chart: chart, Report: report, Err: err}
}

// Submit enqueues a training run and returns a channel that receives
// exactly one result. Blocks only when the queue is full.
func (t *Trainer) Submit(ctx context.Context, symbol string) (<-chan TrainResult, error) {
	done := make(chan TrainResult, 1)
	select {
	case t.queue <- trainRequest{ctx: ctx, symbol: symbol, done: done}:
		return done, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Train runs a training request through the queue and waits for it.
func (t *Trainer) Train(ctx context.Context, symbol string) ([]byte, *domain.TrainReport, error) {
	done, err := t.Submit(ctx, symbol)
	if err != nil {
		return nil, nil, err
	}
	select {
	case res := <-done:
		return res.Chart, res.Report, res.Err
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}
