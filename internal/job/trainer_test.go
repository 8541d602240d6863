package job

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"stock-sage/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type stubPipeline struct {
	mu       sync.Mutex
	symbols  []string
	chart    []byte
	err      error
	inflight int
	maxSeen  int
}

func (s *stubPipeline) TrainAndChart(ctx context.Context, symbol string) ([]byte, *domain.TrainReport, error) {
	s.mu.Lock()
	s.symbols = append(s.symbols, symbol)
	s.inflight++
	if s.inflight > s.maxSeen {
		s.maxSeen = s.inflight
	}
	s.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()

	if s.err != nil {
		return nil, nil, s.err
	}
	return s.chart, &domain.TrainReport{Symbol: symbol}, nil
}

func TestTrainerRunsSubmittedWork(t *testing.T) {
	t.Parallel()

	tracer := trace.NewNoopTracerProvider().Tracer("test")
	stub := &stubPipeline{chart: []byte("png")}
	trainer := NewTrainer(tracer, stub, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go trainer.Start(ctx)

	chart, report, err := trainer.Train(ctx, "IBM")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(chart) != "png" {
		t.Fatalf("unexpected chart payload: %q", chart)
	}
	if report == nil || report.Symbol != "IBM" {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestTrainerSerializesRuns(t *testing.T) {
	t.Parallel()

	tracer := trace.NewNoopTracerProvider().Tracer("test")
	stub := &stubPipeline{}
	trainer := NewTrainer(tracer, stub, 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go trainer.Start(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = trainer.Train(ctx, "IBM")
		}()
	}
	wg.Wait()

	stub.mu.Lock()
	defer stub.mu.Unlock()
	if stub.maxSeen != 1 {
		t.Fatalf("expected one training run at a time, saw %d", stub.maxSeen)
	}
	if len(stub.symbols) != 5 {
		t.Fatalf("expected 5 runs, got %d", len(stub.symbols))
	}
}

func TestTrainerPropagatesErrors(t *testing.T) {
	t.Parallel()

	tracer := trace.NewNoopTracerProvider().Tracer("test")
	wantErr := errors.New("boom")
	trainer := NewTrainer(tracer, &stubPipeline{err: wantErr}, 2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go trainer.Start(ctx)

	if _, _, err := trainer.Train(ctx, "IBM"); !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
}

func TestTrainerSubmitHonorsContext(t *testing.T) {
	t.Parallel()

	tracer := trace.NewNoopTracerProvider().Tracer("test")
	trainer := NewTrainer(tracer, &stubPipeline{}, 1)
	// Worker never started; fill the queue.
	if _, err := trainer.Submit(context.Background(), "IBM"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := trainer.Submit(ctx, "IBM"); err == nil {
		t.Fatal("expected context error when queue is full")
	}
}
