package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock-sage/internal/cache"
	"stock-sage/internal/chart"
	"stock-sage/internal/config"
	"stock-sage/internal/db"
	"stock-sage/internal/handler"
	"stock-sage/internal/job"
	"stock-sage/internal/ml/forecast"
	"stock-sage/internal/ml/registry"
	"stock-sage/internal/provider"
	"stock-sage/internal/repository"
	"stock-sage/internal/server"
	"stock-sage/internal/service"
	"stock-sage/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
)

var (
	loadEnvFunc      = godotenv.Load
	loadConfigFunc   = config.Load
	initPostgresFunc = db.InitPostgres
	initRedisFunc    = cache.InitRedis
	initTracerFunc   = tracing.InitTracer
	newBarProvider   = func(tracer trace.Tracer, baseURL string) service.BarProvider {
		return provider.NewChartAPIProvider(tracer, baseURL)
	}
	startTrainerFunc = func(t *job.Trainer, ctx context.Context) { go t.Start(ctx) }
	startSessionFunc = func(s *server.SessionServer, ctx context.Context) {
		go func() {
			if err := s.Start(ctx); err != nil {
				log.Fatalf("session server: %v", err)
			}
		}()
	}
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	initPostgresFunc(ctx, cfg.DatabaseURL)
	initRedisFunc(ctx, cfg.RedisURL)

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	seriesRepo := repository.NewSeriesRepository(db.Pool, tracer)
	modelRegistry := registry.NewRepository(db.Pool, tracer)
	if db.Pool != nil {
		if err := seriesRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run series migrations: %v", err)
		}
		if err := modelRegistry.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run registry migrations: %v", err)
		}
	}

	historyStart, err := time.Parse("2006-01-02", cfg.HistoryStart)
	if err != nil {
		log.Printf("invalid HISTORY_START %q, defaulting to 2017-01-03", cfg.HistoryStart)
		historyStart = time.Date(2017, 1, 3, 0, 0, 0, 0, time.UTC)
	}

	barProvider := newBarProvider(tracer, cfg.ChartAPIBaseURL)
	seriesService := service.NewSeriesService(tracer, barProvider, seriesRepo, cache.Client, historyStart, cfg.ValidateDays)

	renderer := chart.NewRenderer(cfg.ChartPath)
	forecastService := forecast.NewService(tracer, seriesService, modelRegistry, renderer,
		forecast.Config{RidgeL2: cfg.RidgeL2})

	trainer := job.NewTrainer(tracer, forecastService, cfg.TrainQueueSize)
	startTrainerFunc(trainer, ctx)

	pipeline := service.NewPipelineService(seriesService, trainer, forecastService)

	sessionServer := server.NewSessionServer(tracer, cfg.SessionAddr, pipeline)
	startSessionFunc(sessionServer, ctx)

	h := handler.New(tracer, pipeline, seriesService, modelRegistry)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("stock-sage"))
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
