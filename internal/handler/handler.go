package handler

import (
	"context"

	"stock-sage/internal/domain"
	"stock-sage/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// ModelRegistry is the read side of the model store the API exposes.
type ModelRegistry interface {
	GetActiveModel(ctx context.Context, symbol, kind string) (*domain.ModelVersion, error)
}

// SeriesReader serves stored price history.
type SeriesReader interface {
	GetSeries(ctx context.Context, symbol string) (domain.DailySeries, error)
}

type Handler struct {
	tracer   trace.Tracer
	pipeline *service.PipelineService
	series   SeriesReader
	registry ModelRegistry
}

func New(tracer trace.Tracer, pipeline *service.PipelineService, series SeriesReader, registry ModelRegistry) *Handler {
	return &Handler{
		tracer:   tracer,
		pipeline: pipeline,
		series:   series,
		registry: registry,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/series/:symbol", h.GetSeries)
	r.GET("/api/forecast/:symbol", h.GetForecast)
	r.GET("/api/chart/:symbol", h.GetChart)
	r.GET("/api/models/:symbol", h.GetActiveModel)
}
