package handler

import (
	"errors"
	"net/http"
	"strings"

	"stock-sage/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetSeries returns the stored daily close history for a ticker.
func (h *Handler) GetSeries(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-series")
	defer span.End()

	symbol := strings.ToUpper(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	series, err := h.series.GetSeries(ctx, symbol)
	if err != nil {
		if errors.Is(err, domain.ErrDataUnavailable) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no data available for " + symbol})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, series)
}

// GetActiveModel returns the active regressor version for a ticker.
func (h *Handler) GetActiveModel(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-active-model")
	defer span.End()

	symbol := strings.ToUpper(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	model, err := h.registry.GetActiveModel(ctx, symbol, domain.ModelKindRidge)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if model == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no trained model for " + symbol})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":       model.Symbol,
		"kind":         model.Kind,
		"version":      model.Version,
		"trained_from": model.TrainedFrom,
		"trained_to":   model.TrainedTo,
		"trained_at":   model.TrainedAt,
		"metrics":      model.MetricsJSON,
		"activated_at": model.ActivatedAt,
	})
}
