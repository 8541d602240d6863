package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"stock-sage/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetForecast returns the latest out-of-sample prediction for a ticker.
func (h *Handler) GetForecast(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-forecast")
	defer span.End()

	symbol := strings.ToUpper(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	forecast, err := h.pipeline.Predict(ctx, symbol)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrModelNotTrained):
			c.JSON(http.StatusConflict, gin.H{"error": "no trained model for " + symbol})
		case errors.Is(err, domain.ErrDataUnavailable):
			c.JSON(http.StatusNotFound, gin.H{"error": "no data available for " + symbol})
		case errors.Is(err, domain.ErrInsufficientData), errors.Is(err, domain.ErrWindowTooLarge):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, forecast)
}

// GetChart trains a fresh model and returns the overlay chart PNG.
func (h *Handler) GetChart(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-chart")
	defer span.End()

	symbol := strings.ToUpper(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	chart, report, err := h.pipeline.Train(ctx, symbol)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDataUnavailable):
			c.JSON(http.StatusNotFound, gin.H{"error": "no data available for " + symbol})
		case errors.Is(err, domain.ErrInsufficientData), errors.Is(err, domain.ErrWindowTooLarge):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	if report != nil {
		c.Header("X-Model-Version", strconv.Itoa(report.RidgeVersion))
	}
	c.Data(http.StatusOK, "image/png", chart)
}
