package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"stock-sage/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const defaultChartBaseURL = "https://query1.finance.yahoo.com"

// ChartAPIProvider fetches daily close-price history from the public
// chart endpoint.
type ChartAPIProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewChartAPIProvider creates a provider with built-in rate limiting.
// Rate limited to 6 requests per minute (one token every 10 seconds).
func NewChartAPIProvider(tracer trace.Tracer, baseURL string) *ChartAPIProvider {
	if baseURL == "" {
		baseURL = defaultChartBaseURL
	}
	return &ChartAPIProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		tracer:  tracer,
		limiter: NewRateLimiter(6, 10*time.Second),
	}
}

// FetchDailyHistory fetches daily bars for a ticker over [from, to].
// Days with a null close (halts, partial data) are skipped.
func (p *ChartAPIProvider) FetchDailyHistory(ctx context.Context, symbol string, from, to time.Time) ([]domain.PricePoint, error) {
	_, span := p.tracer.Start(ctx, "chartapi.fetch-daily-history")
	defer span.End()

	url := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		p.baseURL, symbol, from.Unix(), to.Unix())

	body, err := p.doRequest(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch daily history for %s: %w", symbol, err)
	}

	points, err := parseChartResponse(body)
	if err != nil {
		return nil, fmt.Errorf("parse daily history for %s: %w", symbol, err)
	}
	return points, nil
}

func (p *ChartAPIProvider) doRequest(ctx context.Context, url string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "stock-sage/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrDataUnavailable
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("chart API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}

// parseChartResponse decodes the chart payload:
//
//	{"chart":{"result":[{"timestamp":[...],
//	  "indicators":{"quote":[{"close":[...]}]}}],"error":null}}
func parseChartResponse(body []byte) ([]domain.PricePoint, error) {
	var raw struct {
		Chart struct {
			Result []struct {
				Timestamp  []int64 `json:"timestamp"`
				Indicators struct {
					Quote []struct {
						Close []*float64 `json:"close"`
					} `json:"quote"`
				} `json:"indicators"`
			} `json:"result"`
			Error *struct {
				Code        string `json:"code"`
				Description string `json:"description"`
			} `json:"error"`
		} `json:"chart"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	if raw.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrDataUnavailable, raw.Chart.Error.Description)
	}
	if len(raw.Chart.Result) == 0 || len(raw.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, domain.ErrDataUnavailable
	}

	result := raw.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close
	points := make([]domain.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		points = append(points, domain.PricePoint{
			Date:  time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Close: *closes[i],
		})
	}
	if len(points) == 0 {
		return nil, domain.ErrDataUnavailable
	}
	return points, nil
}
