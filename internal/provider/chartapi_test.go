package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"stock-sage/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func chartPayload(timestamps []int64, closes []string) string {
	ts := make([]string, len(timestamps))
	for i, t := range timestamps {
		ts[i] = fmt.Sprintf("%d", t)
	}
	return fmt.Sprintf(
		`{"chart":{"result":[{"timestamp":[%s],"indicators":{"quote":[{"close":[%s]}]}}],"error":null}}`,
		strings.Join(ts, ","), strings.Join(closes, ","))
}

func TestParseChartResponse(t *testing.T) {
	t.Parallel()

	day := int64(24 * 60 * 60)
	base := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC).Unix()
	body := chartPayload(
		[]int64{base, base + day, base + 2*day},
		[]string{"101.5", "null", "103.25"},
	)

	points, err := parseChartResponse([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("null close should be skipped, got %d points", len(points))
	}
	if points[0].Close != 101.5 || points[1].Close != 103.25 {
		t.Fatalf("unexpected closes: %+v", points)
	}
	if !points[0].Date.Equal(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected first date: %v", points[0].Date)
	}
}

func TestParseChartResponseErrors(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"api error":    `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`,
		"empty result": `{"chart":{"result":[],"error":null}}`,
		"all nulls":    chartPayload([]int64{1700000000}, []string{"null"}),
	}
	for name, body := range cases {
		if _, err := parseChartResponse([]byte(body)); !errors.Is(err, domain.ErrDataUnavailable) {
			t.Errorf("%s: expected ErrDataUnavailable, got %v", name, err)
		}
	}
}

func TestChartAPIProviderFetchDailyHistory(t *testing.T) {
	t.Parallel()

	provider := NewChartAPIProvider(trace.NewNoopTracerProvider().Tracer("test"), "http://example")
	provider.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if !strings.Contains(req.URL.Path, "/v8/finance/chart/IBM") {
				t.Fatalf("unexpected path: %s", req.URL.Path)
			}
			if req.URL.Query().Get("interval") != "1d" {
				t.Fatalf("expected daily interval, got %q", req.URL.Query().Get("interval"))
			}
			body := chartPayload([]int64{1704844800, 1704931200}, []string{"185.1", "186.2"})
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewReader([]byte(body))),
				Header:     make(http.Header),
			}, nil
		}),
	}
	provider.limiter = NewRateLimiter(10, time.Millisecond)

	points, err := provider.FetchDailyHistory(context.Background(), "IBM",
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
}

func TestChartAPIProviderNotFound(t *testing.T) {
	t.Parallel()

	provider := NewChartAPIProvider(trace.NewNoopTracerProvider().Tracer("test"), "http://example")
	provider.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusNotFound,
				Body:       io.NopCloser(bytes.NewReader(nil)),
				Header:     make(http.Header),
			}, nil
		}),
	}
	provider.limiter = NewRateLimiter(10, time.Millisecond)

	_, err := provider.FetchDailyHistory(context.Background(), "NOPE",
		time.Now().AddDate(0, 0, -7), time.Now())
	if !errors.Is(err, domain.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}
