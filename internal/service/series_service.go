package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"stock-sage/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const validationCacheTTL = 24 * time.Hour

type BarProvider interface {
	FetchDailyHistory(ctx context.Context, symbol string, from, to time.Time) ([]domain.PricePoint, error)
}

type SeriesRepository interface {
	UpsertPoints(ctx context.Context, symbol string, points []domain.PricePoint) error
	GetSeries(ctx context.Context, symbol string) (domain.DailySeries, error)
	LatestDay(ctx context.Context, symbol string) (time.Time, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// SeriesService owns ticker validation and the locally persisted daily
// close history that the prediction pipeline reads.
type SeriesService struct {
	tracer       trace.Tracer
	provider     BarProvider
	repo         SeriesRepository
	redis        RedisClient
	historyStart time.Time
	validateDays int
}

func NewSeriesService(
	tracer trace.Tracer,
	provider BarProvider,
	repo SeriesRepository,
	redisClient RedisClient,
	historyStart time.Time,
	validateDays int,
) *SeriesService {
	if validateDays <= 0 {
		validateDays = 7
	}
	return &SeriesService{
		tracer:       tracer,
		provider:     provider,
		repo:         repo,
		redis:        redisClient,
		historyStart: historyStart,
		validateDays: validateDays,
	}
}

// ValidateTicker reports whether the upstream API knows the ticker, by
// fetching a short recent range. Results are cached in Redis so repeated
// probes for the same ticker stay off the API.
func (s *SeriesService) ValidateTicker(ctx context.Context, symbol string) error {
	_, span := s.tracer.Start(ctx, "series-service.validate-ticker")
	defer span.End()

	if cached, ok := s.getValidationCache(ctx, symbol); ok {
		if cached {
			return nil
		}
		return fmt.Errorf("%w: %s", domain.ErrDataUnavailable, symbol)
	}

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -s.validateDays)
	points, err := s.provider.FetchDailyHistory(ctx, symbol, from, to)
	if errors.Is(err, domain.ErrDataUnavailable) || (err == nil && len(points) == 0) {
		s.setValidationCache(ctx, symbol, false)
		return fmt.Errorf("%w: %s", domain.ErrDataUnavailable, symbol)
	}
	if err != nil {
		return err
	}

	s.setValidationCache(ctx, symbol, true)
	return nil
}

// SyncHistory pulls daily bars from the last stored day (or the
// configured history start) up to now and persists them.
func (s *SeriesService) SyncHistory(ctx context.Context, symbol string) error {
	ctx, span := s.tracer.Start(ctx, "series-service.sync-history")
	defer span.End()

	from := s.historyStart
	latest, err := s.repo.LatestDay(ctx, symbol)
	if err != nil {
		return err
	}
	if !latest.IsZero() {
		from = latest.AddDate(0, 0, 1)
	}

	to := time.Now().UTC()
	if !from.Before(to) {
		return nil
	}

	points, err := s.provider.FetchDailyHistory(ctx, symbol, from, to)
	if err != nil {
		return err
	}
	if err := s.repo.UpsertPoints(ctx, symbol, points); err != nil {
		return fmt.Errorf("persist history for %s: %w", symbol, err)
	}

	log.Printf("Synced %d daily bars for %s", len(points), symbol)
	return nil
}

// GetSeries returns the persisted close history for a ticker, pulling it
// from the upstream API first if nothing is stored yet.
func (s *SeriesService) GetSeries(ctx context.Context, symbol string) (domain.DailySeries, error) {
	ctx, span := s.tracer.Start(ctx, "series-service.get-series")
	defer span.End()

	series, err := s.repo.GetSeries(ctx, symbol)
	if err == nil {
		return series, nil
	}
	if !errors.Is(err, domain.ErrDataUnavailable) {
		return domain.DailySeries{}, err
	}

	if err := s.SyncHistory(ctx, symbol); err != nil {
		return domain.DailySeries{}, err
	}
	return s.repo.GetSeries(ctx, symbol)
}

func (s *SeriesService) setValidationCache(ctx context.Context, symbol string, valid bool) {
	if s.redis == nil {
		return
	}
	value := "0"
	if valid {
		value = "1"
	}
	if err := s.redis.Set(ctx, "ticker-valid:"+symbol, value, validationCacheTTL).Err(); err != nil {
		log.Printf("redis cache write error for %s: %v", symbol, err)
	}
}

func (s *SeriesService) getValidationCache(ctx context.Context, symbol string) (valid, found bool) {
	if s.redis == nil {
		return false, false
	}
	value, err := s.redis.Get(ctx, "ticker-valid:"+symbol).Result()
	if err == redis.Nil {
		return false, false
	}
	if err != nil {
		log.Printf("redis cache read error for %s: %v", symbol, err)
		return false, false
	}
	return value == "1", true
}
