package repository

import (
	"context"
	"time"

	"stock-sage/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

const createDailyPricesTable = `
CREATE TABLE IF NOT EXISTS daily_prices (
    symbol  TEXT        NOT NULL,
    day     TIMESTAMPTZ NOT NULL,
    close   NUMERIC     NOT NULL,
    PRIMARY KEY (symbol, day)
);

CREATE INDEX IF NOT EXISTS idx_daily_prices_symbol_day
    ON daily_prices (symbol, day ASC);
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SeriesRepository stores one close price per ticker per trading day.
type SeriesRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewSeriesRepository(pool PgxPool, tracer trace.Tracer) *SeriesRepository {
	return &SeriesRepository{pool: pool, tracer: tracer}
}

func (r *SeriesRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "series-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createDailyPricesTable)
	return err
}

func (r *SeriesRepository) UpsertPoints(ctx context.Context, symbol string, points []domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	_, span := r.tracer.Start(ctx, "series-repo.upsert-points")
	defer span.End()

	batch := &pgx.Batch{}
	for _, p := range points {
		batch.Queue(
			`INSERT INTO daily_prices (symbol, day, close)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (symbol, day) DO UPDATE SET
			     close = EXCLUDED.close`,
			symbol, p.Date.UTC(), p.Close,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range points {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// GetSeries returns a ticker's full close-price history in date-ascending
// order. An empty history is ErrDataUnavailable.
func (r *SeriesRepository) GetSeries(ctx context.Context, symbol string) (domain.DailySeries, error) {
	_, span := r.tracer.Start(ctx, "series-repo.get-series")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT day, close
		 FROM daily_prices
		 WHERE symbol = $1
		 ORDER BY day ASC`,
		symbol,
	)
	if err != nil {
		return domain.DailySeries{}, err
	}
	defer rows.Close()

	series := domain.DailySeries{Symbol: symbol}
	for rows.Next() {
		var p domain.PricePoint
		if err := rows.Scan(&p.Date, &p.Close); err != nil {
			return domain.DailySeries{}, err
		}
		p.Date = p.Date.UTC()
		series.Points = append(series.Points, p)
	}
	if err := rows.Err(); err != nil {
		return domain.DailySeries{}, err
	}
	if series.Len() == 0 {
		return domain.DailySeries{}, domain.ErrDataUnavailable
	}
	return series, nil
}

// LatestDay returns the most recent stored trading day for a ticker, or a
// zero time when nothing is stored yet.
func (r *SeriesRepository) LatestDay(ctx context.Context, symbol string) (time.Time, error) {
	_, span := r.tracer.Start(ctx, "series-repo.latest-day")
	defer span.End()

	var latest *time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT MAX(day) FROM daily_prices WHERE symbol = $1`,
		symbol).Scan(&latest)
	if err != nil {
		return time.Time{}, err
	}
	if latest == nil {
		return time.Time{}, nil
	}
	return latest.UTC(), nil
}
