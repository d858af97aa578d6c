package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	"FinSignal/internal/services/preprocess"
	"FinSignal/pkg/logger"
)

// queryer is the part of *sql.DB the bar source needs.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// DefaultCandleTables maps timeframes to the candle tables kept in ClickHouse.
// Other timeframes are aggregated from the 1m table.
var DefaultCandleTables = map[domrepo.Timeframe]string{
	domrepo.TF1m: "candles_1m",
	domrepo.TF1h: "candles_1h",
	domrepo.TF1d: "candles_1d",
}

// maxBaseRows caps the 1m rows pulled for in-memory aggregation.
const maxBaseRows = 200_000

// CHBarSource reads candles from an existing ClickHouse store.
type CHBarSource struct {
	db       queryer
	database string
	tables   map[domrepo.Timeframe]string
	l        *logger.Logger
}

// NewCHBarSource builds the source. A nil tables map uses DefaultCandleTables.
func NewCHBarSource(db *sql.DB, database string, tables map[domrepo.Timeframe]string, l *logger.Logger) *CHBarSource {
	if tables == nil {
		tables = DefaultCandleTables
	}
	if l == nil {
		l = logger.Nop()
	}
	return &CHBarSource{db: db, database: database, tables: tables, l: l}
}

func (s *CHBarSource) Name() string { return SourceClickHouse }

func (s *CHBarSource) Capability() domrepo.Capability { return domrepo.Implemented }

// queryPlan says which table to read, how many rows, and whether the rows
// must be resampled up to the requested timeframe.
type queryPlan struct {
	table    string
	rows     int
	resample bool
}

func (s *CHBarSource) plan(tf domrepo.Timeframe, limit int) (queryPlan, error) {
	if !domrepo.IsValidTimeframe(tf) {
		return queryPlan{}, models.NewConfigurationError("timeframe", fmt.Sprintf("unsupported timeframe %q", tf))
	}
	if t, ok := s.tables[tf]; ok {
		return queryPlan{table: s.qualify(t), rows: limit}, nil
	}
	base, ok := s.tables[domrepo.TF1m]
	if !ok {
		return queryPlan{}, models.NewConfigurationError("clickhouse.tables", fmt.Sprintf("no table for %s and no 1m table to aggregate from", tf))
	}
	factor := int(tf.Duration() / time.Minute)
	rows := limit * factor
	if rows > maxBaseRows || rows <= 0 {
		rows = maxBaseRows
	}
	return queryPlan{table: s.qualify(base), rows: rows, resample: true}, nil
}

func (s *CHBarSource) qualify(table string) string {
	if s.database == "" {
		return table
	}
	return s.database + "." + table
}

// FetchBars returns the latest limit bars of tf in ascending order.
func (s *CHBarSource) FetchBars(ctx context.Context, symbol string, tf domrepo.Timeframe, limit int) (models.Series, error) {
	start := time.Now()
	p, err := s.plan(tf, limit)
	if err != nil {
		return nil, err
	}
	const qtpl = `
        SELECT bucket, open, high, low, close, vol
        FROM %s
        WHERE symbol = ?
        ORDER BY bucket DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(qtpl, p.table), symbol, p.rows)
	if err != nil {
		s.l.Error("clickhouse bars query error",
			logger.String("table", p.table),
			logger.String("symbol", symbol),
			logger.String("tf", string(tf)),
			logger.Error(err),
		)
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	series := make(models.Series, 0, p.rows)
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Timestamp, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		series = append(series, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to ASC
	for i, j := 0, len(series)-1; i < j; i, j = i+1, j-1 {
		series[i], series[j] = series[j], series[i]
	}
	if p.resample {
		if series, err = preprocess.Resample(series, tf.Duration()); err != nil {
			return nil, err
		}
	}
	out := tail(series, limit)
	s.l.Debug("clickhouse bars ok",
		logger.String("table", p.table),
		logger.String("symbol", symbol),
		logger.String("tf", string(tf)),
		logger.Int("bars", len(out)),
		logger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

var _ domrepo.BarSource = (*CHBarSource)(nil)
