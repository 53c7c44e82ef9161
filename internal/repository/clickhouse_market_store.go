package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"AnomalyLens/internal/domain/models"
	domrepo "AnomalyLens/internal/domain/repository"
	pkgch "AnomalyLens/pkg/clickhouse"
	"AnomalyLens/pkg/config"
	applogger "AnomalyLens/pkg/logger"
)

// CHMarketStore implements CandleStore over pre-aggregated ClickHouse candle tables.
type CHMarketStore struct {
	db     *sql.DB
	daily  string
	weekly string
	l      *applogger.Logger
}

func NewCHMarketStore(ch *pkgch.Client, cfg config.ClickHouseConfig) *CHMarketStore {
	return &CHMarketStore{
		db:     ch.DB(),
		daily:  qualify(cfg.Database, cfg.DailyTable),
		weekly: qualify(cfg.Database, cfg.WeeklyTable),
	}
}

// SetLogger injects a structured logger.
func (s *CHMarketStore) SetLogger(l *applogger.Logger) { s.l = l }

// SchemaStatements returns the DDL for the candle tables.
func (s *CHMarketStore) SchemaStatements() []string {
	const tpl = `
        CREATE TABLE IF NOT EXISTS %s (
            bucket DateTime,
            symbol LowCardinality(String),
            open   Float64,
            high   Float64,
            low    Float64,
            close  Float64,
            volume Float64
        )
        ENGINE = ReplacingMergeTree
        ORDER BY (symbol, bucket)
    `
	return []string{fmt.Sprintf(tpl, s.daily), fmt.Sprintf(tpl, s.weekly)}
}

func (s *CHMarketStore) GetCandles(ctx context.Context, symbol string, from, to time.Time, tf domrepo.Timeframe) ([]models.Candle, error) {
	start := time.Now()
	table, err := s.tableFor(tf)
	if err != nil {
		return nil, err
	}
	const qtpl = `
        SELECT bucket, symbol, open, high, low, close, volume
        FROM %s FINAL
        WHERE symbol = ? AND bucket >= ? AND bucket < ?
        ORDER BY bucket ASC
    `
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(qtpl, table), symbol, from, to)
	if err != nil {
		s.logError("clickhouse get_candles query error", table, symbol, tf, err)
		return nil, fmt.Errorf("get candles: %w", err)
	}
	defer rows.Close()

	out := make([]models.Candle, 0, 256)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Bucket, &c.Symbol, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			s.logError("clickhouse get_candles scan error", table, symbol, tf, err)
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		s.logError("clickhouse get_candles rows error", table, symbol, tf, err)
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse get_candles ok",
			applogger.String("table", table),
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHMarketStore) logError(msg, table, symbol string, tf domrepo.Timeframe, err error) {
	if s.l == nil {
		return
	}
	s.l.Error(msg,
		applogger.String("table", table),
		applogger.String("symbol", symbol),
		applogger.String("tf", string(tf)),
		applogger.Error(err),
	)
}

func (s *CHMarketStore) tableFor(tf domrepo.Timeframe) (string, error) {
	switch tf {
	case domrepo.TFDaily:
		return s.daily, nil
	case domrepo.TFWeekly:
		return s.weekly, nil
	default:
		return "", fmt.Errorf("unsupported timeframe: %s", tf)
	}
}

func qualify(db, table string) string {
	if db == "" {
		return table
	}
	return db + "." + table
}

var _ domrepo.CandleStore = (*CHMarketStore)(nil)
