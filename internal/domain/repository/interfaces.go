package repository

import (
	"context"
	"time"

	"AnomalyLens/internal/domain/models"
)

// Timeframe is the candle resolution of a fetched series.
type Timeframe string

const (
	TFDaily  Timeframe = "1d"
	TFWeekly Timeframe = "1wk"
)

// CandleStore provides read-only access to OHLCV candles per ticker.
type CandleStore interface {
	GetCandles(ctx context.Context, ticker string, from, to time.Time, tf Timeframe) ([]models.Candle, error)
}

// QuoteSource supplies instrument metadata for the market-stats record.
type QuoteSource interface {
	GetStats(ctx context.Context, ticker string) (models.MarketStats, error)
}

// MarketDataSource returns aligned daily and weekly tables for a set of instruments.
type MarketDataSource interface {
	Fetch(ctx context.Context, instruments []models.Instrument, iv Interval) (*models.MarketData, error)
}

// NewsSource returns recent headlines for a ticker.
type NewsSource interface {
	GetNews(ctx context.Context, ticker string) ([]models.NewsItem, error)
}

// ResultPublisher emits a summary of each successful run.
type ResultPublisher interface {
	Publish(ctx context.Context, ev *models.ResultEvent) error
	Close() error
}

// Metrics records pipeline telemetry.
type Metrics interface {
	RecordStage(stage string, seconds float64)
	RecordError(kind string)
	RecordRun(strategy, model string, anomalies int)
}
