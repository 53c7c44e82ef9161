package di

import (
	"context"
	"fmt"
	"time"

	"AnomalyLens/internal/domain/repository"
	domsvc "AnomalyLens/internal/domain/service"
	"AnomalyLens/internal/handler/api"
	internalrepo "AnomalyLens/internal/repository"
	icache "AnomalyLens/internal/service/cache"
	"AnomalyLens/internal/service/marketdata"
	"AnomalyLens/internal/service/ratelimit"
	"AnomalyLens/internal/service/yahoo"
	"AnomalyLens/internal/services/features"
	"AnomalyLens/internal/services/inference"
	"AnomalyLens/internal/usecase"
	pkgch "AnomalyLens/pkg/clickhouse"
	"AnomalyLens/pkg/config"
	xhttp "AnomalyLens/pkg/http"
	pkgkafka "AnomalyLens/pkg/kafka"
	applogger "AnomalyLens/pkg/logger"
	"AnomalyLens/pkg/metrics"
	"AnomalyLens/pkg/server"
)

// ProvideLogger builds the app logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideRegistry creates the strategy registry.
func ProvideRegistry() *features.Registry {
	return features.NewRegistry()
}

// ProvideEngine creates the feature engine.
func ProvideEngine(reg *features.Registry) *features.Engine {
	return features.NewEngine(reg)
}

// ProvideScaler creates the scaler with the configured degenerate-column policy.
func ProvideScaler(cfg *config.Config) *features.Scaler {
	return features.NewScaler(features.DegeneratePolicy(cfg.Pipeline.DegenerateColumnPolicy))
}

// ProvideResponseCache returns the cache backing provider responses (nil when disabled).
func ProvideResponseCache(cfg *config.Config, l *applogger.Logger) (icache.BytesCache, func(), error) {
	switch cfg.MarketData.Cache {
	case "redis":
		rc := icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rc.Ping(ctx); err != nil {
			_ = rc.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		l.Info("response cache ready", applogger.String("backend", "redis"), applogger.String("addr", cfg.Redis.Addr))
		return rc, func() { _ = rc.Close() }, nil
	case "none":
		return nil, func() {}, nil
	default:
		return icache.NewTTLCache(icache.WithMaxEntries(cfg.MarketData.CacheMaxEntries)), func() {}, nil
	}
}

// ProvideYahooClient creates the Yahoo Finance client.
func ProvideYahooClient(cfg *config.Config, cache icache.BytesCache, l *applogger.Logger) *yahoo.Client {
	opts := []yahoo.Option{yahoo.WithLogger(l)}
	if cache != nil {
		opts = append(opts, yahoo.WithCache(cache, cfg.MarketData.CacheTTL))
	}
	return yahoo.NewClient(cfg.MarketData, opts...)
}

// ProvideCandleStore selects the candle backend named by market_data.source.
func ProvideCandleStore(cfg *config.Config, yc *yahoo.Client, l *applogger.Logger) (repository.CandleStore, func(), error) {
	if cfg.MarketData.Source != "clickhouse" {
		return yc, func() {}, nil
	}
	client, err := pkgch.NewClient(pkgch.OptionsFromConfig(cfg.ClickHouse)...)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	store := internalrepo.NewCHMarketStore(client, cfg.ClickHouse)
	store.SetLogger(l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	stmts := append([]string{"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database}, store.SchemaStatements()...)
	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	l.Info("clickhouse candle store ready", applogger.String("database", cfg.ClickHouse.Database))
	return store, func() { _ = client.Close() }, nil
}

// ProvideMarketData creates the market-data source. Stats always come from Yahoo quotes.
func ProvideMarketData(cfg *config.Config, store repository.CandleStore, yc *yahoo.Client, l *applogger.Logger) repository.MarketDataSource {
	return marketdata.NewSource(store,
		marketdata.WithQuotes(yc),
		marketdata.WithSession(marketdata.NewSession(cfg.MarketData.Exchange)),
		marketdata.WithLogger(l),
	)
}

// ProvideNewsSource exposes the Yahoo client as the news source.
func ProvideNewsSource(yc *yahoo.Client) repository.NewsSource {
	return yc
}

// ProvideModelLoader creates the model loader backed by the scoring service.
func ProvideModelLoader(cfg *config.Config, reg *features.Registry, l *applogger.Logger) domsvc.ModelLoader {
	loader := inference.NewLoader(cfg.Model.ArtifactDir, reg, inference.NewServiceClient(cfg.Model))
	loader.SetLogger(l)
	return loader
}

// ProvideResultPublisher creates the Kafka publisher, or a no-op one when kafka is disabled.
func ProvideResultPublisher(cfg *config.Config, l *applogger.Logger) (repository.ResultPublisher, func(), error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NopResultPublisher{}, func() {}, nil
	}
	opts := append(pkgkafka.OptionsFromConfig(cfg.Kafka), pkgkafka.WithLogger(l))
	producer, err := pkgkafka.NewProducer(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	pub := internalrepo.NewKafkaResultPublisher(producer)
	return pub, func() { _ = pub.Close() }, nil
}

// ProvidePredictionUseCase creates the pipeline orchestrator.
func ProvidePredictionUseCase(
	cfg *config.Config,
	market repository.MarketDataSource,
	news repository.NewsSource,
	loader domsvc.ModelLoader,
	engine *features.Engine,
	scaler *features.Scaler,
	pub repository.ResultPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.PredictionUseCase {
	uc := usecase.NewPredictionUseCase(market, news, loader, engine, scaler, pub, m)
	uc.SetLogger(l)
	uc.SetDefaultModel(cfg.Pipeline.DefaultModel)
	return uc
}

// ProvideRateLimiter creates the per-client limiter for the predict endpoint.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
}

// ProvidePredictHandler creates the HTTP handler.
func ProvidePredictHandler(l *applogger.Logger, uc *usecase.PredictionUseCase, rl *ratelimit.Limiter) *api.PredictEchoHandler {
	return api.NewPredictEchoHandler(l, uc, rl)
}

// ProvideHTTPServer creates the Echo server with every handler registered.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, h *api.PredictEchoHandler) *xhttp.Server {
	return xhttp.NewServer(l, []xhttp.Handler{h},
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(cfg.Metrics.Path),
		xhttp.WithCORSOrigins(cfg.Server.CORSOrigins),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
	)
}

// ProvideApp creates the application server.
func ProvideApp(l *applogger.Logger, srv *xhttp.Server) *server.App {
	return server.New(l, srv)
}
