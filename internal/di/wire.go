//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"AnomalyLens/internal/usecase"
	"AnomalyLens/pkg/config"
	applogger "AnomalyLens/pkg/logger"
	"AnomalyLens/pkg/server"
)

var pipelineSet = wire.NewSet(
	// Metrics
	ProvideMetrics,

	// Feature engineering
	ProvideRegistry,
	ProvideEngine,
	ProvideScaler,

	// Collaborators
	ProvideResponseCache,
	ProvideYahooClient,
	ProvideCandleStore,
	ProvideMarketData,
	ProvideNewsSource,
	ProvideModelLoader,
	ProvideResultPublisher,

	// Use cases
	ProvidePredictionUseCase,
)

// InitializePipeline wires the prediction use case for batch runs.
func InitializePipeline(cfg *config.Config, l *applogger.Logger) (*usecase.PredictionUseCase, func(), error) {
	wire.Build(pipelineSet)
	return nil, nil, nil
}

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config, l *applogger.Logger) (*server.App, func(), error) {
	wire.Build(
		pipelineSet,

		// HTTP
		ProvideRateLimiter,
		ProvidePredictHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}
