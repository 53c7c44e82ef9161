package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"AnomalyLens/internal/di"
	applogger "AnomalyLens/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the prediction API over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		l, err := di.ProvideLogger(cfg)
		if err != nil {
			return err
		}
		l.Info("starting",
			applogger.String("env", cfg.Environment),
			applogger.String("market_data", cfg.MarketData.Source),
			applogger.String("model_service", cfg.Model.ServiceURL),
			applogger.Bool("kafka", cfg.Kafka.Enabled),
		)

		app, cleanup, err := di.InitializeApp(cfg, l)
		if err != nil {
			return fmt.Errorf("app initialization failed: %w", err)
		}
		defer cleanup()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return app.Run(ctx)
	},
}
