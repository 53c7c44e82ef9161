package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"AnomalyLens/pkg/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "anomalylens",
	Short: "Strategy-based market anomaly detection",
	Long: `AnomalyLens computes strategy-specific features from weekly market data,
scores them with a pre-trained model and aligns the predictions onto a daily timeline.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	addConfigFlag(rootCmd.PersistentFlags())
	rootCmd.AddCommand(predictCmd, serveCmd, strategiesCmd)
}

func addConfigFlag(fs *pflag.FlagSet) {
	fs.StringVar(&configPath, "config", "", "config file path (empty: defaults and environment only)")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
