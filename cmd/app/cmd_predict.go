package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"AnomalyLens/internal/di"
	"AnomalyLens/internal/domain/models"
	domrepo "AnomalyLens/internal/domain/repository"
	"AnomalyLens/internal/services/inference"
	"AnomalyLens/internal/usecase"
	applogger "AnomalyLens/pkg/logger"
	"AnomalyLens/pkg/util"
)

type predictFlags struct {
	strategy      string
	symbolMapping string
	interval      string
	model         string
	primary       string
}

var pf predictFlags

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Run one prediction and print the result record as JSON",
	Long: `Run the full pipeline once. The result is written to stdout as a single JSON
object; on failure {"error": ..., "type": ...} is written to stderr and the exit status is 1.

Example:
  anomalylens predict --strategy 6 \
    --symbol-mapping '{"MXUS":"MXUS","USGG10YR":"USGG10YR","PRIMARY_SYMBOL":"SPY"}' \
    --interval 1y --model xgboost`,
	Run: func(cmd *cobra.Command, _ []string) {
		os.Exit(runPredict(cmd.Context(), pf, os.Stdout, os.Stderr))
	},
}

func init() {
	f := predictCmd.Flags()
	f.StringVar(&pf.strategy, "strategy", "", "strategy id (1-25)")
	f.StringVar(&pf.symbolMapping, "symbol-mapping", "", "JSON object of feature name to ticker")
	f.StringVar(&pf.interval, "interval", string(domrepo.DefaultInterval()), "history window")
	f.StringVar(&pf.model, "model", "", "model name (default: pipeline.default_model, "+inference.DefaultModel+")")
	f.StringVar(&pf.primary, "primary-symbol", "", "ticker shown on the daily timeline (defaults to PRIMARY_SYMBOL in the mapping)")
	_ = predictCmd.MarkFlagRequired("strategy")
	_ = predictCmd.MarkFlagRequired("symbol-mapping")
}

// runPredict executes one pipeline run and returns the process exit status.
func runPredict(ctx context.Context, f predictFlags, stdout, stderr io.Writer) int {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		writeError(stderr, err)
		return 1
	}
	cfg.Log.Output = "stderr"
	l, err := di.ProvideLogger(cfg)
	if err != nil {
		writeError(stderr, err)
		return 1
	}

	params, err := buildParams(f)
	if err != nil {
		writeError(stderr, err)
		return 1
	}

	uc, cleanup, err := di.InitializePipeline(cfg, l)
	if err != nil {
		writeError(stderr, fmt.Errorf("initialize pipeline: %w", err))
		return 1
	}
	defer cleanup()

	rec, err := uc.Predict(ctx, params)
	if err != nil {
		writeError(stderr, err)
		return 1
	}
	return writeResult(stdout, stderr, l, rec)
}

// writeResult prints rec as one JSON object. An encode failure is reported like a failed run.
func writeResult(stdout, stderr io.Writer, l *applogger.Logger, rec *models.ResultRecord) int {
	if err := json.NewEncoder(stdout).Encode(rec); err != nil {
		l.Error("encode result", applogger.Error(err))
		writeError(stderr, fmt.Errorf("encode result: %w", err))
		return 1
	}
	return 0
}

// buildParams parses the mapping flag, keeping its key order.
func buildParams(f predictFlags) (usecase.PredictParams, error) {
	kvs, err := util.ParseOrderedMapping(f.symbolMapping)
	if err != nil {
		return usecase.PredictParams{}, models.ErrInvalidArgument("symbol_mapping", "Invalid symbol mapping: "+err.Error())
	}
	iv, ok := domrepo.ParseInterval(f.interval)
	if !ok {
		return usecase.PredictParams{}, models.ErrInvalidArgument("interval", "Invalid interval: "+f.interval)
	}

	primary := f.primary
	insts := make([]models.Instrument, 0, len(kvs))
	for _, kv := range kvs {
		if kv.Key == models.PrimaryKey && primary == "" {
			primary = kv.Value
		}
		insts = append(insts, models.Instrument{Name: kv.Key, Ticker: kv.Value})
	}
	return usecase.PredictParams{
		Strategy:    f.strategy,
		Primary:     primary,
		Instruments: insts,
		Interval:    iv,
		Model:       f.model,
	}, nil
}

type errorRecord struct {
	Error string `json:"error"`
	Type  string `json:"type"`
}

func writeError(w io.Writer, err error) {
	_ = json.NewEncoder(w).Encode(errorRecord{Error: err.Error(), Type: string(models.KindOf(err))})
}
