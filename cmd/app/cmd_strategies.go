package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"AnomalyLens/internal/domain/models"
	"AnomalyLens/internal/services/features"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List registered strategies as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		all := features.NewRegistry().All()
		out := make([]models.StrategyInfo, 0, len(all))
		for _, s := range all {
			out = append(out, s.Info())
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}
