package service

import (
	"context"

	"AnomalyLens/internal/domain/models"
)

// Predictor emits one hard label per row of a scaled feature matrix.
type Predictor interface {
	Predict(ctx context.Context, matrix [][]float64) ([]float64, error)
}

// ProbabilisticPredictor additionally emits calibrated (non-anomaly, anomaly) probabilities.
type ProbabilisticPredictor interface {
	Predictor
	PredictProba(ctx context.Context, matrix [][]float64) ([]models.Probability, error)
}

// ModelLoader resolves a predictor for a strategy and model name.
type ModelLoader interface {
	Load(ctx context.Context, strategyID, model string) (Predictor, error)
}
