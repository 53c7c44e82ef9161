package inference

import (
	"context"
	"fmt"

	"AnomalyLens/internal/domain/models"
	domsvc "AnomalyLens/internal/domain/service"
)

// Score runs the predictor over a scaled matrix and returns labels and probabilities.
// Label-only predictors get probabilities synthesized as [1-label, label].
func Score(ctx context.Context, p domsvc.Predictor, matrix [][]float64) (*models.Scored, error) {
	labels, err := p.Predict(ctx, matrix)
	if err != nil {
		return nil, models.ErrInference("label prediction failed", err)
	}
	if len(labels) != len(matrix) {
		return nil, models.ErrInference(fmt.Sprintf("model returned %d labels for %d rows", len(labels), len(matrix)), nil)
	}

	var probs []models.Probability
	if pp, ok := p.(domsvc.ProbabilisticPredictor); ok {
		probs, err = pp.PredictProba(ctx, matrix)
		if err != nil {
			return nil, models.ErrInference("probability prediction failed", err)
		}
		if len(probs) != len(matrix) {
			return nil, models.ErrInference(fmt.Sprintf("model returned %d probabilities for %d rows", len(probs), len(matrix)), nil)
		}
	} else {
		probs = make([]models.Probability, len(labels))
		for i, l := range labels {
			probs[i] = models.Probability{1 - l, l}
		}
	}

	return &models.Scored{Predictions: labels, Probabilities: probs}, nil
}
