package timeline

import (
	"fmt"

	"AnomalyLens/internal/domain/models"
	"AnomalyLens/pkg/util"
)

// AlignToDaily maps weekly predictions onto the daily index by exact date.
// Weekly rows whose date is not a daily date are dropped; unmatched days keep (0, [0,0]).
func AlignToDaily(daily, weekly *models.Table, scored *models.Scored) (models.AlignedOutput, error) {
	n := daily.Len()
	out := models.AlignedOutput{
		Predictions:   make([]float64, n),
		Probabilities: make([]models.Probability, n),
	}
	if scored == nil {
		return out, nil
	}
	if len(scored.Predictions) != weekly.Len() || len(scored.Probabilities) != weekly.Len() {
		return models.AlignedOutput{}, models.ErrInference(
			fmt.Sprintf("Scored rows (%d predictions, %d probabilities) do not match weekly rows (%d)",
				len(scored.Predictions), len(scored.Probabilities), weekly.Len()), nil)
	}

	pos := make(map[int64]int, n)
	for i, ts := range daily.Index {
		pos[util.DayKey(ts)] = i
	}
	for j, ts := range weekly.Index {
		i, ok := pos[util.DayKey(ts)]
		if !ok {
			continue
		}
		out.Predictions[i] = scored.Predictions[j]
		out.Probabilities[i] = scored.Probabilities[j]
	}
	return out, nil
}
