package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AnomalyLens/internal/domain/models"
)

func days(start time.Time, n, step int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.AddDate(0, 0, i*step)
	}
	return out
}

func dailyTable(n int) *models.Table {
	idx := days(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), n, 1)
	tbl := models.NewTable(idx)
	for k, f := range models.OHLCVFields {
		col := make([]float64, n)
		for i := range col {
			col[i] = float64(100*k + i)
		}
		tbl.MustSet(models.ColumnName(models.PrimaryInstrument, f), col)
	}
	return tbl
}

func TestAlignToDaily_ExactDateMatch(t *testing.T) {
	daily := dailyTable(10)
	weekly := models.NewTable([]time.Time{
		time.Date(2023, 12, 25, 0, 0, 0, 0, time.UTC), // before the daily window
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), // after
	})
	scored := &models.Scored{
		Predictions:   []float64{1, 1, 0, 1},
		Probabilities: []models.Probability{{0.1, 0.9}, {0.2, 0.8}, {0.7, 0.3}, {0.4, 0.6}},
	}

	out, err := AlignToDaily(daily, weekly, scored)
	require.NoError(t, err)
	require.Len(t, out.Predictions, 10)
	require.Len(t, out.Probabilities, 10)

	changed := 0
	for i := range out.Predictions {
		if out.Predictions[i] != 0 || out.Probabilities[i] != (models.Probability{}) {
			changed++
		}
	}
	assert.Equal(t, 2, changed)
	assert.Equal(t, 1.0, out.Predictions[2])
	assert.Equal(t, models.Probability{0.2, 0.8}, out.Probabilities[2])
	assert.Equal(t, 0.0, out.Predictions[7])
	assert.Equal(t, models.Probability{0.7, 0.3}, out.Probabilities[7])
	assert.Equal(t, 1, out.CountAnomalies())
}

func TestAlignToDaily_MatchesByDayNotInstant(t *testing.T) {
	daily := dailyTable(3)
	weekly := models.NewTable([]time.Time{time.Date(2024, 1, 2, 5, 0, 0, 0, time.UTC)})
	out, err := AlignToDaily(daily, weekly, &models.Scored{
		Predictions:   []float64{1},
		Probabilities: []models.Probability{{0, 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0}, out.Predictions)
}

func TestAlignToDaily_LengthMismatch(t *testing.T) {
	daily := dailyTable(3)
	weekly := models.NewTable(days(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 2, 7))
	_, err := AlignToDaily(daily, weekly, &models.Scored{Predictions: []float64{1}, Probabilities: []models.Probability{{0, 1}}})
	assert.Equal(t, models.KindInferenceError, models.KindOf(err))
}

func TestAssemble(t *testing.T) {
	daily := dailyTable(3)
	aligned := models.AlignedOutput{
		Predictions:   []float64{0, 1, 0},
		Probabilities: []models.Probability{{}, {0.1, 0.9}, {}},
	}
	stats := models.MarketStats{LongName: "Primary", CurrentPrice: models.Float(302)}

	rec, err := Assemble(daily, aligned, stats, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01 00:00:00", "2024-01-02 00:00:00", "2024-01-03 00:00:00"}, rec.Timestamps)
	assert.Equal(t, []float64{0, 1, 2}, rec.OHLC.Open)
	assert.Equal(t, []float64{300, 301, 302}, rec.OHLC.Close)
	assert.Equal(t, []float64{400, 401, 402}, rec.OHLC.Volume)
	assert.Equal(t, "Primary", rec.MarketStats.LongName)
	assert.NotNil(t, rec.News)
	assert.Empty(t, rec.News)
}

func TestAssemble_EmptyTimeline(t *testing.T) {
	_, err := Assemble(models.NewTable(nil), models.AlignedOutput{}, models.MarketStats{}, nil)
	assert.Equal(t, models.KindEmptyTimeline, models.KindOf(err))
}

func TestAssemble_MissingPrimary(t *testing.T) {
	tbl := models.NewTable(days(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 1, 1))
	tbl.MustSet("VIX_Close", []float64{1})
	_, err := Assemble(tbl, models.AlignedOutput{Predictions: []float64{0}, Probabilities: []models.Probability{{}}}, models.MarketStats{}, nil)
	assert.Equal(t, models.KindMissingInstrument, models.KindOf(err))
}
