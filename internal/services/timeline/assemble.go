package timeline

import (
	"fmt"

	"AnomalyLens/internal/domain/models"
)

// Assemble packages the daily bars of the primary instrument with the aligned output.
func Assemble(daily *models.Table, aligned models.AlignedOutput, stats models.MarketStats, news []models.NewsItem) (*models.ResultRecord, error) {
	if daily == nil || daily.Len() == 0 {
		return nil, models.ErrEmptyTimeline()
	}
	n := daily.Len()
	if len(aligned.Predictions) != n || len(aligned.Probabilities) != n {
		return nil, fmt.Errorf("assemble: aligned length %d does not match %d daily rows", len(aligned.Predictions), n)
	}

	ts := make([]string, n)
	for i, t := range daily.Index {
		ts[i] = t.Format(models.TimestampLayout)
	}

	ohlc := models.OHLC{}
	for _, f := range []struct {
		field string
		dst   *[]float64
	}{
		{models.FieldOpen, &ohlc.Open},
		{models.FieldHigh, &ohlc.High},
		{models.FieldLow, &ohlc.Low},
		{models.FieldClose, &ohlc.Close},
		{models.FieldVolume, &ohlc.Volume},
	} {
		col, ok := daily.Column(models.ColumnName(models.PrimaryInstrument, f.field))
		if !ok {
			return nil, models.ErrMissingInstrument(models.PrimaryInstrument)
		}
		*f.dst = append([]float64(nil), col...)
	}

	if news == nil {
		news = []models.NewsItem{}
	}
	return &models.ResultRecord{
		Timestamps:    ts,
		Predictions:   aligned.Predictions,
		Probabilities: aligned.Probabilities,
		OHLC:          ohlc,
		MarketStats:   stats,
		News:          news,
	}, nil
}
