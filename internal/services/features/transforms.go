package features

import (
	"fmt"

	"AnomalyLens/internal/domain/models"
)

// Transform derives a feature table from a weekly market table for the given instruments.
// Transforms are pure: the input table is never modified.
type Transform func(weekly *models.Table, instruments []string) (*models.Table, error)

// MomentumPeriods are the lookbacks of the cross-asset momentum family.
var MomentumPeriods = []int{7, 14, 21}

const (
	regimeShortStd  = 21
	regimeLongStd   = 63
	trendShortMean  = 7
	trendMediumMean = 21
	changePeriod    = 7
)

func closes(weekly *models.Table, instrument string) ([]float64, error) {
	col, ok := weekly.Column(models.ColumnName(instrument, models.FieldClose))
	if !ok {
		return nil, models.ErrMissingInstrument(instrument)
	}
	return col, nil
}

func newFeatureTable(weekly *models.Table) *models.Table {
	return models.NewTable(weekly.Index)
}

// CloseOnly emits each instrument's close price rounded to 3 decimals.
func CloseOnly(weekly *models.Table, instruments []string) (*models.Table, error) {
	out := newFeatureTable(weekly)
	for _, inst := range instruments {
		px, err := closes(weekly, inst)
		if err != nil {
			return nil, err
		}
		out.MustSet(inst, RoundSeries(px))
	}
	return out, nil
}

// PairOp derives one column from two rounded base columns.
type PairOp struct {
	Name  string
	Left  string
	Right string
	Fn    func(a, b []float64) []float64
}

// BaseWithPairs emits the rounded base closes followed by pairwise cross terms
// computed from those rounded columns.
func BaseWithPairs(ops ...PairOp) Transform {
	return func(weekly *models.Table, instruments []string) (*models.Table, error) {
		out, err := CloseOnly(weekly, instruments)
		if err != nil {
			return nil, err
		}
		for _, op := range ops {
			left, ok := out.Column(op.Left)
			if !ok {
				return nil, fmt.Errorf("pair %s: base column %s not derived", op.Name, op.Left)
			}
			right, ok := out.Column(op.Right)
			if !ok {
				return nil, fmt.Errorf("pair %s: base column %s not derived", op.Name, op.Right)
			}
			out.MustSet(op.Name, RoundSeries(op.Fn(left, right)))
		}
		return out, nil
	}
}

// Change names one 7-period percent-change column. Of is either an instrument
// (raw close) or the ratio column (rounded ratio).
type Change struct {
	Name string
	Of   string
}

// RatioWithChanges emits a rounded price ratio followed by short-horizon percent changes.
func RatioWithChanges(ratio, num, den string, changes ...Change) Transform {
	return func(weekly *models.Table, _ []string) (*models.Table, error) {
		n, err := closes(weekly, num)
		if err != nil {
			return nil, err
		}
		d, err := closes(weekly, den)
		if err != nil {
			return nil, err
		}
		out := newFeatureTable(weekly)
		r := RoundSeries(Ratio(n, d))
		out.MustSet(ratio, r)
		for _, ch := range changes {
			src := r
			if ch.Of != ratio {
				if src, err = closes(weekly, ch.Of); err != nil {
					return nil, err
				}
			}
			out.MustSet(ch.Name, RoundSeries(PctChange(src, changePeriod)))
		}
		return out, nil
	}
}

// Momentum emits, per instrument, the rounded close plus price momentum and
// mean-reversion deviation for each lookback period.
func Momentum(periods ...int) Transform {
	return func(weekly *models.Table, instruments []string) (*models.Table, error) {
		out := newFeatureTable(weekly)
		for _, inst := range instruments {
			px, err := closes(weekly, inst)
			if err != nil {
				return nil, err
			}
			out.MustSet(inst, RoundSeries(px))
			for _, p := range periods {
				out.MustSet(fmt.Sprintf("%s_mom_%dd", inst, p), RoundSeries(PctChange(px, p)))
				out.MustSet(fmt.Sprintf("%s_mean_rev_%dd", inst, p), RoundSeries(Deviation(px, RollingMean(px, p))))
			}
		}
		return out, nil
	}
}

// VolatilityRegime emits, per instrument, the rounded close, a short/long rolling
// deviation ratio and a short/medium rolling mean ratio.
func VolatilityRegime(weekly *models.Table, instruments []string) (*models.Table, error) {
	out := newFeatureTable(weekly)
	for _, inst := range instruments {
		px, err := closes(weekly, inst)
		if err != nil {
			return nil, err
		}
		out.MustSet(inst, RoundSeries(px))
		out.MustSet(inst+"_vol_regime", RoundSeries(Ratio(RollingStd(px, regimeShortStd), RollingStd(px, regimeLongStd))))
		out.MustSet(inst+"_trend", RoundSeries(Ratio(RollingMean(px, trendShortMean), RollingMean(px, trendMediumMean))))
	}
	return out, nil
}

// VIXMomentum emits the VIX level with its 7-period change, high and deviation.
func VIXMomentum(weekly *models.Table, _ []string) (*models.Table, error) {
	vix, err := closes(weekly, "VIX")
	if err != nil {
		return nil, err
	}
	out := newFeatureTable(weekly)
	out.MustSet("VIX", RoundSeries(vix))
	out.MustSet("VIX_7D_Change", RoundSeries(PctChange(vix, changePeriod)))
	out.MustSet("VIX_7D_High", RoundSeries(RollingMax(vix, changePeriod)))
	out.MustSet("VIX_7D_StdDev", RoundSeries(RollingStd(vix, changePeriod)))
	return out, nil
}
