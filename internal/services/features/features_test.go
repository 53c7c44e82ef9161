package features

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AnomalyLens/internal/domain/models"
)

func syntheticWeekly(rows int, instruments ...string) *models.Table {
	idx := make([]time.Time, rows)
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range idx {
		idx[i] = start.AddDate(0, 0, 7*i)
	}
	t := models.NewTable(idx)
	for k, inst := range instruments {
		base := 50 + 10*float64(k)
		closes := make([]float64, rows)
		for i := range closes {
			closes[i] = base + float64(i)*0.37 + 3*math.Sin(float64(i+k)/3)
		}
		for _, f := range models.OHLCVFields {
			col := make([]float64, rows)
			copy(col, closes)
			t.MustSet(models.ColumnName(inst, f), col)
		}
	}
	return t
}

func TestRegistry_ExpectedCounts(t *testing.T) {
	want := map[string]int{
		"1": 10, "2": 1, "3": 4, "4": 3, "5": 5, "6": 2, "7": 4, "8": 4, "9": 3, "10": 3,
		"11": 4, "12": 6, "13": 18, "14": 35, "15": 4, "16": 6, "17": 4, "18": 2, "19": 3,
		"20": 3, "21": 3, "22": 2, "23": 3, "24": 2, "25": 3,
	}
	r := NewRegistry()
	all := r.All()
	require.Len(t, all, 25)
	for i, s := range all {
		assert.Equal(t, want[s.ID], s.ExpectedFeatureCount(), "strategy %s", s.ID)
		if i > 0 {
			assert.NotEqual(t, all[i-1].ID, s.ID)
		}
	}
	assert.Equal(t, "1", all[0].ID)
	assert.Equal(t, "25", all[24].ID)
}

func TestRegistry_UnknownStrategy(t *testing.T) {
	_, err := NewRegistry().Lookup("26")
	require.Error(t, err)
	assert.Equal(t, models.KindUnknownStrategy, models.KindOf(err))
}

func TestComputeFeatures_CountMatchesFormula(t *testing.T) {
	for _, s := range NewRegistry().All() {
		weekly := syntheticWeekly(80, s.Instruments...)
		out, err := ComputeFeatures(s, weekly)
		require.NoError(t, err, "strategy %s", s.ID)
		assert.Equal(t, s.ExpectedFeatureCount(), out.Width(), "strategy %s", s.ID)
		assert.Equal(t, weekly.Len(), out.Len(), "strategy %s", s.ID)
	}
}

func TestComputeFeatures_MissingInstrument(t *testing.T) {
	for _, s := range NewRegistry().All() {
		for _, drop := range s.Instruments {
			var keep []string
			for _, inst := range s.Instruments {
				if inst != drop {
					keep = append(keep, inst)
				}
			}
			_, err := ComputeFeatures(s, syntheticWeekly(30, keep...))
			require.Error(t, err, "strategy %s without %s", s.ID, drop)
			assert.Equal(t, models.KindMissingInstrument, models.KindOf(err))
			var pe *models.PipelineError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, drop, pe.Params["instrument"])
		}
	}
}

func TestComputeFeatures_Idempotent(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"5", "13", "14", "17", "20"} {
		s, err := r.Lookup(id)
		require.NoError(t, err)
		weekly := syntheticWeekly(70, s.Instruments...)
		before := weekly.Clone()

		a, err := ComputeFeatures(s, weekly)
		require.NoError(t, err)
		b, err := ComputeFeatures(s, weekly)
		require.NoError(t, err)

		assert.Equal(t, a.Columns(), b.Columns())
		assert.Equal(t, a.Rows(), b.Rows())
		assert.Equal(t, before.Rows(), weekly.Rows(), "input mutated by strategy %s", id)
	}
}

func TestComputeFeatures_RoundedCells(t *testing.T) {
	for _, s := range NewRegistry().All() {
		out, err := ComputeFeatures(s, syntheticWeekly(80, s.Instruments...))
		require.NoError(t, err)
		for _, row := range out.Rows() {
			for _, v := range row {
				assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
				assert.InDelta(t, math.Round(v*1000), v*1000, 1e-6, "strategy %s cell %v", s.ID, v)
			}
		}
	}
}

func TestComputeFeatures_RatioWithinHalfThousandth(t *testing.T) {
	s, err := NewRegistry().Lookup("7")
	require.NoError(t, err)
	weekly := syntheticWeekly(20, s.Instruments...)
	out, err := ComputeFeatures(s, weekly)
	require.NoError(t, err)

	mxus, _ := out.Column("MXUS")
	vix, _ := out.Column("VIX")
	ratio, _ := out.Column("MXUS_VIX_RATIO")
	cross, _ := out.Column("MXUS_VIX_CORR")
	for i := range ratio {
		assert.InDelta(t, mxus[i]/vix[i], ratio[i], 0.0005)
		assert.InDelta(t, mxus[i]*vix[i], cross[i], 0.0005)
	}
	assert.Equal(t, []string{"MXUS", "VIX", "MXUS_VIX_CORR", "MXUS_VIX_RATIO"}, out.Columns())
}

func TestComputeFeatures_MomentumColumnOrder(t *testing.T) {
	s, err := NewRegistry().Lookup("14")
	require.NoError(t, err)
	out, err := ComputeFeatures(s, syntheticWeekly(30, s.Instruments...))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"MXUS", "MXUS_mom_7d", "MXUS_mean_rev_7d", "MXUS_mom_14d", "MXUS_mean_rev_14d", "MXUS_mom_21d", "MXUS_mean_rev_21d",
	}, out.Columns()[:7])
}

func TestComputeFeatures_InsufficientHistoryIsZero(t *testing.T) {
	s, err := NewRegistry().Lookup("17")
	require.NoError(t, err)
	weekly := syntheticWeekly(12, "VIX")
	out, err := ComputeFeatures(s, weekly)
	require.NoError(t, err)

	change, _ := out.Column("VIX_7D_Change")
	high, _ := out.Column("VIX_7D_High")
	for i := 0; i < 7; i++ {
		assert.Equal(t, 0.0, change[i])
	}
	for i := 0; i < 6; i++ {
		assert.Equal(t, 0.0, high[i])
	}
	px, _ := weekly.Column("VIX_Close")
	assert.InDelta(t, px[7]/px[0]-1, change[7], 0.0005)
	assert.NotZero(t, high[6])
}

func TestComputeFeatures_DivisionByZeroIsZero(t *testing.T) {
	s, err := NewRegistry().Lookup("25")
	require.NoError(t, err)
	weekly := syntheticWeekly(10, s.Instruments...)
	vix, _ := weekly.Column("VIX_Close")
	vix[3] = 0

	out, err := ComputeFeatures(s, weekly)
	require.NoError(t, err)
	ratio, _ := out.Column("MXUS_VIX_Ratio")
	assert.Equal(t, 0.0, ratio[3])
}

func TestEngine_UnknownStrategy(t *testing.T) {
	_, err := NewEngine(NewRegistry()).Compute("0", syntheticWeekly(3, "VIX"))
	assert.Equal(t, models.KindUnknownStrategy, models.KindOf(err))
}

func trailingMean(xs []float64, end, window int) float64 {
	sum := 0.0
	for _, v := range xs[end-window+1 : end+1] {
		sum += v
	}
	return sum / float64(window)
}

func trailingSampleStd(xs []float64, end, window int) float64 {
	m := trailingMean(xs, end, window)
	ss := 0.0
	for _, v := range xs[end-window+1 : end+1] {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(window-1))
}

const cellTolerance = 0.0005 + 1e-9

func TestComputeFeatures_VolatilityRegimeValues(t *testing.T) {
	s, err := NewRegistry().Lookup("13")
	require.NoError(t, err)
	weekly := syntheticWeekly(90, s.Instruments...)
	out, err := ComputeFeatures(s, weekly)
	require.NoError(t, err)
	require.Len(t, out.Columns(), 18)

	for _, inst := range s.Instruments {
		px, _ := weekly.Column(models.ColumnName(inst, models.FieldClose))
		level, ok := out.Column(inst)
		require.True(t, ok, inst)
		regime, ok := out.Column(inst + "_vol_regime")
		require.True(t, ok, inst)
		trend, ok := out.Column(inst + "_trend")
		require.True(t, ok, inst)

		for i := range px {
			assert.InDelta(t, px[i], level[i], cellTolerance)
			if i < 62 {
				assert.Equal(t, 0.0, regime[i], "%s vol_regime row %d", inst, i)
			} else {
				exact := trailingSampleStd(px, i, 21) / trailingSampleStd(px, i, 63)
				assert.InDelta(t, exact, regime[i], cellTolerance, "%s vol_regime row %d", inst, i)
			}
			if i < 20 {
				assert.Equal(t, 0.0, trend[i], "%s trend row %d", inst, i)
			} else {
				exact := trailingMean(px, i, 7) / trailingMean(px, i, 21)
				assert.InDelta(t, exact, trend[i], cellTolerance, "%s trend row %d", inst, i)
			}
		}
		assert.NotZero(t, regime[62])
	}
}

func TestComputeFeatures_MomentumValues(t *testing.T) {
	s, err := NewRegistry().Lookup("14")
	require.NoError(t, err)
	weekly := syntheticWeekly(40, s.Instruments...)
	out, err := ComputeFeatures(s, weekly)
	require.NoError(t, err)
	require.Len(t, out.Columns(), 35)

	for _, inst := range s.Instruments {
		px, _ := weekly.Column(models.ColumnName(inst, models.FieldClose))
		for _, p := range MomentumPeriods {
			mom, ok := out.Column(fmt.Sprintf("%s_mom_%dd", inst, p))
			require.True(t, ok)
			rev, ok := out.Column(fmt.Sprintf("%s_mean_rev_%dd", inst, p))
			require.True(t, ok)

			for i := range px {
				if i < p {
					assert.Equal(t, 0.0, mom[i], "%s mom_%d row %d", inst, p, i)
				} else {
					assert.InDelta(t, px[i]/px[i-p]-1, mom[i], cellTolerance, "%s mom_%d row %d", inst, p, i)
				}
				if i < p-1 {
					assert.Equal(t, 0.0, rev[i], "%s mean_rev_%d row %d", inst, p, i)
				} else {
					m := trailingMean(px, i, p)
					assert.InDelta(t, (px[i]-m)/m, rev[i], cellTolerance, "%s mean_rev_%d row %d", inst, p, i)
				}
			}
		}
	}
}
