package features

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"AnomalyLens/internal/domain/models"
)

// DegeneratePolicy selects how a zero-deviation column is handled.
type DegeneratePolicy string

const (
	PolicyFail          DegeneratePolicy = "fail"
	PolicyLeaveUnscaled DegeneratePolicy = "leave_unscaled"
)

// IsValid reports whether p is a known policy.
func (p DegeneratePolicy) IsValid() bool {
	return p == PolicyFail || p == PolicyLeaveUnscaled
}

// Scaler standardizes each column with statistics of the batch being scored.
type Scaler struct {
	policy DegeneratePolicy
}

// NewScaler creates a scaler. An unknown policy falls back to PolicyFail.
func NewScaler(policy DegeneratePolicy) *Scaler {
	if !policy.IsValid() {
		policy = PolicyFail
	}
	return &Scaler{policy: policy}
}

// Standardize returns (x - mean) / std per column, using the population deviation.
func (s *Scaler) Standardize(ft *models.Table) (*models.Table, error) {
	if ft == nil || ft.Len() == 0 {
		return nil, fmt.Errorf("standardize: empty feature table")
	}
	out := models.NewTable(ft.Index)
	for _, name := range ft.Columns() {
		col, _ := ft.Column(name)
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 || constant(col) {
			if s.policy == PolicyFail {
				return nil, models.ErrDegenerateColumn(name)
			}
			std = 1
		}
		scaled := make([]float64, len(col))
		for i, v := range col {
			scaled[i] = (v - mean) / std
		}
		out.MustSet(name, scaled)
	}
	return out, nil
}

func constant(xs []float64) bool {
	for _, v := range xs[1:] {
		if v != xs[0] {
			return false
		}
	}
	return true
}
