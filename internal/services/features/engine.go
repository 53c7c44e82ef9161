package features

import (
	"fmt"

	"AnomalyLens/internal/domain/models"
)

// Engine applies registry transforms and validates the resulting shape.
type Engine struct {
	registry *Registry
}

// NewEngine creates an engine over the given registry.
func NewEngine(registry *Registry) *Engine {
	return &Engine{registry: registry}
}

// Registry exposes the engine's strategy registry.
func (e *Engine) Registry() *Registry { return e.registry }

// Compute looks up the strategy and derives its feature table.
func (e *Engine) Compute(strategyID string, weekly *models.Table) (*models.Table, error) {
	s, err := e.registry.Lookup(strategyID)
	if err != nil {
		return nil, err
	}
	return ComputeFeatures(s, weekly)
}

// ComputeFeatures derives the strategy's feature table from a weekly table.
// Undefined cells become 0 and the column count must match the strategy formula.
func ComputeFeatures(s *Strategy, weekly *models.Table) (*models.Table, error) {
	if weekly == nil {
		return nil, fmt.Errorf("compute features: nil weekly table")
	}
	for _, inst := range s.Instruments {
		if !weekly.Has(models.ColumnName(inst, models.FieldClose)) {
			return nil, models.ErrMissingInstrument(inst)
		}
	}
	out, err := s.transform(weekly, s.RequiredInstruments())
	if err != nil {
		return nil, err
	}
	out.ReplaceUndefined()
	if expected := s.ExpectedFeatureCount(); out.Width() != expected {
		return nil, models.ErrFeatureCountMismatch(out.Width(), expected)
	}
	return out, nil
}
