package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"AnomalyLens/internal/domain/models"
	domsvc "AnomalyLens/internal/domain/service"
	xhttp "AnomalyLens/pkg/http"
)

// modelRef holds the service-side id of a loaded artifact. The id is replaced
// when the service no longer knows it, e.g. after a restart.
type modelRef struct {
	mu     sync.Mutex
	id     string
	reload func(ctx context.Context) (string, error)
}

func (r *modelRef) current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.id
}

// refresh reloads the artifact unless another caller already replaced stale.
func (r *modelRef) refresh(ctx context.Context, stale string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.id != stale {
		return r.id, nil
	}
	if r.reload == nil {
		return "", errors.New("model cannot be reloaded")
	}
	id, err := r.reload(ctx)
	if err != nil {
		return "", err
	}
	r.id = id
	return id, nil
}

// isStaleModel reports whether the service rejected a model id it does not hold.
func isStaleModel(err error) bool {
	code := xhttp.StatusCode(err)
	return code == http.StatusNotFound || code == http.StatusGone
}

// LabelModel is a loaded artifact that only emits hard labels.
type LabelModel struct {
	client    *ServiceClient
	ref       *modelRef
	nFeatures int
}

// post scores matrix on path. An unknown-id answer triggers one reload and retry.
func (m *LabelModel) post(ctx context.Context, path string, matrix [][]float64, dest interface{}) error {
	id := m.ref.current()
	err := m.client.PostJSON(ctx, path, scoreReq{ModelID: id, Features: matrix}, dest)
	if err == nil || !isStaleModel(err) {
		return err
	}
	id, rerr := m.ref.refresh(ctx, id)
	if rerr != nil {
		return fmt.Errorf("reload after %v: %w", err, rerr)
	}
	return m.client.PostJSON(ctx, path, scoreReq{ModelID: id, Features: matrix}, dest)
}

// ProbaModel is a loaded artifact that also emits probabilities.
type ProbaModel struct {
	*LabelModel
}

func (m *LabelModel) checkShape(matrix [][]float64) error {
	if m.nFeatures <= 0 {
		return nil
	}
	for i, row := range matrix {
		if len(row) != m.nFeatures {
			return fmt.Errorf("row %d has %d features, model expects %d", i, len(row), m.nFeatures)
		}
	}
	return nil
}

// Predict returns one label per row.
func (m *LabelModel) Predict(ctx context.Context, matrix [][]float64) ([]float64, error) {
	if err := m.checkShape(matrix); err != nil {
		return nil, err
	}
	var out predictResp
	if err := m.post(ctx, "/models/predict", matrix, &out); err != nil {
		return nil, err
	}
	return out.Predictions, nil
}

// PredictProba returns one (non-anomaly, anomaly) pair per row.
func (m *ProbaModel) PredictProba(ctx context.Context, matrix [][]float64) ([]models.Probability, error) {
	if err := m.checkShape(matrix); err != nil {
		return nil, err
	}
	var out probaResp
	if err := m.post(ctx, "/models/predict_proba", matrix, &out); err != nil {
		return nil, err
	}
	probs := make([]models.Probability, len(out.Probabilities))
	for i, p := range out.Probabilities {
		if len(p) != 2 {
			return nil, fmt.Errorf("row %d: expected 2 probabilities, got %d", i, len(p))
		}
		probs[i] = models.Probability{p[0], p[1]}
	}
	return probs, nil
}

var (
	_ domsvc.Predictor              = (*LabelModel)(nil)
	_ domsvc.ProbabilisticPredictor = (*ProbaModel)(nil)
)
