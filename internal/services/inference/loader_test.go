package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AnomalyLens/internal/domain/models"
	domsvc "AnomalyLens/internal/domain/service"
	"AnomalyLens/internal/services/features"
	"AnomalyLens/pkg/config"
)

type fakeModelService struct {
	server    *httptest.Server
	loads     atomic.Int32
	gen       atomic.Int32
	failLoads atomic.Bool
	caps      []string
}

// restart makes the service forget every id it handed out.
func (f *fakeModelService) restart() { f.gen.Add(1) }

func (f *fakeModelService) known(w http.ResponseWriter, id string) bool {
	var folder, model string
	var gen int32
	if _, err := fmt.Sscanf(id, "%s %s %d", &folder, &model, &gen); err != nil || gen != f.gen.Load() {
		http.Error(w, "unknown model id", http.StatusNotFound)
		return false
	}
	return true
}

func newFakeModelService(t *testing.T, caps ...string) *fakeModelService {
	t.Helper()
	f := &fakeModelService{caps: caps}
	mux := http.NewServeMux()
	mux.HandleFunc("/models/load", func(w http.ResponseWriter, r *http.Request) {
		f.loads.Add(1)
		if f.failLoads.Load() {
			http.Error(w, "artifact store offline", http.StatusServiceUnavailable)
			return
		}
		var req loadReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		id := fmt.Sprintf("%s %s %d", req.Folder, req.Model, f.gen.Load())
		_ = json.NewEncoder(w).Encode(loadResp{ModelID: id, Capabilities: f.caps, NFeatures: 2})
	})
	mux.HandleFunc("/models/predict", func(w http.ResponseWriter, r *http.Request) {
		var req scoreReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if !f.known(w, req.ModelID) {
			return
		}
		preds := make([]float64, len(req.Features))
		for i, row := range req.Features {
			if row[0] > 0 {
				preds[i] = 1
			}
		}
		_ = json.NewEncoder(w).Encode(predictResp{Predictions: preds})
	})
	mux.HandleFunc("/models/predict_proba", func(w http.ResponseWriter, r *http.Request) {
		var req scoreReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if !f.known(w, req.ModelID) {
			return
		}
		probs := make([][]float64, len(req.Features))
		for i := range probs {
			probs[i] = []float64{0.25, 0.75}
		}
		_ = json.NewEncoder(w).Encode(probaResp{Probabilities: probs})
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func newTestLoader(t *testing.T, svc *fakeModelService, artifacts ...string) *Loader {
	t.Helper()
	dir := t.TempDir()
	for _, a := range artifacts {
		path := filepath.Join(dir, "results", a)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("artifact"), 0o600))
	}
	cfg := config.ModelConfig{ServiceURL: svc.server.URL, Timeout: 2 * time.Second}
	return NewLoader(dir, features.NewRegistry(), NewServiceClient(cfg))
}

func TestLoader_Validation(t *testing.T) {
	svc := newFakeModelService(t)
	l := newTestLoader(t, svc)

	_, err := l.Load(context.Background(), "99", "svm")
	assert.Equal(t, models.KindUnknownStrategy, models.KindOf(err))

	_, err = l.Load(context.Background(), "6", "lstm")
	assert.Equal(t, models.KindUnknownModel, models.KindOf(err))

	_, err = l.Load(context.Background(), "6", "svm")
	assert.Equal(t, models.KindModelArtifactNotFound, models.KindOf(err))
	assert.Contains(t, err.Error(), filepath.Join("results", "equities_vs_bonds", "models", "svm.joblib"))
	assert.Zero(t, svc.loads.Load())
}

func TestLoader_LabelOnlyVariant(t *testing.T) {
	svc := newFakeModelService(t, "predict")
	l := newTestLoader(t, svc, "equities_vs_bonds/models/isolation_forest.joblib")

	p, err := l.Load(context.Background(), "6", "isolation_forest")
	require.NoError(t, err)
	_, isProba := p.(domsvc.ProbabilisticPredictor)
	assert.False(t, isProba)

	out, err := Score(context.Background(), p, [][]float64{{1, 0}, {-1, 0}})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, out.Predictions)
	assert.Equal(t, []models.Probability{{0, 1}, {1, 0}}, out.Probabilities)
}

func TestLoader_ProbabilisticVariantAndCache(t *testing.T) {
	svc := newFakeModelService(t, "predict", CapabilityProba)
	l := newTestLoader(t, svc, "equities_vs_bonds/models/voting_ensemble.joblib")

	p, err := l.Load(context.Background(), "6", "voting_ensemble")
	require.NoError(t, err)
	_, isProba := p.(domsvc.ProbabilisticPredictor)
	assert.True(t, isProba)

	again, err := l.Load(context.Background(), "6", "voting_ensemble")
	require.NoError(t, err)
	assert.Same(t, p, again)
	assert.Equal(t, int32(1), svc.loads.Load())

	out, err := Score(context.Background(), p, [][]float64{{1, 0}})
	require.NoError(t, err)
	assert.Equal(t, []models.Probability{{0.25, 0.75}}, out.Probabilities)
}

func TestLoader_ShapeMismatchIsInferenceError(t *testing.T) {
	svc := newFakeModelService(t, "predict")
	l := newTestLoader(t, svc, "equities_vs_bonds/models/svm.joblib")

	p, err := l.Load(context.Background(), "6", "svm")
	require.NoError(t, err)
	_, err = Score(context.Background(), p, [][]float64{{1, 2, 3}})
	assert.Equal(t, models.KindInferenceError, models.KindOf(err))
}

func TestLoader_ReloadsAfterServiceRestart(t *testing.T) {
	svc := newFakeModelService(t, "predict", CapabilityProba)
	l := newTestLoader(t, svc, "equities_vs_bonds/models/voting_ensemble.joblib")
	ctx := context.Background()

	p, err := l.Load(ctx, "6", "voting_ensemble")
	require.NoError(t, err)
	_, err = Score(ctx, p, [][]float64{{1, 0}})
	require.NoError(t, err)

	svc.restart()
	for i := 0; i < 7; i++ {
		p, err := l.Load(ctx, "6", "voting_ensemble")
		require.NoError(t, err)
		out, err := Score(ctx, p, [][]float64{{1, 0}})
		require.NoError(t, err, "run %d", i)
		assert.Equal(t, []float64{1}, out.Predictions)
		assert.Equal(t, []models.Probability{{0.25, 0.75}}, out.Probabilities)
	}
	assert.Equal(t, int32(2), svc.loads.Load())
	assert.Equal(t, gobreaker.StateClosed, l.client.breaker.State())
}

func TestLoader_FailedReloadDropsCacheEntry(t *testing.T) {
	svc := newFakeModelService(t, "predict")
	l := newTestLoader(t, svc, "equities_vs_bonds/models/svm.joblib")
	ctx := context.Background()

	p, err := l.Load(ctx, "6", "svm")
	require.NoError(t, err)

	svc.restart()
	svc.failLoads.Store(true)
	_, err = Score(ctx, p, [][]float64{{1, 0}})
	assert.Equal(t, models.KindInferenceError, models.KindOf(err))
	_, cached := l.cache.Get("6:svm")
	assert.False(t, cached)

	svc.failLoads.Store(false)
	p, err = l.Load(ctx, "6", "svm")
	require.NoError(t, err)
	_, err = Score(ctx, p, [][]float64{{1, 0}})
	require.NoError(t, err)
	assert.Equal(t, int32(3), svc.loads.Load())
}

func TestServiceClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown model id", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	c := NewServiceClient(config.ModelConfig{ServiceURL: srv.URL, Timeout: time.Second})

	for i := 0; i < 10; i++ {
		err := c.PostJSON(context.Background(), "/models/predict", scoreReq{ModelID: "gone"}, &predictResp{})
		require.Error(t, err)
		assert.NotErrorIs(t, err, gobreaker.ErrOpenState)
	}
	assert.Equal(t, gobreaker.StateClosed, c.breaker.State())

	assert.True(t, countsAsSuccess(nil))
	assert.False(t, countsAsSuccess(fmt.Errorf("dial tcp: refused")))
}
