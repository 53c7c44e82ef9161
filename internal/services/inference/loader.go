package inference

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"AnomalyLens/internal/domain/models"
	domsvc "AnomalyLens/internal/domain/service"
	icache "AnomalyLens/internal/service/cache"
	"AnomalyLens/internal/services/features"
	applogger "AnomalyLens/pkg/logger"
)

// Model names accepted by the loader.
var Models = []string{
	"voting_ensemble",
	"isolation_forest",
	"xgboost",
	"gradient_boosting",
	"random_forest",
	"neural_net",
	"svm",
	"gaussian_mixture",
	"elliptic_envelope",
}

// DefaultModel is used when a request names no model.
const DefaultModel = "voting_ensemble"

// IsValidModel reports whether name is a known model.
func IsValidModel(name string) bool {
	for _, m := range Models {
		if m == name {
			return true
		}
	}
	return false
}

// Loader resolves predictors from artifacts on disk and caches them per (strategy, model).
// A cached predictor reloads its artifact once when the service has forgotten its id.
// A failed reload drops the cache entry.
type Loader struct {
	artifactDir string
	registry    *features.Registry
	client      *ServiceClient
	cache       *icache.TTLCache
	logger      *applogger.Logger
}

// NewLoader creates a loader.
func NewLoader(artifactDir string, registry *features.Registry, client *ServiceClient) *Loader {
	return &Loader{
		artifactDir: artifactDir,
		registry:    registry,
		client:      client,
		cache:       icache.NewTTLCache(),
		logger:      applogger.Nop(),
	}
}

// SetLogger injects an app logger.
func (l *Loader) SetLogger(lg *applogger.Logger) {
	if lg != nil {
		l.logger = lg
	}
}

// ArtifactPath returns where the artifact for a strategy folder and model lives.
func (l *Loader) ArtifactPath(folder, model string) string {
	return filepath.Join(l.artifactDir, "results", folder, "models", model+".joblib")
}

// Load validates the request, checks the artifact exists and asks the model service to load it.
func (l *Loader) Load(ctx context.Context, strategyID, model string) (domsvc.Predictor, error) {
	s, err := l.registry.Lookup(strategyID)
	if err != nil {
		return nil, err
	}
	if !IsValidModel(model) {
		return nil, models.ErrUnknownModel(model)
	}

	key := strategyID + ":" + model
	if v, ok := l.cache.Get(key); ok {
		if p, ok := v.(domsvc.Predictor); ok {
			return p, nil
		}
	}

	path := l.ArtifactPath(s.Folder, model)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, models.ErrModelArtifactNotFound(path)
		}
		return nil, models.ErrInference("stat model artifact", err)
	}

	req := loadReq{
		Strategy:     s.ID,
		Folder:       s.Folder,
		Model:        model,
		ArtifactPath: path,
	}
	resp, err := l.client.Load(ctx, req)
	if err != nil {
		return nil, models.ErrInference("model service load failed", err)
	}

	ref := &modelRef{id: resp.ModelID}
	ref.reload = func(ctx context.Context) (string, error) {
		again, err := l.client.Load(ctx, req)
		if err != nil {
			l.cache.Delete(key)
			return "", err
		}
		l.logger.Info("model reloaded",
			applogger.String("strategy", s.ID),
			applogger.String("model", model),
			applogger.String("model_id", again.ModelID),
		)
		return again.ModelID, nil
	}

	base := &LabelModel{client: l.client, ref: ref, nFeatures: resp.NFeatures}
	var p domsvc.Predictor = base
	proba := hasCapability(resp.Capabilities, CapabilityProba)
	if proba {
		p = &ProbaModel{LabelModel: base}
	}

	l.cache.Set(key, p, 0)
	l.logger.Debug("model loaded",
		applogger.String("strategy", s.ID),
		applogger.String("model", model),
		applogger.String("model_id", resp.ModelID),
		applogger.Bool("probabilities", proba),
	)
	return p, nil
}

func hasCapability(caps []string, want string) bool {
	for _, c := range caps {
		if c == want {
			return true
		}
	}
	return false
}

var _ domsvc.ModelLoader = (*Loader)(nil)
