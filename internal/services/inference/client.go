package inference

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"AnomalyLens/pkg/config"
	xhttp "AnomalyLens/pkg/http"
)

// ServiceClient talks to the external model-scoring service.
// All calls go through a circuit breaker so a dead service fails fast.
type ServiceClient struct {
	baseURL string
	client  *xhttp.Client
	breaker *gobreaker.CircuitBreaker
}

// NewServiceClient builds a client with timeout, base URL and breaker settings from config.
func NewServiceClient(cfg config.ModelConfig) *ServiceClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxFailures := cfg.Breaker.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	st := gobreaker.Settings{
		Name:        "model-service",
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: countsAsSuccess,
	}
	return &ServiceClient{
		baseURL: cfg.ServiceURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		breaker: gobreaker.NewCircuitBreaker(st),
	}
}

// countsAsSuccess keeps client errors (4xx) from tripping the breaker.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	code := xhttp.StatusCode(err)
	return code >= 400 && code < 500
}

// PostJSON posts the given payload to `path` under baseURL and decodes JSON into dest.
func (c *ServiceClient) PostJSON(ctx context.Context, path string, payload interface{}, dest interface{}) error {
	if c.client == nil || c.baseURL == "" {
		return fmt.Errorf("model service client not initialized")
	}
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: xhttp.MethodPost,
			URL:    c.baseURL + path,
			Body:   payload,
		}, dest)
	})
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	return nil
}

type loadReq struct {
	Strategy     string `json:"strategy"`
	Folder       string `json:"folder"`
	Model        string `json:"model"`
	ArtifactPath string `json:"artifact_path"`
}

type loadResp struct {
	ModelID      string   `json:"model_id"`
	Capabilities []string `json:"capabilities"`
	NFeatures    int      `json:"n_features"`
}

type scoreReq struct {
	ModelID  string      `json:"model_id"`
	Features [][]float64 `json:"features"`
}

type predictResp struct {
	Predictions []float64 `json:"predictions"`
}

type probaResp struct {
	Probabilities [][]float64 `json:"probabilities"`
}

// CapabilityProba is reported by models that expose calibrated probabilities.
const CapabilityProba = "predict_proba"

// Load asks the service to deserialize an artifact and reports its capabilities.
func (c *ServiceClient) Load(ctx context.Context, req loadReq) (*loadResp, error) {
	var out loadResp
	if err := c.PostJSON(ctx, "/models/load", req, &out); err != nil {
		return nil, err
	}
	if out.ModelID == "" {
		return nil, fmt.Errorf("load %s: empty model id", req.ArtifactPath)
	}
	return &out, nil
}
