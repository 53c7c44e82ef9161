package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"AnomalyLens/internal/domain/models"
	domrepo "AnomalyLens/internal/domain/repository"
	"AnomalyLens/internal/service/metrics"
	"AnomalyLens/internal/service/ratelimit"
	"AnomalyLens/internal/services/inference"
	"AnomalyLens/internal/usecase"
	xhttp "AnomalyLens/pkg/http"
	xlogger "AnomalyLens/pkg/logger"
)

// Predictor is the use case surface the handler needs.
type Predictor interface {
	Predict(ctx context.Context, p usecase.PredictParams) (*models.ResultRecord, error)
	Strategies() []models.StrategyInfo
}

// PredictEchoHandler serves the anomaly prediction API.
type PredictEchoHandler struct {
	logger *xlogger.Logger
	uc     Predictor
	rl     *ratelimit.Limiter
}

func NewPredictEchoHandler(logger *xlogger.Logger, uc Predictor, rl *ratelimit.Limiter) *PredictEchoHandler {
	metrics.Register()
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &PredictEchoHandler{logger: logger, uc: uc, rl: rl}
}

func (h *PredictEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/strategies", h.Strategies)
	g.POST("/anomaly/predict", h.Predict)
	g.GET("/anomaly/models", h.Models)
	g.GET("/anomaly/intervals", h.Intervals)
}

func (h *PredictEchoHandler) Predict(c echo.Context) error {
	const endpoint = "predict"
	start := time.Now()
	defer func() { metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if h.rl != nil && !h.rl.Allow(c.RealIP()+":"+endpoint) {
		metrics.RateLimited.WithLabelValues(endpoint).Inc()
		h.logger.Warn("predict rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError(endpoint))
	}

	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint, string(models.KindInvalidArgument)).Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	params, err := usecase.ParamsFromRequest(req)
	if err == nil {
		var rec *models.ResultRecord
		rec, err = h.uc.Predict(c.Request().Context(), params)
		if err == nil {
			return xhttp.SuccessResponse(c, rec)
		}
	}

	kind := models.KindOf(err)
	metrics.EndpointErrors.WithLabelValues(endpoint, string(kind)).Inc()
	h.logger.Error("predict usecase error",
		xlogger.String("strategy", req.Strategy),
		xlogger.String("model", req.Model),
		xlogger.String("kind", string(kind)),
		xlogger.Error(err),
	)
	return xhttp.AppErrorResponse(c, toAppError(err))
}

func (h *PredictEchoHandler) Strategies(c echo.Context) error {
	rows := h.uc.Strategies()
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *PredictEchoHandler) Models(c echo.Context) error {
	return xhttp.ListResponse(c, inference.Models, int64(len(inference.Models)))
}

func (h *PredictEchoHandler) Intervals(c echo.Context) error {
	return xhttp.ListResponse(c, domrepo.Intervals, int64(len(domrepo.Intervals)))
}

// toAppError maps pipeline error kinds onto HTTP statuses.
func toAppError(err error) *xhttp.AppError {
	kind := models.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case models.KindUnknownStrategy, models.KindUnknownModel, models.KindMissingInstrument,
		models.KindInvalidArgument, models.KindDataFetchError:
		status = http.StatusBadRequest
	case models.KindModelArtifactNotFound:
		status = http.StatusNotFound
	case models.KindDegenerateColumn, models.KindEmptyTimeline:
		status = http.StatusUnprocessableEntity
	case models.KindInferenceError:
		status = http.StatusBadGateway
	}

	msg := err.Error()
	if kind == models.KindInternal {
		msg = "Something went wrong"
	}
	appErr := xhttp.NewAppError(string(kind), "", msg, status).WithError(err)
	if pe, ok := models.AsPipelineError(err); ok && len(pe.Params) > 0 {
		appErr.WithParams(pe.Params)
	}
	return appErr
}
