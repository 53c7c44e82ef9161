package usecase

import (
	"context"
	"sort"
	"time"

	"AnomalyLens/internal/domain/models"
	domrepo "AnomalyLens/internal/domain/repository"
	domsvc "AnomalyLens/internal/domain/service"
	"AnomalyLens/internal/services/features"
	"AnomalyLens/internal/services/inference"
	"AnomalyLens/internal/services/timeline"
	applogger "AnomalyLens/pkg/logger"
)

// Pipeline stage names, used as metric labels.
const (
	StageLoadModel = "load_model"
	StageFetch     = "fetch"
	StageFeatures  = "features"
	StageScale     = "scale"
	StageInfer     = "infer"
	StageAlign     = "align"
	StageNews      = "news"
	StageAssemble  = "assemble"
	StagePublish   = "publish"
)

// PredictParams is one pipeline invocation.
type PredictParams struct {
	Strategy string
	// Primary is the ticker shown on the daily timeline.
	Primary string
	// Instruments maps feature names to tickers; PRIMARY_SYMBOL entries are ignored.
	Instruments []models.Instrument
	Interval    domrepo.Interval
	Model       string
}

// PredictionUseCase runs fetch, features, scaling, inference, alignment and assembly in sequence.
// It holds no per-run state; concurrent calls share only the read-only engine and the model cache.
type PredictionUseCase struct {
	market    domrepo.MarketDataSource
	news      domrepo.NewsSource
	models    domsvc.ModelLoader
	engine    *features.Engine
	scaler    *features.Scaler
	publisher domrepo.ResultPublisher
	metrics   domrepo.Metrics
	defModel  string
	now       func() time.Time
	l         *applogger.Logger
}

func NewPredictionUseCase(
	market domrepo.MarketDataSource,
	news domrepo.NewsSource,
	loader domsvc.ModelLoader,
	engine *features.Engine,
	scaler *features.Scaler,
	publisher domrepo.ResultPublisher,
	metrics domrepo.Metrics,
) *PredictionUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &PredictionUseCase{
		market:    market,
		news:      news,
		models:    loader,
		engine:    engine,
		scaler:    scaler,
		publisher: publisher,
		metrics:   metrics,
		defModel:  inference.DefaultModel,
		now:       time.Now,
		l:         applogger.Nop(),
	}
}

// SetLogger injects a structured logger.
func (u *PredictionUseCase) SetLogger(l *applogger.Logger) {
	if l != nil {
		u.l = l
	}
}

// SetDefaultModel sets the model used when a request names none.
func (u *PredictionUseCase) SetDefaultModel(model string) {
	if model != "" {
		u.defModel = model
	}
}

// Strategies lists the registered strategies.
func (u *PredictionUseCase) Strategies() []models.StrategyInfo {
	all := u.engine.Registry().All()
	out := make([]models.StrategyInfo, 0, len(all))
	for _, s := range all {
		out = append(out, s.Info())
	}
	return out
}

// Predict runs one isolated pipeline and returns the result record.
// The first failing stage aborts the run; no partial record is returned.
func (u *PredictionUseCase) Predict(ctx context.Context, p PredictParams) (*models.ResultRecord, error) {
	rec, err := u.predict(ctx, p)
	if err != nil {
		kind := models.KindOf(err)
		u.metrics.RecordError(string(kind))
		u.l.Error("prediction failed",
			applogger.String("strategy", p.Strategy),
			applogger.String("model", p.Model),
			applogger.String("symbol", p.Primary),
			applogger.String("kind", string(kind)),
			applogger.Error(err),
		)
		return nil, err
	}
	return rec, nil
}

func (u *PredictionUseCase) predict(ctx context.Context, p PredictParams) (*models.ResultRecord, error) {
	if p.Model == "" {
		p.Model = u.defModel
	}
	if p.Interval == "" {
		p.Interval = domrepo.DefaultInterval()
	}
	if !domrepo.IsValidInterval(p.Interval) {
		return nil, models.ErrInvalidArgument("interval", "Invalid interval: "+string(p.Interval))
	}
	if p.Primary == "" {
		return nil, models.ErrInvalidArgument("symbol", "Primary symbol is required")
	}
	strategy, err := u.engine.Registry().Lookup(p.Strategy)
	if err != nil {
		return nil, err
	}

	var predictor domsvc.Predictor
	if err := u.stage(StageLoadModel, p, func() error {
		var lerr error
		predictor, lerr = u.models.Load(ctx, p.Strategy, p.Model)
		return lerr
	}); err != nil {
		return nil, err
	}

	base := baseInstruments(p.Instruments)
	if len(base) == 0 {
		return nil, models.ErrMissingInstrument(strategy.Instruments[0])
	}

	var primary, market *models.MarketData
	if err := u.stage(StageFetch, p, func() error {
		var ferr error
		primary, ferr = u.market.Fetch(ctx, []models.Instrument{{Name: models.PrimaryInstrument, Ticker: p.Primary}}, p.Interval)
		if ferr != nil {
			return ferr
		}
		market, ferr = u.market.Fetch(ctx, base, p.Interval)
		return ferr
	}); err != nil {
		return nil, err
	}

	var ft *models.Table
	if err := u.stage(StageFeatures, p, func() error {
		var ferr error
		ft, ferr = features.ComputeFeatures(strategy, market.Weekly)
		return ferr
	}); err != nil {
		return nil, err
	}

	var scaled *models.Table
	if err := u.stage(StageScale, p, func() error {
		var serr error
		scaled, serr = u.scaler.Standardize(ft)
		return serr
	}); err != nil {
		return nil, err
	}

	var scored *models.Scored
	if err := u.stage(StageInfer, p, func() error {
		var ierr error
		scored, ierr = inference.Score(ctx, predictor, scaled.Rows())
		return ierr
	}); err != nil {
		return nil, err
	}

	var aligned models.AlignedOutput
	if err := u.stage(StageAlign, p, func() error {
		var aerr error
		aligned, aerr = timeline.AlignToDaily(primary.Daily, ft, scored)
		return aerr
	}); err != nil {
		return nil, err
	}

	news := u.fetchNews(ctx, p)

	var rec *models.ResultRecord
	if err := u.stage(StageAssemble, p, func() error {
		var aerr error
		rec, aerr = timeline.Assemble(primary.Daily, aligned, primary.Stats, news)
		return aerr
	}); err != nil {
		return nil, err
	}

	anomalies := aligned.CountAnomalies()
	u.metrics.RecordRun(p.Strategy, p.Model, anomalies)
	u.publish(ctx, p, rec, anomalies)

	u.l.Info("prediction complete",
		applogger.String("strategy", p.Strategy),
		applogger.String("model", p.Model),
		applogger.String("symbol", p.Primary),
		applogger.String("interval", string(p.Interval)),
		applogger.Int("daily_rows", len(rec.Timestamps)),
		applogger.Int("weekly_rows", ft.Len()),
		applogger.Int("features", ft.Width()),
		applogger.Int("anomalies", anomalies),
	)
	return rec, nil
}

// stage times fn and records it under name.
func (u *PredictionUseCase) stage(name string, p PredictParams, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	u.metrics.RecordStage(name, elapsed.Seconds())
	u.l.Debug("pipeline stage",
		applogger.String("stage", name),
		applogger.String("strategy", p.Strategy),
		applogger.String("model", p.Model),
		applogger.Duration("duration_ms", elapsed),
		applogger.Bool("ok", err == nil),
	)
	return err
}

// fetchNews never fails the run; an unavailable news source yields an empty list.
func (u *PredictionUseCase) fetchNews(ctx context.Context, p PredictParams) []models.NewsItem {
	if u.news == nil {
		return []models.NewsItem{}
	}
	var items []models.NewsItem
	_ = u.stage(StageNews, p, func() error {
		var err error
		items, err = u.news.GetNews(ctx, p.Primary)
		if err != nil {
			u.l.Warn("news unavailable", applogger.String("symbol", p.Primary), applogger.Error(err))
			items = []models.NewsItem{}
		}
		return nil
	})
	return items
}

func (u *PredictionUseCase) publish(ctx context.Context, p PredictParams, rec *models.ResultRecord, anomalies int) {
	if u.publisher == nil {
		return
	}
	ev := &models.ResultEvent{
		Strategy:    p.Strategy,
		Model:       p.Model,
		Symbol:      p.Primary,
		Interval:    string(p.Interval),
		Rows:        len(rec.Timestamps),
		Anomalies:   anomalies,
		AnomalyDays: anomalyDays(rec),
		GeneratedAt: u.now().UTC(),
	}
	_ = u.stage(StagePublish, p, func() error {
		if err := u.publisher.Publish(ctx, ev); err != nil {
			u.l.Warn("result publish failed", applogger.String("strategy", p.Strategy), applogger.Error(err))
		}
		return nil
	})
}

func anomalyDays(rec *models.ResultRecord) []string {
	out := []string{}
	for i, v := range rec.Predictions {
		if v != 0 {
			out = append(out, rec.Timestamps[i])
		}
	}
	return out
}

// baseInstruments drops the primary-symbol tag from a mapping.
func baseInstruments(in []models.Instrument) []models.Instrument {
	out := make([]models.Instrument, 0, len(in))
	for _, inst := range in {
		if inst.Name == models.PrimaryKey {
			continue
		}
		out = append(out, inst)
	}
	return out
}

type nopMetrics struct{}

func (nopMetrics) RecordStage(string, float64)   {}
func (nopMetrics) RecordError(string)            {}
func (nopMetrics) RecordRun(string, string, int) {}

// ParamsFromRequest converts a validated request into pipeline params.
// Mapping entries are ordered by feature name.
func ParamsFromRequest(req *models.PredictRequest) (PredictParams, error) {
	iv, ok := domrepo.ParseInterval(req.Interval)
	if !ok {
		return PredictParams{}, models.ErrInvalidArgument("interval", "Invalid interval: "+req.Interval)
	}
	names := make([]string, 0, len(req.BaseFeatures))
	for name := range req.BaseFeatures {
		names = append(names, name)
	}
	sort.Strings(names)
	insts := make([]models.Instrument, 0, len(names))
	for _, name := range names {
		insts = append(insts, models.Instrument{Name: name, Ticker: req.BaseFeatures[name]})
	}
	return PredictParams{
		Strategy:    req.Strategy,
		Primary:     req.Symbol,
		Instruments: insts,
		Interval:    iv,
		Model:       req.Model,
	}, nil
}
