package marketdata

import (
	"context"
	"fmt"
	"time"

	"AnomalyLens/internal/domain/models"
	domrepo "AnomalyLens/internal/domain/repository"
	"AnomalyLens/internal/services/features"
	applogger "AnomalyLens/pkg/logger"
	"AnomalyLens/pkg/util"
)

// Source assembles aligned daily and weekly tables from a candle store.
// The first instrument of a fetch also gets a market-stats record.
type Source struct {
	candles domrepo.CandleStore
	quotes  domrepo.QuoteSource
	session *Session
	now     func() time.Time
	logger  *applogger.Logger
}

// Option configures Source.
type Option func(*Source)

// WithQuotes sets the metadata provider used for market stats.
func WithQuotes(q domrepo.QuoteSource) Option {
	return func(s *Source) { s.quotes = q }
}

// WithSession sets the exchange calendar used for the market state fallback.
func WithSession(sess *Session) Option {
	return func(s *Source) { s.session = sess }
}

// WithClock overrides the current time.
func WithClock(now func() time.Time) Option {
	return func(s *Source) { s.now = now }
}

// WithLogger injects an app logger.
func WithLogger(l *applogger.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSource creates a market-data source over a candle store.
func NewSource(candles domrepo.CandleStore, opts ...Option) *Source {
	s := &Source{
		candles: candles,
		now:     time.Now,
		logger:  applogger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.session == nil {
		s.session = NewSession("xnys")
	}
	return s
}

// Fetch returns daily and weekly tables for the instruments over the interval.
func (s *Source) Fetch(ctx context.Context, instruments []models.Instrument, iv domrepo.Interval) (*models.MarketData, error) {
	if !domrepo.IsValidInterval(iv) {
		return nil, models.ErrInvalidArgument("interval", fmt.Sprintf("Invalid interval: %s", iv))
	}
	if len(instruments) == 0 {
		return nil, models.ErrInvalidArgument("symbol_mapping", "No instruments to fetch")
	}
	from, to := s.window(iv)

	daily := make([]models.InstrumentSeries, 0, len(instruments))
	weekly := make([]models.InstrumentSeries, 0, len(instruments))
	var stats models.MarketStats

	for i, inst := range instruments {
		symbol := ProviderSymbol(inst.Ticker)
		mult := Multiplier(inst.Ticker)

		d, err := s.fetchSeries(ctx, inst, symbol, from, to, domrepo.TFDaily, mult)
		if err != nil {
			return nil, err
		}
		w, err := s.fetchSeries(ctx, inst, symbol, from, to, domrepo.TFWeekly, mult)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("instrument fetched",
			applogger.String("instrument", inst.Name),
			applogger.String("symbol", symbol),
			applogger.Int("daily", len(d)),
			applogger.Int("weekly", len(w)),
		)

		if i == 0 {
			stats = s.stats(ctx, inst.Ticker, symbol, d)
		}
		daily = append(daily, models.InstrumentSeries{Instrument: inst.Name, Candles: d})
		weekly = append(weekly, models.InstrumentSeries{Instrument: inst.Name, Candles: w})
	}

	return &models.MarketData{
		Daily:  models.MergeSeries(daily),
		Weekly: models.MergeSeries(weekly),
		Stats:  stats,
	}, nil
}

// window converts iv into whole UTC days ending today. Session-counted
// intervals start at the day of the oldest session they cover.
func (s *Source) window(iv domrepo.Interval) (time.Time, time.Time) {
	now := s.now()
	from, to := iv.Range(now)
	if n := iv.Sessions(); n > 0 {
		from = s.session.RecentSessions(now, n)
	}
	return util.AlignFromTo(from, to)
}

func (s *Source) fetchSeries(ctx context.Context, inst models.Instrument, symbol string, from, to time.Time, tf domrepo.Timeframe, mult float64) ([]models.Candle, error) {
	candles, err := s.candles.GetCandles(ctx, symbol, from, to, tf)
	if err != nil {
		return nil, models.ErrDataFetch(fmt.Sprintf("Error fetching data for %s (provider: %s)", inst.Ticker, symbol), err)
	}
	if len(candles) == 0 {
		return nil, models.ErrDataFetch(fmt.Sprintf("No data returned for symbol (%s). Please check if the symbol is correct.", inst.Ticker), nil)
	}
	out := make([]models.Candle, len(candles))
	for i, c := range candles {
		out[i] = models.Candle{
			Bucket: util.NormalizeDay(c.Bucket),
			Symbol: symbol,
			Open:   features.Round(c.Open * mult),
			High:   features.Round(c.High * mult),
			Low:    features.Round(c.Low * mult),
			Close:  features.Round(c.Close * mult),
			Volume: c.Volume,
		}
	}
	return out, nil
}

// stats combines provider metadata with the fetched daily closes.
func (s *Source) stats(ctx context.Context, ticker, symbol string, daily []models.Candle) models.MarketStats {
	var st models.MarketStats
	if s.quotes != nil {
		q, err := s.quotes.GetStats(ctx, symbol)
		if err != nil {
			s.logger.Warn("market stats unavailable", applogger.String("symbol", symbol), applogger.Error(err))
		} else {
			st = q
		}
	}
	if st.LongName == "" {
		st.LongName = ticker
	}
	if st.ShortName == "" {
		st.ShortName = ticker
	}
	if st.Currency == "" {
		st.Currency = "USD"
	}
	now := s.now()
	if st.MarketState == "" {
		st.MarketState = s.session.State(now)
	}

	if len(daily) > 0 {
		current := daily[len(daily)-1].Close
		st.CurrentPrice = models.Float(current)
		if st.PreviousClose == nil && len(daily) > 1 {
			st.PreviousClose = models.Float(daily[len(daily)-2].Close)
		}
		if st.PreviousClose != nil {
			prev := *st.PreviousClose
			st.PriceChange = models.Float(current - prev)
			pct := 0.0
			if prev != 0 {
				pct = (current - prev) / prev * 100
			}
			st.PriceChangePercent = models.Float(pct)
		}
	}
	if st.Week52High == nil || st.Week52Low == nil {
		hi, lo := range52(daily)
		if st.Week52High == nil && hi != nil {
			st.Week52High = hi
		}
		if st.Week52Low == nil && lo != nil {
			st.Week52Low = lo
		}
	}
	return st
}

// range52 returns the high/low of the last 52 weeks of daily bars.
func range52(daily []models.Candle) (*float64, *float64) {
	if len(daily) == 0 {
		return nil, nil
	}
	cutoff := daily[len(daily)-1].Bucket.AddDate(0, 0, -364)
	var hi, lo *float64
	for _, c := range daily {
		if c.Bucket.Before(cutoff) {
			continue
		}
		if hi == nil || c.High > *hi {
			hi = models.Float(c.High)
		}
		if lo == nil || c.Low < *lo {
			lo = models.Float(c.Low)
		}
	}
	return hi, lo
}

var _ domrepo.MarketDataSource = (*Source)(nil)
