package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"AnomalyLens/internal/domain/models"
	domrepo "AnomalyLens/internal/domain/repository"
	xhttp "AnomalyLens/pkg/http"
	applogger "AnomalyLens/pkg/logger"
)

type quoteResponse struct {
	QuoteResponse struct {
		Result []quote   `json:"result"`
		Error  *apiError `json:"error"`
	} `json:"quoteResponse"`
}

type quote struct {
	Symbol                     string   `json:"symbol"`
	MarketCap                  *float64 `json:"marketCap"`
	TrailingPE                 *float64 `json:"trailingPE"`
	DividendYield              *float64 `json:"dividendYield"`
	FiftyTwoWeekHigh           *float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow            *float64 `json:"fiftyTwoWeekLow"`
	LongName                   string   `json:"longName"`
	ShortName                  string   `json:"shortName"`
	Currency                   string   `json:"currency"`
	MarketState                string   `json:"marketState"`
	RegularMarketTime          int64    `json:"regularMarketTime"`
	RegularMarketPreviousClose *float64 `json:"regularMarketPreviousClose"`
}

// GetStats returns instrument metadata. When the quote endpoint fails the chart
// metadata of the last few days is used instead.
func (c *Client) GetStats(ctx context.Context, symbol string) (models.MarketStats, error) {
	q := url.Values{}
	q.Set("symbols", symbol)

	var resp quoteResponse
	err := c.getJSON(ctx, "/v7/finance/quote", q, &resp)
	if err == nil && resp.QuoteResponse.Error == nil && len(resp.QuoteResponse.Result) > 0 {
		return statsFromQuote(resp.QuoteResponse.Result[0]), nil
	}
	if err == nil {
		err = fmt.Errorf("quote %s: empty result", symbol)
	}
	c.logger.Warn("yahoo quote unavailable, using chart metadata",
		applogger.String("symbol", symbol),
		applogger.Int("status", xhttp.StatusCode(err)),
		applogger.Error(err),
	)

	now := time.Now().UTC()
	res, cerr := c.chart(ctx, symbol, now.AddDate(0, 0, -5), now, domrepo.TFDaily)
	if cerr != nil {
		return models.MarketStats{}, fmt.Errorf("stats %s: %w", symbol, cerr)
	}
	if res == nil {
		return models.MarketStats{}, fmt.Errorf("stats %s: no chart metadata", symbol)
	}
	return statsFromMeta(res.Meta), nil
}

func statsFromQuote(q quote) models.MarketStats {
	st := models.MarketStats{
		MarketCap:     q.MarketCap,
		PERatio:       q.TrailingPE,
		DivYield:      q.DividendYield,
		Week52High:    q.FiftyTwoWeekHigh,
		Week52Low:     q.FiftyTwoWeekLow,
		LongName:      q.LongName,
		ShortName:     q.ShortName,
		Currency:      q.Currency,
		MarketState:   q.MarketState,
		PreviousClose: q.RegularMarketPreviousClose,
	}
	if q.RegularMarketTime > 0 {
		st.MarketTime = formatMarketTime(q.RegularMarketTime)
	}
	return st
}

func statsFromMeta(m chartMeta) models.MarketStats {
	st := models.MarketStats{
		Week52High: m.FiftyTwoWeekHigh,
		Week52Low:  m.FiftyTwoWeekLow,
		LongName:   m.LongName,
		ShortName:  m.ShortName,
		Currency:   m.Currency,
	}
	if m.PreviousClose != nil {
		st.PreviousClose = m.PreviousClose
	} else {
		st.PreviousClose = m.ChartPreviousClose
	}
	if m.RegularMarketTime > 0 {
		st.MarketTime = formatMarketTime(m.RegularMarketTime)
	}
	return st
}

func formatMarketTime(unix int64) string {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		ny = time.UTC
	}
	return time.Unix(unix, 0).In(ny).Format("January 02, 03:04 PM EST")
}

var _ domrepo.QuoteSource = (*Client)(nil)
