package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domrepo "AnomalyLens/internal/domain/repository"
	icache "AnomalyLens/internal/service/cache"
	"AnomalyLens/pkg/config"
)

const chartBody = `{"chart":{"result":[{"meta":{"currency":"USD","symbol":"SPY","chartPreviousClose":99.5,"regularMarketTime":1709931600,"fiftyTwoWeekHigh":120,"fiftyTwoWeekLow":80},
"timestamp":[1709510400,1709596800,1709683200],
"indicators":{"quote":[{"open":[100,101,null],"high":[102,103,null],"low":[99,100,null],"close":[101,102.5,null],"volume":[1000,2000,null]}]}}],"error":null}}`

type fakeYahoo struct {
	server *httptest.Server
	hits   map[string]*atomic.Int32
	quote  int
}

func newFakeYahoo(t *testing.T, quoteStatus int) *fakeYahoo {
	t.Helper()
	f := &fakeYahoo{hits: map[string]*atomic.Int32{
		"chart": {}, "quote": {}, "search": {},
	}, quote: quoteStatus}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		switch {
		case strings.HasPrefix(r.URL.Path, "/v8/finance/chart/"):
			f.hits["chart"].Add(1)
			_, _ = w.Write([]byte(chartBody))
		case r.URL.Path == "/v7/finance/quote":
			f.hits["quote"].Add(1)
			if f.quote != http.StatusOK {
				w.WriteHeader(f.quote)
				return
			}
			_, _ = w.Write([]byte(`{"quoteResponse":{"result":[{"symbol":"SPY","marketCap":5e11,"trailingPE":24.5,"longName":"SPDR S&P 500","shortName":"SPY","currency":"USD","marketState":"REGULAR","regularMarketPreviousClose":101.2,"regularMarketTime":1709931600}],"error":null}}`))
		case r.URL.Path == "/v1/finance/search":
			f.hits["search"].Add(1)
			assert.Equal(t, "2", r.URL.Query().Get("newsCount"))
			_, _ = w.Write([]byte(`{"news":[
{"uuid":"a","title":"One","publisher":"P","link":"https://x/1","providerPublishTime":1709931600,"type":"STORY","thumbnail":{"resolutions":[{"url":"https://img/1","width":140,"height":140}]}},
{"uuid":"b","title":"Two","publisher":"P","link":"https://x/2","providerPublishTime":1709931601,"type":"STORY"},
{"uuid":"c","title":"Three","publisher":"P","link":"https://x/3","providerPublishTime":1709931602,"type":"STORY"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(f.server.Close)
	return f
}

func newTestClient(f *fakeYahoo, opts ...Option) *Client {
	return NewClient(config.MarketDataConfig{
		YahooBaseURL: f.server.URL,
		UserAgent:    "test-agent",
		Timeout:      2 * time.Second,
		RateLimitRPS: 1000,
		RateBurst:    10,
		NewsCount:    2,
	}, opts...)
}

func TestGetCandles_SkipsMissingBars(t *testing.T) {
	f := newFakeYahoo(t, http.StatusOK)
	c := newTestClient(f)

	candles, err := c.GetCandles(context.Background(), "SPY", time.Unix(0, 0), time.Now(), domrepo.TFDaily)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, 101.0, candles[0].Close)
	assert.Equal(t, 102.5, candles[1].Close)
	assert.Equal(t, 2000.0, candles[1].Volume)
	assert.Equal(t, time.Unix(1709596800, 0).UTC(), candles[1].Bucket)
}

func TestGetCandles_UsesCache(t *testing.T) {
	f := newFakeYahoo(t, http.StatusOK)
	c := newTestClient(f, WithCache(icache.NewTTLCache(), time.Minute))
	from, to := time.Unix(1700000000, 0), time.Unix(1710000000, 0)

	_, err := c.GetCandles(context.Background(), "SPY", from, to, domrepo.TFWeekly)
	require.NoError(t, err)
	_, err = c.GetCandles(context.Background(), "SPY", from, to, domrepo.TFWeekly)
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.hits["chart"].Load())
}

func TestGetStats_Quote(t *testing.T) {
	f := newFakeYahoo(t, http.StatusOK)
	st, err := newTestClient(f).GetStats(context.Background(), "SPY")
	require.NoError(t, err)
	require.NotNil(t, st.PERatio)
	assert.Equal(t, 24.5, *st.PERatio)
	assert.Equal(t, "SPDR S&P 500", st.LongName)
	assert.Equal(t, "REGULAR", st.MarketState)
	require.NotNil(t, st.PreviousClose)
	assert.Equal(t, 101.2, *st.PreviousClose)
	assert.Zero(t, f.hits["chart"].Load())
}

func TestGetStats_FallsBackToChartMeta(t *testing.T) {
	f := newFakeYahoo(t, http.StatusUnauthorized)
	st, err := newTestClient(f).GetStats(context.Background(), "SPY")
	require.NoError(t, err)
	require.NotNil(t, st.PreviousClose)
	assert.Equal(t, 99.5, *st.PreviousClose)
	require.NotNil(t, st.Week52High)
	assert.Equal(t, 120.0, *st.Week52High)
	assert.Nil(t, st.MarketCap)
	assert.Equal(t, int32(1), f.hits["chart"].Load())
}

func TestGetNews_LimitsAndThumbnail(t *testing.T) {
	f := newFakeYahoo(t, http.StatusOK)
	news, err := newTestClient(f).GetNews(context.Background(), "SPY")
	require.NoError(t, err)
	require.Len(t, news, 2)
	assert.Equal(t, "a", news[0].UUID)
	assert.Equal(t, "https://img/1", news[0].Thumbnail)
	assert.Empty(t, news[1].Thumbnail)
}

func TestCacheKey_Stable(t *testing.T) {
	a := cacheKey("/p", map[string][]string{"b": {"2"}, "a": {"1"}})
	b := cacheKey("/p", map[string][]string{"a": {"1"}, "b": {"2"}})
	assert.Equal(t, a, b)
}
