package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	icache "AnomalyLens/internal/service/cache"
	"AnomalyLens/pkg/config"
	xhttp "AnomalyLens/pkg/http"
	applogger "AnomalyLens/pkg/logger"
)

// Client reads candles, quotes and news from the Yahoo Finance public API.
// Raw response bodies are cached by request URL.
type Client struct {
	baseURL   string
	http      *xhttp.Client
	limiter   *rate.Limiter
	cache     icache.BytesCache
	cacheTTL  time.Duration
	newsCount int
	logger    *applogger.Logger
}

// Option configures Client.
type Option func(*Client)

// WithCache enables response caching.
func WithCache(c icache.BytesCache, ttl time.Duration) Option {
	return func(cl *Client) {
		cl.cache = c
		cl.cacheTTL = ttl
	}
}

// WithLogger injects an app logger.
func WithLogger(l *applogger.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// NewClient creates a Yahoo client from market-data config.
func NewClient(cfg config.MarketDataConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = 5
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}
	c := &Client{
		baseURL:   strings.TrimRight(cfg.YahooBaseURL, "/"),
		http: xhttp.NewClient(
			xhttp.WithTimeout(timeout),
			xhttp.WithUserAgent(cfg.UserAgent),
			xhttp.WithMaxBodyBytes(cfg.MaxResponseBytes),
		),
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
		newsCount: cfg.NewsCount,
		logger:    applogger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getJSON issues a rate-limited GET and decodes the body into dest.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dest interface{}) error {
	key := cacheKey(path, query)
	if c.cache != nil {
		if b, ok, err := c.cache.GetBytes(ctx, key); err != nil {
			c.logger.Warn("yahoo cache read failed", applogger.String("key", key), applogger.Error(err))
		} else if ok {
			return json.Unmarshal(b, dest)
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var body []byte
	start := time.Now()
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + path,
		QueryParams: query,
	}, &body)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	c.logger.Debug("yahoo request ok",
		applogger.String("path", path),
		applogger.Int("bytes", len(body)),
		applogger.Duration("duration_ms", time.Since(start)),
	)

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if c.cache != nil && c.cacheTTL > 0 {
		if err := c.cache.SetBytes(ctx, key, body, c.cacheTTL); err != nil {
			c.logger.Warn("yahoo cache write failed", applogger.String("key", key), applogger.Error(err))
		}
	}
	return nil
}

func cacheKey(path string, query url.Values) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString("yahoo:")
	b.WriteString(path)
	for _, k := range keys {
		b.WriteString("|")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(strings.Join(query[k], ","))
	}
	return b.String()
}
