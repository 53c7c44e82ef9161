package models

import "time"

// TimestampLayout is the rendering of daily timestamps in a ResultRecord.
const TimestampLayout = "2006-01-02 15:04:05"

// OHLC carries the primary instrument's daily bars as parallel arrays.
type OHLC struct {
	Open   []float64 `json:"open"`
	High   []float64 `json:"high"`
	Low    []float64 `json:"low"`
	Close  []float64 `json:"close"`
	Volume []float64 `json:"volume"`
}

// MarketStats is the instrument metadata supplied by the market-data source.
// Unknown values are nil and serialize as null.
type MarketStats struct {
	MarketCap          *float64 `json:"marketCap"`
	PERatio            *float64 `json:"peRatio"`
	DivYield           *float64 `json:"divYield"`
	Week52High         *float64 `json:"week52High"`
	Week52Low          *float64 `json:"week52Low"`
	LongName           string   `json:"longName,omitempty"`
	ShortName          string   `json:"shortName,omitempty"`
	Currency           string   `json:"currency,omitempty"`
	MarketState        string   `json:"marketState,omitempty"`
	MarketTime         string   `json:"marketTime,omitempty"`
	PriceChange        *float64 `json:"priceChange"`
	PriceChangePercent *float64 `json:"priceChangePercent"`
	CurrentPrice       *float64 `json:"currentPrice"`
	PreviousClose      *float64 `json:"previousClose"`
}

// NewsItem is one headline returned by the news source.
type NewsItem struct {
	UUID                string `json:"uuid"`
	Title               string `json:"title"`
	Publisher           string `json:"publisher"`
	Link                string `json:"link"`
	ProviderPublishTime int64  `json:"providerPublishTime"`
	Type                string `json:"type,omitempty"`
	Thumbnail           string `json:"thumbnail,omitempty"`
}

// ResultRecord is the final payload of one pipeline run.
type ResultRecord struct {
	Timestamps    []string      `json:"timestamps"`
	Predictions   []float64     `json:"predictions"`
	Probabilities []Probability `json:"probabilities"`
	OHLC          OHLC          `json:"ohlc"`
	MarketStats   MarketStats   `json:"marketStats"`
	News          []NewsItem    `json:"news"`
}

// Float returns a pointer to v, for optional MarketStats fields.
func Float(v float64) *float64 { return &v }

// ResultEvent summarizes a successful run for downstream consumers.
type ResultEvent struct {
	Strategy    string    `json:"strategy"`
	Model       string    `json:"model"`
	Symbol      string    `json:"symbol"`
	Interval    string    `json:"interval"`
	Rows        int       `json:"rows"`
	Anomalies   int       `json:"anomalies"`
	AnomalyDays []string  `json:"anomaly_days"`
	GeneratedAt time.Time `json:"generated_at"`
}
