package models

import "time"

// Candle represents one OHLCV bar of a single instrument.
type Candle struct {
	Bucket time.Time
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Instrument binds a logical instrument name (e.g. "MXUS") to the ticker it is fetched with.
type Instrument struct {
	Name   string `json:"name"`
	Ticker string `json:"ticker"`
}

// PrimaryKey tags the display instrument inside a symbol mapping.
const PrimaryKey = "PRIMARY_SYMBOL"

// PrimaryInstrument is the column prefix the primary instrument is stored under.
const PrimaryInstrument = "symbol"
