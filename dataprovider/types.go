package dataprovider

import "time"

// DateRange bounds a fetch by inclusive start/end dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Bar is one OHLCV candle.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Table is a time-ordered sequence of OHLCV bars for one ticker.
type Table struct {
	Ticker string
	Bars   []Bar
}

// Article is one news item.
type Article struct {
	Title     string
	Source    string
	Published time.Time
	Summary   string
	Tier      string // authority tier, e.g. "wire", "blog" — configuration-driven, see Config.Data.AuthorityTiers
}

// Post is one social-media item.
type Post struct {
	Author    string
	Platform  string
	Published time.Time
	Body      string
}

// Fundamentals is a snapshot of a company's reported financials.
type Fundamentals struct {
	Ticker       string
	AsOf         time.Time
	MarketCap    float64
	PERatio      float64
	EPS          float64
	RevenueTTM   float64
	FreeCashFlow float64
}

// Indicators is a named set of computed technical-indicator series, keyed by
// indicator name (e.g. "rsi_14", "macd").
type Indicators map[string][]float64
