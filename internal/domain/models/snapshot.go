package models

import "time"

// Trend labels produced by the classifier.
const (
	TrendBullish       = "bullish"
	TrendBearish       = "bearish"
	TrendMixed         = "mixed"
	TrendConsolidating = "consolidating"
)

// IndicatorSnapshot is one bar's raw values plus its derived indicator values.
// Indicator fields are nil while the indicator is still warming up; callers
// must treat nil as "no value", not zero.
type IndicatorSnapshot struct {
	Price    float64  `json:"price"`
	Volume   float64  `json:"volume"`
	Time     string   `json:"time"`
	EMA9     *float64 `json:"ema9"`
	MA10     *float64 `json:"ma10"`
	MACD     *float64 `json:"macd"`
	Signal   *float64 `json:"signal"`
	Hist     *float64 `json:"hist"`
	RSI      *float64 `json:"rsi"`
	BBUpper  *float64 `json:"bb_upper"`
	BBMiddle *float64 `json:"bb_middle"`
	BBLower  *float64 `json:"bb_lower"`
	VWAP     *float64 `json:"vwap"`
}

// LastCross identifies the most recent crossing event in the window.
type LastCross struct {
	Type string `json:"type,omitempty"`
	At   string `json:"at,omitempty"`
}

// RiskAnchor is a protective-stop recommendation.
type RiskAnchor struct {
	Price       float64 `json:"price"`
	Type        string  `json:"type"`
	DistancePct float64 `json:"distance_pct"`
	Reasoning   string  `json:"reasoning"`
}

// SignalSnapshot is the full answer to one signals query. It is built fresh
// per request and never persisted.
type SignalSnapshot struct {
	Ready        bool               `json:"ready"`
	Symbol       string             `json:"symbol"`
	Timeframe    string             `json:"tf"`
	Snapshot     *IndicatorSnapshot `json:"snapshot,omitempty"`
	PrevSnapshot *IndicatorSnapshot `json:"prev_snapshot,omitempty"`
	TrendState   string             `json:"trend_state,omitempty"`
	RiskAnchor   *RiskAnchor        `json:"risk_anchor,omitempty"`
	Crossings    map[string]bool    `json:"crossings,omitempty"`
	BarsSince    map[string]int     `json:"bars_since,omitempty"`
	LastCross    *LastCross         `json:"last_cross,omitempty"`
}

// NotReadyResult is returned when a query cannot be served yet.
type NotReadyResult struct {
	Ready     bool   `json:"ready"`
	Reason    string `json:"reason"`
	Symbol    string `json:"symbol"`
	Timeframe string `json:"tf"`
}

// WatchlistEntry summarizes one in-memory series for the watchlist view.
type WatchlistEntry struct {
	Symbol  string   `json:"symbol"`
	Price   float64  `json:"price"`
	RSI     *float64 `json:"rsi"`
	Signals []string `json:"signals"`
}

// Watchlist is the full watchlist response.
type Watchlist struct {
	Entries   []WatchlistEntry `json:"watchlist"`
	Timestamp time.Time        `json:"timestamp"`
}

// FeedStatus reports the ingestion side of the service.
type FeedStatus struct {
	Connected  bool           `json:"connected"`
	Subscribed []string       `json:"subscribed"`
	BarCounts  map[string]int `json:"bar_counts"`
	ArchiveOK  bool           `json:"archive_ok"`
}
