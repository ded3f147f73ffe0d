package models

import "fmt"

// Bar is a single OHLCV observation. Timestamp is unix seconds and is the
// unique key of the bar inside a series; bars are immutable once stored.
type Bar struct {
	Symbol    string  `json:"symbol"`
	Timestamp int64   `json:"t"`
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    float64 `json:"v"`
}

// Validate rejects malformed bars at the ingestion boundary. A rejected bar
// must never reach the series store.
func (b *Bar) Validate() error {
	if b == nil {
		return fmt.Errorf("bar is nil")
	}
	if b.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if b.Timestamp <= 0 {
		return fmt.Errorf("timestamp invalid")
	}
	if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
		return fmt.Errorf("non-positive price")
	}
	if b.Volume < 0 {
		return fmt.Errorf("negative volume")
	}
	hi := b.Open
	if b.Close > hi {
		hi = b.Close
	}
	lo := b.Open
	if b.Close < lo {
		lo = b.Close
	}
	if b.High < hi || b.Low > lo {
		return fmt.Errorf("ohlc not monotonic: high=%v low=%v open=%v close=%v", b.High, b.Low, b.Open, b.Close)
	}
	return nil
}
