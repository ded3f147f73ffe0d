package repository

import "time"

// Timeframe represents bar resolution buckets. TF1min is the base resolution
// pushed by the feed; coarser frames are aggregated on demand.
type Timeframe string

const (
	TF1min  Timeframe = "1min"
	TF5min  Timeframe = "5min"
	TF15min Timeframe = "15min"
	TF1hour Timeframe = "1hour"
)

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf Timeframe) bool {
	switch tf {
	case TF1min, TF5min, TF15min, TF1hour:
		return true
	default:
		return false
	}
}

// BaseTimeframe returns the resolution bars are ingested at.
func BaseTimeframe() Timeframe { return TF1min }

// NormalizeTimeframe converts raw string to a valid timeframe (or the base).
func NormalizeTimeframe(s string) Timeframe {
	if s == "" {
		return BaseTimeframe()
	}
	tf := Timeframe(s)
	if IsValidTimeframe(tf) {
		return tf
	}
	return BaseTimeframe()
}

// Duration returns the bucket width of the timeframe.
func (tf Timeframe) Duration() time.Duration {
	switch tf {
	case TF5min:
		return 5 * time.Minute
	case TF15min:
		return 15 * time.Minute
	case TF1hour:
		return time.Hour
	default:
		return time.Minute
	}
}
