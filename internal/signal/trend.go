package signal

import (
	"ChartSignals/internal/domain/models"
	"ChartSignals/internal/indicator"
)

// ClassifyTrend reduces the latest bar to one of four trend labels by tallying
// bullish and bearish votes across independent indicator checks. A check whose
// indicator is still warming up casts no vote.
func ClassifyTrend(close float64, row indicator.Row) string {
	var bull, bear int
	vote := func(bullish bool) {
		if bullish {
			bull++
		} else {
			bear++
		}
	}

	if ema, ok := row.EMA9.Get(); ok {
		vote(close > ema)
	}
	if ma, ok := row.MA10.Get(); ok {
		vote(close > ma)
	}
	if macd, ok := row.MACD.Get(); ok {
		if sig, ok := row.Signal.Get(); ok {
			vote(macd > sig)
			if hist, ok := row.Hist.Get(); ok {
				vote(hist > 0)
			}
		}
	}
	if rsi, ok := row.RSI.Get(); ok {
		vote(rsi > 50)
		// extremes cast a second, contrarian vote
		if rsi > 70 {
			bear++
		} else if rsi < 30 {
			bull++
		}
	}
	if u, ok := row.BBUpper.Get(); ok {
		if l, ok := row.BBLower.Get(); ok {
			pos := 0.5
			if u > l {
				pos = (close - l) / (u - l)
			}
			if pos > 0.8 {
				bear++
			} else if pos < 0.2 {
				bull++
			}
		}
	}
	if vwap, ok := row.VWAP.Get(); ok {
		vote(close > vwap)
	}

	total := bull + bear
	if total == 0 {
		return models.TrendConsolidating
	}
	ratio := float64(bull) / float64(total)
	switch {
	case ratio >= 0.7:
		return models.TrendBullish
	case ratio <= 0.3:
		return models.TrendBearish
	case ratio >= 0.45 && ratio <= 0.55:
		return models.TrendConsolidating
	default:
		return models.TrendMixed
	}
}
