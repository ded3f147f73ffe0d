package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ChartSignals/internal/domain/models"
	"ChartSignals/internal/indicator"
)

func flatBars(n int, close, low float64) []models.Bar {
	out := make([]models.Bar, n)
	for i := range out {
		out[i] = models.Bar{
			Symbol:    "AAPL",
			Timestamp: int64(60 * (i + 1)),
			Open:      close,
			High:      close + 1,
			Low:       low,
			Close:     close,
			Volume:    1000,
		}
	}
	return out
}

func TestRiskAnchorBearishTrendUsesATR(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 200 - float64(i)
	}
	bars := barsFromCloses(closes)
	f := indicator.Compute(bars, indicator.Config{})

	anchor := CalcRiskAnchor(bars, f.Last(), models.TrendBearish)
	assert.Equal(t, StopATR, anchor.Type)
	assert.Less(t, anchor.Price, bars[len(bars)-1].Close)
	assert.Greater(t, anchor.DistancePct, 0.0)
}

func TestRiskAnchorATRMath(t *testing.T) {
	bars := flatBars(20, 100, 99)
	row := indicator.Row{ATR: indicator.Some(5)}

	anchor := CalcRiskAnchor(bars, row, models.TrendMixed)
	assert.Equal(t, StopATR, anchor.Type)
	assert.InDelta(t, 90.0, anchor.Price, 0.005)
	assert.InDelta(t, 10.0, anchor.DistancePct, 0.005)
}

func TestRiskAnchorSwingLowTightensBullishStop(t *testing.T) {
	// swing stop 97.51 sits above the 2x ATR stop at 90: in a bullish trend
	// the tighter structure-aware stop replaces it
	bars := flatBars(20, 100, 98)
	row := indicator.Row{
		ATR:  indicator.Some(5),
		EMA9: indicator.Some(99.8),
	}

	anchor := CalcRiskAnchor(bars, row, models.TrendBullish)
	assert.Equal(t, StopSwingLow, anchor.Type)
	assert.InDelta(t, 97.51, anchor.Price, 0.005)
	// the EMA stop at 98.80 would be tighter still, but the current stop is
	// already within 3% of the close, so it stays
	assert.InDelta(t, 2.49, anchor.DistancePct, 0.005)
}

func TestRiskAnchorEMAOverridesDistantStop(t *testing.T) {
	// the swing low sits below the ATR stop and cannot tighten it; the EMA
	// stop may, because the current stop is more than 3% away
	bars := flatBars(20, 100, 89)
	row := indicator.Row{
		ATR:  indicator.Some(5),
		EMA9: indicator.Some(99),
	}

	anchor := CalcRiskAnchor(bars, row, models.TrendBullish)
	assert.Equal(t, StopEMA, anchor.Type)
	assert.InDelta(t, 98.01, anchor.Price, 0.005)
	assert.InDelta(t, 1.99, anchor.DistancePct, 0.005)
}

func TestRiskAnchorEMARequiresBullish(t *testing.T) {
	bars := flatBars(20, 100, 89)
	row := indicator.Row{
		ATR:  indicator.Some(5),
		EMA9: indicator.Some(99),
	}

	anchor := CalcRiskAnchor(bars, row, models.TrendMixed)
	assert.Equal(t, StopATR, anchor.Type)
}

func TestRiskAnchorBollingerWhenATRUndefined(t *testing.T) {
	// too few bars for the swing window, no ATR: the band stop applies
	bars := flatBars(15, 100, 99)
	row := indicator.Row{BBLower: indicator.Some(95)}

	anchor := CalcRiskAnchor(bars, row, models.TrendMixed)
	assert.Equal(t, StopBollinger, anchor.Type)
	assert.InDelta(t, 94.53, anchor.Price, 0.005)
}

func TestRiskAnchorFixedFallback(t *testing.T) {
	bars := flatBars(5, 100, 99)

	anchor := CalcRiskAnchor(bars, indicator.Row{}, models.TrendConsolidating)
	assert.Equal(t, StopFixed, anchor.Type)
	assert.InDelta(t, 98.0, anchor.Price, 0.005)
	assert.InDelta(t, 2.0, anchor.DistancePct, 0.005)
	assert.Equal(t, "Fixed 2% stop loss", anchor.Reasoning)
}

func TestRiskAnchorRounding(t *testing.T) {
	bars := flatBars(20, 101.337, 100)
	row := indicator.Row{ATR: indicator.Some(1.111)}

	anchor := CalcRiskAnchor(bars, row, models.TrendMixed)
	assert.Equal(t, StopATR, anchor.Type)
	assert.InDelta(t, 99.115, anchor.Price, 0.006)
	assert.Equal(t, anchor.Price, round2(anchor.Price))
	assert.Equal(t, anchor.DistancePct, round2(anchor.DistancePct))
}
