package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ChartSignals/internal/domain/models"
	"ChartSignals/internal/indicator"
)

func TestClassifyTrendRisingSeriesBullish(t *testing.T) {
	bars := flatThenRise(40, 10)
	f := indicator.Compute(bars, indicator.Config{})
	got := ClassifyTrend(bars[len(bars)-1].Close, f.Last())
	assert.Equal(t, models.TrendBullish, got)
}

func TestClassifyTrendFallingSeriesBearish(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 200 - float64(i)
	}
	bars := barsFromCloses(closes)
	f := indicator.Compute(bars, indicator.Config{})
	got := ClassifyTrend(bars[len(bars)-1].Close, f.Last())
	assert.Equal(t, models.TrendBearish, got)
}

func TestClassifyTrendNoVotesConsolidating(t *testing.T) {
	got := ClassifyTrend(100, indicator.Row{})
	assert.Equal(t, models.TrendConsolidating, got)
}

func TestClassifyTrendVoteRatios(t *testing.T) {
	// synthetic rows pin the vote counts exactly
	tests := []struct {
		name  string
		close float64
		row   indicator.Row
		want  string
	}{
		{
			// 1 bull (ema), 1 bear (ma10): ratio 0.5
			name:  "even split consolidates",
			close: 100,
			row:   indicator.Row{EMA9: indicator.Some(99), MA10: indicator.Some(101)},
			want:  models.TrendConsolidating,
		},
		{
			// 2 bull (ema, ma10), 1 bear (vwap): ratio 2/3
			name:  "two thirds is mixed",
			close: 100,
			row: indicator.Row{
				EMA9: indicator.Some(99),
				MA10: indicator.Some(98),
				VWAP: indicator.Some(101),
			},
			want: models.TrendMixed,
		},
		{
			// rsi above 70 votes bull (>50) and bear (overbought): 1:1 with ema bull -> 2/3
			name:  "overbought rsi adds contrarian vote",
			close: 100,
			row: indicator.Row{
				EMA9: indicator.Some(99),
				RSI:  indicator.Some(75),
			},
			want: models.TrendMixed,
		},
		{
			// price near the lower band votes bull
			name:  "lower band position is bullish",
			close: 100.5,
			row: indicator.Row{
				BBUpper: indicator.Some(110),
				BBLower: indicator.Some(100),
			},
			want: models.TrendBullish,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyTrend(tc.close, tc.row))
		})
	}
}
