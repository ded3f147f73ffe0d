package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ChartSignals/internal/domain/models"
	"ChartSignals/internal/indicator"
)

func barsFromCloses(closes []float64) []models.Bar {
	out := make([]models.Bar, len(closes))
	for i, c := range closes {
		out[i] = models.Bar{
			Symbol:    "AAPL",
			Timestamp: int64(60 * (i + 1)),
			Open:      c,
			High:      c + 0.1,
			Low:       c - 0.1,
			Close:     c,
			Volume:    1000,
		}
	}
	return out
}

// flat run, then a sustained rise starting at riseAt
func flatThenRise(n, riseAt int) []models.Bar {
	closes := make([]float64, n)
	for i := range closes {
		if i < riseAt {
			closes[i] = 100
		} else {
			closes[i] = 100 + float64(i-riseAt+1)
		}
	}
	return barsFromCloses(closes)
}

func detect(bars []models.Bar) Result {
	return Detect(bars, indicator.Compute(bars, indicator.Config{}))
}

func TestDetectShortWindowAllFalse(t *testing.T) {
	res := detect(flatThenRise(10, 5))
	for name, v := range res.Crossings {
		assert.False(t, v, "flag %s must be false while indicators warm up", name)
	}
	assert.Nil(t, res.LastCross)
}

func TestEMAReclaimBarsSince(t *testing.T) {
	// close crosses above EMA9 at bar 20 and stays above: at bar 20+n the
	// distance back to the reclaim must be exactly n
	bars := flatThenRise(31, 20)
	res := detect(bars)

	d, ok := res.BarsSince[EMAReclaim]
	require.True(t, ok, "reclaim must be found in the backward scan")
	assert.Equal(t, 10, d)
}

func TestRSIOverboughtFiresAtThreshold(t *testing.T) {
	bars := flatThenRise(60, 30)
	frame := indicator.Compute(bars, indicator.Config{})

	first := -1
	for i := 0; i < len(bars); i++ {
		if v, ok := frame.RSI[i].Get(); ok && v >= 70 {
			first = i
			break
		}
	}
	require.Greater(t, first, 0, "rsi must eventually reach 70 on a rising series")

	atFirst := detect(bars[:first+1])
	assert.True(t, atFirst.Crossings[RSIOverbought])
	before := detect(bars[:first])
	assert.False(t, before.Crossings[RSIOverbought])
}

func TestMACDCrossUpOnTurn(t *testing.T) {
	// long decline then a strong recovery forces the macd line back above
	// its signal line somewhere in the rising leg
	closes := make([]float64, 80)
	for i := range closes {
		if i < 40 {
			closes[i] = 200 - float64(i)
		} else {
			closes[i] = 160 + 2*float64(i-40)
		}
	}
	res := detect(barsFromCloses(closes))

	d, ok := res.BarsSince[MACDCrossUp]
	require.True(t, ok)
	assert.GreaterOrEqual(t, d, 0)
	assert.Less(t, d, 40)
}

func TestBBSqueezeOnFlatSeries(t *testing.T) {
	res := detect(flatThenRise(30, 30)) // entirely flat
	assert.True(t, res.Crossings[BBSqueeze], "collapsed bands are a squeeze")
	assert.False(t, res.Crossings[BBBreakoutUp], "close equal to band is not a breakout")
	assert.False(t, res.Crossings[BBBreakoutDn])
}

func TestBBBreakoutUp(t *testing.T) {
	// flat then one violent bar punching through the upper band
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	closes[29] = 110
	res := detect(barsFromCloses(closes))
	assert.True(t, res.Crossings[BBBreakoutUp])
	assert.False(t, res.Crossings[BBBreakoutDn])
}

func TestLastCrossIsNearestAndDeterministic(t *testing.T) {
	// wavy series producing several crossings of different types
	closes := make([]float64, 120)
	for i := range closes {
		base := 100.0
		switch {
		case i%40 < 20:
			base += float64(i % 40)
		default:
			base += float64(40 - i%40)
		}
		closes[i] = base
	}
	res := detect(barsFromCloses(closes))
	require.NotNil(t, res.LastCross)

	minDist := -1
	for _, d := range res.BarsSince {
		if minDist < 0 || d < minDist {
			minDist = d
		}
	}
	require.GreaterOrEqual(t, minDist, 0)
	assert.Equal(t, minDist, res.BarsSince[res.LastCross.Type],
		"last cross must be the nearest crossing")

	// among equally near crossings the fixed priority order decides
	for _, typ := range crossingTypes {
		if d, ok := res.BarsSince[typ]; ok && d == minDist {
			assert.Equal(t, typ, res.LastCross.Type)
			break
		}
	}
}

func TestDetectEmptyAndSingleBar(t *testing.T) {
	assert.Empty(t, detect(nil).Crossings)
	assert.Empty(t, detect(barsFromCloses([]float64{100})).Crossings)
}
