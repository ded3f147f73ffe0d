package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ChartSignals/internal/domain/models"
)

func linearBars(n int, start, step float64) []models.Bar {
	out := make([]models.Bar, n)
	for i := range out {
		c := start + step*float64(i)
		out[i] = models.Bar{
			Symbol:    "AAPL",
			Timestamp: int64(60 * (i + 1)),
			Open:      c,
			High:      c + 0.05,
			Low:       c - 0.05,
			Close:     c,
			Volume:    1000,
		}
	}
	return out
}

func TestSMAWarmupAndValue(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	out := SMA(xs, 10)
	require.Len(t, out, 11)
	for i := 0; i < 9; i++ {
		assert.False(t, out[i].Defined(), "index %d inside warm-up", i)
	}
	v, ok := out[9].Get()
	require.True(t, ok)
	assert.InDelta(t, 5.5, v, 1e-12)
	v, _ = out[10].Get()
	assert.InDelta(t, 6.5, v, 1e-12)
}

func TestEMASeededAtFirstValue(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	out := EMA(xs, 9)
	assert.False(t, out[7].Defined())
	require.True(t, out[8].Defined())
	// k = 0.2; the recursion runs from xs[0] through the warm-up, so the
	// first reported value already carries the full history
	v, _ := out[8].Get()
	assert.InDelta(t, 5.67108864, v, 1e-9)
	next, _ := out[9].Get()
	assert.InDelta(t, 6.536870912, next, 1e-9)
}

func TestMACDHistPositiveOnLinearRamp(t *testing.T) {
	// a steady ramp must keep the histogram measurably positive, not
	// float-noise around zero
	xs := make([]float64, 40)
	for i := range xs {
		xs[i] = 100 + 0.01*float64(i)
	}
	line, _, hist := MACD(xs, 12, 26, 9)
	lv, ok := line[39].Get()
	require.True(t, ok)
	assert.Greater(t, lv, 0.01)
	h, ok := hist[39].Get()
	require.True(t, ok)
	assert.Greater(t, h, 0.001)
}

func TestMACDWarmup(t *testing.T) {
	xs := make([]float64, 40)
	for i := range xs {
		xs[i] = 100 + float64(i)*0.3
	}
	line, sig, hist := MACD(xs, 12, 26, 9)
	assert.False(t, line[24].Defined())
	assert.True(t, line[25].Defined())
	assert.False(t, sig[32].Defined())
	assert.True(t, sig[33].Defined())
	assert.True(t, hist[33].Defined())

	// steadily rising closes keep the fast EMA above the slow one
	lv, _ := line[39].Get()
	assert.Positive(t, lv)
}

func TestRSIMonotonicRise(t *testing.T) {
	xs := make([]float64, 30)
	for i := range xs {
		xs[i] = 100 + float64(i)*0.01
	}
	out := RSI(xs, 14)
	assert.False(t, out[13].Defined())
	require.True(t, out[14].Defined())
	for i := 14; i < 30; i++ {
		v, ok := out[i].Get()
		require.True(t, ok)
		assert.InDelta(t, 100.0, v, 1e-9, "no losses means RSI 100 at %d", i)
	}
}

func TestRSIMonotonicFall(t *testing.T) {
	xs := make([]float64, 20)
	for i := range xs {
		xs[i] = 100 - float64(i)*0.5
	}
	out := RSI(xs, 14)
	v, ok := out[19].Get()
	require.True(t, ok)
	assert.InDelta(t, 0.0, v, 1e-9)
}

func TestRSIMixedStaysInRange(t *testing.T) {
	xs := []float64{44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42,
		45.84, 46.08, 45.89, 46.03, 45.61, 46.28, 46.28, 46.00, 46.03, 46.41,
		46.22, 45.64}
	out := RSI(xs, 14)
	for i := 14; i < len(xs); i++ {
		v, ok := out[i].Get()
		require.True(t, ok)
		assert.Greater(t, v, 0.0)
		assert.Less(t, v, 100.0)
	}
}

func TestBollingerConstantSeries(t *testing.T) {
	xs := make([]float64, 25)
	for i := range xs {
		xs[i] = 50
	}
	up, mid, lo := Bollinger(xs, 20, 2)
	assert.False(t, mid[18].Defined())
	u, _ := up[19].Get()
	m, _ := mid[19].Get()
	l, _ := lo[19].Get()
	assert.Equal(t, 50.0, m)
	assert.Equal(t, 50.0, u, "zero deviation collapses the bands")
	assert.Equal(t, 50.0, l)
}

func TestVWAPConstantVolume(t *testing.T) {
	bars := []models.Bar{
		{High: 12, Low: 8, Close: 10, Volume: 100},
		{High: 22, Low: 18, Close: 20, Volume: 100},
	}
	out := VWAP(bars)
	v0, _ := out[0].Get()
	v1, _ := out[1].Get()
	assert.InDelta(t, 10.0, v0, 1e-12)
	assert.InDelta(t, 15.0, v1, 1e-12, "cumulative, not per-bar")
}

func TestVWAPZeroVolumeUndefined(t *testing.T) {
	bars := []models.Bar{
		{High: 12, Low: 8, Close: 10, Volume: 0},
		{High: 12, Low: 8, Close: 10, Volume: 100},
	}
	out := VWAP(bars)
	assert.False(t, out[0].Defined())
	assert.True(t, out[1].Defined())
}

func TestATRConstantRange(t *testing.T) {
	bars := make([]models.Bar, 20)
	for i := range bars {
		bars[i] = models.Bar{High: 101, Low: 100, Close: 100.5}
	}
	out := ATR(bars, 14)
	assert.False(t, out[12].Defined())
	v, ok := out[13].Get()
	require.True(t, ok)
	assert.InDelta(t, 1.0, v, 1e-12)
}

func TestComputeFrameAlignment(t *testing.T) {
	bars := linearBars(40, 100, 0.01)
	f := Compute(bars, Config{})
	require.Equal(t, 40, f.Len())

	row := f.Last()
	assert.True(t, row.EMA9.Defined())
	assert.True(t, row.MA10.Defined())
	assert.True(t, row.MACD.Defined())
	assert.True(t, row.Signal.Defined())
	assert.True(t, row.Hist.Defined())
	assert.True(t, row.RSI.Defined())
	assert.True(t, row.BBUpper.Defined())
	assert.True(t, row.VWAP.Defined())
	assert.True(t, row.ATR.Defined())

	// warm-up rows stay undefined
	early := f.Row(5)
	assert.False(t, early.MA10.Defined())
	assert.False(t, early.MACD.Defined())
	assert.False(t, early.RSI.Defined())
}

func TestComputeShortWindowAllUndefined(t *testing.T) {
	bars := linearBars(5, 100, 0.1)
	f := Compute(bars, Config{})
	row := f.Last()
	assert.False(t, row.EMA9.Defined())
	assert.False(t, row.MACD.Defined())
	assert.False(t, row.RSI.Defined())
	assert.True(t, row.VWAP.Defined(), "vwap only needs volume")
}

func TestValueHelpers(t *testing.T) {
	assert.Nil(t, None().Ptr())
	p := Some(3.5).Ptr()
	require.NotNil(t, p)
	assert.Equal(t, 3.5, *p)
	assert.False(t, at(nil, 0).Defined())
}
