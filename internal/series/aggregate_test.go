package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ChartSignals/internal/domain/models"
)

func mkBars(startMin int, ohlcv ...[5]float64) []models.Bar {
	out := make([]models.Bar, 0, len(ohlcv))
	for i, v := range ohlcv {
		out = append(out, models.Bar{
			Symbol:    "AAPL",
			Timestamp: int64(60 * (startMin + i)),
			Open:      v[0],
			High:      v[1],
			Low:       v[2],
			Close:     v[3],
			Volume:    v[4],
		})
	}
	return out
}

func TestAggregateOHLCV(t *testing.T) {
	// minutes 5..9 fall into one 5min bucket starting at minute 5
	bars := mkBars(5,
		[5]float64{10, 11, 9, 10.5, 100},
		[5]float64{10.5, 12, 10, 11, 200},
		[5]float64{11, 11.5, 8, 9, 300},
		[5]float64{9, 10, 8.5, 9.5, 50},
		[5]float64{9.5, 13, 9, 12, 150},
	)
	got := Aggregate(bars, 5*time.Minute)
	require.Len(t, got, 1)
	b := got[0]
	assert.Equal(t, int64(300), b.Timestamp)
	assert.Equal(t, 10.0, b.Open)
	assert.Equal(t, 13.0, b.High)
	assert.Equal(t, 8.0, b.Low)
	assert.Equal(t, 12.0, b.Close)
	assert.Equal(t, 800.0, b.Volume)
}

func TestAggregateAlignsToZeroBasedBoundaries(t *testing.T) {
	// first bar at minute 7: bucket must start at minute 5, not minute 7
	bars := mkBars(7,
		[5]float64{10, 11, 9, 10.5, 100},
		[5]float64{10.5, 12, 10, 11, 200},
	)
	got := Aggregate(bars, 5*time.Minute)
	require.Len(t, got, 1)
	assert.Equal(t, int64(300), got[0].Timestamp)
}

func TestAggregateSubMinuteBucket(t *testing.T) {
	// 30s buckets: 10s and 20s share the bucket at 0, 40s and 50s the one at 30
	bars := []models.Bar{
		{Symbol: "AAPL", Timestamp: 10, Open: 1, High: 2, Low: 1, Close: 1.5, Volume: 10},
		{Symbol: "AAPL", Timestamp: 20, Open: 1.5, High: 3, Low: 1, Close: 2, Volume: 20},
		{Symbol: "AAPL", Timestamp: 40, Open: 2, High: 2.5, Low: 1.8, Close: 2.2, Volume: 30},
		{Symbol: "AAPL", Timestamp: 50, Open: 2.2, High: 2.4, Low: 2, Close: 2.1, Volume: 40},
	}
	got := Aggregate(bars, 30*time.Second)
	require.Len(t, got, 2)
	assert.Equal(t, int64(0), got[0].Timestamp)
	assert.Equal(t, 3.0, got[0].High)
	assert.Equal(t, 30.0, got[0].Volume)
	assert.Equal(t, int64(30), got[1].Timestamp)
	assert.Equal(t, 2.1, got[1].Close)
	assert.Equal(t, 70.0, got[1].Volume)
}

func TestAggregateOmitsEmptyBuckets(t *testing.T) {
	// minutes 0 and 11: the 5..9 bucket has no bars and must not appear
	bars := []models.Bar{
		{Symbol: "AAPL", Timestamp: 0, Open: 1, High: 1, Low: 1, Close: 1, Volume: 10},
		{Symbol: "AAPL", Timestamp: 11 * 60, Open: 2, High: 2, Low: 2, Close: 2, Volume: 20},
	}
	got := Aggregate(bars, 5*time.Minute)
	require.Len(t, got, 2)
	assert.Equal(t, int64(0), got[0].Timestamp)
	assert.Equal(t, int64(600), got[1].Timestamp)
}

func TestAggregateAssociative(t *testing.T) {
	// 1min -> 15min must equal 1min -> 5min -> 15min
	bars := make([]models.Bar, 0, 60)
	for i := 0; i < 60; i++ {
		c := 100 + float64(i%7) - float64(i%3)
		bars = append(bars, models.Bar{
			Symbol:    "AAPL",
			Timestamp: int64(60 * i),
			Open:      c - 0.5,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    float64(10 * (i + 1)),
		})
	}
	direct := Aggregate(bars, 15*time.Minute)
	via5 := Aggregate(Aggregate(bars, 5*time.Minute), 15*time.Minute)
	assert.Equal(t, direct, via5)
}

func TestAggregateEmptyInput(t *testing.T) {
	assert.Nil(t, Aggregate(nil, 5*time.Minute))
	assert.Nil(t, Aggregate(mkBars(0, [5]float64{1, 1, 1, 1, 1}), 0))
}
