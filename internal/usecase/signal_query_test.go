package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ChartSignals/internal/domain/models"
	domrepo "ChartSignals/internal/domain/repository"
	"ChartSignals/internal/series"
	"ChartSignals/internal/signal"
)

type nopMetrics struct{}

func (nopMetrics) RecordBarIngested(string)        {}
func (nopMetrics) RecordBarRejected(string)        {}
func (nopMetrics) RecordError(string)              {}
func (nopMetrics) RecordLastClose(string, float64) {}
func (nopMetrics) RecordLatency(string, float64)   {}
func (nopMetrics) RecordQuery(string, bool)        {}

type fakeArchive struct {
	mu       sync.Mutex
	loads    int
	bars     []models.Bar
	loadErr  error
	appended [][]models.Bar
	down     bool
}

func (a *fakeArchive) Init(ctx context.Context) error { return nil }

func (a *fakeArchive) LoadRecent(ctx context.Context, symbol string, tf domrepo.Timeframe, daysBack int) ([]models.Bar, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loads++
	return a.bars, a.loadErr
}

func (a *fakeArchive) AppendBatch(ctx context.Context, tf domrepo.Timeframe, bars []models.Bar) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.appended = append(a.appended, bars)
	return nil
}

func (a *fakeArchive) Health(ctx context.Context) error {
	if a.down {
		return fmt.Errorf("archive unreachable")
	}
	return nil
}

func (a *fakeArchive) Close() error { return nil }

func genBars(symbol string, n int) []models.Bar {
	out := make([]models.Bar, n)
	for i := 0; i < n; i++ {
		c := 100 + float64(i%7) + float64(i)*0.05
		out[i] = models.Bar{
			Symbol:    symbol,
			Timestamp: int64(60 * (i + 1)),
			Open:      c,
			High:      c + 0.5,
			Low:       c - 0.5,
			Close:     c,
			Volume:    1000,
		}
	}
	return out
}

func linearRiseBars(symbol string, n int) []models.Bar {
	out := make([]models.Bar, n)
	for i := 0; i < n; i++ {
		c := 100 + 0.01*float64(i)
		out[i] = models.Bar{
			Symbol:    symbol,
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

func seedStore(st *series.Store, bars []models.Bar) {
	for _, b := range bars {
		st.Upsert(series.Key{Symbol: b.Symbol, Timeframe: domrepo.BaseTimeframe()}, b)
	}
}

func newQuery(st *series.Store, arch domrepo.BarArchive) *SignalQuery {
	return NewSignalQuery(st, arch, nopMetrics{}, zerolog.Nop())
}

func TestSignalsNotReadyOnEmptySeries(t *testing.T) {
	q := newQuery(series.NewStore(0), &fakeArchive{})

	snap, notReady := q.Signals(context.Background(), "AAPL", domrepo.TF1min)
	require.Nil(t, snap)
	require.NotNil(t, notReady)
	assert.False(t, notReady.Ready)
	assert.Equal(t, "insufficient bars (have 0, need 35+)", notReady.Reason)
	assert.Equal(t, "AAPL", notReady.Symbol)
	assert.Equal(t, "1min", notReady.Timeframe)
}

func TestSignalsColdStartReloadServesFirstQuery(t *testing.T) {
	arch := &fakeArchive{bars: genBars("AAPL", 60)}
	st := series.NewStore(0)
	q := newQuery(st, arch)

	snap, notReady := q.Signals(context.Background(), "AAPL", domrepo.TF1min)
	require.Nil(t, notReady)
	require.NotNil(t, snap)
	assert.True(t, snap.Ready)
	assert.Equal(t, "AAPL", snap.Symbol)
	assert.Equal(t, "1min", snap.Timeframe)
	require.NotNil(t, snap.Snapshot)
	assert.Equal(t, arch.bars[len(arch.bars)-1].Close, snap.Snapshot.Price)
	require.NotNil(t, snap.PrevSnapshot)
	require.NotNil(t, snap.RiskAnchor)
	assert.NotEmpty(t, snap.TrendState)
	assert.Len(t, snap.Crossings, 9)

	// the reload also populated the store
	assert.Equal(t, 60, st.Len(series.Key{Symbol: "AAPL", Timeframe: domrepo.TF1min}))
	assert.Equal(t, 1, arch.loads)
}

func TestSignalsReloadHappensOncePerSymbol(t *testing.T) {
	arch := &fakeArchive{loadErr: fmt.Errorf("boom")}
	q := newQuery(series.NewStore(0), arch)

	for i := 0; i < 3; i++ {
		snap, notReady := q.Signals(context.Background(), "AAPL", domrepo.TF1min)
		assert.Nil(t, snap)
		assert.NotNil(t, notReady)
	}
	assert.Equal(t, 1, arch.loads, "failed reload must not be retried")
}

func TestSignalsAggregatedTimeframe(t *testing.T) {
	st := series.NewStore(0)
	seedStore(st, genBars("AAPL", 200))
	q := newQuery(st, &fakeArchive{})

	snap, notReady := q.Signals(context.Background(), "AAPL", domrepo.TF5min)
	require.Nil(t, notReady)
	require.NotNil(t, snap)
	assert.Equal(t, "5min", snap.Timeframe)
}

func TestSignalsAggregatedTimeframeNotReady(t *testing.T) {
	// 120 base bars collapse to ~24 five-minute buckets, under the gate
	st := series.NewStore(0)
	seedStore(st, genBars("AAPL", 120))
	q := newQuery(st, &fakeArchive{})

	snap, notReady := q.Signals(context.Background(), "AAPL", domrepo.TF5min)
	assert.Nil(t, snap)
	require.NotNil(t, notReady)
	assert.Contains(t, notReady.Reason, "need 35+")
}

func TestSignalsLinearRiseIsBullish(t *testing.T) {
	// forty bars climbing a steady cent per minute: the trend must read
	// bullish with a positive histogram, not wash out as consolidating
	st := series.NewStore(0)
	seedStore(st, linearRiseBars("AAPL", 40))
	q := newQuery(st, &fakeArchive{})

	snap, notReady := q.Signals(context.Background(), "AAPL", domrepo.TF1min)
	require.Nil(t, notReady)
	require.NotNil(t, snap)
	assert.Equal(t, models.TrendBullish, snap.TrendState)
	require.NotNil(t, snap.Snapshot.Hist)
	assert.Greater(t, *snap.Snapshot.Hist, 0.0)
	// a steady ramp has no crossings to report
	assert.False(t, snap.Crossings[signal.MACDCrossUp])
	assert.False(t, snap.Crossings[signal.MACDCrossDn])
}

func TestCandlesTail(t *testing.T) {
	st := series.NewStore(0)
	seedStore(st, genBars("AAPL", 100))
	q := newQuery(st, &fakeArchive{})

	got := q.Candles(context.Background(), "AAPL", domrepo.TF1min, 10)
	require.Len(t, got, 10)
	assert.Equal(t, int64(60*100), got[9].Timestamp)
}

func TestCandlesRange(t *testing.T) {
	st := series.NewStore(0)
	seedStore(st, genBars("AAPL", 100))
	q := newQuery(st, &fakeArchive{})

	from := time.Unix(60*41, 0)
	to := time.Unix(60*60, 0)
	got := q.CandlesRange(context.Background(), "AAPL", domrepo.TF1min, 0, from, to)
	require.Len(t, got, 20)
	assert.Equal(t, int64(60*41), got[0].Timestamp)
	assert.Equal(t, int64(60*60), got[19].Timestamp)

	// n trims from the front of the bounded range
	got = q.CandlesRange(context.Background(), "AAPL", domrepo.TF1min, 5, from, to)
	require.Len(t, got, 5)
	assert.Equal(t, int64(60*56), got[0].Timestamp)
	assert.Equal(t, int64(60*60), got[4].Timestamp)

	// zero bounds leave the range open
	got = q.CandlesRange(context.Background(), "AAPL", domrepo.TF1min, 0, time.Time{}, time.Time{})
	assert.Len(t, got, 100)
}

func TestWatchlist(t *testing.T) {
	st := series.NewStore(0)
	seedStore(st, genBars("AAPL", 60))
	seedStore(st, genBars("TSLA", 5)) // too short for indicators
	q := newQuery(st, &fakeArchive{})

	wl := q.Watchlist(context.Background())
	require.Len(t, wl.Entries, 2)
	assert.Equal(t, "AAPL", wl.Entries[0].Symbol)
	assert.NotNil(t, wl.Entries[0].RSI)
	assert.Equal(t, "TSLA", wl.Entries[1].Symbol)
	assert.Nil(t, wl.Entries[1].RSI)
	assert.NotNil(t, wl.Entries[1].Signals)
}

func TestStatus(t *testing.T) {
	st := series.NewStore(0)
	seedStore(st, genBars("AAPL", 42))
	arch := &fakeArchive{down: true}
	q := newQuery(st, arch)

	status := q.Status(context.Background(), true, []string{"AAPL"})
	assert.True(t, status.Connected)
	assert.Equal(t, map[string]int{"AAPL": 42}, status.BarCounts)
	assert.False(t, status.ArchiveOK)
}
