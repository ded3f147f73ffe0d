package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ChartSignals/internal/domain/models"
	domrepo "ChartSignals/internal/domain/repository"
	"ChartSignals/internal/indicator"
	"ChartSignals/internal/series"
	"ChartSignals/internal/signal"
)

const (
	// MinBars is the minimum window length, after aggregation, required to
	// serve a signals query.
	MinBars = 35
	// reloadDays is how far back the one-shot cold-start reload reaches.
	reloadDays = 7
)

// SignalQuery answers read-side questions from the in-memory series: full
// signal snapshots, raw candle windows, the watchlist, and feed status. It
// never blocks ingestion and never returns an error for a series that is
// merely not warmed up yet.
type SignalQuery struct {
	store   *series.Store
	archive domrepo.BarArchive
	metrics domrepo.Metrics
	log     zerolog.Logger
	cfg     indicator.Config

	mu       sync.Mutex
	reloaded map[string]bool // symbols already given their one cold-start reload
}

// NewSignalQuery creates a new SignalQuery. archive may be nil.
func NewSignalQuery(store *series.Store, archive domrepo.BarArchive, metrics domrepo.Metrics, log zerolog.Logger) *SignalQuery {
	return &SignalQuery{
		store:    store,
		archive:  archive,
		metrics:  metrics,
		log:      log,
		reloaded: make(map[string]bool),
	}
}

// Signals computes the full snapshot for (symbol, tf). A window shorter than
// MinBars yields a not-ready result, not an error.
func (q *SignalQuery) Signals(ctx context.Context, symbol string, tf domrepo.Timeframe) (*models.SignalSnapshot, *models.NotReadyResult) {
	start := time.Now()
	w := q.window(ctx, symbol, tf)
	if len(w) < MinBars {
		q.metrics.RecordQuery(string(tf), false)
		return nil, &models.NotReadyResult{
			Ready:     false,
			Reason:    fmt.Sprintf("insufficient bars (have %d, need %d+)", len(w), MinBars),
			Symbol:    symbol,
			Timeframe: string(tf),
		}
	}

	f := indicator.Compute(w, q.cfg)
	det := signal.Detect(w, f)
	lastRow := f.Last()
	trend := signal.ClassifyTrend(w[len(w)-1].Close, lastRow)
	anchor := signal.CalcRiskAnchor(w, lastRow, trend)

	snap := &models.SignalSnapshot{
		Ready:        true,
		Symbol:       symbol,
		Timeframe:    string(tf),
		Snapshot:     snapshotAt(w, f, len(w)-1),
		PrevSnapshot: snapshotAt(w, f, len(w)-2),
		TrendState:   trend,
		RiskAnchor:   &anchor,
		Crossings:    det.Crossings,
		BarsSince:    det.BarsSince,
		LastCross:    det.LastCross,
	}
	q.metrics.RecordQuery(string(tf), true)
	q.metrics.RecordLatency("signals_query", time.Since(start).Seconds())
	return snap, nil
}

// Candles returns the most recent n bars of the (symbol, tf) window.
func (q *SignalQuery) Candles(ctx context.Context, symbol string, tf domrepo.Timeframe, n int) []models.Bar {
	return q.CandlesRange(ctx, symbol, tf, n, time.Time{}, time.Time{})
}

// CandlesRange returns the most recent n bars of the (symbol, tf) window
// whose timestamps fall inside [from, to]. A zero bound is open.
func (q *SignalQuery) CandlesRange(ctx context.Context, symbol string, tf domrepo.Timeframe, n int, from, to time.Time) []models.Bar {
	w := q.window(ctx, symbol, tf)
	if !from.IsZero() || !to.IsZero() {
		in := make([]models.Bar, 0, len(w))
		for _, b := range w {
			if !from.IsZero() && b.Timestamp < from.Unix() {
				continue
			}
			if !to.IsZero() && b.Timestamp > to.Unix() {
				continue
			}
			in = append(in, b)
		}
		w = in
	}
	if n > 0 && len(w) > n {
		w = w[len(w)-n:]
	}
	return w
}

// Watchlist summarizes every tracked symbol at base resolution.
func (q *SignalQuery) Watchlist(ctx context.Context) models.Watchlist {
	base := domrepo.BaseTimeframe()
	out := models.Watchlist{
		Entries:   []models.WatchlistEntry{},
		Timestamp: time.Now().UTC(),
	}
	for _, k := range q.store.Keys() {
		if k.Timeframe != base {
			continue
		}
		bars := q.store.Read(k)
		if len(bars) == 0 {
			continue
		}
		e := models.WatchlistEntry{
			Symbol:  k.Symbol,
			Price:   bars[len(bars)-1].Close,
			Signals: []string{},
		}
		if len(bars) >= MinBars {
			f := indicator.Compute(bars, q.cfg)
			e.RSI = f.Last().RSI.Ptr()
			det := signal.Detect(bars, f)
			e.Signals = activeFlags(det.Crossings)
		}
		out.Entries = append(out.Entries, e)
	}
	return out
}

// Status reports ingestion health: stream connectivity, tracked symbols with
// their base-resolution bar counts, and archive reachability.
func (q *SignalQuery) Status(ctx context.Context, connected bool, subscribed []string) models.FeedStatus {
	base := domrepo.BaseTimeframe()
	counts := make(map[string]int)
	for _, k := range q.store.Keys() {
		if k.Timeframe == base {
			counts[k.Symbol] = q.store.Len(k)
		}
	}
	st := models.FeedStatus{
		Connected:  connected,
		Subscribed: subscribed,
		BarCounts:  counts,
	}
	if q.archive != nil {
		st.ArchiveOK = q.archive.Health(ctx) == nil
	}
	return st
}

// window reads the base series and resamples it to tf. A short window
// triggers at most one archive reload per symbol; there is no retry loop.
func (q *SignalQuery) window(ctx context.Context, symbol string, tf domrepo.Timeframe) []models.Bar {
	key := series.Key{Symbol: symbol, Timeframe: domrepo.BaseTimeframe()}
	w := resample(q.store.Read(key), tf)
	if len(w) < MinBars && q.coldLoad(ctx, symbol) {
		w = resample(q.store.Read(key), tf)
	}
	return w
}

func resample(bars []models.Bar, tf domrepo.Timeframe) []models.Bar {
	if tf == domrepo.BaseTimeframe() {
		return bars
	}
	return series.Aggregate(bars, tf.Duration())
}

// coldLoad backfills the base series from the archive, once per symbol.
func (q *SignalQuery) coldLoad(ctx context.Context, symbol string) bool {
	q.mu.Lock()
	if q.reloaded[symbol] {
		q.mu.Unlock()
		return false
	}
	q.reloaded[symbol] = true
	q.mu.Unlock()

	if q.archive == nil {
		return false
	}
	base := domrepo.BaseTimeframe()
	bars, err := q.archive.LoadRecent(ctx, symbol, base, reloadDays)
	if err != nil {
		q.metrics.RecordError("archive_reload")
		q.log.Warn().Err(err).Str("symbol", symbol).Msg("cold-start reload failed")
		return false
	}
	key := series.Key{Symbol: symbol, Timeframe: base}
	for _, b := range bars {
		q.store.Upsert(key, b)
	}
	q.log.Info().Str("symbol", symbol).Int("bars", len(bars)).Msg("cold-start reload")
	return len(bars) > 0
}

func snapshotAt(bars []models.Bar, f *indicator.Frame, i int) *models.IndicatorSnapshot {
	if i < 0 || i >= len(bars) {
		return nil
	}
	b := bars[i]
	row := f.Row(i)
	return &models.IndicatorSnapshot{
		Price:    b.Close,
		Volume:   b.Volume,
		Time:     time.Unix(b.Timestamp, 0).UTC().Format(time.RFC3339),
		EMA9:     row.EMA9.Ptr(),
		MA10:     row.MA10.Ptr(),
		MACD:     row.MACD.Ptr(),
		Signal:   row.Signal.Ptr(),
		Hist:     row.Hist.Ptr(),
		RSI:      row.RSI.Ptr(),
		BBUpper:  row.BBUpper.Ptr(),
		BBMiddle: row.BBMiddle.Ptr(),
		BBLower:  row.BBLower.Ptr(),
		VWAP:     row.VWAP.Ptr(),
	}
}

func activeFlags(crossings map[string]bool) []string {
	out := make([]string, 0, len(crossings))
	for name, on := range crossings {
		if on {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
