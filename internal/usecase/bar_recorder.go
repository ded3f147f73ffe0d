package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ChartSignals/internal/domain/models"
	domrepo "ChartSignals/internal/domain/repository"
	"ChartSignals/internal/series"
)

// BarRecorder routes accepted bars. The in-memory series is updated
// synchronously; archive writes are batched and flushed on a timer so the
// feed never waits on storage.
type BarRecorder struct {
	store    *series.Store
	archive  domrepo.BarArchive
	pub      domrepo.BarPublisher
	metrics  domrepo.Metrics
	log      zerolog.Logger
	interval time.Duration

	mu      sync.Mutex
	pending []models.Bar
	stopCh  chan struct{}
	started bool
}

// NewBarRecorder creates a new BarRecorder. archive and pub may be nil.
func NewBarRecorder(
	store *series.Store,
	archive domrepo.BarArchive,
	pub domrepo.BarPublisher,
	metrics domrepo.Metrics,
	log zerolog.Logger,
	interval time.Duration,
) *BarRecorder {
	if interval <= 0 {
		interval = time.Minute
	}
	return &BarRecorder{
		store:    store,
		archive:  archive,
		pub:      pub,
		metrics:  metrics,
		log:      log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Process records a single bar: series upsert, archive batch, optional
// publish. Publish failures are logged but do not fail the bar.
func (r *BarRecorder) Process(ctx context.Context, b *models.Bar) error {
	if b == nil {
		return fmt.Errorf("bar is nil")
	}

	start := time.Now()
	key := series.Key{Symbol: b.Symbol, Timeframe: domrepo.BaseTimeframe()}
	r.store.Upsert(key, *b)
	r.metrics.RecordBarIngested(b.Symbol)
	r.metrics.RecordLastClose(b.Symbol, b.Close)

	if r.archive != nil {
		r.mu.Lock()
		r.pending = append(r.pending, *b)
		r.mu.Unlock()
	}
	if r.pub != nil {
		if err := r.pub.Publish(ctx, b); err != nil {
			r.metrics.RecordError("publish")
			r.log.Warn().Err(err).Str("symbol", b.Symbol).Msg("publish bar failed")
		}
	}

	r.metrics.RecordLatency("ingest", time.Since(start).Seconds())
	return nil
}

// Start launches the periodic archive flush.
func (r *BarRecorder) Start(ctx context.Context) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.mu.Unlock()

	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-r.stopCh:
				return
			case <-ticker.C:
				r.Flush(ctx)
			}
		}
	}()
}

// Flush appends the pending batch to the archive. Failures are logged and
// the batch is dropped; the in-memory series already holds the bars.
func (r *BarRecorder) Flush(ctx context.Context) {
	if r.archive == nil {
		return
	}
	r.mu.Lock()
	batch := r.pending
	r.pending = nil
	r.mu.Unlock()
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	start := time.Now()
	if err := r.archive.AppendBatch(ctx, domrepo.BaseTimeframe(), batch); err != nil {
		r.metrics.RecordError("archive_append")
		r.log.Warn().Err(err).Int("bars", len(batch)).Msg("archive flush failed")
		return
	}
	r.metrics.RecordLatency("archive_flush", time.Since(start).Seconds())
	r.log.Debug().Int("bars", len(batch)).Msg("archive flush")
}

// Close flushes the remaining batch and closes downstream resources.
func (r *BarRecorder) Close() {
	r.mu.Lock()
	if r.started {
		r.started = false
		close(r.stopCh)
	}
	r.mu.Unlock()

	r.Flush(context.Background())
	if r.pub != nil {
		_ = r.pub.Close()
	}
	if r.archive != nil {
		_ = r.archive.Close()
	}
}
