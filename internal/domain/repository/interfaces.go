package repository

import (
	"context"

	"ChartSignals/internal/domain/models"
)

// MarketStream is the upstream push feed of base-resolution bars.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Bar, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// BarArchive is the durable columnar store for bars. The core calls it only
// for cold-start loads and periodic fire-and-forget batch appends; its
// durability guarantees are its own problem.
type BarArchive interface {
	Init(ctx context.Context) error // ensure tables, health checks
	LoadRecent(ctx context.Context, symbol string, tf Timeframe, daysBack int) ([]models.Bar, error)
	AppendBatch(ctx context.Context, tf Timeframe, bars []models.Bar) error
	Health(ctx context.Context) error
	Close() error
}

// BarPublisher fans accepted bars out to downstream consumers.
type BarPublisher interface {
	Publish(ctx context.Context, b *models.Bar) error
	Close() error
}

type Metrics interface {
	RecordBarIngested(symbol string)
	RecordBarRejected(symbol string)
	RecordError(kind string)
	RecordLastClose(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordQuery(tf string, ready bool)
}
