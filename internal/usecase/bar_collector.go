package usecase

import (
	"context"

	"ChartSignals/internal/domain/models"
	drepo "ChartSignals/internal/domain/repository"
	mid "ChartSignals/internal/middleware"
)

// BarCollector collects bars from the market stream and feeds the recorder.
type BarCollector struct {
	stream  drepo.MarketStream
	rec     *BarRecorder
	metrics drepo.Metrics
	pipe    *mid.IngestPipeline
}

// NewBarCollector creates a new BarCollector instance.
func NewBarCollector(stream drepo.MarketStream, rec *BarRecorder, metrics drepo.Metrics, pipe *mid.IngestPipeline) *BarCollector {
	return &BarCollector{stream: stream, rec: rec, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the market stream is connected.
func (c *BarCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *BarCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	c.rec.Start(ctx)
	barCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, barCh, errCh)
	return nil
}

func (c *BarCollector) consume(ctx context.Context, barCh <-chan *models.Bar, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case b := <-barCh:
			if b == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, b)
			} else {
				_ = c.rec.Process(ctx, b)
			}
		}
	}
}

// Recorder returns the underlying BarRecorder for lifecycle management.
func (c *BarCollector) Recorder() *BarRecorder { return c.rec }

// Shutdown stops the pipeline and closes the stream.
func (c *BarCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
