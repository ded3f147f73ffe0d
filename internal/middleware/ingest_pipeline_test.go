package middleware

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ChartSignals/internal/domain/models"
)

type nopMetrics struct{}

func (nopMetrics) RecordBarIngested(string)        {}
func (nopMetrics) RecordBarRejected(string)        {}
func (nopMetrics) RecordError(string)              {}
func (nopMetrics) RecordLastClose(string, float64) {}
func (nopMetrics) RecordLatency(string, float64)   {}
func (nopMetrics) RecordQuery(string, bool)        {}

type stubProc struct {
	calls int
	err   error
}

func (p *stubProc) Process(ctx context.Context, b *models.Bar) error {
	p.calls++
	return p.err
}

func validBar() *models.Bar {
	return &models.Bar{
		Symbol:    "AAPL",
		Timestamp: 60,
		Open:      100,
		High:      101,
		Low:       99,
		Close:     100.5,
		Volume:    500,
	}
}

func TestPipelineRejectsInvalidBar(t *testing.T) {
	proc := &stubProc{}
	p := NewIngestPipeline(proc, nopMetrics{})

	err := p.Process(context.Background(), &models.Bar{Symbol: "", Timestamp: 60})
	assert.Error(t, err)
	assert.Zero(t, proc.calls)

	assert.Error(t, p.Process(context.Background(), nil))
	assert.Zero(t, proc.calls)
}

func TestPipelineForwardsValidBar(t *testing.T) {
	proc := &stubProc{}
	p := NewIngestPipeline(proc, nopMetrics{})

	require.NoError(t, p.Process(context.Background(), validBar()))
	assert.Equal(t, 1, proc.calls)
}

func TestPipelineThrottlesBurst(t *testing.T) {
	proc := &stubProc{}
	p := NewIngestPipeline(proc, nopMetrics{}, WithMaxRPS(1))

	require.NoError(t, p.Process(context.Background(), validBar()))
	// second bar inside the same second is dropped without error
	require.NoError(t, p.Process(context.Background(), validBar()))
	assert.Equal(t, 1, proc.calls)
}

func TestPipelineBuffersOnDownstreamError(t *testing.T) {
	proc := &stubProc{err: fmt.Errorf("downstream down")}
	p := NewIngestPipeline(proc, nopMetrics{}, WithBufferSize(4))

	err := p.Process(context.Background(), validBar())
	assert.Error(t, err)
	assert.Equal(t, 1, len(p.bufCh))
}
