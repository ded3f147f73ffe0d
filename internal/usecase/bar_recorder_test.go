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
)

type fakePublisher struct {
	mu        sync.Mutex
	published []models.Bar
	err       error
}

func (p *fakePublisher) Publish(ctx context.Context, b *models.Bar) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, *b)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func TestBarRecorderProcessAndFlush(t *testing.T) {
	st := series.NewStore(0)
	arch := &fakeArchive{}
	pub := &fakePublisher{}
	r := NewBarRecorder(st, arch, pub, nopMetrics{}, zerolog.Nop(), time.Minute)

	bars := genBars("AAPL", 3)
	for i := range bars {
		require.NoError(t, r.Process(context.Background(), &bars[i]))
	}

	key := series.Key{Symbol: "AAPL", Timeframe: domrepo.BaseTimeframe()}
	assert.Equal(t, 3, st.Len(key))
	assert.Len(t, pub.published, 3)
	assert.Empty(t, arch.appended, "archive writes wait for the flush")

	r.Flush(context.Background())
	require.Len(t, arch.appended, 1)
	assert.Len(t, arch.appended[0], 3)

	// nothing pending anymore
	r.Flush(context.Background())
	assert.Len(t, arch.appended, 1)
}

func TestBarRecorderPublishFailureKeepsBar(t *testing.T) {
	st := series.NewStore(0)
	pub := &fakePublisher{err: fmt.Errorf("broker down")}
	r := NewBarRecorder(st, nil, pub, nopMetrics{}, zerolog.Nop(), time.Minute)

	b := genBars("AAPL", 1)[0]
	require.NoError(t, r.Process(context.Background(), &b))
	assert.Equal(t, 1, st.Len(series.Key{Symbol: "AAPL", Timeframe: domrepo.BaseTimeframe()}))
}

func TestBarRecorderNilBar(t *testing.T) {
	r := NewBarRecorder(series.NewStore(0), nil, nil, nopMetrics{}, zerolog.Nop(), 0)
	assert.Error(t, r.Process(context.Background(), nil))
}
