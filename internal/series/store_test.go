package series

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ChartSignals/internal/domain/models"
	domrepo "ChartSignals/internal/domain/repository"
)

func bar(ts int64, close float64) models.Bar {
	return models.Bar{
		Symbol:    "AAPL",
		Timestamp: ts,
		Open:      close,
		High:      close,
		Low:       close,
		Close:     close,
		Volume:    100,
	}
}

func TestStoreUpsertOrdersAndDedupes(t *testing.T) {
	s := NewStore(0)
	k := Key{Symbol: "AAPL", Timeframe: domrepo.TF1min}

	// out-of-order inserts plus a duplicate timestamp
	s.Upsert(k, bar(300, 3))
	s.Upsert(k, bar(60, 1))
	s.Upsert(k, bar(180, 2))
	s.Upsert(k, bar(180, 2.5)) // replaces

	got := s.Read(k)
	require.Len(t, got, 3)
	assert.Equal(t, int64(60), got[0].Timestamp)
	assert.Equal(t, int64(180), got[1].Timestamp)
	assert.Equal(t, int64(300), got[2].Timestamp)
	assert.Equal(t, 2.5, got[1].Close)
}

func TestStoreEnforcesCap(t *testing.T) {
	s := NewStore(10)
	k := Key{Symbol: "BTC/USD", Timeframe: domrepo.TF1min}
	for i := 0; i < 25; i++ {
		s.Upsert(k, bar(int64(60*(i+1)), float64(i)))
	}
	got := s.Read(k)
	require.Len(t, got, 10)
	// oldest evicted first
	assert.Equal(t, int64(60*16), got[0].Timestamp)
	assert.Equal(t, int64(60*25), got[9].Timestamp)
}

func TestStoreInvariantUnderRandomUpserts(t *testing.T) {
	s := NewStore(50)
	k := Key{Symbol: "ETH/USD", Timeframe: domrepo.TF1min}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		ts := int64(60 * (1 + rng.Intn(200)))
		s.Upsert(k, bar(ts, rng.Float64()*100+1))

		got := s.Read(k)
		require.LessOrEqual(t, len(got), 50)
		for j := 1; j < len(got); j++ {
			require.Greater(t, got[j].Timestamp, got[j-1].Timestamp,
				"series must stay strictly increasing")
		}
	}
}

func TestStoreConcurrentReadersSeeConsistentSnapshots(t *testing.T) {
	s := NewStore(100)
	k := Key{Symbol: "SPY", Timeframe: domrepo.TF1min}

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 5000; i++ {
			s.Upsert(k, bar(int64(60*(i+1)), float64(i)))
		}
		close(stop)
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				got := s.Read(k)
				for j := 1; j < len(got); j++ {
					if got[j].Timestamp <= got[j-1].Timestamp {
						t.Errorf("torn read: %d after %d", got[j].Timestamp, got[j-1].Timestamp)
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}

func TestStoreKeysSorted(t *testing.T) {
	s := NewStore(0)
	s.Upsert(Key{Symbol: "MSFT", Timeframe: domrepo.TF1min}, bar(60, 1))
	s.Upsert(Key{Symbol: "AAPL", Timeframe: domrepo.TF1min}, bar(60, 1))
	keys := s.Keys()
	require.Len(t, keys, 2)
	assert.Equal(t, "AAPL", keys[0].Symbol)
	assert.Equal(t, "MSFT", keys[1].Symbol)
}

func TestStoreTail(t *testing.T) {
	s := NewStore(0)
	k := Key{Symbol: "QQQ", Timeframe: domrepo.TF1min}
	for i := 0; i < 10; i++ {
		s.Upsert(k, bar(int64(60*(i+1)), float64(i)))
	}
	tail := s.Tail(k, 3)
	require.Len(t, tail, 3)
	assert.Equal(t, int64(60*8), tail[0].Timestamp)

	assert.Len(t, s.Tail(k, 0), 10, "n<=0 returns all")
}

func ExampleStore_Upsert() {
	s := NewStore(2)
	k := Key{Symbol: "AAPL", Timeframe: domrepo.TF1min}
	s.Upsert(k, bar(60, 1))
	s.Upsert(k, bar(120, 2))
	s.Upsert(k, bar(180, 3))
	fmt.Println(s.Len(k))
	// Output: 2
}
