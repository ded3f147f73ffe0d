package alpaca

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarFrom(t *testing.T) {
	b, err := barFrom(wsMessage{
		Type:   "b",
		Symbol: "AAPL",
		Open:   100,
		High:   101,
		Low:    99.5,
		Close:  100.7,
		Volume: 1200,
		Time:   "2026-08-25T14:30:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "AAPL", b.Symbol)
	assert.Equal(t, int64(1787668200), b.Timestamp)
	assert.Equal(t, 100.7, b.Close)
}

func TestBarFromRejectsBadTime(t *testing.T) {
	_, err := barFrom(wsMessage{Symbol: "AAPL", Time: "not-a-time", Open: 1, High: 1, Low: 1, Close: 1})
	assert.Error(t, err)
}

func TestBarFromRejectsInvalidBar(t *testing.T) {
	// high below the open is not a valid bar
	_, err := barFrom(wsMessage{
		Symbol: "AAPL",
		Open:   100,
		High:   99,
		Low:    98,
		Close:  98.5,
		Volume: 10,
		Time:   "2026-08-25T14:30:00Z",
	})
	assert.Error(t, err)
}
