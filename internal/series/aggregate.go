package series

import (
	"time"

	"ChartSignals/internal/domain/models"
)

// Aggregate folds a finer series into fixed-width buckets. Buckets align to
// zero-based wall-clock boundaries (5min buckets start at :00, :05, ...),
// never to the first observed timestamp. Buckets with no contributing bars
// are omitted. Pure: same input, same output.
func Aggregate(bars []models.Bar, bucket time.Duration) []models.Bar {
	if len(bars) == 0 || bucket <= 0 {
		return nil
	}
	sec := int64(bucket / time.Second)
	if sec <= 0 {
		return nil
	}

	out := make([]models.Bar, 0, len(bars))
	var cur models.Bar
	var curStart int64 = -1

	for _, b := range bars {
		start := b.Timestamp - b.Timestamp%sec
		if start != curStart {
			if curStart >= 0 {
				out = append(out, cur)
			}
			curStart = start
			cur = models.Bar{
				Symbol:    b.Symbol,
				Timestamp: start,
				Open:      b.Open,
				High:      b.High,
				Low:       b.Low,
				Close:     b.Close,
				Volume:    b.Volume,
			}
			continue
		}
		if b.High > cur.High {
			cur.High = b.High
		}
		if b.Low < cur.Low {
			cur.Low = b.Low
		}
		cur.Close = b.Close
		cur.Volume += b.Volume
	}
	if curStart >= 0 {
		out = append(out, cur)
	}
	return out
}
