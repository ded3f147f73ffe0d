package usecase

import (
	"context"
	"encoding/json"
	"time"

	"ChartSignals/internal/domain/models"
	domrepo "ChartSignals/internal/domain/repository"
	pkgkafka "ChartSignals/pkg/kafka"
)

// KafkaBarsHandler ingests bars arriving over Kafka instead of the live
// WebSocket feed, e.g. from a replay or backfill job.
type KafkaBarsHandler struct {
	topic   string
	rec     *BarRecorder
	metrics domrepo.Metrics
}

func NewKafkaBarsHandler(topic string, rec *BarRecorder, metrics domrepo.Metrics) *KafkaBarsHandler {
	return &KafkaBarsHandler{topic: topic, rec: rec, metrics: metrics}
}

func (h *KafkaBarsHandler) Topic() string { return h.topic }

// incoming message schema: {symbol, t, o, h, l, c, v}
func (h *KafkaBarsHandler) Handle(ctx context.Context, data []byte) error {
	var m struct {
		Symbol string  `json:"symbol"`
		T      int64   `json:"t"`
		O      float64 `json:"o"`
		H      float64 `json:"h"`
		L      float64 `json:"l"`
		C      float64 `json:"c"`
		V      float64 `json:"v"`
	}
	if err := json.Unmarshal(data, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.T > 1e11 { // ms
		m.T = m.T / 1000
	}
	bar := &models.Bar{
		Symbol:    m.Symbol,
		Timestamp: m.T,
		Open:      m.O,
		High:      m.H,
		Low:       m.L,
		Close:     m.C,
		Volume:    m.V,
	}
	if err := bar.Validate(); err != nil {
		h.metrics.RecordBarRejected(m.Symbol)
		return err
	}
	// E2E latency from bar-open time to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(time.Unix(m.T, 0)).Seconds())
	return h.rec.Process(ctx, bar)
}

var _ pkgkafka.MessageHandler = (*KafkaBarsHandler)(nil)
