package repository

import (
	"context"

	"ChartSignals/internal/domain/models"
	domrepo "ChartSignals/internal/domain/repository"
	pkgkafka "ChartSignals/pkg/kafka"
)

// KafkaBarPublisher implements BarPublisher for Kafka. Messages are keyed by
// symbol so one symbol's bars stay on one partition, in order.
type KafkaBarPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaBarPublisher creates a Kafka publisher.
func NewKafkaBarPublisher(producer *pkgkafka.Producer, topic string) domrepo.BarPublisher {
	return &KafkaBarPublisher{producer: producer, topic: topic}
}

func (p *KafkaBarPublisher) Publish(ctx context.Context, b *models.Bar) error {
	return p.producer.Publish(ctx, p.topic, []byte(b.Symbol), barPayload(b))
}

func (p *KafkaBarPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func barPayload(b *models.Bar) map[string]interface{} {
	return map[string]interface{}{
		"symbol": b.Symbol,
		"t":      b.Timestamp,
		"o":      b.Open,
		"h":      b.High,
		"l":      b.Low,
		"c":      b.Close,
		"v":      b.Volume,
	}
}
