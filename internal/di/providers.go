package di

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"ChartSignals/internal/domain/repository"
	mid "ChartSignals/internal/middleware"
	internalrepo "ChartSignals/internal/repository"
	"ChartSignals/internal/series"
	"ChartSignals/internal/service/alpaca"
	"ChartSignals/internal/usecase"
	pkgch "ChartSignals/pkg/clickhouse"
	"ChartSignals/pkg/config"
	pkgkafka "ChartSignals/pkg/kafka"
	"ChartSignals/pkg/metrics"
	"ChartSignals/pkg/server"
)

// ProvideClickHouseClient creates a ClickHouse client, or nil when the
// archive is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideBarArchive creates the ClickHouse-backed bar archive and ensures
// its schema. Returns nil when the archive is disabled.
func ProvideBarArchive(chClient *pkgch.Client, cfg *config.Config) (repository.BarArchive, error) {
	if chClient == nil {
		return nil, nil
	}
	arch := internalrepo.NewCHBarArchive(chClient, cfg.ClickHouse.Database)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := arch.Init(ctx); err != nil {
		return nil, fmt.Errorf("bar archive schema: %w", err)
	}
	return arch, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideBarPublisher creates the Kafka bar publisher, or nil without a producer.
func ProvideBarPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.BarPublisher {
	if producer == nil || cfg.Kafka.Topic == "" {
		return nil
	}
	return internalrepo.NewKafkaBarPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates a Kafka consumer when the replay/backfill
// ingest path is enabled.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideStreamLogger creates the zerolog logger used by ingestion components.
func ProvideStreamLogger(cfg *config.Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.Environment == "development" {
		level = zerolog.DebugLevel
	}
	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
}

// ProvideSeriesStore creates the in-memory bar series store.
func ProvideSeriesStore(cfg *config.Config) *series.Store {
	return series.NewStore(cfg.Series.Cap)
}

// ProvideAlpacaStream creates the Alpaca WebSocket stream.
func ProvideAlpacaStream(cfg *config.Config, log zerolog.Logger) repository.MarketStream {
	return alpaca.New(
		cfg.Alpaca.KeyID,
		cfg.Alpaca.SecretKey,
		cfg.Alpaca.WebSocketURL,
		cfg.Alpaca.Symbols,
		cfg.Alpaca.ReconnectDelay,
		cfg.Alpaca.PingInterval,
		log,
	)
}

// ProvideBarRecorder creates the bar recorder use case.
func ProvideBarRecorder(
	store *series.Store,
	archive repository.BarArchive,
	pub repository.BarPublisher,
	metrics repository.Metrics,
	log zerolog.Logger,
	cfg *config.Config,
) *usecase.BarRecorder {
	return usecase.NewBarRecorder(store, archive, pub, metrics, log, cfg.Series.SaveInterval)
}

// ProvideBarCollector creates the bar collector use case.
func ProvideBarCollector(
	stream repository.MarketStream,
	rec *usecase.BarRecorder,
	metrics repository.Metrics,
) *usecase.BarCollector {
	// pipeline between the stream and the recorder
	pipe := mid.NewIngestPipeline(rec, metrics,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewBarCollector(stream, rec, metrics, pipe)
}

// ProvideSignalQuery creates the read-side query use case.
func ProvideSignalQuery(
	store *series.Store,
	archive repository.BarArchive,
	metrics repository.Metrics,
	log zerolog.Logger,
) *usecase.SignalQuery {
	return usecase.NewSignalQuery(store, archive, metrics, log)
}

// ProvideKafkaBarsHandler registers the handler for the bars topic.
func ProvideKafkaBarsHandler(rec *usecase.BarRecorder, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaBarsHandler {
	if cfg.Kafka.Topic == "" {
		return nil
	}
	return usecase.NewKafkaBarsHandler(cfg.Kafka.Topic, rec, metrics)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.BarCollector,
	query *usecase.SignalQuery,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaBarsHandler,
	chClient *pkgch.Client,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	return server.New(cfg, collector, query, consumer, kh, chClient)
}
