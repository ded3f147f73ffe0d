//go:build wireinject
// +build wireinject

package di

import (
	"ChartSignals/pkg/config"
	"ChartSignals/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Metrics and logging
		ProvideMetrics,
		ProvideStreamLogger,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideBarArchive,
		ProvideBarPublisher,
		ProvideAlpacaStream,

		// Core state and use cases
		ProvideSeriesStore,
		ProvideBarRecorder,
		ProvideBarCollector,
		ProvideSignalQuery,
		ProvideKafkaBarsHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
