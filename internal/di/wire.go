//go:build wireinject
// +build wireinject

package di

import (
	"CryptoLiq/pkg/config"
	"CryptoLiq/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Model
		ProvideSchema,
		ProvideModel,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideCache,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvidePredictionStore,
		ProvideFeatureStore,

		// Use cases and transport
		ProvidePredictionPipeline,
		ProvideHub,
		ProvidePredictor,
		ProvideKafkaHandlers,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
