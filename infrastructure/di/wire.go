//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"peoplenet/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideDomainRules,
	ProvideCollector,
	ProvideRecorder,
	ProvideTracer,
	ProvidePersonRepository,
	ProvideEventPublisher,
	ProvideCityStore,
	ProvideCityProvider,
	ProvideCityService,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideJWTService,
	ProvideUserRateLimiter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil
}
