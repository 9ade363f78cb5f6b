package di

import (
	"context"

	"go.uber.org/zap"

	"peoplenet/application/commands/bus"
	"peoplenet/application/ports"
	querybus "peoplenet/application/queries/bus"
	"peoplenet/application/services/citysearch"
	domainconfig "peoplenet/domain/config"
	"peoplenet/infrastructure/config"
	"peoplenet/pkg/auth"
	"peoplenet/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Rules       domainconfig.Provider
	People      ports.PersonRepository
	CommandBus  *bus.CommandBus
	QueryBus    *querybus.QueryBus
	Cities      *citysearch.Service
	CityStore   ports.CityCacheStore
	Metrics     *observability.Collector
	JWT         *auth.JWTService
	UserLimiter *auth.KeyedRateLimiter
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Ready reports whether the backing services answer. The persistent city
// tier is optional, so only a configured store is checked.
func (c *Container) Ready(ctx context.Context) error {
	if _, err := c.People.CountByUser(ctx, c.Config.DefaultUserID); err != nil {
		return err
	}
	if p, ok := c.CityStore.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
