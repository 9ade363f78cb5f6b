package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"peoplenet/application/commands"
	"peoplenet/application/commands/bus"
	commandhandlers "peoplenet/application/commands/handlers"
	"peoplenet/application/ports"
	"peoplenet/application/queries"
	querybus "peoplenet/application/queries/bus"
	queryhandlers "peoplenet/application/queries/handlers"
	"peoplenet/application/services/citysearch"
	domainconfig "peoplenet/domain/config"
	rediscache "peoplenet/infrastructure/cache/redis"
	"peoplenet/infrastructure/config"
	"peoplenet/infrastructure/geo"
	"peoplenet/infrastructure/messaging/eventbridge"
	"peoplenet/infrastructure/messaging/logging"
	"peoplenet/infrastructure/persistence/dynamodb"
	"peoplenet/infrastructure/persistence/memory"
	"peoplenet/pkg/auth"
	"peoplenet/pkg/observability"
)

const serviceName = "peoplenet"

// ProvideLogger creates the logger and installs it as the zap global;
// LOG_LEVEL overrides the environment default
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	logger, err := zcfg.Build(zap.Fields(zap.String("service", serviceName), zap.String("environment", cfg.Environment)))
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideDomainRules serves the domain rules, hot reloaded from
// DOMAIN_RULES_FILE when it is set
func ProvideDomainRules(cfg *config.Config, logger *zap.Logger) (domainconfig.Provider, func(), error) {
	base := domainconfig.LoadDomainConfig(cfg.Environment)
	if cfg.DomainRulesFile == "" {
		return domainconfig.NewStatic(base), func() {}, nil
	}
	watcher, err := config.NewRulesWatcher(cfg.DomainRulesFile, base, logger)
	if err != nil {
		return nil, nil, err
	}
	return watcher, watcher.Stop, nil
}

// ProvideCollector creates the Prometheus collector
func ProvideCollector() *observability.Collector {
	return observability.NewCollector(serviceName)
}

// ProvideRecorder fans operation timings out to Prometheus and, when a
// namespace is configured, CloudWatch
func ProvideRecorder(cfg *config.Config, collector *observability.Collector, client *awscloudwatch.Client, logger *zap.Logger) observability.Recorder {
	recorders := observability.Recorders{collector}
	if cfg.CloudWatchNamespace != "" {
		namespace := fmt.Sprintf("%s/%s", cfg.CloudWatchNamespace, cfg.Environment)
		recorders = append(recorders, observability.NewCloudWatchRecorder(namespace, client, logger))
	}
	return recorders
}

// ProvideTracer creates the X-Ray tracer; X-Ray only supplies a parent
// segment inside Lambda
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer(serviceName, cfg.IsLambda && cfg.EnableTracing)
}

// ProvidePersonRepository selects the storage backend
func ProvidePersonRepository(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) ports.PersonRepository {
	if cfg.StorageBackend == config.StorageDynamoDB {
		logger.Info("Using DynamoDB storage", zap.String("table", cfg.DynamoDBTable))
		return dynamodb.NewPersonRepository(client, cfg.DynamoDBTable, logger)
	}
	logger.Info("Using in-memory storage")
	return memory.NewPersonRepository()
}

// ProvideEventPublisher assembles the event sinks for the configured backends
func ProvideEventPublisher(
	cfg *config.Config,
	ddb *awsdynamodb.Client,
	eb *awseventbridge.Client,
	logger *zap.Logger,
) ports.EventPublisher {
	var sinks logging.FanOut
	if cfg.StorageBackend == config.StorageDynamoDB {
		sinks = append(sinks, dynamodb.NewEventLog(ddb, cfg.DynamoDBTable, logger))
	}
	if cfg.EventBusName != "" {
		sinks = append(sinks, eventbridge.NewPublisher(eb, cfg.EventBusName, logger))
	}
	if len(sinks) == 0 {
		return logging.NewPublisher(logger)
	}
	return sinks
}

// ProvideCityStore connects the persistent city tier. Redis is optional:
// without REDIS_URL, or when it cannot be reached, only memory is used.
func ProvideCityStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.CityCacheStore, func()) {
	if cfg.RedisURL == "" {
		return nil, func() {}
	}
	store, err := rediscache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn("City cache persistent tier disabled", zap.Error(err))
		return nil, func() {}
	}
	return store, func() { _ = store.Close() }
}

// ProvideCityProvider creates the remote city API client
func ProvideCityProvider(cfg *config.Config, logger *zap.Logger) ports.CityProvider {
	return geo.NewGeoDBProvider(geo.Config{
		BaseURL: cfg.CityAPIURL,
		APIKey:  cfg.CityAPIKey,
		APIHost: cfg.CityAPIHost,
		Timeout: cfg.CityAPITimeout,
		Traced:  cfg.IsLambda && cfg.EnableTracing,
	}, logger)
}

// ProvideCityService creates the city lookup service
func ProvideCityService(
	cfg *config.Config,
	provider ports.CityProvider,
	store ports.CityCacheStore,
	collector *observability.Collector,
	logger *zap.Logger,
) (*citysearch.Service, error) {
	svcCfg := citysearch.DefaultConfig()
	svcCfg.MinQueryLength = cfg.CityMinQueryLen
	svcCfg.MemorySize = cfg.CityCacheSize
	svcCfg.TTL = cfg.CityCacheTTL

	limiter := auth.NewSlidingWindowLimiter(cfg.CityRateLimit, cfg.CityRateWindow)
	return citysearch.NewService(provider, store, limiter, collector, logger, svcCfg)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	repo ports.PersonRepository,
	publisher ports.EventPublisher,
	rules domainconfig.Provider,
	collector *observability.Collector,
	recorder observability.Recorder,
	tracer *observability.Tracer,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(
		bus.LoggingMiddleware(logger),
		bus.TracingMiddleware(tracer),
		bus.MetricsMiddleware(recorder),
	)

	add := commandhandlers.NewAddPersonHandler(repo, publisher, rules, collector, logger)
	update := commandhandlers.NewUpdatePersonHandler(repo, publisher, rules, collector, logger)
	remove := commandhandlers.NewRemovePersonHandler(repo, publisher, collector, logger)

	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.AddPersonCommand{}, bus.For(add.Handle)},
		{commands.UpdatePersonCommand{}, bus.For(update.Handle)},
		{commands.RemovePersonCommand{}, bus.For(remove.Handle)},
	}
	for _, r := range registrations {
		if err := commandBus.Register(r.cmd, r.handler); err != nil {
			return nil, err
		}
	}
	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	repo ports.PersonRepository,
	rules domainconfig.Provider,
	cities *citysearch.Service,
	collector *observability.Collector,
	recorder observability.Recorder,
	tracer *observability.Tracer,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(
		querybus.LoggingMiddleware(logger),
		querybus.TracingMiddleware(tracer),
		querybus.MetricsMiddleware(recorder),
	)

	listPeople := queryhandlers.NewListPeopleHandler(repo, logger)
	getPerson := queryhandlers.NewGetPersonHandler(repo)
	graph := queryhandlers.NewGetNetworkGraphHandler(repo, rules, collector, logger)
	path := queryhandlers.NewGetConnectionPathHandler(repo, rules)
	issues := queryhandlers.NewGetNetworkIssuesHandler(repo, rules)
	searchCities := queryhandlers.NewSearchCitiesHandler(cities)

	registrations := []struct {
		query   querybus.Query
		handler querybus.QueryHandler
	}{
		{queries.ListPeopleQuery{}, querybus.For(listPeople.Handle)},
		{queries.GetPersonQuery{}, querybus.For(getPerson.Handle)},
		{queries.GetNetworkGraphQuery{}, querybus.For(graph.Handle)},
		{queries.GetConnectionPathQuery{}, querybus.For(path.Handle)},
		{queries.GetNetworkIssuesQuery{}, querybus.For(issues.Handle)},
		{queries.SearchCitiesQuery{}, querybus.For(searchCities.Handle)},
	}
	for _, r := range registrations {
		if err := queryBus.Register(r.query, r.handler); err != nil {
			return nil, err
		}
	}
	return queryBus, nil
}

// ProvideJWTService creates the token validator. Without a secret outside
// production, or with AUTH_DISABLED, requests act as DEFAULT_USER_ID.
func ProvideJWTService(cfg *config.Config, logger *zap.Logger) (*auth.JWTService, error) {
	if cfg.AuthDisabled || cfg.JWTSecret == "" {
		logger.Warn("Authentication disabled", zap.String("defaultUser", cfg.DefaultUserID))
		return nil, nil
	}
	return auth.NewJWTService(auth.JWTConfig{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	})
}

// ProvideUserRateLimiter creates the per-user request limiter; zero disables it
func ProvideUserRateLimiter(cfg *config.Config) *auth.KeyedRateLimiter {
	if cfg.UserRateLimit <= 0 {
		return nil
	}
	return auth.NewUserRateLimiter(cfg.UserRateLimit)
}
