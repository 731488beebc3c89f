package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	assets_adapter "listing-service/internal/adapters/assets"
	geocoder_adapter "listing-service/internal/adapters/geocoder"
	token_adapter "listing-service/internal/adapters/jwt"
	logger_adapter "listing-service/internal/adapters/logger"
	mongodb_adapter "listing-service/internal/adapters/mongodb"
	postgres_adapter "listing-service/internal/adapters/postgres"
	rabbitmq_adapter "listing-service/internal/adapters/rabbitmq"
	redis_adapter "listing-service/internal/adapters/redis"
	"listing-service/internal/adapters/rest"
	"listing-service/internal/configs"
	"listing-service/internal/constants"
	"listing-service/internal/core/port"
	"listing-service/internal/core/usecase"
	fluentlogger "listing-service/pkg/fluent_logger"
	"listing-service/pkg/mongodb"
	"listing-service/pkg/postgres"
	"listing-service/pkg/rabbitmq/rabbitmq_common"
	"listing-service/pkg/rabbitmq/rabbitmq_consumer"
	"listing-service/pkg/rabbitmq/rabbitmq_producer"
	"listing-service/pkg/redisclient"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/redis/go-redis/v9"
)

// App is the listing-service composition root.
type App struct {
	config       *configs.AppConfig
	apiServer    *rest.Server
	fluentClient *fluent.Fluent
	redisClient  *redis.Client
	connManager  *rabbitmq_common.ConnectionManager
	logger       port.LoggerPort

	engagementListener port.EventListenerPort
	eventsProducer     *rabbitmq_producer.Publisher

	// closers release the store connection.
	closers []func()
}

func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	baseLogger, fluentClient, err := NewLogger(appConfig.AppName, appConfig.StdoutLogger.Level, appConfig.FluentBit)
	if err != nil {
		return nil, err
	}
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{"fluent_enabled": appConfig.FluentBit.Enabled})

	app := &App{config: appConfig, fluentClient: fluentClient, logger: appLogger}
	fail := func(msg string, err error) (*App, error) {
		appLogger.Error(msg, err, nil)
		app.release()
		return nil, fmt.Errorf("%s: %w", msg, err)
	}

	// --- Store ---
	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var store port.StorePort
	switch appConfig.Store.Driver {
	case configs.StoreDriverMongo:
		client, db, err := mongodb.NewClient(startupCtx, mongodb.Config{URI: appConfig.Store.MongoURI, Database: appConfig.Store.MongoDatabase})
		if err != nil {
			return fail("Failed to connect to MongoDB", err)
		}
		app.closers = append(app.closers, func() { _ = client.Disconnect(context.Background()) })
		mongoStore, err := mongodb_adapter.NewMongoStore(db)
		if err != nil {
			return fail("Failed to create mongo store", err)
		}
		if err := mongoStore.EnsureIndexes(startupCtx); err != nil {
			return fail("Failed to create mongo indexes", err)
		}
		store = mongoStore
		appLogger.Info("MongoDB store initialized", port.Fields{"database": appConfig.Store.MongoDatabase})
	default:
		dbPool, err := postgres.NewClient(startupCtx, postgres.Config{DatabaseURL: appConfig.Store.PostgresURL})
		if err != nil {
			return fail("Failed to connect to PostgreSQL", err)
		}
		app.closers = append(app.closers, dbPool.Close)
		pgStore, err := postgres_adapter.NewPostgresStore(dbPool)
		if err != nil {
			return fail("Failed to create postgres store", err)
		}
		if err := pgStore.Migrate(startupCtx); err != nil {
			return fail("Failed to migrate postgres schema", err)
		}
		store = pgStore
		appLogger.Info("PostgreSQL store initialized", nil)
	}

	// --- Caches ---
	var facetCache port.FacetCachePort
	var geocodeCache port.GeocodeCachePort
	if appConfig.Redis.Addr != "" {
		rdb, err := redisclient.NewClient(startupCtx, redisclient.Config{
			Addr:     appConfig.Redis.Addr,
			Password: appConfig.Redis.Password,
			DB:       appConfig.Redis.DB,
		})
		if err != nil {
			return fail("Failed to connect to Redis", err)
		}
		app.redisClient = rdb
		facetCache = redis_adapter.NewFacetCache(rdb, appConfig.Redis.FacetCacheTTL)
		geocodeCache = redis_adapter.NewGeocodeCache(rdb, appConfig.Redis.GeocodeTTL)
		appLogger.Info("Redis caches initialized", nil)
	} else {
		appLogger.Warn("REDIS_ADDR is not set, facet and geocode caching disabled", nil)
	}

	// --- RabbitMQ ---
	connManagerBridge := rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"}))
	connManager, err := rabbitmq_common.NewManager(rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL}, connManagerBridge)
	if err != nil {
		return fail("Failed to create connection manager", err)
	}
	app.connManager = connManager

	producerCfg := rabbitmq_producer.PublisherConfig{
		Config:                   rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
		ExchangeName:             constants.ListingEventsExchange,
		ExchangeType:             "topic",
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
		Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})),
	}
	eventsProducer, err := rabbitmq_producer.NewPublisher(producerCfg, connManager)
	if err != nil {
		return fail("Failed to create event producer", err)
	}
	app.eventsProducer = eventsProducer

	eventsAdapter, err := rabbitmq_adapter.NewListingSavedPublisherAdapter(eventsProducer)
	if err != nil {
		return fail("Failed to create listing events adapter", err)
	}

	// --- Outgoing adapters ---
	tokenVerifier, err := token_adapter.NewTokenVerifier(appConfig.Auth.JWTSigningKey)
	if err != nil {
		return fail("Failed to create token verifier", err)
	}
	assetStorage, err := assets_adapter.NewLocalStorageAdapter(appConfig.Assets.Dir, appConfig.Assets.BaseURL, appConfig.Assets.MaxEdge)
	if err != nil {
		return fail("Failed to create asset storage", err)
	}
	geocoder, err := geocoder_adapter.NewNominatimAdapter(geocoder_adapter.NominatimConfig{
		BaseURL:           appConfig.Geocoder.URL,
		UserAgent:         appConfig.Geocoder.UserAgent,
		RequestsPerSecond: appConfig.Geocoder.RPS,
		RetryMax:          2,
	})
	if err != nil {
		return fail("Failed to create geocoder", err)
	}
	appLogger.Info("All outgoing adapters initialized.", nil)

	// --- Use cases ---
	findListingsUC := usecase.NewFindListingsUseCase(store, facetCache)
	getListingUC := usecase.NewGetListingUseCase(store)
	createListingUC := usecase.NewCreateListingUseCase(store, store, eventsAdapter)
	updateListingUC := usecase.NewUpdateListingUseCase(store, store, eventsAdapter, facetCache)
	setVerificationUC := usecase.NewSetVerificationUseCase(store, eventsAdapter, facetCache)
	recordEngagementUC := usecase.NewRecordEngagementUseCase(store)
	uploadAssetUC := usecase.NewUploadAssetUseCase(assetStorage)
	geocodeUC := usecase.NewGeocodeUseCase(geocoder, geocodeCache)
	appLogger.Info("All use cases initialized.", nil)

	// --- Incoming adapters ---
	engagementCfg := rabbitmq_consumer.ConsumerConfig{
		Config:                 rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
		QueueName:              constants.QueueListingEngagement,
		DeclareQueue:           true,
		DurableQueue:           true,
		ExchangeNameForBind:    constants.EngagementExchange,
		DeclareExchangeForBind: true,
		ExchangeTypeForBind:    "topic",
		DurableExchangeForBind: true,
		RoutingKeyForBind:      constants.RoutingKeyEngagement,
		PrefetchCount:          16,
		ConsumerTag:            "listing-engagement-adapter",

		EnableRetryMechanism: true,
		RetryExchange:        constants.RetryExchange,
		RetryQueue:           constants.RetryQueue,
		RetryTTL:             constants.RetryTTLMillis,
		FinalDLXExchange:     constants.FinalDLXExchange,
		FinalDLQ:             constants.FinalDLQ,
		FinalDLQRoutingKey:   constants.FinalDLQRoutingKey,
		MaxRetries:           constants.MaxRetries,
	}
	engagementListener, err := rabbitmq_adapter.NewEngagementConsumerAdapter(engagementCfg, recordEngagementUC, baseLogger, connManager)
	if err != nil {
		return fail("Failed to create engagement listener", err)
	}
	app.engagementListener = engagementListener

	serverCfg := rest.ServerConfig{
		Port:                  appConfig.Rest.PORT,
		AllowedOrigins:        appConfig.Rest.AllowedOrigins,
		AssetDir:              appConfig.Assets.Dir,
		CollaboratorRateLimit: appConfig.Rest.RateLimit,
	}
	router := rest.NewRouter(
		serverCfg,
		rest.NewListingHandler(findListingsUC, getListingUC, createListingUC, updateListingUC, setVerificationUC),
		rest.NewCollaboratorHandler(uploadAssetUC, geocodeUC),
		rest.NewAuthMiddleware(tokenVerifier),
		baseLogger,
	)
	app.apiServer = rest.NewServer(serverCfg, router, baseLogger)
	appLogger.Info("REST API server configured.", nil)

	return app, nil
}

// Run starts the listeners and the HTTP server and blocks until a signal or a
// component failure.
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := a.apiServer.Stop(shutdownCtx); err != nil {
			a.logger.Error("Error during API server shutdown", err, nil)
		}

		wg.Wait()
		a.logger.Info("All background processes finished.", nil)

		a.release()
		a.logger.Info("Application shut down gracefully.", nil)

		if a.fluentClient != nil {
			if err := a.fluentClient.Close(); err != nil {
				fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
			}
		}
	}()

	a.logger.Info("Application is starting...", nil)
	errorsCh := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		listenerLogger := a.logger.WithFields(port.Fields{"listener_name": "Listing Engagement Listener"})
		listenerLogger.Info("Starting listener...", nil)
		if err := a.engagementListener.Start(appCtx); err != nil && !errors.Is(err, context.Canceled) {
			listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
			errorsCh <- fmt.Errorf("engagement listener error: %w", err)
			return
		}
		listenerLogger.Info("Listener stopped gracefully due to context cancellation.", nil)
	}()

	go func() {
		if err := a.apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorsCh <- fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case runErr = <-errorsCh:
		a.logger.Error("A critical component failed, shutting down", runErr, nil)
	}

	cancelApp()
	return runErr
}

// release closes everything NewApp opened, in reverse order of creation.
func (a *App) release() {
	if a.engagementListener != nil {
		if err := a.engagementListener.Close(); err != nil {
			a.logger.Error("Error closing engagement listener", err, nil)
		}
	}
	if a.eventsProducer != nil {
		if err := a.eventsProducer.Close(); err != nil {
			a.logger.Error("Error closing event producer", err, nil)
		}
	}
	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection", err, nil)
		}
	}
	if a.redisClient != nil {
		_ = a.redisClient.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// NewLogger builds the stdout logger and, when enabled, the Fluent Bit logger
// behind one multi-logger tagged with the service name.
func NewLogger(appName, stdoutLevel string, fluentCfg configs.FluentBitConfig) (port.LoggerPort, *fluent.Fluent, error) {
	activeLoggers := []port.LoggerPort{
		logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
			Level:    logger_adapter.ParseLevel(stdoutLevel),
			UseColor: true,
		}),
	}

	var fluentClient *fluent.Fluent
	if fluentCfg.Enabled {
		var err error
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      fluentCfg.Host,
			Port:      fluentCfg.Port,
			TagPrefix: appName,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}
		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, logger_adapter.ParseLevel(fluentCfg.Level))
		if err != nil {
			fluentClient.Close()
			return nil, nil, fmt.Errorf("failed to create fluentbit adapter: %w", err)
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}
	return multiLogger.WithFields(port.Fields{"service_name": appName}), fluentClient, nil
}
