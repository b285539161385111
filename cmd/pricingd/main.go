package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"
	"google.golang.org/grpc/credentials"

	"github.com/bibbank/pricing-service/internal/application/usecase"
	"github.com/bibbank/pricing-service/internal/domain/port"
	"github.com/bibbank/pricing-service/internal/domain/service"
	"github.com/bibbank/pricing-service/internal/infrastructure/adapter"
	"github.com/bibbank/pricing-service/internal/infrastructure/cache"
	"github.com/bibbank/pricing-service/internal/infrastructure/config"
	"github.com/bibbank/pricing-service/internal/infrastructure/kafka"
	pgRepo "github.com/bibbank/pricing-service/internal/infrastructure/persistence/postgres"
	"github.com/bibbank/pricing-service/internal/infrastructure/tierconfig"
	grpcPresentation "github.com/bibbank/pricing-service/internal/presentation/grpc"
	"github.com/bibbank/pricing-service/internal/presentation/rest"
	"github.com/bibbank/pricing-service/pkg/auth"
	pkgkafka "github.com/bibbank/pricing-service/pkg/kafka"
	"github.com/bibbank/pricing-service/pkg/observability"
	pkgpostgres "github.com/bibbank/pricing-service/pkg/postgres"
	"github.com/bibbank/pricing-service/pkg/tlsutil"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg := config.Load()

	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: cfg.ServiceName,
	})

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("pricing-service failed", "error", err)
		os.Exit(1)
	}
	logger.Info("pricing-service stopped")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("starting pricing-service",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"scenario_store", cfg.ScenarioStore,
		"rate_config_source", cfg.RateConfig.Source,
	)

	// --- Observability -----------------------------------------------------
	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = shutdownTracer(context.Background()) }() //nolint:errcheck // best-effort tracer shutdown
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: cfg.ServiceName})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }() //nolint:errcheck
	requestMetrics, err := observability.NewRequestMetrics(meterProvider.Meter(cfg.ServiceName))
	if err != nil {
		return fmt.Errorf("init request metrics: %w", err)
	}

	readiness := map[string]rest.ReadinessCheck{}

	// --- Database ----------------------------------------------------------
	var pool *pgxpool.Pool
	if cfg.NeedsDatabase() {
		pgCfg := pkgpostgres.Config{
			Host:     cfg.DB.Host,
			Port:     cfg.DB.Port,
			User:     cfg.DB.User,
			Password: cfg.DB.Password,
			Database: cfg.DB.Name,
			SSLMode:  cfg.DB.SSLMode,
		}
		dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err = pkgpostgres.NewPool(dbCtx, pgCfg)
		dbCancel()
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()
		logger.Info("connected to database")

		if err := pkgpostgres.RunMigrations(pgCfg.DSN(), pgRepo.Migrations, pgRepo.MigrationsDir); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		readiness["database"] = func(ctx context.Context) error { return pkgpostgres.HealthCheck(ctx, pool) }
	}

	// --- Event publishing --------------------------------------------------
	kafkaCfg := pkgkafka.Config{
		ClientID:      cfg.ServiceName,
		ConsumerGroup: consumerGroup(cfg),
		Brokers:       cfg.Kafka.Brokers,
		TLS:           cfg.Kafka.TLS,
		SASLEnabled:   cfg.Kafka.SASLMechanism != "",
		SASLMechanism: cfg.Kafka.SASLMechanism,
		SASLUsername:  cfg.Kafka.SASLUsername,
		SASLPassword:  cfg.Kafka.SASLPassword,
	}
	var publisher port.EventPublisher
	if cfg.Kafka.Enabled {
		producer, err := pkgkafka.NewProducer(kafkaCfg)
		if err != nil {
			return fmt.Errorf("create kafka producer: %w", err)
		}
		defer func() { _ = producer.Close() }() //nolint:errcheck
		publisher = kafka.NewEventPublisher(producer, cfg.Kafka.Topic, logger)
	} else {
		logger.Warn("kafka disabled, domain events are only logged")
		publisher = adapter.NewLogEventPublisher(logger)
	}

	// --- Scenario store ----------------------------------------------------
	var scenarios port.ScenarioRepository
	if cfg.ScenarioStore == config.StorePostgres {
		scenarios = pgRepo.NewScenarioRepo(pool)
	} else {
		logger.Warn("scenario store is in memory, saved scenarios are lost on restart")
		mem := adapter.NewMemoryScenarioRepo()
		scenarios = mem
		readiness["scenario_store"] = mem.Ping
	}

	// --- Rate configuration ------------------------------------------------
	var lastKnownGood port.RateConfigCache
	if cfg.Redis.Addr != "" {
		client := cache.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer func() { _ = client.Close() }() //nolint:errcheck
		redisCache := cache.NewRedisRateConfigCache(client, cfg.Redis.Key)
		lastKnownGood = redisCache
		readiness["redis"] = redisCache.Ping
	}

	var (
		source     port.RateConfigSource
		configRepo *pgRepo.RateConfigRepo
		fileSource *tierconfig.FileSource
	)
	switch cfg.RateConfig.Source {
	case config.RateSourcePostgres:
		configRepo = pgRepo.NewRateConfigRepo(pool)
		source = configRepo
	default:
		fileSource = tierconfig.NewFileSource(cfg.RateConfig.File, logger)
		source = fileSource
	}

	provider := tierconfig.NewProvider(source, lastKnownGood, logger)
	if err := provider.Reload(ctx); err != nil {
		// Quotes fail with 503 until a configuration loads; pricing still works.
		logger.Error("initial rate config load failed", "error", err)
	}
	readiness["rate_config"] = provider.Ready

	if fileSource != nil && cfg.RateConfig.Watch {
		fileSource.Watch(func() {
			if err := provider.Reload(ctx); err != nil {
				logger.Error("rate config reload after file change failed", "error", err)
			}
		})
	}
	go provider.Poll(ctx, cfg.RateConfig.PollInterval)

	if cfg.Kafka.Enabled {
		consumer, err := pkgkafka.NewConsumer(kafkaCfg, cfg.Kafka.Topic, kafka.NewRateConfigListener(provider, logger), logger)
		if err != nil {
			return fmt.Errorf("create kafka consumer: %w", err)
		}
		defer func() { _ = consumer.Close() }() //nolint:errcheck
		go func() {
			if err := consumer.Start(ctx); err != nil {
				logger.Error("rate config listener stopped", "error", err)
			}
		}()
	}

	// --- Use cases ---------------------------------------------------------
	saver := usecase.NewSaveScenarioUseCase(scenarios, publisher, logger, cfg.StoreTimeout)
	set := usecase.Set{
		CalculatePricing: usecase.NewCalculatePricingUseCase(service.NewPricingEngine(nil), saver, logger),
		QuoteRate:        usecase.NewQuoteRateUseCase(provider, service.NewRateQuoteEngine(nil), logger),
		SaveScenario:     saver,
		ListScenarios:    usecase.NewListScenariosUseCase(scenarios, cfg.StoreTimeout),
		GetScenario:      usecase.NewGetScenarioUseCase(scenarios, cfg.StoreTimeout),
	}
	if configRepo != nil {
		set.PublishRateConfig = usecase.NewPublishRateConfigUseCase(configRepo, provider, publisher, logger)
	}

	// --- Auth --------------------------------------------------------------
	jwtSvc, err := newJWTService(cfg.JWT)
	if err != nil {
		return err
	}

	// --- gRPC server -------------------------------------------------------
	var creds credentials.TransportCredentials
	if cfg.TLS.Enabled() {
		creds, err = tlsutil.ServerCredentials(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		if err != nil {
			return fmt.Errorf("load gRPC TLS credentials: %w", err)
		}
	}
	grpcServer := grpcPresentation.NewServer(grpcPresentation.NewPricingHandler(set), logger, grpcPresentation.ServerOptions{
		Validator:   jwtSvc,
		Credentials: creds,
		Metrics:     requestMetrics,
		Reflection:  cfg.Reflection,
	})

	// --- HTTP server -------------------------------------------------------
	api, err := rest.NewPricingHandler(set, logger)
	if err != nil {
		return fmt.Errorf("build REST handler: %w", err)
	}
	httpServer := &http.Server{
		Addr: cfg.HTTPAddr(),
		Handler: rest.NewRouter(api, rest.NewHealthHandler(logger, readiness), logger, rest.RouterOptions{
			Validator:      jwtSvc,
			Metrics:        requestMetrics,
			MetricsHandler: metricsHandler,
			RateLimit:      rate.Limit(cfg.HTTP.RateLimitRPS),
			Burst:          cfg.HTTP.RateLimitBurst,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if cfg.TLS.Enabled() {
		httpServer.TLSConfig, err = tlsutil.ServerConfig(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		if err != nil {
			return fmt.Errorf("load HTTP TLS config: %w", err)
		}
	}

	// --- Start servers -----------------------------------------------------
	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "addr", cfg.HTTPAddr(), "tls", cfg.TLS.Enabled())
		var err error
		if httpServer.TLSConfig != nil {
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// --- Graceful shutdown -------------------------------------------------
	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr = <-errCh:
	}

	grpcServer.SetServing(false)
	grpcServer.GracefulStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	return serveErr
}

// consumerGroup gives every instance its own group so each one receives
// every rate configuration event and reloads.
func consumerGroup(cfg config.Config) string {
	if cfg.Kafka.ConsumerGroup != "" {
		return cfg.Kafka.ConsumerGroup
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = fmt.Sprintf("pid-%d", os.Getpid())
	}
	return cfg.ServiceName + "-" + host
}

// newJWTService builds a validation-only JWT service. A public key is
// preferred; the shared secret is the fallback. With neither configured the
// service runs unauthenticated, which is only meant for local development.
func newJWTService(cfg config.JWTConfig) (auth.TokenValidator, error) {
	jwtCfg := auth.JWTConfig{Issuer: cfg.Issuer}
	switch {
	case cfg.PublicKey != "":
		jwtCfg.PublicKeyPEM = cfg.PublicKey
	case cfg.PublicKeyFile != "":
		keyData, err := auth.LoadKeyFromFile(cfg.PublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("load JWT public key file: %w", err)
		}
		jwtCfg.PublicKeyPEM = string(keyData)
	case cfg.Secret != "":
		jwtCfg.Secret = cfg.Secret
	default:
		return nil, nil
	}
	svc, err := auth.NewJWTService(jwtCfg)
	if err != nil {
		return nil, fmt.Errorf("initialize JWT service: %w", err)
	}
	return svc, nil
}
