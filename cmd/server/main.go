package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/cashflow/internal/adapter/http"
	"github.com/iho/cashflow/internal/adapter/http/handler"
	"github.com/iho/cashflow/internal/adapter/probe"
	"github.com/iho/cashflow/internal/adapter/queue/rabbitmq"
	postgresRepo "github.com/iho/cashflow/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/cashflow/internal/adapter/repository/redis"
	"github.com/iho/cashflow/internal/infrastructure/config"
	"github.com/iho/cashflow/internal/infrastructure/logger"
	"github.com/iho/cashflow/internal/infrastructure/postgres"
	rabbitInfra "github.com/iho/cashflow/internal/infrastructure/rabbitmq"
	"github.com/iho/cashflow/internal/infrastructure/redis"
	"github.com/iho/cashflow/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	ctx := context.Background()

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Connect to RabbitMQ
	rabbitConn, err := rabbitInfra.NewConnection(cfg.RabbitMQURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to rabbitmq")
	}
	defer rabbitConn.Close()
	log.Info().Msg("connected to rabbitmq")

	publisher, err := rabbitmq.NewPublisher(rabbitConn, rabbitmq.DefaultTopology(), appLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up queue publisher")
	}
	defer publisher.Close()

	// Initialize repositories and collaborators
	txManager := postgresRepo.NewTxManager(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	aggRepo := postgresRepo.NewAggregateRepository(pool)
	retrier := postgresRepo.NewRetrier()
	cache := redisRepo.NewCache(redisClient)
	availabilityProbe := probe.NewHTTPProbe(cfg.ConsolidationHealthURL, cfg.ProbeTimeout, appLogger)

	// Initialize use cases
	registerUC := usecase.NewRegisterUseCase(txManager, entryRepo, aggRepo, cache, publisher, availabilityProbe, retrier, appLogger)
	queryUC := usecase.NewQueryUseCase(entryRepo, aggRepo, cache, appLogger)

	// Initialize handlers
	entryHandler := handler.NewEntryHandler(registerUC, queryUC)
	aggregateHandler := handler.NewAggregateHandler(queryUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		EntryHandler:     entryHandler,
		AggregateHandler: aggregateHandler,
		HealthHandler:    healthHandler,
		Logger:           appLogger,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
