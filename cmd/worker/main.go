package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

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
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	rabbitConn, err := rabbitInfra.NewConnection(cfg.RabbitMQURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to rabbitmq")
	}
	defer rabbitConn.Close()
	log.Info().Msg("connected to rabbitmq")

	txManager := postgresRepo.NewTxManager(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	aggRepo := postgresRepo.NewAggregateRepository(pool)
	retrier := postgresRepo.NewRetrier()
	cache := redisRepo.NewCache(redisClient)
	availabilityProbe := probe.NewHTTPProbe(cfg.ConsolidationHealthURL, cfg.ProbeTimeout, appLogger)

	consolidationUC := usecase.NewConsolidationUseCase(txManager, entryRepo, aggRepo, cache, availabilityProbe, retrier, appLogger)
	consumer := rabbitmq.NewConsumer(rabbitConn, rabbitmq.DefaultTopology(), consolidationUC, appLogger)

	log.Info().Msg("starting consolidation worker")

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("consumer stopped")
	}

	log.Info().Msg("worker stopped")
}
