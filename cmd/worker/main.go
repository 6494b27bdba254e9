package main

import (
	"context"
	"os"
	"os/signal"
	"route-planner-service/internal/adapters/repositories"
	"route-planner-service/internal/config"
	"route-planner-service/internal/platform/db"
	"route-planner-service/internal/platform/logging"
	"route-planner-service/internal/services"
	"route-planner-service/internal/worker"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// main runs the asynq worker: offer fan-out to Redis pub/sub and assignment expiry.
func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("worker exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logFile, err := logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer logFile.Close()

	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	store := repositories.NewPostgresStore(conn)
	// Expiry never notifies, so the coordinator runs without a notifier here.
	coord := services.NewAssignmentCoordinator(store, store, nil)

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress, Password: cfg.RedisPassword})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return err
	}

	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddress, Password: cfg.RedisPassword}
	processor := worker.NewProcessor(redisOpt, rdb, coord, 10)

	log.Info().Str("redis", cfg.RedisAddress).Msg("starting task processor")
	if err := processor.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info().Msg("shutting down task processor")
	processor.Shutdown()
	return nil
}
