// Package main runs the development projector that builds the Redis order view
// from the Redis Streams command log.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/rueidis"

	"github.com/jnst/order-processor/internal/config"
	"github.com/jnst/order-processor/internal/logger"
	"github.com/jnst/order-processor/internal/projector"
	"github.com/jnst/order-processor/internal/repository"
)

const (
	signalBufferSize = 1
	exitCode         = 1
)

func setupRedisClient(cfg *config.Config) (rueidis.Client, error) {
	redisClient, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{cfg.RedisAddr},
	})
	if err != nil {
		return nil, err
	}

	return redisClient, nil
}

func setupSignalHandling() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, signalBufferSize)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("shutdown signal received, stopping projector")
		cancel()
	}()

	return ctx, cancel
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(exitCode)
	}

	// ログ設定
	loggerInstance := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(loggerInstance)

	if cfg.LogBackend != config.LogBackendRedis || cfg.ViewBackend != config.ViewBackendRedis {
		slog.Error("projector requires LOG_BACKEND=redis and VIEW_BACKEND=redis",
			slog.String("log_backend", cfg.LogBackend),
			slog.String("view_backend", cfg.ViewBackend),
		)
		os.Exit(exitCode)
	}

	redisClient, err := setupRedisClient(cfg)
	if err != nil {
		slog.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(exitCode)
	}
	defer redisClient.Close()

	views := repository.NewOrderViewRepositoryRedis(redisClient, cfg.ViewRedisKey)
	p := projector.New(redisClient, views, projector.Config{
		Stream:     cfg.CommandsStream,
		Partitions: cfg.StreamPartitions,
		Group:      cfg.ProjectorGroup,
		Consumer:   cfg.ProjectorConsumer,
	}, loggerInstance)

	ctx, cancel := setupSignalHandling()
	defer cancel()

	if err := p.EnsureGroups(ctx); err != nil {
		slog.Error("failed to create consumer groups", slog.String("error", err.Error()))
		return
	}

	p.Run(ctx)
}
