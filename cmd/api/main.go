// Package main provides the HTTP API server that places orders with read-your-writes confirmation.
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
	"github.com/redis/rueidis"

	"github.com/jnst/order-processor/internal/config"
	"github.com/jnst/order-processor/internal/eventlog"
	"github.com/jnst/order-processor/internal/logger"
	"github.com/jnst/order-processor/internal/repository"
	"github.com/jnst/order-processor/internal/service"
	"github.com/jnst/order-processor/internal/telemetry"
)

const (
	httpShutdownTimeout = 10 * time.Second
	signalBufferSize    = 1
	exitCode            = 1
)

// resources tracks what main must release on shutdown.
type resources struct {
	redis rueidis.Client
	pool  *pgxpool.Pool
}

func (r *resources) redisClient(cfg *config.Config) (rueidis.Client, error) {
	if r.redis != nil {
		return r.redis, nil
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{cfg.RedisAddr},
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to Redis at %s: %w", cfg.RedisAddr, err)
	}
	r.redis = client

	return client, nil
}

func (r *resources) close() {
	if r.pool != nil {
		r.pool.Close()
	}
	if r.redis != nil {
		r.redis.Close()
	}
}

func setupProducer(ctx context.Context, cfg *config.Config, res *resources) (eventlog.Producer, error) {
	switch cfg.LogBackend {
	case config.LogBackendKafka:
		return eventlog.NewKafkaProducer(cfg.KafkaBrokers, eventlog.NewKafkaConfig(cfg.WriteWaitTimeout))
	case config.LogBackendRedis:
		// The Redis producer shares the client with the view, so the client is closed by res.
		client, err := res.redisClient(cfg)
		if err != nil {
			return nil, err
		}

		return eventlog.NewRedisStreamProducer(client, cfg.StreamPartitions), nil
	case config.LogBackendNATS:
		return eventlog.NewJetStreamProducer(ctx, cfg.NATSURL, cfg.CommandsStream)
	default:
		return nil, fmt.Errorf("unsupported log backend %q", cfg.LogBackend)
	}
}

func setupViews(ctx context.Context, cfg *config.Config, res *resources) (repository.OrderViewRepository, error) {
	switch cfg.ViewBackend {
	case config.ViewBackendRedis:
		client, err := res.redisClient(cfg)
		if err != nil {
			return nil, err
		}

		return repository.NewOrderViewRepositoryRedis(client, cfg.ViewRedisKey), nil
	case config.ViewBackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		res.pool = pool

		return repository.NewOrderViewRepositoryPostgres(pool), nil
	default:
		return nil, fmt.Errorf("unsupported view backend %q", cfg.ViewBackend)
	}
}

// noCloseProducer keeps Client.Shutdown from closing a client shared with the view.
type noCloseProducer struct {
	eventlog.Producer
}

func (noCloseProducer) Close() error { return nil }

func run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.OTELEndpoint)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Error("failed to flush traces", slog.String("error", err.Error()))
		}
	}()

	res := &resources{}
	defer res.close()

	views, err := setupViews(ctx, cfg, res)
	if err != nil {
		return err
	}

	producer, err := setupProducer(ctx, cfg, res)
	if err != nil {
		return err
	}
	if cfg.LogBackend == config.LogBackendRedis {
		producer = noCloseProducer{producer}
	}

	// 依存関係注入
	events := eventlog.NewClient(producer, cfg.WriteWaitTimeout, log)
	confirm := service.NewWriteConfirmationImpl(views, cfg.VisibilityPollInterval, log)
	orderService := service.NewOrderServiceImpl(events, confirm, views, service.OrderServiceOptions{
		Stream:             cfg.CommandsStream,
		VisibilityDeadline: cfg.VisibilityDeadline,
		StrictVisibility:   cfg.VisibilityPolicy == config.VisibilityPolicyStrict,
	}, log)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewAPIServer(orderService).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting API server",
			slog.String("service", "api"),
			slog.String("port", cfg.Port),
			slog.String("log_backend", cfg.LogBackend),
			slog.String("view_backend", cfg.ViewBackend),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	sigChan := make(chan os.Signal, signalBufferSize)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serveErr:
		if err != nil {
			log.Error("HTTP server failed", slog.String("error", err.Error()))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", slog.String("error", err.Error()))
	}

	// In-flight appends get the grace period; the connection is released after it regardless.
	if err := events.Shutdown(cfg.ShutdownGrace); err != nil {
		log.Error("event log shutdown error", slog.String("error", err.Error()))
	}

	log.Info("shutdown complete")

	return nil
}

func main() {
	// 環境変数読み込み
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(exitCode)
	}

	// ログ設定
	loggerInstance := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(loggerInstance)

	if err := run(cfg, loggerInstance); err != nil {
		slog.Error("api server failed", slog.String("error", err.Error()))
		os.Exit(exitCode)
	}
}
