package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/opportunity/adapter/cli"
	"github.com/felixgeelhaar/opportunity/internal/app"
	"github.com/felixgeelhaar/opportunity/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/opportunity/pkg/config"
	"github.com/felixgeelhaar/opportunity/pkg/observability"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		observability.NewLogger(observability.DefaultLogConfig()).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfigFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat, cli.Version))
	logger.Info("starting opportunity worker")

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	// Start outbox processor
	container.StartOutbox(ctx)

	// Consume brokered events
	if container.Brokered {
		consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
			URL:       cfg.RabbitMQURL,
			QueueName: cfg.RabbitMQQueue,
			Logger:    logger,
		}, eventbus.NewConsumerRegistry(logger))
		if err != nil {
			logger.Error("failed to start RabbitMQ consumer", "error", err)
			container.Close()
			os.Exit(1)
		}
		defer consumer.Close()

		if container.CalendarSubscriber != nil {
			if err := consumer.RegisterConsumer(container.CalendarSubscriber); err != nil {
				logger.Error("failed to register calendar subscriber", "error", err)
				container.Close()
				os.Exit(1)
			}
		}

		go func() {
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("RabbitMQ consumer stopped", "error", err)
				cancel()
			}
		}()
	}

	if cfg.WorkerHealthAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/healthz", observability.HealthHandler(container.HealthRegistry()))

		healthSrv := &http.Server{
			Addr:              cfg.WorkerHealthAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			logger.Info("health server starting", "addr", cfg.WorkerHealthAddr)
			if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("health server error", "error", err)
			}
		}()

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := healthSrv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("health server shutdown error", "error", err)
			}
		}()
	}

	if cfg.OutboxStatsInterval > 0 {
		statsTicker := time.NewTicker(cfg.OutboxStatsInterval)
		defer statsTicker.Stop()
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-statsTicker.C:
					stats := container.OutboxProcessor.GetStats()
					logger.Info("outbox stats",
						"running", stats.IsRunning,
						"published", stats.PublishedCount,
						"failed", stats.FailedCount,
						"dead", stats.DeadCount,
						"lag_seconds", stats.LagSeconds,
						"oldest_message_at", stats.OldestMessageAt,
						"last_processed_at", stats.LastProcessedAt,
						"last_error_at", stats.LastErrorAt,
						"last_error", stats.LastError,
					)
				}
			}
		}()
	}

	// Wait for shutdown
	<-ctx.Done()
	logger.Info("shutting down worker")
}
