package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/opportunity/internal/booking/application/commands"
	"github.com/felixgeelhaar/opportunity/internal/booking/application/queries"
	"github.com/felixgeelhaar/opportunity/internal/booking/application/subscribers"
	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	"github.com/felixgeelhaar/opportunity/internal/booking/infrastructure/calendar"
	sharedApplication "github.com/felixgeelhaar/opportunity/internal/shared/application"
	"github.com/felixgeelhaar/opportunity/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/opportunity/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/opportunity/pkg/config"
	"github.com/felixgeelhaar/opportunity/pkg/observability"
)

// shutdownDrainTimeout bounds the final outbox flush in Close.
const shutdownDrainTimeout = 5 * time.Second

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	Store *RepositoryFactory

	// Repositories
	SessionRepo domain.Repository
	OutboxRepo  outbox.Repository
	UnitOfWork  sharedApplication.UnitOfWork

	// Events
	Bus                *eventbus.InProcessBus
	EventPublisher     eventbus.Publisher
	OutboxProcessor    *outbox.Processor
	CalendarSubscriber *subscribers.CalendarSubscriber
	Brokered           bool

	// Commands
	StartSessionHandler *commands.StartSessionHandler
	Dispatcher          *commands.Dispatcher

	// Queries
	GetSessionHandler          *queries.GetSessionHandler
	ListSessionsHandler        *queries.ListSessionsHandler
	GetStageHandler            *queries.GetStageHandler
	GetCommitmentRecordHandler *queries.GetCommitmentRecordHandler
}

// NewContainer creates and wires all dependencies.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	store, err := OpenRepositoryFactory(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	c.Store = store

	if err := c.wireRepositories(); err != nil {
		_ = store.Close()
		return nil, err
	}

	if err := c.wireEvents(); err != nil {
		_ = store.Close()
		return nil, err
	}

	// Create command handlers
	c.StartSessionHandler = commands.NewStartSessionHandler(c.SessionRepo, c.OutboxRepo, c.UnitOfWork)
	c.Dispatcher = commands.NewDispatcher(c.SessionRepo, c.OutboxRepo, c.UnitOfWork, logger)

	// Create query handlers
	c.GetSessionHandler = queries.NewGetSessionHandler(c.SessionRepo)
	c.ListSessionsHandler = queries.NewListSessionsHandler(c.SessionRepo)
	c.GetStageHandler = queries.NewGetStageHandler(c.SessionRepo)
	c.GetCommitmentRecordHandler = queries.NewGetCommitmentRecordHandler(c.SessionRepo)

	logger.Info("container ready",
		"store", store.Driver(),
		"broker", cfg.BrokerEnabled(),
		"caldav", cfg.CalDAVEnabled(),
	)
	return c, nil
}

func (c *Container) wireRepositories() error {
	var err error
	if c.SessionRepo, err = c.Store.SessionRepository(); err != nil {
		return fmt.Errorf("failed to create session repository: %w", err)
	}
	if c.OutboxRepo, err = c.Store.OutboxRepository(); err != nil {
		return fmt.Errorf("failed to create outbox repository: %w", err)
	}
	if c.UnitOfWork, err = c.Store.UnitOfWork(); err != nil {
		return fmt.Errorf("failed to create unit of work: %w", err)
	}
	return nil
}

// wireEvents builds the publisher chain: the in-process bus always, plus
// RabbitMQ behind a circuit breaker when a broker URL is configured.
func (c *Container) wireEvents() error {
	cfg := c.Config

	c.Bus = eventbus.NewInProcessBus(c.Logger)
	if cfg.CalDAVEnabled() {
		publisher := calendar.NewCalDAVPublisher(calendar.CalDAVConfig{
			URL:          cfg.CalDAVURL,
			Username:     cfg.CalDAVUsername,
			Password:     cfg.CalDAVPassword,
			CalendarPath: cfg.CalDAVCalendarPath,
		}, c.Logger)
		c.CalendarSubscriber = subscribers.NewCalendarSubscriber(c.SessionRepo, publisher, c.Logger)
	}

	publishers := []eventbus.Publisher{c.Bus}
	brokered := false
	if cfg.BrokerEnabled() {
		rabbit, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, c.Logger)
		if err != nil {
			// Fall back to in-process delivery only in development
			if !cfg.IsDevelopment() {
				return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
			}
			c.Logger.Warn("RabbitMQ not available, publishing in-process only", "error", err)
		} else {
			publishers = append(publishers, eventbus.NewBreakerPublisher(rabbit, eventbus.BreakerConfig{
				Name:             "rabbitmq",
				FailureThreshold: cfg.BreakerFailureThreshold,
				OpenTimeout:      cfg.BreakerOpenTimeout,
			}, c.Logger))
			brokered = true
		}
	}

	// With a broker the worker consumes the calendar subscriber's events
	if c.CalendarSubscriber != nil && !brokered {
		c.Bus.RegisterConsumer(c.CalendarSubscriber)
	}
	c.Brokered = brokered
	c.EventPublisher = eventbus.NewFanoutPublisher(publishers...)

	processorCfg := outbox.DefaultProcessorConfig()
	if cfg.OutboxPollInterval > 0 {
		processorCfg.PollInterval = cfg.OutboxPollInterval
	}
	if cfg.OutboxBatchSize > 0 {
		processorCfg.BatchSize = cfg.OutboxBatchSize
	}
	if cfg.OutboxMaxRetries > 0 {
		processorCfg.MaxRetries = cfg.OutboxMaxRetries
	}
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, processorCfg, c.Logger)
	return nil
}

// StartOutbox starts the background outbox processor when enabled.
func (c *Container) StartOutbox(ctx context.Context) {
	if !c.Config.OutboxProcessorEnabled {
		c.Logger.Info("outbox processor disabled")
		return
	}
	c.OutboxProcessor.Start(ctx)
}

// Flush publishes everything currently deliverable in the outbox.
func (c *Container) Flush(ctx context.Context) error {
	return c.OutboxProcessor.Drain(ctx)
}

// HealthRegistry returns the checks for the store and the outbox.
func (c *Container) HealthRegistry() *observability.HealthRegistry {
	registry := observability.NewHealthRegistry()
	registry.Register("store", observability.PingChecker(c.Store.Driver().String(), true, c.Store.Ping))
	registry.Register("outbox", func(ctx context.Context) observability.HealthCheckResult {
		pending, err := c.OutboxRepo.CountPending(ctx)
		if err != nil {
			return observability.HealthCheckResult{
				Status:  observability.HealthStatusUnhealthy,
				Message: "outbox check failed: " + err.Error(),
			}
		}
		stats := c.OutboxProcessor.GetStats()
		status := observability.HealthStatusHealthy
		if stats.LastError != "" && stats.LastErrorAt != nil && time.Since(*stats.LastErrorAt) < time.Minute {
			status = observability.HealthStatusDegraded
		}
		return observability.HealthCheckResult{
			Status:  status,
			Message: fmt.Sprintf("%d pending", pending),
			Details: map[string]any{
				"running":   stats.IsRunning,
				"published": stats.PublishedCount,
				"failed":    stats.FailedCount,
				"dead":      stats.DeadCount,
			},
		}
	})
	return registry
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), shutdownDrainTimeout)
		if err := c.OutboxProcessor.Drain(ctx); err != nil {
			c.Logger.Warn("error draining outbox", "error", err)
		}
		cancel()
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			c.Logger.Warn("error closing store", "error", err)
		} else {
			c.Logger.Debug("store closed", "driver", c.Store.Driver())
		}
	}
}
