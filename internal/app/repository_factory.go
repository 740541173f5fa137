package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	bookingPersistence "github.com/felixgeelhaar/opportunity/internal/booking/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/opportunity/internal/shared/application"
	"github.com/felixgeelhaar/opportunity/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/opportunity/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/opportunity/internal/shared/infrastructure/outbox"
	sharedPersistence "github.com/felixgeelhaar/opportunity/internal/shared/infrastructure/persistence"
	"github.com/felixgeelhaar/opportunity/pkg/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// RepositoryFactory opens the configured store and creates the
// repositories that live on it.
type RepositoryFactory struct {
	driver database.Driver

	sqlite   *sql.DB
	postgres *pgxpool.Pool
	redis    *redis.Client

	redisTTL time.Duration
}

// OpenRepositoryFactory connects to the store selected by cfg.StoreDriver
// and applies migrations where the store has a schema.
func OpenRepositoryFactory(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*RepositoryFactory, error) {
	driver, err := database.ParseDriver(cfg.StoreDriver)
	if err != nil {
		return nil, err
	}
	f := &RepositoryFactory{driver: driver, redisTTL: cfg.RedisSessionTTL}

	switch driver {
	case database.DriverMemory:
		logger.Info("using in-memory session store")

	case database.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := migrations.RunSQLite(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run SQLite migrations: %w", err)
		}
		f.sqlite = db
		logger.Info("connected to SQLite", "path", database.ExpandHome(cfg.SQLitePath))

	case database.DriverPostgres:
		pool, err := database.OpenPostgres(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConn)
		if err != nil {
			return nil, err
		}
		if err := migrations.RunPostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run PostgreSQL migrations: %w", err)
		}
		f.postgres = pool
		logger.Info("connected to PostgreSQL")

	case database.DriverRedis:
		client, err := database.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		f.redis = client
		logger.Info("connected to Redis", "session_ttl", cfg.RedisSessionTTL)
	}

	return f, nil
}

// Driver returns the selected store driver.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.driver
}

// SessionRepository creates the session repository for the driver.
func (f *RepositoryFactory) SessionRepository() (domain.Repository, error) {
	switch f.driver {
	case database.DriverMemory:
		return bookingPersistence.NewMemorySessionRepository(), nil
	case database.DriverSQLite:
		return bookingPersistence.NewSQLiteSessionRepository(f.sqlite), nil
	case database.DriverPostgres:
		return bookingPersistence.NewPostgresSessionRepository(f.postgres), nil
	case database.DriverRedis:
		return bookingPersistence.NewRedisSessionRepository(f.redis, f.redisTTL), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// OutboxRepository creates the outbox for the driver. Redis has no
// transactional outbox table, so it keeps the outbox in memory.
func (f *RepositoryFactory) OutboxRepository() (outbox.Repository, error) {
	switch f.driver {
	case database.DriverMemory, database.DriverRedis:
		return outbox.NewMemoryRepository(), nil
	case database.DriverSQLite:
		return outbox.NewSQLiteRepository(f.sqlite), nil
	case database.DriverPostgres:
		return outbox.NewPostgresRepository(f.postgres), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// UnitOfWork creates the unit of work for the driver.
func (f *RepositoryFactory) UnitOfWork() (sharedApplication.UnitOfWork, error) {
	switch f.driver {
	case database.DriverMemory, database.DriverRedis:
		return sharedPersistence.NewMemoryUnitOfWork(), nil
	case database.DriverSQLite:
		return sharedPersistence.NewSQLiteUnitOfWork(f.sqlite), nil
	case database.DriverPostgres:
		return sharedPersistence.NewPostgresUnitOfWork(f.postgres), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// Ping checks the store connection. The memory store is always reachable.
func (f *RepositoryFactory) Ping(ctx context.Context) error {
	switch {
	case f.sqlite != nil:
		return f.sqlite.PingContext(ctx)
	case f.postgres != nil:
		return f.postgres.Ping(ctx)
	case f.redis != nil:
		return f.redis.Ping(ctx).Err()
	default:
		return nil
	}
}

// Close releases the store connection.
func (f *RepositoryFactory) Close() error {
	switch {
	case f.sqlite != nil:
		return f.sqlite.Close()
	case f.postgres != nil:
		f.postgres.Close()
		return nil
	case f.redis != nil:
		return f.redis.Close()
	default:
		return nil
	}
}
