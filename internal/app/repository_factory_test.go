package app

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	bookingPersistence "github.com/felixgeelhaar/opportunity/internal/booking/infrastructure/persistence"
	"github.com/felixgeelhaar/opportunity/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/opportunity/internal/shared/infrastructure/outbox"
	sharedPersistence "github.com/felixgeelhaar/opportunity/internal/shared/infrastructure/persistence"
	"github.com/felixgeelhaar/opportunity/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.DiscardHandler)

func TestRepositoryFactory_Memory(t *testing.T) {
	f, err := OpenRepositoryFactory(context.Background(), &config.Config{StoreDriver: "memory"}, testLogger)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, database.DriverMemory, f.Driver())

	repo, err := f.SessionRepository()
	require.NoError(t, err)
	assert.IsType(t, &bookingPersistence.MemorySessionRepository{}, repo)

	outboxRepo, err := f.OutboxRepository()
	require.NoError(t, err)
	assert.IsType(t, &outbox.MemoryRepository{}, outboxRepo)

	uow, err := f.UnitOfWork()
	require.NoError(t, err)
	assert.IsType(t, &sharedPersistence.MemoryUnitOfWork{}, uow)

	assert.NoError(t, f.Ping(context.Background()))
}

func TestRepositoryFactory_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "data.db")

	f, err := OpenRepositoryFactory(ctx, &config.Config{StoreDriver: "sqlite", SQLitePath: path}, testLogger)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, database.DriverSQLite, f.Driver())
	require.NoError(t, f.Ping(ctx))

	repo, err := f.SessionRepository()
	require.NoError(t, err)
	assert.IsType(t, &bookingPersistence.SQLiteSessionRepository{}, repo)

	outboxRepo, err := f.OutboxRepository()
	require.NoError(t, err)
	assert.IsType(t, &outbox.SQLiteRepository{}, outboxRepo)

	uow, err := f.UnitOfWork()
	require.NoError(t, err)
	assert.IsType(t, &sharedPersistence.SQLiteUnitOfWork{}, uow)

	monday := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	session, err := domain.NewSession("JOB-7", monday, 2, monday)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, session))

	found, err := repo.FindByID(ctx, session.ID())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "JOB-7", found.JobNumber())
}

func TestRepositoryFactory_UnsupportedDriver(t *testing.T) {
	_, err := OpenRepositoryFactory(context.Background(), &config.Config{StoreDriver: "mongodb"}, testLogger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestRepositoryFactory_PostgresNeedsURL(t *testing.T) {
	_, err := OpenRepositoryFactory(context.Background(), &config.Config{StoreDriver: "postgres"}, testLogger)
	assert.ErrorIs(t, err, database.ErrMissingURL)
}
