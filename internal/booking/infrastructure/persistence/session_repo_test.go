package persistence

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	"github.com/felixgeelhaar/opportunity/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/opportunity/internal/shared/infrastructure/migrations"
	sharedPersistence "github.com/felixgeelhaar/opportunity/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

var monday = time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

func setupSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.RunSQLite(context.Background(), db))
	return db
}

func repositories(t *testing.T) map[string]domain.Repository {
	t.Helper()
	repos := map[string]domain.Repository{
		"memory": NewMemorySessionRepository(),
		"sqlite": NewSQLiteSessionRepository(setupSQLite(t)),
	}

	if url := os.Getenv("TEST_DATABASE_URL"); url != "" {
		pool, err := database.OpenPostgres(context.Background(), url, 4)
		require.NoError(t, err)
		t.Cleanup(pool.Close)
		require.NoError(t, migrations.RunPostgres(context.Background(), pool))
		repos["postgres"] = NewPostgresSessionRepository(pool)
	}
	if url := os.Getenv("TEST_REDIS_URL"); url != "" {
		client, err := database.OpenRedis(context.Background(), url)
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })
		repos["redis"] = NewRedisSessionRepository(client, time.Hour)
	}
	return repos
}

// progressedSession walks a session to a confirmed receiver answer so every
// column carries a non-default value.
func progressedSession(t *testing.T) *domain.Session {
	t.Helper()
	s, err := domain.NewSession("JOB-42", monday, 3, monday)
	require.NoError(t, err)

	at := monday.Add(9*time.Hour + 123456*time.Microsecond)
	require.NoError(t, s.SubmitReceiverAvailability(domain.RoleReceiver, []string{"2024-05-06-AM", "2024-05-07-PM"}, at))
	require.NoError(t, s.SubmitFacilitatorAvailability(domain.RoleFacilitator, []string{"2024-05-07-PM"}, at))
	require.NoError(t, s.SelectOpportunity(domain.RoleProvider, "2024-05-07-PM", at))
	require.NoError(t, s.RespondConfirmation(domain.RoleReceiver, true, at))
	s.PullEvents()
	return s
}

func TestSessionRepository_RoundTrip(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			original := progressedSession(t)

			require.NoError(t, repo.Save(ctx, original))

			loaded, err := repo.FindByID(ctx, original.ID())
			require.NoError(t, err)
			require.NotNil(t, loaded)

			assert.Equal(t, original.ID(), loaded.ID())
			assert.Equal(t, "JOB-42", loaded.JobNumber())
			assert.Equal(t, original.Version(), loaded.Version())
			assert.True(t, original.CreatedAt().Equal(loaded.CreatedAt()))
			assert.True(t, original.UpdatedAt().Equal(loaded.UpdatedAt()))
			assert.ElementsMatch(t, original.Pool().SubmittedRoles(), loaded.Pool().SubmittedRoles())

			want := original.Pool().Slots()
			got := loaded.Pool().Slots()
			require.Len(t, got, len(want))
			for i := range want {
				assert.Equal(t, want[i].ID, got[i].ID)
				assert.True(t, want[i].Date.Equal(got[i].Date), want[i].ID)
				assert.Equal(t, want[i].Period, got[i].Period)
				assert.Equal(t, want[i].ReceiverAvailable, got[i].ReceiverAvailable)
				assert.Equal(t, want[i].FacilitatorAvailable, got[i].FacilitatorAvailable)
				assert.Equal(t, want[i].Selected, got[i].Selected)
				assert.Equal(t, want[i].ReceiverConfirmation, got[i].ReceiverConfirmation)
				assert.Equal(t, want[i].FacilitatorConfirmation, got[i].FacilitatorConfirmation)
				assert.Equal(t, want[i].ReceiverRespondedAt == nil, got[i].ReceiverRespondedAt == nil)
				assert.Nil(t, got[i].FacilitatorRespondedAt)
			}

			active, ok := domain.ActiveOpportunity(loaded.Pool())
			require.True(t, ok)
			assert.Equal(t, "2024-05-07-PM", active.ID)
			require.NotNil(t, active.ReceiverRespondedAt)
		})
	}
}

func TestSessionRepository_SaveOverwrites(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := progressedSession(t)
			require.NoError(t, repo.Save(ctx, s))

			require.NoError(t, s.RespondConfirmation(domain.RoleFacilitator, false, monday.Add(10*time.Hour)))
			require.NoError(t, repo.Save(ctx, s))

			loaded, err := repo.FindByID(ctx, s.ID())
			require.NoError(t, err)
			active, ok := domain.ActiveOpportunity(loaded.Pool())
			require.True(t, ok)
			assert.Equal(t, domain.ConfirmationDeclined, active.FacilitatorConfirmation)
			assert.Equal(t, s.Version(), loaded.Version())
		})
	}
}

func TestSessionRepository_FindMissing(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			s, err := repo.FindByID(context.Background(), uuid.New())
			require.NoError(t, err)
			assert.Nil(t, s)
		})
	}
}

func TestSessionRepository_List(t *testing.T) {
	repos := map[string]domain.Repository{
		"memory": NewMemorySessionRepository(),
		"sqlite": NewSQLiteSessionRepository(setupSQLite(t)),
	}
	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			older, err := domain.NewSession("JOB-1", monday, 1, monday)
			require.NoError(t, err)
			newer := progressedSession(t)

			require.NoError(t, repo.Save(ctx, older))
			require.NoError(t, repo.Save(ctx, newer))

			sessions, err := repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, sessions, 2)
			assert.Equal(t, newer.ID(), sessions[0].ID())
			assert.Equal(t, older.ID(), sessions[1].ID())
		})
	}
}

func TestSQLiteSessionRepository_RollsBackWithUnitOfWork(t *testing.T) {
	db := setupSQLite(t)
	repo := NewSQLiteSessionRepository(db)
	uow := sharedPersistence.NewSQLiteUnitOfWork(db)
	ctx := context.Background()

	s := progressedSession(t)
	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Save(txCtx, s))
	require.NoError(t, uow.Rollback(txCtx))

	loaded, err := repo.FindByID(ctx, s.ID())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSQLiteSessionRepository_RejectsCorruptPool(t *testing.T) {
	db := setupSQLite(t)
	repo := NewSQLiteSessionRepository(db)
	ctx := context.Background()

	s := progressedSession(t)
	require.NoError(t, repo.Save(ctx, s))

	_, err := db.ExecContext(ctx,
		`UPDATE booking_slots SET receiver_available = 0 WHERE session_id = ? AND slot_id = ?`,
		s.ID().String(), "2024-05-07-PM")
	require.NoError(t, err)

	_, err = repo.FindByID(ctx, s.ID())
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)
}
