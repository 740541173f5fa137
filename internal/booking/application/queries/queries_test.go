package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSessionRepo struct {
	mock.Mock
}

func (m *mockSessionRepo) Save(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *mockSessionRepo) List(ctx context.Context) ([]*domain.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Session), args.Error(1)
}

var monday = time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

func newSession(t *testing.T) *domain.Session {
	t.Helper()
	s, err := domain.NewSession("JOB-7", monday, domain.DefaultBusinessDays, monday)
	require.NoError(t, err)
	s.PullEvents()
	return s
}

// selectedSession returns a session with 2024-05-06-AM mutual and selected.
func selectedSession(t *testing.T) *domain.Session {
	t.Helper()
	s := newSession(t)
	now := monday.Add(8 * time.Hour)
	require.NoError(t, s.SubmitReceiverAvailability(domain.RoleReceiver, []string{"2024-05-06-AM", "2024-05-07-PM"}, now))
	require.NoError(t, s.SubmitFacilitatorAvailability(domain.RoleFacilitator, []string{"2024-05-06-AM"}, now))
	require.NoError(t, s.SelectOpportunity(domain.RoleProvider, "2024-05-06-AM", now))
	s.PullEvents()
	return s
}

func TestGetSessionHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the snapshot", func(t *testing.T) {
		repo := new(mockSessionRepo)
		s := newSession(t)
		repo.On("FindByID", ctx, s.ID()).Return(s, nil)

		dto, err := NewGetSessionHandler(repo).Handle(ctx, GetSessionQuery{SessionID: s.ID()})
		require.NoError(t, err)
		assert.Equal(t, s.ID(), dto.ID)
		assert.Equal(t, "JOB-7", dto.JobNumber)
		assert.Equal(t, string(domain.StageReceiverAvailability), dto.Stage)
		require.Len(t, dto.Slots, 20)
		assert.Equal(t, "2024-05-06-AM", dto.Slots[0].ID)
		assert.Equal(t, "MORNING", dto.Slots[0].Period)
		assert.Equal(t, "pending", dto.Slots[0].ReceiverConfirmation)
		assert.Empty(t, dto.ActiveSlotID)
		repo.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(mockSessionRepo)
		id := uuid.New()
		repo.On("FindByID", ctx, id).Return(nil, nil)

		_, err := NewGetSessionHandler(repo).Handle(ctx, GetSessionQuery{SessionID: id})
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := new(mockSessionRepo)
		id := uuid.New()
		boom := errors.New("boom")
		repo.On("FindByID", ctx, id).Return(nil, boom)

		_, err := NewGetSessionHandler(repo).Handle(ctx, GetSessionQuery{SessionID: id})
		assert.ErrorIs(t, err, boom)
	})
}

func TestListSessionsHandler(t *testing.T) {
	ctx := context.Background()
	older := newSession(t)
	newer := selectedSession(t)

	repo := new(mockSessionRepo)
	repo.On("List", ctx).Return([]*domain.Session{older, newer}, nil)

	rows, err := NewListSessionsHandler(repo).Handle(ctx, ListSessionsQuery{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newer.ID(), rows[0].ID)
	assert.Equal(t, "2024-05-06-AM", rows[0].ActiveSlotID)
	assert.Equal(t, string(domain.StageConfirmation), rows[0].Stage)
	assert.Equal(t, older.ID(), rows[1].ID)
}

func TestGetStageHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("receiver stage", func(t *testing.T) {
		repo := new(mockSessionRepo)
		s := newSession(t)
		repo.On("FindByID", ctx, s.ID()).Return(s, nil)

		dto, err := NewGetStageHandler(repo).Handle(ctx, GetStageQuery{SessionID: s.ID(), Role: domain.RoleReceiver})
		require.NoError(t, err)
		assert.Equal(t, string(domain.StageReceiverAvailability), dto.Stage)
		assert.Equal(t, string(domain.ActionSubmitReceiverAvailability), dto.NextAction)
		assert.Empty(t, dto.MutualSlotIDs)
		assert.Nil(t, dto.ActiveOpportunity)
	})

	t.Run("confirmation stage", func(t *testing.T) {
		s := selectedSession(t)
		dto := StageOf(s, domain.RoleFacilitator)
		assert.Equal(t, string(domain.StageConfirmation), dto.Stage)
		assert.Equal(t, string(domain.ActionRespondConfirmation), dto.NextAction)
		assert.Equal(t, []string{"2024-05-06-AM"}, dto.MutualSlotIDs)
		require.NotNil(t, dto.ActiveOpportunity)
		assert.Equal(t, "2024-05-06-AM", dto.ActiveOpportunity.ID)
		assert.False(t, dto.FullyConfirmed)
	})
}

func TestGetCommitmentRecordHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("no opportunity", func(t *testing.T) {
		repo := new(mockSessionRepo)
		s := newSession(t)
		repo.On("FindByID", ctx, s.ID()).Return(s, nil)

		_, err := NewGetCommitmentRecordHandler(repo).Handle(ctx, GetCommitmentRecordQuery{SessionID: s.ID()})
		assert.ErrorIs(t, err, ErrNoOpportunity)
	})

	t.Run("pending", func(t *testing.T) {
		record, err := RecordOf(selectedSession(t))
		require.NoError(t, err)
		assert.Equal(t, RecordPending, record.Status)
		assert.Equal(t, "SP", record.Provider.Abbreviation)
		assert.Equal(t, RecordConfirmed, record.Provider.Response)
		assert.Equal(t, "pending", record.Receiver.Response)
		assert.Nil(t, record.Receiver.RespondedAt)
		assert.Equal(t, time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC), record.StartsAt)
		assert.Equal(t, time.Date(2024, 5, 6, 14, 0, 0, 0, time.UTC), record.EndsAt)
	})

	t.Run("fully confirmed", func(t *testing.T) {
		s := selectedSession(t)
		at := monday.Add(10 * time.Hour)
		require.NoError(t, s.RespondConfirmation(domain.RoleReceiver, true, at))
		require.NoError(t, s.RespondConfirmation(domain.RoleFacilitator, true, at))

		record, err := RecordOf(s)
		require.NoError(t, err)
		assert.Equal(t, RecordConfirmed, record.Status)
		assert.True(t, record.FullyConfirmed)
		require.NotNil(t, record.Facilitator.RespondedAt)
		assert.Equal(t, at, *record.Facilitator.RespondedAt)
	})

	t.Run("declined", func(t *testing.T) {
		s := selectedSession(t)
		require.NoError(t, s.RespondConfirmation(domain.RoleReceiver, false, monday))

		record, err := RecordOf(s)
		require.NoError(t, err)
		assert.Equal(t, RecordDeclined, record.Status)
		assert.Equal(t, "declined", record.Receiver.Response)
	})
}
