package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	"github.com/felixgeelhaar/opportunity/internal/shared/infrastructure/outbox"
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

type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Save(ctx context.Context, msg *outbox.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	args := m.Called(ctx, id, errMsg, nextRetryAt)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkDead(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *mockOutboxRepo) CountPending(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type txKey struct{}

var monday = time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return monday.Add(8 * time.Hour) }

func newSession(t *testing.T) *domain.Session {
	t.Helper()
	s, err := domain.NewSession("JOB-9", monday, domain.DefaultBusinessDays, monday)
	require.NoError(t, err)
	s.PullEvents()
	return s
}

// routingKeysOf extracts routing keys from a SaveBatch argument.
func routingKeysOf(msgs []*outbox.Message) []string {
	keys := make([]string, 0, len(msgs))
	for _, m := range msgs {
		keys = append(keys, m.RoutingKey)
	}
	return keys
}

func TestStartSessionHandler_Handle(t *testing.T) {
	t.Run("creates a session and queues its start event", func(t *testing.T) {
		repo := new(mockSessionRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewStartSessionHandler(repo, outboxRepo, uow)
		handler.store.now = fixedClock

		ctx := context.Background()
		txCtx := context.WithValue(ctx, txKey{}, "tx")

		var saved *domain.Session
		var queued []*outbox.Message
		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		repo.On("Save", txCtx, mock.AnythingOfType("*domain.Session")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.Session) }).
			Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.AnythingOfType("[]*outbox.Message")).
			Run(func(args mock.Arguments) { queued = args.Get(1).([]*outbox.Message) }).
			Return(nil)

		result, err := handler.Handle(ctx, StartSessionCommand{JobNumber: "JOB-9", ReferenceDate: monday})

		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, saved.ID(), result.SessionID)
		assert.Equal(t, 20, saved.Pool().Len())
		assert.Equal(t, []string{domain.RoutingKeySessionStarted}, routingKeysOf(queued))
		assert.Equal(t, "provider", queued[0].DecodeMetadata().Actor)

		repo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
		uow.AssertExpectations(t)
	})

	t.Run("applies defaults", func(t *testing.T) {
		repo := new(mockSessionRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewStartSessionHandler(repo, outboxRepo, uow)
		handler.store.now = fixedClock

		ctx := context.Background()
		var saved *domain.Session
		uow.On("Begin", ctx).Return(ctx, nil)
		uow.On("Commit", ctx).Return(nil)
		repo.On("Save", ctx, mock.AnythingOfType("*domain.Session")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.Session) }).
			Return(nil)
		outboxRepo.On("SaveBatch", ctx, mock.Anything).Return(nil)

		_, err := handler.Handle(ctx, StartSessionCommand{})

		require.NoError(t, err)
		assert.Equal(t, domain.DefaultJobNumber, saved.JobNumber())
		assert.Equal(t, 2*domain.DefaultBusinessDays, saved.Pool().Len())
		assert.Equal(t, "2024-05-06-AM", saved.Pool().Slots()[0].ID)
	})

	t.Run("rolls back when the outbox fails", func(t *testing.T) {
		repo := new(mockSessionRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewStartSessionHandler(repo, outboxRepo, uow)

		ctx := context.Background()
		boom := errors.New("disk full")
		uow.On("Begin", ctx).Return(ctx, nil)
		uow.On("Rollback", ctx).Return(nil)
		repo.On("Save", ctx, mock.Anything).Return(nil)
		outboxRepo.On("SaveBatch", ctx, mock.Anything).Return(boom)

		_, err := handler.Handle(ctx, StartSessionCommand{ReferenceDate: monday})

		assert.ErrorIs(t, err, boom)
		uow.AssertNotCalled(t, "Commit", mock.Anything)
		uow.AssertExpectations(t)
	})
}

func TestSetAvailabilityHandler_Handle(t *testing.T) {
	t.Run("sets receiver availability", func(t *testing.T) {
		repo := new(mockSessionRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewSetAvailabilityHandler(repo, outboxRepo, uow)

		ctx := context.Background()
		s := newSession(t)
		var queued []*outbox.Message
		uow.On("Begin", ctx).Return(ctx, nil)
		uow.On("Commit", ctx).Return(nil)
		repo.On("FindByID", ctx, s.ID()).Return(s, nil)
		repo.On("Save", ctx, s).Return(nil)
		outboxRepo.On("SaveBatch", ctx, mock.Anything).
			Run(func(args mock.Arguments) { queued = args.Get(1).([]*outbox.Message) }).
			Return(nil)

		err := handler.Handle(ctx, SetAvailabilityCommand{
			SessionID: s.ID(),
			Actor:     domain.RoleReceiver,
			Party:     domain.RoleReceiver,
			SlotID:    "2024-05-06-AM",
			Available: true,
		})

		require.NoError(t, err)
		slot, _ := s.Pool().Slot("2024-05-06-AM")
		assert.True(t, slot.ReceiverAvailable)
		assert.Equal(t, []string{domain.RoutingKeyAvailabilityChanged}, routingKeysOf(queued))
	})

	t.Run("rejection rolls back and is returned", func(t *testing.T) {
		repo := new(mockSessionRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewSetAvailabilityHandler(repo, outboxRepo, uow)

		ctx := context.Background()
		s := newSession(t)
		uow.On("Begin", ctx).Return(ctx, nil)
		uow.On("Rollback", ctx).Return(nil)
		repo.On("FindByID", ctx, s.ID()).Return(s, nil)

		err := handler.Handle(ctx, SetAvailabilityCommand{
			SessionID: s.ID(),
			Actor:     domain.RoleFacilitator,
			Party:     domain.RoleReceiver,
			SlotID:    "2024-05-06-AM",
			Available: true,
		})

		assert.ErrorIs(t, err, domain.ErrForbidden)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		outboxRepo.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown party", func(t *testing.T) {
		handler := NewSetAvailabilityHandler(new(mockSessionRepo), new(mockOutboxRepo), new(mockUnitOfWork))
		err := handler.Handle(context.Background(), SetAvailabilityCommand{Party: domain.RoleProvider})
		assert.ErrorIs(t, err, ErrInvalidParty)
	})

	t.Run("session not found", func(t *testing.T) {
		repo := new(mockSessionRepo)
		uow := new(mockUnitOfWork)
		handler := NewSetAvailabilityHandler(repo, new(mockOutboxRepo), uow)

		ctx := context.Background()
		id := uuid.New()
		uow.On("Begin", ctx).Return(ctx, nil)
		uow.On("Rollback", ctx).Return(nil)
		repo.On("FindByID", ctx, id).Return(nil, nil)

		err := handler.Handle(ctx, SetAvailabilityCommand{SessionID: id, Actor: domain.RoleReceiver, Party: domain.RoleReceiver})
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestRespondConfirmationHandler_Handle(t *testing.T) {
	repo := new(mockSessionRepo)
	outboxRepo := new(mockOutboxRepo)
	uow := new(mockUnitOfWork)
	handler := NewRespondConfirmationHandler(repo, outboxRepo, uow)
	handler.store.now = fixedClock

	ctx := context.Background()
	s := newSession(t)
	require.NoError(t, s.SubmitReceiverAvailability(domain.RoleReceiver, []string{"2024-05-06-AM"}, monday))
	require.NoError(t, s.SubmitFacilitatorAvailability(domain.RoleFacilitator, []string{"2024-05-06-AM"}, monday))
	require.NoError(t, s.SelectOpportunity(domain.RoleProvider, "2024-05-06-AM", monday))
	require.NoError(t, s.RespondConfirmation(domain.RoleReceiver, true, monday))
	s.PullEvents()

	var queued []*outbox.Message
	uow.On("Begin", ctx).Return(ctx, nil)
	uow.On("Commit", ctx).Return(nil)
	repo.On("FindByID", ctx, s.ID()).Return(s, nil)
	repo.On("Save", ctx, s).Return(nil)
	outboxRepo.On("SaveBatch", ctx, mock.Anything).
		Run(func(args mock.Arguments) { queued = args.Get(1).([]*outbox.Message) }).
		Return(nil)

	err := handler.Handle(ctx, RespondConfirmationCommand{SessionID: s.ID(), Actor: domain.RoleFacilitator, Confirmed: true})

	require.NoError(t, err)
	assert.Equal(t, []string{
		domain.RoutingKeyConfirmationRecorded,
		domain.RoutingKeyAppointmentConfirmed,
	}, routingKeysOf(queued))
	assert.Equal(t, "facilitator", queued[1].DecodeMetadata().Actor)
	assert.Equal(t, queued[0].DecodeMetadata().CorrelationID, queued[1].DecodeMetadata().CorrelationID)

	active, _ := domain.ActiveOpportunity(s.Pool())
	require.NotNil(t, active.FacilitatorRespondedAt)
	assert.Equal(t, fixedClock(), *active.FacilitatorRespondedAt)
}
