package commands

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	sharedApplication "github.com/felixgeelhaar/opportunity/internal/shared/application"
	"github.com/felixgeelhaar/opportunity/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

var (
	// ErrSessionNotFound is returned when a command targets a missing session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrUnknownAction is returned for an action name the state machine does not define.
	ErrUnknownAction = errors.New("unknown action")
	// ErrInvalidParty is returned when an availability command names a party other than
	// receiver or facilitator.
	ErrInvalidParty = errors.New("party must be receiver or facilitator")
)

// Clock returns the current time. Handlers use time.Now unless told otherwise.
type Clock func() time.Time

// sessionStore bundles the collaborators every mutating handler needs.
type sessionStore struct {
	repo       domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	now        Clock
}

func newSessionStore(repo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) sessionStore {
	return sessionStore{repo: repo, outboxRepo: outboxRepo, uow: uow, now: time.Now}
}

// mutate loads a session, applies fn and persists the session with its
// events inside one unit of work. A rejection from fn rolls back.
func (s sessionStore) mutate(ctx context.Context, id uuid.UUID, actor domain.Role, fn func(*domain.Session, time.Time) error) error {
	return sharedApplication.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		session, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if session == nil {
			return ErrSessionNotFound
		}

		if err := fn(session, s.now().UTC()); err != nil {
			return err
		}
		return s.persist(txCtx, session, actor)
	})
}

func (s sessionStore) persist(ctx context.Context, session *domain.Session, actor domain.Role) error {
	if err := s.repo.Save(ctx, session); err != nil {
		return err
	}

	events := session.PullEvents()
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx, string(actor)))

	msgs, err := outbox.MessagesFrom(events)
	if err != nil {
		return err
	}
	return s.outboxRepo.SaveBatch(ctx, msgs)
}
