package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/opportunity/internal/booking/application/queries"
	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	sharedApplication "github.com/felixgeelhaar/opportunity/internal/shared/application"
	"github.com/felixgeelhaar/opportunity/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// Request is a role-annotated action against one session.
type Request struct {
	SessionID uuid.UUID
	Role      domain.Role
	Action    domain.Action
	SlotID    string
	SlotIDs   []string
	Available bool
	Confirmed bool
}

// Outcome reports whether a request was accepted together with the
// session snapshot after it was applied or rejected.
type Outcome struct {
	Accepted bool               `json:"accepted"`
	Reason   domain.Reason      `json:"reason,omitempty"`
	Message  string             `json:"message,omitempty"`
	Session  queries.SessionDTO `json:"session"`
}

// Dispatcher is the single entry point for state transitions. Requests are
// applied one at a time.
type Dispatcher struct {
	mu     sync.Mutex
	repo   domain.Repository
	logger *slog.Logger

	setAvailability    *SetAvailabilityHandler
	submitAvailability *SubmitAvailabilityHandler
	selectOpportunity  *SelectOpportunityHandler
	respond            *RespondConfirmationHandler
}

// NewDispatcher creates a Dispatcher over the given stores.
func NewDispatcher(repo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		repo:               repo,
		logger:             logger,
		setAvailability:    NewSetAvailabilityHandler(repo, outboxRepo, uow),
		submitAvailability: NewSubmitAvailabilityHandler(repo, outboxRepo, uow),
		selectOpportunity:  NewSelectOpportunityHandler(repo, outboxRepo, uow),
		respond:            NewRespondConfirmationHandler(repo, outboxRepo, uow),
	}
}

// SetClock replaces the time source of every handler.
func (d *Dispatcher) SetClock(now Clock) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setAvailability.store.now = now
	d.submitAvailability.store.now = now
	d.selectOpportunity.store.now = now
	d.respond.store.now = now
}

// Dispatch applies req. A policy rejection is reported in the Outcome with
// a nil error; the error is reserved for unknown actions, missing sessions
// and infrastructure failures.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Outcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	logger := d.logger.With(
		slog.String("session_id", req.SessionID.String()),
		slog.String("action", string(req.Action)),
		slog.String("role", string(req.Role)),
	)

	err := d.apply(ctx, req)

	var rejection *domain.RejectionError
	switch {
	case errors.As(err, &rejection):
		logger.InfoContext(ctx, "transition rejected", slog.String("reason", string(rejection.Reason)))
		outcome := Outcome{Reason: rejection.Reason, Message: rejection.Error()}
		return d.withSnapshot(ctx, req.SessionID, outcome)
	case err != nil:
		logger.ErrorContext(ctx, "transition failed", slog.Any("error", err))
		return Outcome{}, err
	}

	logger.InfoContext(ctx, "transition accepted")
	return d.withSnapshot(ctx, req.SessionID, Outcome{Accepted: true})
}

func (d *Dispatcher) apply(ctx context.Context, req Request) error {
	switch req.Action {
	case domain.ActionSetReceiverAvailability, domain.ActionSetFacilitatorAvailability:
		return d.setAvailability.Handle(ctx, SetAvailabilityCommand{
			SessionID: req.SessionID,
			Actor:     req.Role,
			Party:     partyOf(req.Action),
			SlotID:    req.SlotID,
			Available: req.Available,
		})
	case domain.ActionSubmitReceiverAvailability, domain.ActionSubmitFacilitatorAvailability:
		return d.submitAvailability.Handle(ctx, SubmitAvailabilityCommand{
			SessionID: req.SessionID,
			Actor:     req.Role,
			Party:     partyOf(req.Action),
			SlotIDs:   req.SlotIDs,
		})
	case domain.ActionSelectOpportunity:
		return d.selectOpportunity.Handle(ctx, SelectOpportunityCommand{
			SessionID: req.SessionID,
			Actor:     req.Role,
			SlotID:    req.SlotID,
		})
	case domain.ActionRespondConfirmation:
		return d.respond.Handle(ctx, RespondConfirmationCommand{
			SessionID: req.SessionID,
			Actor:     req.Role,
			Confirmed: req.Confirmed,
		})
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}
}

func (d *Dispatcher) withSnapshot(ctx context.Context, id uuid.UUID, outcome Outcome) (Outcome, error) {
	session, err := d.repo.FindByID(ctx, id)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to load session snapshot: %w", err)
	}
	if session == nil {
		return Outcome{}, ErrSessionNotFound
	}
	outcome.Session = queries.ToSessionDTO(session)
	return outcome, nil
}

func partyOf(action domain.Action) domain.Role {
	switch action {
	case domain.ActionSetReceiverAvailability, domain.ActionSubmitReceiverAvailability:
		return domain.RoleReceiver
	default:
		return domain.RoleFacilitator
	}
}
