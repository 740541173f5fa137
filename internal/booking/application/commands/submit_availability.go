package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	sharedApplication "github.com/felixgeelhaar/opportunity/internal/shared/application"
	"github.com/felixgeelhaar/opportunity/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// SubmitAvailabilityCommand replaces one party's availability with SlotIDs
// and marks the party as submitted.
type SubmitAvailabilityCommand struct {
	SessionID uuid.UUID
	Actor     domain.Role
	Party     domain.Role
	SlotIDs   []string
}

// SubmitAvailabilityHandler handles the SubmitAvailabilityCommand.
type SubmitAvailabilityHandler struct {
	store sessionStore
}

// NewSubmitAvailabilityHandler creates a new SubmitAvailabilityHandler.
func NewSubmitAvailabilityHandler(repo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *SubmitAvailabilityHandler {
	return &SubmitAvailabilityHandler{store: newSessionStore(repo, outboxRepo, uow)}
}

// Handle executes the SubmitAvailabilityCommand.
func (h *SubmitAvailabilityHandler) Handle(ctx context.Context, cmd SubmitAvailabilityCommand) error {
	var apply func(*domain.Session, time.Time) error
	switch cmd.Party {
	case domain.RoleReceiver:
		apply = func(s *domain.Session, now time.Time) error {
			return s.SubmitReceiverAvailability(cmd.Actor, cmd.SlotIDs, now)
		}
	case domain.RoleFacilitator:
		apply = func(s *domain.Session, now time.Time) error {
			return s.SubmitFacilitatorAvailability(cmd.Actor, cmd.SlotIDs, now)
		}
	default:
		return ErrInvalidParty
	}

	return h.store.mutate(ctx, cmd.SessionID, cmd.Actor, apply)
}
