package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	sharedApplication "github.com/felixgeelhaar/opportunity/internal/shared/application"
	"github.com/felixgeelhaar/opportunity/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// SetAvailabilityCommand toggles one party's availability on one slot.
type SetAvailabilityCommand struct {
	SessionID uuid.UUID
	Actor     domain.Role
	Party     domain.Role
	SlotID    string
	Available bool
}

// SetAvailabilityHandler handles the SetAvailabilityCommand.
type SetAvailabilityHandler struct {
	store sessionStore
}

// NewSetAvailabilityHandler creates a new SetAvailabilityHandler.
func NewSetAvailabilityHandler(repo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *SetAvailabilityHandler {
	return &SetAvailabilityHandler{store: newSessionStore(repo, outboxRepo, uow)}
}

// Handle executes the SetAvailabilityCommand.
func (h *SetAvailabilityHandler) Handle(ctx context.Context, cmd SetAvailabilityCommand) error {
	var apply func(*domain.Session, time.Time) error
	switch cmd.Party {
	case domain.RoleReceiver:
		apply = func(s *domain.Session, now time.Time) error {
			return s.SetReceiverAvailability(cmd.Actor, cmd.SlotID, cmd.Available, now)
		}
	case domain.RoleFacilitator:
		apply = func(s *domain.Session, now time.Time) error {
			return s.SetFacilitatorAvailability(cmd.Actor, cmd.SlotID, cmd.Available, now)
		}
	default:
		return ErrInvalidParty
	}

	return h.store.mutate(ctx, cmd.SessionID, cmd.Actor, apply)
}
