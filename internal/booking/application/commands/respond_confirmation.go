package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	sharedApplication "github.com/felixgeelhaar/opportunity/internal/shared/application"
	"github.com/felixgeelhaar/opportunity/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// RespondConfirmationCommand records a party's answer on the active opportunity.
type RespondConfirmationCommand struct {
	SessionID uuid.UUID
	Actor     domain.Role
	Confirmed bool
}

// RespondConfirmationHandler handles the RespondConfirmationCommand.
type RespondConfirmationHandler struct {
	store sessionStore
}

// NewRespondConfirmationHandler creates a new RespondConfirmationHandler.
func NewRespondConfirmationHandler(repo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *RespondConfirmationHandler {
	return &RespondConfirmationHandler{store: newSessionStore(repo, outboxRepo, uow)}
}

// Handle executes the RespondConfirmationCommand.
func (h *RespondConfirmationHandler) Handle(ctx context.Context, cmd RespondConfirmationCommand) error {
	return h.store.mutate(ctx, cmd.SessionID, cmd.Actor, func(s *domain.Session, now time.Time) error {
		return s.RespondConfirmation(cmd.Actor, cmd.Confirmed, now)
	})
}
