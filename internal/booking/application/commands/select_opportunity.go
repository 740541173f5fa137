package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	sharedApplication "github.com/felixgeelhaar/opportunity/internal/shared/application"
	"github.com/felixgeelhaar/opportunity/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// SelectOpportunityCommand makes a mutual slot the active opportunity.
type SelectOpportunityCommand struct {
	SessionID uuid.UUID
	Actor     domain.Role
	SlotID    string
}

// SelectOpportunityHandler handles the SelectOpportunityCommand.
type SelectOpportunityHandler struct {
	store sessionStore
}

// NewSelectOpportunityHandler creates a new SelectOpportunityHandler.
func NewSelectOpportunityHandler(repo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *SelectOpportunityHandler {
	return &SelectOpportunityHandler{store: newSessionStore(repo, outboxRepo, uow)}
}

// Handle executes the SelectOpportunityCommand.
func (h *SelectOpportunityHandler) Handle(ctx context.Context, cmd SelectOpportunityCommand) error {
	return h.store.mutate(ctx, cmd.SessionID, cmd.Actor, func(s *domain.Session, now time.Time) error {
		return s.SelectOpportunity(cmd.Actor, cmd.SlotID, now)
	})
}
