package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	sharedApplication "github.com/felixgeelhaar/opportunity/internal/shared/application"
	"github.com/felixgeelhaar/opportunity/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// StartSessionCommand contains the data needed to start a booking session.
type StartSessionCommand struct {
	JobNumber     string
	ReferenceDate time.Time
	BusinessDays  int
}

// StartSessionResult contains the result of starting a session.
type StartSessionResult struct {
	SessionID uuid.UUID
}

// StartSessionHandler handles the StartSessionCommand.
type StartSessionHandler struct {
	store sessionStore
}

// NewStartSessionHandler creates a new StartSessionHandler.
func NewStartSessionHandler(repo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *StartSessionHandler {
	return &StartSessionHandler{store: newSessionStore(repo, outboxRepo, uow)}
}

// Handle executes the StartSessionCommand. A zero reference date means
// today and a non-positive day count means DefaultBusinessDays.
func (h *StartSessionHandler) Handle(ctx context.Context, cmd StartSessionCommand) (*StartSessionResult, error) {
	var result *StartSessionResult

	err := sharedApplication.WithUnitOfWork(ctx, h.store.uow, func(txCtx context.Context) error {
		now := h.store.now().UTC()

		reference := cmd.ReferenceDate
		if reference.IsZero() {
			reference = now
		}
		days := cmd.BusinessDays
		if days <= 0 {
			days = domain.DefaultBusinessDays
		}
		jobNumber := cmd.JobNumber
		if jobNumber == "" {
			jobNumber = domain.DefaultJobNumber
		}

		session, err := domain.NewSession(jobNumber, reference, days, now)
		if err != nil {
			return err
		}
		if err := h.store.persist(txCtx, session, domain.RoleProvider); err != nil {
			return err
		}

		result = &StartSessionResult{SessionID: session.ID()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
