package application

import (
	"context"

	"github.com/felixgeelhaar/opportunity/internal/shared/domain"
	"github.com/felixgeelhaar/opportunity/pkg/observability"
	"github.com/google/uuid"
)

// NewEventMetadata builds command-scoped metadata. The correlation ID is
// taken from the context when it carries a valid UUID.
func NewEventMetadata(ctx context.Context, actor string) domain.EventMetadata {
	correlationID, err := uuid.Parse(observability.CorrelationIDFromContext(ctx))
	if err != nil {
		correlationID = uuid.New()
	}
	return domain.EventMetadata{
		CorrelationID: correlationID,
		CausationID:   uuid.New(),
		Actor:         actor,
	}
}

// ApplyEventMetadata stamps the same metadata on every event.
func ApplyEventMetadata(events []domain.DomainEvent, metadata domain.EventMetadata) {
	for _, event := range events {
		event.SetMetadata(metadata)
	}
}
