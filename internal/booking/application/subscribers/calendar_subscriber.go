package subscribers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/opportunity/internal/booking/application/queries"
	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	"github.com/felixgeelhaar/opportunity/internal/shared/infrastructure/eventbus"
)

// CalendarPublisher places a confirmed appointment on an external calendar.
type CalendarPublisher interface {
	PublishAppointment(ctx context.Context, record *queries.CommitmentRecordDTO) error
}

// CalendarSubscriber listens for confirmed appointments and hands their
// commitment record to a CalendarPublisher.
type CalendarSubscriber struct {
	records   *queries.GetCommitmentRecordHandler
	publisher CalendarPublisher
	logger    *slog.Logger
}

// NewCalendarSubscriber creates a new calendar subscriber. A nil publisher
// turns Handle into a no-op.
func NewCalendarSubscriber(repo domain.Repository, publisher CalendarPublisher, logger *slog.Logger) *CalendarSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &CalendarSubscriber{
		records:   queries.NewGetCommitmentRecordHandler(repo),
		publisher: publisher,
		logger:    logger,
	}
}

// EventTypes returns the event types this subscriber handles.
func (s *CalendarSubscriber) EventTypes() []string {
	return []string{domain.RoutingKeyAppointmentConfirmed}
}

// Handle publishes the appointment. Publisher failures are returned so the
// outbox retries the event; stale or malformed events are dropped.
func (s *CalendarSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	if s.publisher == nil {
		s.logger.Debug("calendar publisher not configured, skipping event",
			"routing_key", event.RoutingKey,
		)
		return nil
	}

	var payload domain.AppointmentConfirmed
	if err := event.Decode(&payload); err != nil {
		s.logger.Error("failed to decode appointment payload", "error", err)
		return nil
	}

	record, err := s.records.Handle(ctx, queries.GetCommitmentRecordQuery{SessionID: event.AggregateID})
	switch {
	case errors.Is(err, queries.ErrSessionNotFound), errors.Is(err, queries.ErrNoOpportunity):
		s.logger.Warn("appointment no longer available", "session_id", event.AggregateID, "error", err)
		return nil
	case err != nil:
		return fmt.Errorf("failed to load commitment record: %w", err)
	}

	if !record.FullyConfirmed || record.SlotID != payload.SlotID {
		s.logger.Info("appointment superseded, skipping calendar publish",
			"session_id", event.AggregateID,
			"slot_id", payload.SlotID,
		)
		return nil
	}

	if err := s.publisher.PublishAppointment(ctx, record); err != nil {
		return fmt.Errorf("failed to publish appointment: %w", err)
	}

	s.logger.Info("appointment published to calendar",
		"session_id", record.SessionID,
		"slot_id", record.SlotID,
	)
	return nil
}
