package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/opportunity/internal/shared/application"
	"github.com/felixgeelhaar/opportunity/internal/shared/domain"
	"github.com/felixgeelhaar/opportunity/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewEventMetadata(t *testing.T) {
	t.Run("reuses correlation id from context", func(t *testing.T) {
		correlationID := uuid.New()
		ctx := observability.WithCorrelationID(context.Background(), correlationID.String())

		meta := application.NewEventMetadata(ctx, "receiver")

		assert.Equal(t, correlationID, meta.CorrelationID)
		assert.NotEqual(t, uuid.Nil, meta.CausationID)
		assert.Equal(t, "receiver", meta.Actor)
	})

	t.Run("generates correlation id when absent", func(t *testing.T) {
		meta := application.NewEventMetadata(context.Background(), "provider")

		assert.NotEqual(t, uuid.Nil, meta.CorrelationID)
	})
}

func TestApplyEventMetadata(t *testing.T) {
	e1 := domain.NewBaseEvent(uuid.New(), "Test", "a", time.Now())
	e2 := domain.NewBaseEvent(uuid.New(), "Test", "b", time.Now())
	meta := application.NewEventMetadata(context.Background(), "facilitator")

	application.ApplyEventMetadata([]domain.DomainEvent{&e1, &e2}, meta)

	assert.Equal(t, meta, e1.Metadata())
	assert.Equal(t, meta, e2.Metadata())
}
