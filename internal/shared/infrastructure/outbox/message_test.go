package outbox_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/felixgeelhaar/opportunity/internal/shared/domain"
	"github.com/felixgeelhaar/opportunity/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slotPicked struct {
	domain.BaseEvent
	SlotID string `json:"slot_id"`
}

func newSlotPicked(slotID string) *slotPicked {
	e := &slotPicked{
		BaseEvent: domain.NewBaseEvent(uuid.New(), "BookingSession", "booking.opportunity.selected",
			time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)),
		SlotID: slotID,
	}
	e.SetMetadata(domain.EventMetadata{CorrelationID: uuid.New(), CausationID: uuid.New(), Actor: "provider"})
	return e
}

func TestNewMessage(t *testing.T) {
	event := newSlotPicked("2024-05-06-AM")

	msg, err := outbox.NewMessage(event)
	require.NoError(t, err)

	assert.Equal(t, event.EventID(), msg.EventID)
	assert.Equal(t, event.AggregateID(), msg.AggregateID)
	assert.Equal(t, "BookingSession", msg.AggregateType)
	assert.Equal(t, "booking.opportunity.selected", msg.RoutingKey)
	assert.Equal(t, msg.RoutingKey, msg.EventType)
	assert.Equal(t, event.OccurredAt(), msg.CreatedAt)
	assert.False(t, msg.IsPublished())
	assert.False(t, msg.IsDead())

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Payload, &body))
	assert.Equal(t, "2024-05-06-AM", body["slot_id"])
	assert.Equal(t, event.EventID().String(), body["event_id"])
	assert.Equal(t, "booking.opportunity.selected", body["routing_key"])

	meta := msg.DecodeMetadata()
	assert.Equal(t, event.Metadata(), meta)
}

func TestMessagesFrom(t *testing.T) {
	events := []domain.DomainEvent{newSlotPicked("a"), newSlotPicked("b")}
	msgs, err := outbox.MessagesFrom(events)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, events[1].EventID(), msgs[1].EventID)

	empty, err := outbox.MessagesFrom(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMessage_DecodeMetadataWithoutMetadata(t *testing.T) {
	msg := &outbox.Message{}
	assert.Equal(t, domain.EventMetadata{}, msg.DecodeMetadata())
}
