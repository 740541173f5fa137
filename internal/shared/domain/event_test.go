package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/felixgeelhaar/opportunity/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	domain.BaseEvent
	Data string `json:"data"`
}

func TestNewBaseEvent(t *testing.T) {
	aggregateID := uuid.New()
	at := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)

	event := domain.NewBaseEvent(aggregateID, "Test", "test.thing.happened", at)

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, aggregateID, event.AggregateID())
	assert.Equal(t, "Test", event.AggregateType())
	assert.Equal(t, "test.thing.happened", event.RoutingKey())
	assert.Equal(t, at, event.OccurredAt())
}

func TestBaseEvent_JSONEnvelope(t *testing.T) {
	event := &testEvent{
		BaseEvent: domain.NewBaseEvent(uuid.New(), "Test", "test.thing.happened", time.Now()),
		Data:      "payload",
	}
	event.SetMetadata(domain.EventMetadata{CorrelationID: uuid.New(), Actor: "provider"})

	raw, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, event.EventID().String(), decoded["event_id"])
	assert.Equal(t, "test.thing.happened", decoded["routing_key"])
	assert.Equal(t, "payload", decoded["data"])

	meta, ok := decoded["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "provider", meta["actor"])
}
