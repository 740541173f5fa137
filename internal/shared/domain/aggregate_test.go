package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/opportunity/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type testAggregate struct {
	domain.BaseAggregateRoot
}

func TestBaseAggregateRoot_Advance(t *testing.T) {
	created := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)
	agg := testAggregate{BaseAggregateRoot: domain.NewBaseAggregateRoot(created)}

	assert.NotEqual(t, uuid.Nil, agg.ID())
	assert.Equal(t, 0, agg.Version())
	assert.Equal(t, created, agg.UpdatedAt())

	later := created.Add(time.Hour)
	agg.Advance(later)
	agg.Advance(later)

	assert.Equal(t, 2, agg.Version())
	assert.Equal(t, later, agg.UpdatedAt())
	assert.Equal(t, created, agg.CreatedAt())
}

func TestBaseAggregateRoot_PullEvents(t *testing.T) {
	agg := testAggregate{BaseAggregateRoot: domain.NewBaseAggregateRoot(time.Now())}
	e1 := domain.NewBaseEvent(agg.ID(), "Test", "a", time.Now())
	e2 := domain.NewBaseEvent(agg.ID(), "Test", "b", time.Now())
	agg.Record(&e1)
	agg.Record(&e2)

	assert.Len(t, agg.PendingEvents(), 2)

	pulled := agg.PullEvents()
	assert.Len(t, pulled, 2)
	assert.Equal(t, "a", pulled[0].RoutingKey())
	assert.Empty(t, agg.PendingEvents())
	assert.Empty(t, agg.PullEvents())
}

func TestRehydrateBaseAggregateRoot(t *testing.T) {
	id := uuid.New()
	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	updated := created.Add(48 * time.Hour)

	agg := domain.RehydrateBaseAggregateRoot(id, 7, created, updated)

	assert.Equal(t, id, agg.ID())
	assert.Equal(t, 7, agg.Version())
	assert.Equal(t, updated, agg.UpdatedAt())
	assert.Empty(t, agg.PendingEvents())
}
