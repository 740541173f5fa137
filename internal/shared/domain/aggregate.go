package domain

import (
	"time"

	"github.com/google/uuid"
)

// AggregateRoot is the consistency boundary that records domain events.
type AggregateRoot interface {
	Entity
	Version() int
	PendingEvents() []DomainEvent
	PullEvents() []DomainEvent
}

// BaseAggregateRoot implements event recording and a monotonically
// increasing version counter.
type BaseAggregateRoot struct {
	BaseEntity
	events  []DomainEvent
	version int
}

// NewBaseAggregateRoot creates an aggregate root at version 0.
func NewBaseAggregateRoot(now time.Time) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(now)}
}

// RehydrateBaseAggregateRoot recreates an aggregate root from persisted state.
func RehydrateBaseAggregateRoot(id uuid.UUID, version int, createdAt, updatedAt time.Time) BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: RehydrateBaseEntity(id, createdAt, updatedAt),
		version:    version,
	}
}

// Version returns the number of accepted changes applied to the aggregate.
func (a *BaseAggregateRoot) Version() int { return a.version }

// Record appends an uncommitted event.
func (a *BaseAggregateRoot) Record(event DomainEvent) {
	a.events = append(a.events, event)
}

// Advance bumps the version and touches the entity.
func (a *BaseAggregateRoot) Advance(now time.Time) {
	a.version++
	a.Touch(now)
}

// PendingEvents returns uncommitted events without clearing them.
func (a *BaseAggregateRoot) PendingEvents() []DomainEvent {
	out := make([]DomainEvent, len(a.events))
	copy(out, a.events)
	return out
}

// PullEvents returns uncommitted events and clears them.
func (a *BaseAggregateRoot) PullEvents() []DomainEvent {
	out := a.events
	a.events = nil
	return out
}
