package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/opportunity/internal/shared/domain"
	"github.com/google/uuid"
)

const aggregateType = "BookingSession"

const (
	RoutingKeySessionStarted        = "booking.session.started"
	RoutingKeyAvailabilityChanged   = "booking.slot.availability_changed"
	RoutingKeyAvailabilitySubmitted = "booking.availability.submitted"
	RoutingKeyOpportunitySelected   = "booking.opportunity.selected"
	RoutingKeyConfirmationRecorded  = "booking.confirmation.recorded"
	RoutingKeyAppointmentConfirmed  = "booking.appointment.confirmed"
)

// SessionStarted is emitted when a session and its slot pool are created.
type SessionStarted struct {
	sharedDomain.BaseEvent
	SessionID uuid.UUID `json:"session_id"`
	JobNumber string    `json:"job_number"`
	FirstDate string    `json:"first_date"`
	LastDate  string    `json:"last_date"`
	SlotCount int       `json:"slot_count"`
}

// NewSessionStarted creates a SessionStarted event.
func NewSessionStarted(s *Session, at time.Time) *SessionStarted {
	e := &SessionStarted{
		BaseEvent: sharedDomain.NewBaseEvent(s.ID(), aggregateType, RoutingKeySessionStarted, at),
		SessionID: s.ID(),
		JobNumber: s.JobNumber(),
		SlotCount: s.pool.Len(),
	}
	if n := s.pool.Len(); n > 0 {
		e.FirstDate = s.pool.slots[0].Date.Format(DateLayout)
		e.LastDate = s.pool.slots[n-1].Date.Format(DateLayout)
	}
	return e
}

// SlotAvailabilityChanged is emitted when one party's availability on one
// slot is toggled.
type SlotAvailabilityChanged struct {
	sharedDomain.BaseEvent
	SessionID uuid.UUID `json:"session_id"`
	SlotID    string    `json:"slot_id"`
	Party     Role      `json:"party"`
	Available bool      `json:"available"`
}

// NewSlotAvailabilityChanged creates a SlotAvailabilityChanged event.
func NewSlotAvailabilityChanged(s *Session, party Role, slotID string, available bool, at time.Time) *SlotAvailabilityChanged {
	return &SlotAvailabilityChanged{
		BaseEvent: sharedDomain.NewBaseEvent(s.ID(), aggregateType, RoutingKeyAvailabilityChanged, at),
		SessionID: s.ID(),
		SlotID:    slotID,
		Party:     party,
		Available: available,
	}
}

// AvailabilitySubmitted is emitted when a party submits its availability.
type AvailabilitySubmitted struct {
	sharedDomain.BaseEvent
	SessionID uuid.UUID `json:"session_id"`
	Party     Role      `json:"party"`
	SlotIDs   []string  `json:"slot_ids"`
}

// NewAvailabilitySubmitted creates an AvailabilitySubmitted event.
func NewAvailabilitySubmitted(s *Session, party Role, slotIDs []string, at time.Time) *AvailabilitySubmitted {
	ids := make([]string, len(slotIDs))
	copy(ids, slotIDs)
	return &AvailabilitySubmitted{
		BaseEvent: sharedDomain.NewBaseEvent(s.ID(), aggregateType, RoutingKeyAvailabilitySubmitted, at),
		SessionID: s.ID(),
		Party:     party,
		SlotIDs:   ids,
	}
}

// OpportunitySelected is emitted when the Provider picks the slot to offer.
type OpportunitySelected struct {
	sharedDomain.BaseEvent
	SessionID      uuid.UUID `json:"session_id"`
	SlotID         string    `json:"slot_id"`
	PreviousSlotID string    `json:"previous_slot_id,omitempty"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
}

// NewOpportunitySelected creates an OpportunitySelected event.
func NewOpportunitySelected(s *Session, slot TimeSlot, previous string, at time.Time) *OpportunitySelected {
	return &OpportunitySelected{
		BaseEvent:      sharedDomain.NewBaseEvent(s.ID(), aggregateType, RoutingKeyOpportunitySelected, at),
		SessionID:      s.ID(),
		SlotID:         slot.ID,
		PreviousSlotID: previous,
		StartsAt:       slot.StartsAt(),
		EndsAt:         slot.EndsAt(),
	}
}

// ConfirmationRecorded is emitted when a party answers the opportunity.
type ConfirmationRecorded struct {
	sharedDomain.BaseEvent
	SessionID    uuid.UUID    `json:"session_id"`
	SlotID       string       `json:"slot_id"`
	Party        Role         `json:"party"`
	Confirmation Confirmation `json:"confirmation"`
	RespondedAt  time.Time    `json:"responded_at"`
}

// NewConfirmationRecorded creates a ConfirmationRecorded event.
func NewConfirmationRecorded(s *Session, slot TimeSlot, party Role, at time.Time) *ConfirmationRecorded {
	answer, respondedAt := slot.ConfirmationOf(party)
	e := &ConfirmationRecorded{
		BaseEvent:    sharedDomain.NewBaseEvent(s.ID(), aggregateType, RoutingKeyConfirmationRecorded, at),
		SessionID:    s.ID(),
		SlotID:       slot.ID,
		Party:        party,
		Confirmation: answer,
	}
	if respondedAt != nil {
		e.RespondedAt = *respondedAt
	}
	return e
}

// AppointmentConfirmed is emitted once both parties have confirmed the
// selected slot.
type AppointmentConfirmed struct {
	sharedDomain.BaseEvent
	SessionID uuid.UUID `json:"session_id"`
	JobNumber string    `json:"job_number"`
	SlotID    string    `json:"slot_id"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
}

// NewAppointmentConfirmed creates an AppointmentConfirmed event.
func NewAppointmentConfirmed(s *Session, slot TimeSlot, at time.Time) *AppointmentConfirmed {
	return &AppointmentConfirmed{
		BaseEvent: sharedDomain.NewBaseEvent(s.ID(), aggregateType, RoutingKeyAppointmentConfirmed, at),
		SessionID: s.ID(),
		JobNumber: s.JobNumber(),
		SlotID:    slot.ID,
		StartsAt:  slot.StartsAt(),
		EndsAt:    slot.EndsAt(),
	}
}
