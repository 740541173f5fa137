package domain

import (
	"errors"
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/opportunity/internal/shared/domain"
	"github.com/google/uuid"
)

// DefaultJobNumber labels sessions started without one.
const DefaultJobNumber = "JOB-2023-001"

var ErrSessionEmptyJobNumber = errors.New("job number cannot be empty")

// Session owns the current slot pool for one booking and replaces it
// wholesale on every accepted action.
type Session struct {
	sharedDomain.BaseAggregateRoot
	jobNumber string
	pool      Pool
}

// NewSession generates a pool of businessDays days starting at reference.
func NewSession(jobNumber string, reference time.Time, businessDays int, now time.Time) (*Session, error) {
	jobNumber = strings.TrimSpace(jobNumber)
	if jobNumber == "" {
		return nil, ErrSessionEmptyJobNumber
	}
	pool, err := GeneratePool(reference, businessDays)
	if err != nil {
		return nil, err
	}

	s := &Session{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(now),
		jobNumber:         jobNumber,
		pool:              pool,
	}
	s.Record(NewSessionStarted(s, now))
	return s, nil
}

// RehydrateSession recreates a session from persisted state.
func RehydrateSession(id uuid.UUID, jobNumber string, pool Pool, version int, createdAt, updatedAt time.Time) (*Session, error) {
	if strings.TrimSpace(jobNumber) == "" {
		return nil, ErrSessionEmptyJobNumber
	}
	if err := pool.Validate(); err != nil {
		return nil, err
	}
	return &Session{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(id, version, createdAt, updatedAt),
		jobNumber:         jobNumber,
		pool:              pool,
	}, nil
}

func (s *Session) JobNumber() string { return s.jobNumber }
func (s *Session) Pool() Pool        { return s.pool }

// SetReceiverAvailability toggles the Receiver's availability on one slot.
func (s *Session) SetReceiverAvailability(actor Role, slotID string, available bool, now time.Time) error {
	next, err := SetReceiverAvailability(s.pool, actor, slotID, available)
	if err != nil {
		return err
	}
	s.replace(next, now)
	s.Record(NewSlotAvailabilityChanged(s, RoleReceiver, slotID, available, now))
	return nil
}

// SetFacilitatorAvailability toggles the Facilitator's availability on one slot.
func (s *Session) SetFacilitatorAvailability(actor Role, slotID string, available bool, now time.Time) error {
	next, err := SetFacilitatorAvailability(s.pool, actor, slotID, available)
	if err != nil {
		return err
	}
	s.replace(next, now)
	s.Record(NewSlotAvailabilityChanged(s, RoleFacilitator, slotID, available, now))
	return nil
}

// SubmitReceiverAvailability replaces the Receiver's availability in one step.
func (s *Session) SubmitReceiverAvailability(actor Role, slotIDs []string, now time.Time) error {
	next, err := SubmitReceiverAvailability(s.pool, actor, slotIDs)
	if err != nil {
		return err
	}
	s.replace(next, now)
	s.Record(NewAvailabilitySubmitted(s, RoleReceiver, slotIDs, now))
	return nil
}

// SubmitFacilitatorAvailability replaces the Facilitator's availability in one step.
func (s *Session) SubmitFacilitatorAvailability(actor Role, slotIDs []string, now time.Time) error {
	next, err := SubmitFacilitatorAvailability(s.pool, actor, slotIDs)
	if err != nil {
		return err
	}
	s.replace(next, now)
	s.Record(NewAvailabilitySubmitted(s, RoleFacilitator, slotIDs, now))
	return nil
}

// SelectOpportunity makes slotID the active opportunity.
func (s *Session) SelectOpportunity(actor Role, slotID string, now time.Time) error {
	previous := ""
	if active, ok := ActiveOpportunity(s.pool); ok {
		previous = active.ID
	}
	next, err := SelectOpportunity(s.pool, actor, slotID)
	if err != nil {
		return err
	}
	s.replace(next, now)
	slot, _ := next.Slot(slotID)
	s.Record(NewOpportunitySelected(s, slot, previous, now))
	return nil
}

// RespondConfirmation records the actor's answer. When it completes a
// double confirmation an AppointmentConfirmed event is recorded as well.
func (s *Session) RespondConfirmation(actor Role, confirmed bool, now time.Time) error {
	next, err := RespondConfirmation(s.pool, actor, confirmed, now)
	if err != nil {
		return err
	}
	s.replace(next, now)
	slot, _ := ActiveOpportunity(next)
	s.Record(NewConfirmationRecorded(s, slot, actor, now))
	if IsFullyConfirmed(slot) {
		s.Record(NewAppointmentConfirmed(s, slot, now))
	}
	return nil
}

func (s *Session) replace(next Pool, now time.Time) {
	s.pool = next
	s.Advance(now)
}
