package domain

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used in slot identifiers.
const DateLayout = "2006-01-02"

// TimeSlot is one bookable period on one business day.
type TimeSlot struct {
	ID     string
	Date   time.Time
	Period Period

	ReceiverAvailable    bool
	FacilitatorAvailable bool
	Selected             bool

	ReceiverConfirmation    Confirmation
	FacilitatorConfirmation Confirmation
	ReceiverRespondedAt     *time.Time
	FacilitatorRespondedAt  *time.Time
}

// SlotID derives the identifier of the slot for a date and period,
// e.g. "2024-05-06-AM".
func SlotID(date time.Time, period Period) string {
	return fmt.Sprintf("%s-%s", date.Format(DateLayout), period.Code())
}

func newTimeSlot(date time.Time, period Period) TimeSlot {
	return TimeSlot{
		ID:                      SlotID(date, period),
		Date:                    date,
		Period:                  period,
		ReceiverConfirmation:    ConfirmationPending,
		FacilitatorConfirmation: ConfirmationPending,
	}
}

// IsMutual reports whether both the Receiver and the Facilitator are available.
func (s TimeSlot) IsMutual() bool {
	return s.ReceiverAvailable && s.FacilitatorAvailable
}

// StartsAt is the wall-clock start of the slot in UTC.
func (s TimeSlot) StartsAt() time.Time {
	return s.Date.Add(s.Period.Start())
}

// EndsAt is the wall-clock end of the slot in UTC.
func (s TimeSlot) EndsAt() time.Time {
	return s.Date.Add(s.Period.End())
}

// DisplayDate renders the date as "Mon 6 May".
func (s TimeSlot) DisplayDate() string {
	return s.Date.Format("Mon 2 Jan")
}

// ConfirmationOf returns the answer and response time recorded for role.
// The Provider never answers, so it always reports pending.
func (s TimeSlot) ConfirmationOf(role Role) (Confirmation, *time.Time) {
	switch role {
	case RoleReceiver:
		return s.ReceiverConfirmation, copyTime(s.ReceiverRespondedAt)
	case RoleFacilitator:
		return s.FacilitatorConfirmation, copyTime(s.FacilitatorRespondedAt)
	default:
		return ConfirmationPending, nil
	}
}

func (s TimeSlot) clone() TimeSlot {
	s.ReceiverRespondedAt = copyTime(s.ReceiverRespondedAt)
	s.FacilitatorRespondedAt = copyTime(s.FacilitatorRespondedAt)
	return s
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
