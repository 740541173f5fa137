package persistence

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	"github.com/google/uuid"
)

// sessionDocument is the serialized form of a session used by the Redis
// store and by tests.
type sessionDocument struct {
	ID             uuid.UUID      `json:"id"`
	JobNumber      string         `json:"job_number"`
	Version        int            `json:"version"`
	SubmittedRoles []string       `json:"submitted_roles"`
	Slots          []slotDocument `json:"slots"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type slotDocument struct {
	ID                      string     `json:"id"`
	Date                    string     `json:"date"`
	Period                  string     `json:"period"`
	ReceiverAvailable       bool       `json:"receiver_available"`
	FacilitatorAvailable    bool       `json:"facilitator_available"`
	Selected                bool       `json:"selected"`
	ReceiverConfirmation    string     `json:"receiver_confirmation"`
	FacilitatorConfirmation string     `json:"facilitator_confirmation"`
	ReceiverRespondedAt     *time.Time `json:"receiver_responded_at,omitempty"`
	FacilitatorRespondedAt  *time.Time `json:"facilitator_responded_at,omitempty"`
}

func documentOf(s *domain.Session) sessionDocument {
	pool := s.Pool()
	doc := sessionDocument{
		ID:             s.ID(),
		JobNumber:      s.JobNumber(),
		Version:        s.Version(),
		SubmittedRoles: roleStrings(pool.SubmittedRoles()),
		Slots:          make([]slotDocument, 0, pool.Len()),
		CreatedAt:      s.CreatedAt(),
		UpdatedAt:      s.UpdatedAt(),
	}
	for slot := range pool.All() {
		doc.Slots = append(doc.Slots, slotDocument{
			ID:                      slot.ID,
			Date:                    slot.Date.Format(domain.DateLayout),
			Period:                  string(slot.Period),
			ReceiverAvailable:       slot.ReceiverAvailable,
			FacilitatorAvailable:    slot.FacilitatorAvailable,
			Selected:                slot.Selected,
			ReceiverConfirmation:    string(slot.ReceiverConfirmation),
			FacilitatorConfirmation: string(slot.FacilitatorConfirmation),
			ReceiverRespondedAt:     slot.ReceiverRespondedAt,
			FacilitatorRespondedAt:  slot.FacilitatorRespondedAt,
		})
	}
	return doc
}

func (d sessionDocument) session() (*domain.Session, error) {
	slots := make([]domain.TimeSlot, 0, len(d.Slots))
	for _, sd := range d.Slots {
		date, err := time.Parse(domain.DateLayout, sd.Date)
		if err != nil {
			return nil, fmt.Errorf("slot %s: invalid date: %w", sd.ID, err)
		}
		slots = append(slots, domain.TimeSlot{
			ID:                      sd.ID,
			Date:                    date,
			Period:                  domain.Period(sd.Period),
			ReceiverAvailable:       sd.ReceiverAvailable,
			FacilitatorAvailable:    sd.FacilitatorAvailable,
			Selected:                sd.Selected,
			ReceiverConfirmation:    domain.Confirmation(sd.ReceiverConfirmation),
			FacilitatorConfirmation: domain.Confirmation(sd.FacilitatorConfirmation),
			ReceiverRespondedAt:     utcPtr(sd.ReceiverRespondedAt),
			FacilitatorRespondedAt:  utcPtr(sd.FacilitatorRespondedAt),
		})
	}
	return rehydrate(d.ID, d.JobNumber, slots, d.SubmittedRoles, d.Version, d.CreatedAt, d.UpdatedAt)
}

// rehydrate rebuilds a session through the domain so pool invariants are
// re-validated on every load.
func rehydrate(id uuid.UUID, jobNumber string, slots []domain.TimeSlot, submitted []string, version int, createdAt, updatedAt time.Time) (*domain.Session, error) {
	roles := make([]domain.Role, 0, len(submitted))
	for _, value := range submitted {
		role, err := domain.ParseRole(value)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", id, err)
		}
		roles = append(roles, role)
	}

	pool, err := domain.RehydratePool(slots, roles)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	session, err := domain.RehydrateSession(id, jobNumber, pool, version, createdAt.UTC(), updatedAt.UTC())
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	return session, nil
}

func roleStrings(roles []domain.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
