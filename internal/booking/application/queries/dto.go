package queries

import (
	"time"

	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	"github.com/google/uuid"
)

// SlotDTO is the read model of one slot.
type SlotDTO struct {
	ID                      string     `json:"id"`
	Date                    string     `json:"date"`
	DisplayDate             string     `json:"display_date"`
	Period                  string     `json:"period"`
	TimeRange               string     `json:"time_range"`
	ReceiverAvailable       bool       `json:"receiver_available"`
	FacilitatorAvailable    bool       `json:"facilitator_available"`
	Mutual                  bool       `json:"mutual"`
	Selected                bool       `json:"selected"`
	ReceiverConfirmation    string     `json:"receiver_confirmation"`
	FacilitatorConfirmation string     `json:"facilitator_confirmation"`
	ReceiverRespondedAt     *time.Time `json:"receiver_responded_at,omitempty"`
	FacilitatorRespondedAt  *time.Time `json:"facilitator_responded_at,omitempty"`
}

// SessionDTO is the full snapshot of a session.
type SessionDTO struct {
	ID                   uuid.UUID `json:"id"`
	JobNumber            string    `json:"job_number"`
	Version              int       `json:"version"`
	Stage                string    `json:"stage"`
	ReceiverSubmitted    bool      `json:"receiver_submitted"`
	FacilitatorSubmitted bool      `json:"facilitator_submitted"`
	ActiveSlotID         string    `json:"active_slot_id,omitempty"`
	Slots                []SlotDTO `json:"slots"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// ToSlotDTO maps a domain slot to its read model.
func ToSlotDTO(s domain.TimeSlot) SlotDTO {
	return SlotDTO{
		ID:                      s.ID,
		Date:                    s.Date.Format(domain.DateLayout),
		DisplayDate:             s.DisplayDate(),
		Period:                  string(s.Period),
		TimeRange:               s.Period.DisplayRange(),
		ReceiverAvailable:       s.ReceiverAvailable,
		FacilitatorAvailable:    s.FacilitatorAvailable,
		Mutual:                  s.IsMutual(),
		Selected:                s.Selected,
		ReceiverConfirmation:    string(s.ReceiverConfirmation),
		FacilitatorConfirmation: string(s.FacilitatorConfirmation),
		ReceiverRespondedAt:     s.ReceiverRespondedAt,
		FacilitatorRespondedAt:  s.FacilitatorRespondedAt,
	}
}

// ToSessionDTO maps a session to its snapshot.
func ToSessionDTO(s *domain.Session) SessionDTO {
	pool := s.Pool()
	dto := SessionDTO{
		ID:                   s.ID(),
		JobNumber:            s.JobNumber(),
		Version:              s.Version(),
		Stage:                string(domain.CurrentStage(pool)),
		ReceiverSubmitted:    domain.ReceiverStageComplete(pool),
		FacilitatorSubmitted: domain.FacilitatorStageComplete(pool),
		Slots:                make([]SlotDTO, 0, pool.Len()),
		CreatedAt:            s.CreatedAt(),
		UpdatedAt:            s.UpdatedAt(),
	}
	for slot := range pool.All() {
		dto.Slots = append(dto.Slots, ToSlotDTO(slot))
	}
	if active, ok := domain.ActiveOpportunity(pool); ok {
		dto.ActiveSlotID = active.ID
	}
	return dto
}
