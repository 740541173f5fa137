package queries

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	"github.com/google/uuid"
)

// ErrNoOpportunity is returned when a record is requested before the
// Provider has selected a slot.
var ErrNoOpportunity = errors.New("no opportunity selected")

// Record statuses.
const (
	RecordPending   = "pending"
	RecordConfirmed = "confirmed"
	RecordDeclined  = "declined"
)

// PartyResponseDTO is one party's line on the record.
type PartyResponseDTO struct {
	Role         string     `json:"role"`
	Title        string     `json:"title"`
	Abbreviation string     `json:"abbreviation"`
	Response     string     `json:"response"`
	RespondedAt  *time.Time `json:"responded_at,omitempty"`
}

// CommitmentRecordDTO is the final record of the booked appointment.
type CommitmentRecordDTO struct {
	SessionID      uuid.UUID        `json:"session_id"`
	JobNumber      string           `json:"job_number"`
	SlotID         string           `json:"slot_id"`
	Date           string           `json:"date"`
	DisplayDate    string           `json:"display_date"`
	Period         string           `json:"period"`
	TimeRange      string           `json:"time_range"`
	StartsAt       time.Time        `json:"starts_at"`
	EndsAt         time.Time        `json:"ends_at"`
	Provider       PartyResponseDTO `json:"provider"`
	Receiver       PartyResponseDTO `json:"receiver"`
	Facilitator    PartyResponseDTO `json:"facilitator"`
	Status         string           `json:"status"`
	FullyConfirmed bool             `json:"fully_confirmed"`
}

// GetCommitmentRecordQuery asks for the record of a session.
type GetCommitmentRecordQuery struct {
	SessionID uuid.UUID
}

// GetCommitmentRecordHandler handles the GetCommitmentRecordQuery.
type GetCommitmentRecordHandler struct {
	repo domain.Repository
}

// NewGetCommitmentRecordHandler creates a new GetCommitmentRecordHandler.
func NewGetCommitmentRecordHandler(repo domain.Repository) *GetCommitmentRecordHandler {
	return &GetCommitmentRecordHandler{repo: repo}
}

// Handle executes the GetCommitmentRecordQuery.
func (h *GetCommitmentRecordHandler) Handle(ctx context.Context, query GetCommitmentRecordQuery) (*CommitmentRecordDTO, error) {
	session, err := load(ctx, h.repo, query.SessionID)
	if err != nil {
		return nil, err
	}
	return RecordOf(session)
}

// RecordOf builds the commitment record of session's active opportunity.
func RecordOf(session *domain.Session) (*CommitmentRecordDTO, error) {
	slot, ok := domain.ActiveOpportunity(session.Pool())
	if !ok {
		return nil, ErrNoOpportunity
	}

	record := &CommitmentRecordDTO{
		SessionID:   session.ID(),
		JobNumber:   session.JobNumber(),
		SlotID:      slot.ID,
		Date:        slot.Date.Format(domain.DateLayout),
		DisplayDate: slot.DisplayDate(),
		Period:      string(slot.Period),
		TimeRange:   slot.Period.DisplayRange(),
		StartsAt:    slot.StartsAt(),
		EndsAt:      slot.EndsAt(),
		Provider: PartyResponseDTO{
			Role:         string(domain.RoleProvider),
			Title:        domain.RoleProvider.Title(),
			Abbreviation: domain.RoleProvider.Abbreviation(),
			Response:     RecordConfirmed,
		},
		Receiver:       partyLine(slot, domain.RoleReceiver),
		Facilitator:    partyLine(slot, domain.RoleFacilitator),
		FullyConfirmed: domain.IsFullyConfirmed(slot),
	}

	switch {
	case record.FullyConfirmed:
		record.Status = RecordConfirmed
	case domain.IsDeclined(slot):
		record.Status = RecordDeclined
	default:
		record.Status = RecordPending
	}
	return record, nil
}

func partyLine(slot domain.TimeSlot, role domain.Role) PartyResponseDTO {
	answer, at := slot.ConfirmationOf(role)
	return PartyResponseDTO{
		Role:         string(role),
		Title:        role.Title(),
		Abbreviation: role.Abbreviation(),
		Response:     string(answer),
		RespondedAt:  at,
	}
}
