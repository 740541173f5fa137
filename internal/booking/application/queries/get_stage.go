package queries

import (
	"context"

	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	"github.com/google/uuid"
)

// StageDTO is the advisory view of where a session stands for one role.
type StageDTO struct {
	SessionID           uuid.UUID `json:"session_id"`
	Role                string    `json:"role"`
	Stage               string    `json:"stage"`
	NextAction          string    `json:"next_action,omitempty"`
	ReceiverComplete    bool      `json:"receiver_complete"`
	FacilitatorComplete bool      `json:"facilitator_complete"`
	MutualSlotIDs       []string  `json:"mutual_slot_ids"`
	ActiveOpportunity   *SlotDTO  `json:"active_opportunity,omitempty"`
	FullyConfirmed      bool      `json:"fully_confirmed"`
}

// GetStageQuery asks for the stage as seen by Role.
type GetStageQuery struct {
	SessionID uuid.UUID
	Role      domain.Role
}

// GetStageHandler handles the GetStageQuery.
type GetStageHandler struct {
	repo domain.Repository
}

// NewGetStageHandler creates a new GetStageHandler.
func NewGetStageHandler(repo domain.Repository) *GetStageHandler {
	return &GetStageHandler{repo: repo}
}

// Handle executes the GetStageQuery.
func (h *GetStageHandler) Handle(ctx context.Context, query GetStageQuery) (*StageDTO, error) {
	session, err := load(ctx, h.repo, query.SessionID)
	if err != nil {
		return nil, err
	}
	dto := StageOf(session, query.Role)
	return &dto, nil
}

// StageOf derives the stage view of session for role.
func StageOf(session *domain.Session, role domain.Role) StageDTO {
	pool := session.Pool()
	dto := StageDTO{
		SessionID:           session.ID(),
		Role:                string(role),
		Stage:               string(domain.CurrentStage(pool)),
		ReceiverComplete:    domain.ReceiverStageComplete(pool),
		FacilitatorComplete: domain.FacilitatorStageComplete(pool),
		MutualSlotIDs:       []string{},
	}
	if action, ok := domain.NextAction(pool, role); ok {
		dto.NextAction = string(action)
	}
	for slot := range domain.MutualSlots(pool) {
		dto.MutualSlotIDs = append(dto.MutualSlotIDs, slot.ID)
	}
	if active, ok := domain.ActiveOpportunity(pool); ok {
		slot := ToSlotDTO(active)
		dto.ActiveOpportunity = &slot
		dto.FullyConfirmed = domain.IsFullyConfirmed(active)
	}
	return dto
}
