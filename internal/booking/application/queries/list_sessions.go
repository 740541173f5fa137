package queries

import (
	"context"
	"sort"
	"time"

	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	"github.com/google/uuid"
)

// SessionSummaryDTO is one row of the session list.
type SessionSummaryDTO struct {
	ID           uuid.UUID `json:"id"`
	JobNumber    string    `json:"job_number"`
	Stage        string    `json:"stage"`
	Version      int       `json:"version"`
	ActiveSlotID string    `json:"active_slot_id,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ListSessionsQuery lists every session, most recently updated first.
type ListSessionsQuery struct{}

// ListSessionsHandler handles the ListSessionsQuery.
type ListSessionsHandler struct {
	repo domain.Repository
}

// NewListSessionsHandler creates a new ListSessionsHandler.
func NewListSessionsHandler(repo domain.Repository) *ListSessionsHandler {
	return &ListSessionsHandler{repo: repo}
}

// Handle executes the ListSessionsQuery.
func (h *ListSessionsHandler) Handle(ctx context.Context, _ ListSessionsQuery) ([]SessionSummaryDTO, error) {
	sessions, err := h.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]SessionSummaryDTO, 0, len(sessions))
	for _, s := range sessions {
		row := SessionSummaryDTO{
			ID:        s.ID(),
			JobNumber: s.JobNumber(),
			Stage:     string(domain.CurrentStage(s.Pool())),
			Version:   s.Version(),
			UpdatedAt: s.UpdatedAt(),
		}
		if active, ok := domain.ActiveOpportunity(s.Pool()); ok {
			row.ActiveSlotID = active.ID
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}
