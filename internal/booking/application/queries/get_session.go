package queries

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a session does not exist.
var ErrSessionNotFound = errors.New("session not found")

// GetSessionQuery contains the parameters for getting a single session.
type GetSessionQuery struct {
	SessionID uuid.UUID
}

// GetSessionHandler handles the GetSessionQuery.
type GetSessionHandler struct {
	repo domain.Repository
}

// NewGetSessionHandler creates a new GetSessionHandler.
func NewGetSessionHandler(repo domain.Repository) *GetSessionHandler {
	return &GetSessionHandler{repo: repo}
}

// Handle executes the GetSessionQuery.
func (h *GetSessionHandler) Handle(ctx context.Context, query GetSessionQuery) (*SessionDTO, error) {
	session, err := load(ctx, h.repo, query.SessionID)
	if err != nil {
		return nil, err
	}
	dto := ToSessionDTO(session)
	return &dto, nil
}

func load(ctx context.Context, repo domain.Repository, id uuid.UUID) (*domain.Session, error) {
	session, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}
