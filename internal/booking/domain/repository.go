package domain

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for session persistence.
type Repository interface {
	Save(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*Session, error)
	List(ctx context.Context) ([]*Session, error)
}
