package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	"github.com/google/uuid"
)

// MemorySessionRepository keeps sessions for the lifetime of the process.
// Stored sessions are copies so callers cannot mutate them in place.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]sessionDocument
}

// NewMemorySessionRepository creates an empty repository.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[uuid.UUID]sessionDocument)}
}

func (r *MemorySessionRepository) Save(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID()] = documentOf(session)
	return nil
}

func (r *MemorySessionRepository) FindByID(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	r.mu.RLock()
	doc, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return doc.session()
}

// List returns sessions most recently updated first.
func (r *MemorySessionRepository) List(_ context.Context) ([]*domain.Session, error) {
	r.mu.RLock()
	docs := make([]sessionDocument, 0, len(r.sessions))
	for _, doc := range r.sessions {
		docs = append(docs, doc)
	}
	r.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UpdatedAt.After(docs[j].UpdatedAt)
	})

	out := make([]*domain.Session, 0, len(docs))
	for _, doc := range docs {
		session, err := doc.session()
		if err != nil {
			return nil, err
		}
		out = append(out, session)
	}
	return out, nil
}
