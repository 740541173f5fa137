package persistence

import "context"

// MemoryUnitOfWork is used with the in-memory and Redis stores, which
// have no transactions to coordinate. Atomicity across the session and
// the outbox comes from the dispatcher serializing writers.
type MemoryUnitOfWork struct{}

// NewMemoryUnitOfWork creates a new MemoryUnitOfWork.
func NewMemoryUnitOfWork() *MemoryUnitOfWork {
	return &MemoryUnitOfWork{}
}

func (MemoryUnitOfWork) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (MemoryUnitOfWork) Commit(context.Context) error                       { return nil }
func (MemoryUnitOfWork) Rollback(context.Context) error                     { return nil }
