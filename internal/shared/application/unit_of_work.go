package application

import (
	"context"
	"errors"
)

// UnitOfWork groups the session save and its outbox messages. Begin
// returns a context carrying the transaction; repositories pick it up
// from there.
type UnitOfWork interface {
	Begin(ctx context.Context) (context.Context, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// WithUnitOfWork calls fn with the transaction context. An error from fn
// rolls back and is returned unchanged; otherwise the work is committed.
func WithUnitOfWork(ctx context.Context, uow UnitOfWork, fn func(txCtx context.Context) error) error {
	txCtx, err := uow.Begin(ctx)
	if err != nil {
		return err
	}

	if fnErr := fn(txCtx); fnErr != nil {
		if rbErr := uow.Rollback(txCtx); rbErr != nil {
			return errors.Join(fnErr, rbErr)
		}
		return fnErr
	}

	return uow.Commit(txCtx)
}
