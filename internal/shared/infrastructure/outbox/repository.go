package outbox

import (
	"context"
	"time"
)

// Repository defines the interface for outbox persistence. Save and
// SaveBatch join a transaction carried by ctx when there is one.
type Repository interface {
	Save(ctx context.Context, msg *Message) error
	SaveBatch(ctx context.Context, msgs []*Message) error

	// GetUnpublished returns messages that are neither published nor dead
	// and whose retry time has passed, oldest first.
	GetUnpublished(ctx context.Context, limit int) ([]*Message, error)

	MarkPublished(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error
	MarkDead(ctx context.Context, id int64, reason string) error

	// CountPending counts messages that are neither published nor dead.
	CountPending(ctx context.Context) (int, error)
}
