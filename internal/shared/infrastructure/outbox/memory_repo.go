package outbox

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository keeps the outbox in process memory.
type MemoryRepository struct {
	mu       sync.Mutex
	messages []*Message
	nextID   int64
	now      func() time.Time
}

// NewMemoryRepository creates an empty in-memory outbox.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1, now: time.Now}
}

func (r *MemoryRepository) Save(_ context.Context, msg *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.append(msg)
	return nil
}

func (r *MemoryRepository) SaveBatch(_ context.Context, msgs []*Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range msgs {
		r.append(msg)
	}
	return nil
}

func (r *MemoryRepository) append(msg *Message) {
	msg.ID = r.nextID
	r.nextID++
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = r.now()
	}
	r.messages = append(r.messages, msg)
}

func (r *MemoryRepository) GetUnpublished(_ context.Context, limit int) ([]*Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var result []*Message
	for _, msg := range r.messages {
		if len(result) >= limit {
			break
		}
		if msg.IsPublished() || msg.IsDead() {
			continue
		}
		if msg.NextRetryAt != nil && msg.NextRetryAt.After(now) {
			continue
		}
		copied := *msg
		result = append(result, &copied)
	}
	return result, nil
}

func (r *MemoryRepository) MarkPublished(_ context.Context, id int64) error {
	return r.update(id, func(msg *Message, now time.Time) {
		msg.PublishedAt = &now
	})
}

func (r *MemoryRepository) MarkFailed(_ context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	return r.update(id, func(msg *Message, _ time.Time) {
		msg.RetryCount++
		msg.LastError = &errMsg
		msg.NextRetryAt = &nextRetryAt
	})
}

func (r *MemoryRepository) MarkDead(_ context.Context, id int64, reason string) error {
	return r.update(id, func(msg *Message, now time.Time) {
		msg.DeadLetteredAt = &now
		msg.DeadLetterReason = &reason
	})
}

func (r *MemoryRepository) CountPending(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, msg := range r.messages {
		if !msg.IsPublished() && !msg.IsDead() {
			n++
		}
	}
	return n, nil
}

// All returns copies of every stored message in insertion order.
func (r *MemoryRepository) All() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	for i, msg := range r.messages {
		out[i] = *msg
	}
	return out
}

func (r *MemoryRepository) update(id int64, fn func(*Message, time.Time)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range r.messages {
		if msg.ID == id {
			fn(msg, r.now())
			return nil
		}
	}
	return nil
}
