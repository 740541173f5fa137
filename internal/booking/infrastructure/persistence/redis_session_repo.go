package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "opportunity:session:"
	redisIndexKey  = "opportunity:sessions"

	// DefaultSessionTTL bounds how long an idle session survives in Redis.
	DefaultSessionTTL = 72 * time.Hour
)

// RedisSessionRepository stores each session as one JSON document with a
// sliding TTL, plus a sorted-set index scored by update time.
type RedisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionRepository creates a Redis-backed repository. A
// non-positive ttl means DefaultSessionTTL.
func NewRedisSessionRepository(client *redis.Client, ttl time.Duration) *RedisSessionRepository {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionRepository{client: client, ttl: ttl}
}

func sessionKey(id uuid.UUID) string {
	return redisKeyPrefix + id.String()
}

func (r *RedisSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	body, err := json.Marshal(documentOf(session))
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(session.ID()), body, r.ttl)
		pipe.ZAdd(ctx, redisIndexKey, redis.Z{
			Score:  float64(session.UpdatedAt().UnixNano()),
			Member: session.ID().String(),
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	body, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeSession(body)
}

// List returns live sessions most recently updated first. Index entries
// whose document has expired are pruned.
func (r *RedisSessionRepository) List(ctx context.Context) ([]*domain.Session, error) {
	ids, err := r.client.ZRevRange(ctx, redisIndexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = redisKeyPrefix + id
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	var (
		sessions []*domain.Session
		expired  []any
	)
	for i, value := range values {
		body, ok := value.(string)
		if !ok {
			expired = append(expired, ids[i])
			continue
		}
		session, err := decodeSession([]byte(body))
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if len(expired) > 0 {
		if err := r.client.ZRem(ctx, redisIndexKey, expired...).Err(); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

func decodeSession(body []byte) (*domain.Session, error) {
	var doc sessionDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return doc.session()
}
