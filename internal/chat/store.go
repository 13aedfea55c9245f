package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const sessionKeyPrefix = "chat_session:"

// SessionStore keeps per-session chat logs in Redis. Sessions expire after
// the configured TTL of inactivity; each append refreshes it.
type SessionStore struct {
	redis    *redis.Client
	tracer   trace.Tracer
	ttl      time.Duration
	maxTurns int64
}

// NewSessionStore creates the store. A nil client yields a nil store, which
// degrades every method to a no-op so chat works without Redis.
func NewSessionStore(redisClient *redis.Client, ttl time.Duration) *SessionStore {
	if redisClient == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{
		redis:    redisClient,
		tracer:   otel.Tracer("bookmydoc.internal.chat.session"),
		ttl:      ttl,
		maxTurns: 100,
	}
}

// Append adds a turn to the session log and refreshes its TTL.
func (s *SessionStore) Append(ctx context.Context, sessionID string, turn Turn) error {
	if s == nil || s.redis == nil {
		return nil
	}
	if sessionID == "" {
		return errors.New("chat: session id required")
	}
	if turn.Timestamp == "" {
		turn.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}

	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("chat: marshal turn: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "chat.session.append")
	defer span.End()

	key := sessionKeyPrefix + sessionID
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, s.ttl)
	if s.maxTurns > 0 {
		pipe.LTrim(ctx, key, -s.maxTurns, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("chat: append turn: %w", err)
	}
	return nil
}

// History returns the session log oldest first.
func (s *SessionStore) History(ctx context.Context, sessionID string) ([]Turn, error) {
	if s == nil || s.redis == nil {
		return nil, nil
	}
	if sessionID == "" {
		return nil, errors.New("chat: session id required")
	}

	ctx, span := s.tracer.Start(ctx, "chat.session.history")
	defer span.End()

	raw, err := s.redis.LRange(ctx, sessionKeyPrefix+sessionID, 0, -1).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("chat: read session: %w", err)
	}

	turns := make([]Turn, 0, len(raw))
	for _, item := range raw {
		var turn Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, fmt.Errorf("chat: decode turn: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}
