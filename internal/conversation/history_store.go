package conversation

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

// DefaultSessionTTL bounds how long an idle session's history survives.
const DefaultSessionTTL = 24 * time.Hour

// HistoryStore keeps per-session turn history in redis. Each session owns an
// independent key; there is no cross-session state.
type HistoryStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewHistoryStore creates a history store with the given session TTL.
func NewHistoryStore(client *redis.Client, ttl time.Duration) *HistoryStore {
	if client == nil {
		panic("conversation: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &HistoryStore{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("scheduler.internal.conversation.history"),
	}
}

// Append adds one turn to the session's history in arrival order.
func (s *HistoryStore) Append(ctx context.Context, sessionID string, msg ChatMessage) error {
	ctx, span := s.tracer.Start(ctx, "conversation.append_turn")
	defer span.End()

	history, err := s.Snapshot(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	history = append(history, msg)

	data, err := json.Marshal(history)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to marshal history: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(sessionID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to persist history: %w", err)
	}
	return nil
}

// Snapshot returns the session's turns in order. A session with no history
// yields an empty slice, not an error.
func (s *HistoryStore) Snapshot(ctx context.Context, sessionID string) ([]ChatMessage, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.load_history")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []ChatMessage{}, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to load history: %w", err)
	}

	var history []ChatMessage
	if err := json.Unmarshal(data, &history); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to decode history: %w", err)
	}
	return history, nil
}

// Reset clears the session's history. Resetting an absent session is a no-op.
func (s *HistoryStore) Reset(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "conversation.reset_history")
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to reset history: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("conversation:%s", id)
}
