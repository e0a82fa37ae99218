package chatinfra

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Abraxas-365/debelu/pkg/chat"
	"github.com/Abraxas-365/debelu/pkg/errx"
	"github.com/Abraxas-365/debelu/pkg/kernel"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each session's history in a Redis list, one JSON
// document per message.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ chat.Store = (*RedisStore)(nil)

// NewRedisStore creates a store whose sessions expire ttl after their last
// message. Zero keeps them forever.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func messagesKey(sessionID kernel.SessionID) string {
	return fmt.Sprintf("chat:session:%s:messages", sessionID)
}

func (s *RedisStore) AddMessage(ctx context.Context, sessionID kernel.SessionID, msg chat.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return storeErrors.NewWithCause(ErrMarshal, err).WithDetail("message_id", msg.ID)
	}

	key := messagesKey(sessionID)
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, key, data)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return storeErrors.NewWithCause(ErrAppend, err).WithDetail("session_id", sessionID.String())
	}
	return nil
}

func (s *RedisStore) Messages(ctx context.Context, sessionID kernel.SessionID) ([]chat.Message, error) {
	items, err := s.rdb.LRange(ctx, messagesKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, storeErrors.NewWithCause(ErrLoad, err).WithDetail("session_id", sessionID.String())
	}

	msgs := make([]chat.Message, 0, len(items))
	for i, item := range items {
		var msg chat.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, storeErrors.NewWithCause(ErrUnmarshal, err).
				WithDetail("session_id", sessionID.String()).
				WithDetail("index", i)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return errx.Wrap(err, "redis unreachable", errx.TypeExternal)
	}
	return nil
}
