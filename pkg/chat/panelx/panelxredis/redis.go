// Package panelxredis stores panel state in Redis so every API replica
// sees the same active panel for a session.
package panelxredis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abraxas-365/debelu/pkg/chat/panelx"
	"github.com/Abraxas-365/debelu/pkg/kernel"
	"github.com/redis/go-redis/v9"
)

// Board implements panelx.Board backed by Redis string keys.
type Board struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ panelx.Board = (*Board)(nil)

// NewBoard creates a Redis board. Panels expire after ttl; zero keeps them
// until cleared.
func NewBoard(rdb *redis.Client, ttl time.Duration) *Board {
	return &Board{rdb: rdb, ttl: ttl}
}

func panelKey(sessionID kernel.SessionID) string {
	return fmt.Sprintf("panelx:session:%s", sessionID)
}

func (b *Board) Activate(ctx context.Context, sessionID kernel.SessionID, kind panelx.Kind, payload any) error {
	if err := panelx.ValidateKind(kind); err != nil {
		return err
	}
	data, err := json.Marshal(panelx.Activation{Kind: kind, Payload: payload})
	if err != nil {
		return redisErrors.NewWithCause(ErrMarshal, err).WithDetail("session_id", sessionID.String())
	}
	if err := b.rdb.Set(ctx, panelKey(sessionID), data, b.ttl).Err(); err != nil {
		return redisErrors.NewWithCause(ErrActivate, err).WithDetail("session_id", sessionID.String())
	}
	return nil
}

func (b *Board) Active(ctx context.Context, sessionID kernel.SessionID) (panelx.Activation, bool, error) {
	data, err := b.rdb.Get(ctx, panelKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return panelx.Activation{}, false, nil
		}
		return panelx.Activation{}, false, redisErrors.NewWithCause(ErrGet, err).WithDetail("session_id", sessionID.String())
	}

	var act panelx.Activation
	if err := json.Unmarshal(data, &act); err != nil {
		return panelx.Activation{}, false, redisErrors.NewWithCause(ErrUnmarshal, err).WithDetail("session_id", sessionID.String())
	}
	return act, true, nil
}

func (b *Board) Clear(ctx context.Context, sessionID kernel.SessionID) error {
	if err := b.rdb.Del(ctx, panelKey(sessionID)).Err(); err != nil {
		return redisErrors.NewWithCause(ErrClear, err).WithDetail("session_id", sessionID.String())
	}
	return nil
}
