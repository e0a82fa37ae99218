package chatinfra

import (
	"context"
	"sync"

	"github.com/Abraxas-365/debelu/pkg/chat"
	"github.com/Abraxas-365/debelu/pkg/kernel"
)

// MemoryStore keeps conversation history in process. History is lost on
// restart; it suits development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[kernel.SessionID][]chat.Message
}

var _ chat.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[kernel.SessionID][]chat.Message)}
}

func (s *MemoryStore) AddMessage(_ context.Context, sessionID kernel.SessionID, msg chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append(s.sessions[sessionID], msg)
	return nil
}

// Messages returns a defensive copy of the session history.
func (s *MemoryStore) Messages(_ context.Context, sessionID kernel.SessionID) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.sessions[sessionID]
	out := make([]chat.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }
