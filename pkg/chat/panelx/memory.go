package panelx

import (
	"context"
	"sync"

	"github.com/Abraxas-365/debelu/pkg/kernel"
)

// MemoryBoard keeps panel state in process.
type MemoryBoard struct {
	mu     sync.RWMutex
	active map[kernel.SessionID]Activation
}

func NewMemoryBoard() *MemoryBoard {
	return &MemoryBoard{active: make(map[kernel.SessionID]Activation)}
}

func (b *MemoryBoard) Activate(_ context.Context, sessionID kernel.SessionID, kind Kind, payload any) error {
	if err := ValidateKind(kind); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active[sessionID] = Activation{Kind: kind, Payload: payload}
	return nil
}

func (b *MemoryBoard) Active(_ context.Context, sessionID kernel.SessionID) (Activation, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	a, ok := b.active[sessionID]
	return a, ok, nil
}

func (b *MemoryBoard) Clear(_ context.Context, sessionID kernel.SessionID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.active, sessionID)
	return nil
}
