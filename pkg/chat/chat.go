// Package chat turns a buyer message into an assistant reply by folding the
// backend's frame stream into message content, tool invocations and panel
// activations.
package chat

import (
	"context"
	"io"
	"time"

	"github.com/Abraxas-365/debelu/pkg/chat/panelx"
	"github.com/Abraxas-365/debelu/pkg/chat/toolx"
	"github.com/Abraxas-365/debelu/pkg/kernel"
	"github.com/google/uuid"
)

// Role identifies who authored a message.
type Role string

const (
	RoleBuyer     Role = "buyer"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleBuyer, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message is one entry of a session's conversation history. Once committed
// it is never edited.
type Message struct {
	ID              string             `json:"id"`
	Role            Role               `json:"role"`
	Content         string             `json:"content"`
	CreatedAt       time.Time          `json:"createdAt"`
	ToolInvocations []toolx.Invocation `json:"toolInvocations"`
}

func newMessage(role Role, content string, invocations []toolx.Invocation) Message {
	if invocations == nil {
		invocations = []toolx.Invocation{}
	}
	return Message{
		ID:              uuid.NewString(),
		Role:            role,
		Content:         content,
		CreatedAt:       time.Now().UTC(),
		ToolInvocations: invocations,
	}
}

// NewBuyerMessage creates a message authored by the buyer.
func NewBuyerMessage(content string) Message {
	return newMessage(RoleBuyer, content, nil)
}

// NewAssistantMessage creates a finalized assistant message.
func NewAssistantMessage(content string, invocations []toolx.Invocation) Message {
	return newMessage(RoleAssistant, content, invocations)
}

// Snapshot is an immutable view of the assistant message being built.
type Snapshot struct {
	Content         string             `json:"content"`
	ToolInvocations []toolx.Invocation `json:"toolInvocations"`
}

// Update is delivered after every frame that changed the in-progress
// message. Panel is set when that frame activated a panel.
type Update struct {
	Snapshot Snapshot
	Panel    *panelx.Activation
}

// UpdateFunc receives live updates. It runs on the turn's goroutine and
// must not block for long.
type UpdateFunc func(Update)

// Backend submits the conversation to the language model and returns the
// reply as a frame stream. The caller closes the stream.
type Backend interface {
	Submit(ctx context.Context, messages []Message) (io.ReadCloser, error)
}

// Store persists conversation history per session.
type Store interface {
	AddMessage(ctx context.Context, sessionID kernel.SessionID, msg Message) error
	Messages(ctx context.Context, sessionID kernel.SessionID) ([]Message, error)
}
