package chatapi

import (
	"github.com/Abraxas-365/debelu/pkg/chat"
	"github.com/Abraxas-365/debelu/pkg/chat/panelx"
	"github.com/Abraxas-365/debelu/pkg/errx"
)

// SendMessageRequest is the body of POST .../messages.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// HistoryResponse lists a session's committed messages.
type HistoryResponse struct {
	SessionID string         `json:"sessionId"`
	Messages  []chat.Message `json:"messages"`
}

// EventType tags one line of the send-message stream.
type EventType string

const (
	EventSnapshot EventType = "snapshot"
	EventPanel    EventType = "panel"
	EventMessage  EventType = "message"
	EventError    EventType = "error"
)

// Event is one NDJSON line of the send-message response. Exactly one
// payload field is set, matching Type.
type Event struct {
	Type     EventType               `json:"type"`
	Snapshot *chat.Snapshot          `json:"snapshot,omitempty"`
	Panel    *panelx.Activation      `json:"panel,omitempty"`
	Message  *chat.Message           `json:"message,omitempty"`
	Error    *errx.HTTPErrorResponse `json:"error,omitempty"`
}
