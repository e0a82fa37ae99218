package chat

import (
	"strings"

	"github.com/Abraxas-365/debelu/pkg/chat/framex"
	"github.com/Abraxas-365/debelu/pkg/chat/panelx"
	"github.com/Abraxas-365/debelu/pkg/chat/toolx"
)

// Turn accumulates one assistant reply. It is owned by a single goroutine.
type Turn struct {
	content    strings.Builder
	registry   *toolx.Registry
	dispatcher *panelx.Dispatcher
	finished   bool
}

func NewTurn(dispatcher *panelx.Dispatcher) *Turn {
	if dispatcher == nil {
		dispatcher = panelx.DefaultDispatcher()
	}
	return &Turn{registry: toolx.NewRegistry(), dispatcher: dispatcher}
}

// Apply folds f into the turn. changed reports whether the content or the
// invocations moved. act is non-nil when f resolved an invocation whose
// tool opens a panel.
func (t *Turn) Apply(f framex.Frame) (changed bool, act *panelx.Activation) {
	switch v := f.(type) {
	case framex.TextDelta:
		if v.Text == "" {
			return false, nil
		}
		t.content.WriteString(v.Text)
		return true, nil

	case framex.ToolCall:
		t.registry.Call(v)
		return true, nil

	case framex.ToolResult:
		inv, ok := t.registry.Resolve(v)
		if !ok {
			return false, nil
		}
		if a, ok := t.dispatcher.Decide(inv); ok {
			return true, &a
		}
		return true, nil

	case framex.Finish:
		t.finished = true
	}
	return false, nil
}

// Snapshot copies the in-progress message.
func (t *Turn) Snapshot() Snapshot {
	return Snapshot{Content: t.content.String(), ToolInvocations: t.registry.Snapshot()}
}

// Finished reports whether the producer sent a finish frame.
func (t *Turn) Finished() bool { return t.finished }

// Orphans counts tool results dropped for lack of a matching call.
func (t *Turn) Orphans() int { return t.registry.Orphans() }

// Finalize freezes the turn into an assistant message and clears the turn.
func (t *Turn) Finalize() Message {
	snap := t.Snapshot()
	t.Discard()
	return NewAssistantMessage(snap.Content, snap.ToolInvocations)
}

// Discard drops everything accumulated so far.
func (t *Turn) Discard() {
	t.content.Reset()
	t.registry.Reset()
	t.finished = false
}
