// Package framex decodes and encodes the line-delimited, multiplexed stream
// produced by the LLM backend. Each line is a two-character prefix followed
// by a JSON payload:
//
//	0:"text delta"
//	9:{"toolCallId":"c1","toolName":"search_marketplace","args":{...}}
//	a:{"toolCallId":"c1","result":[...]}
//	d:{"finishReason":"stop"}
package framex

// Kind identifies a frame variant
type Kind string

const (
	KindTextDelta  Kind = "text_delta"
	KindToolCall   Kind = "tool_call"
	KindToolResult Kind = "tool_result"
	KindFinish     Kind = "finish"
)

// Wire prefixes, exactly as the backend emits them.
const (
	PrefixTextDelta  = "0:"
	PrefixToolCall   = "9:"
	PrefixToolResult = "a:"
	PrefixFinish     = "d:"
)

// Frame is one decoded unit of the stream. The concrete type is one of
// TextDelta, ToolCall, ToolResult or Finish.
type Frame interface {
	Kind() Kind
}

// TextDelta carries a chunk of assistant text.
type TextDelta struct {
	Text string
}

// ToolCall announces a tool invocation. Args is never nil.
type ToolCall struct {
	CallID   string
	ToolName string
	Args     map[string]any
}

// ToolResult carries the result of a previously announced call. Result is
// the generic JSON decoding of the payload (map, slice, string, float64,
// bool or nil).
type ToolResult struct {
	CallID string
	Result any
}

// Finish marks the producer's end of turn. It carries no state.
type Finish struct {
	Reason string
}

func (TextDelta) Kind() Kind  { return KindTextDelta }
func (ToolCall) Kind() Kind   { return KindToolCall }
func (ToolResult) Kind() Kind { return KindToolResult }
func (Finish) Kind() Kind     { return KindFinish }

// wire payloads
type toolCallPayload struct {
	ToolCallID string         `json:"toolCallId"`
	ToolName   string         `json:"toolName"`
	Args       map[string]any `json:"args"`
}

type toolResultPayload struct {
	ToolCallID string `json:"toolCallId"`
	Result     any    `json:"result"`
}

type finishPayload struct {
	FinishReason string `json:"finishReason"`
}
