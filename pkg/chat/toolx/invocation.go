// Package toolx records the tool invocations of a single assistant turn.
package toolx

import (
	"encoding/json"
	"fmt"
)

// State is the lifecycle position of an invocation. It only moves forward.
type State string

const (
	StateCalled   State = "call"
	StateResulted State = "result"
)

// Invocation is one tool usage within a turn. The result is held behind an
// unexported pointer: a nil result means the invocation is still Called,
// so a Called invocation has no result to misread.
type Invocation struct {
	CallID   string
	ToolName string
	Args     map[string]any

	result *outcome
}

type outcome struct {
	value any
}

// Called builds an invocation that has been announced but not answered.
func Called(callID, toolName string, args map[string]any) Invocation {
	if args == nil {
		args = map[string]any{}
	}
	return Invocation{CallID: callID, ToolName: toolName, Args: args}
}

// Resolved returns a copy of i moved into the Resulted state.
func (i Invocation) Resolved(result any) Invocation {
	i.result = &outcome{value: result}
	return i
}

func (i Invocation) State() State {
	if i.result != nil {
		return StateResulted
	}
	return StateCalled
}

// Result returns the tool result and true once the invocation is Resulted.
func (i Invocation) Result() (any, bool) {
	if i.result == nil {
		return nil, false
	}
	return i.result.value, true
}

// clone deep-copies the JSON values so a snapshot never aliases registry state.
func (i Invocation) clone() Invocation {
	out := Invocation{
		CallID:   i.CallID,
		ToolName: i.ToolName,
		Args:     cloneValue(i.Args).(map[string]any),
	}
	if i.result != nil {
		out.result = &outcome{value: cloneValue(i.result.value)}
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = cloneValue(e)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for k, e := range t {
			s[k] = cloneValue(e)
		}
		return s
	default:
		return v
	}
}

type invocationJSON struct {
	ToolCallID string         `json:"toolCallId"`
	ToolName   string         `json:"toolName"`
	Args       map[string]any `json:"args"`
	State      State          `json:"state"`
	Result     any            `json:"result,omitempty"`
}

// MarshalJSON renders the invocation the way the chat UI consumes it.
func (i Invocation) MarshalJSON() ([]byte, error) {
	v := invocationJSON{
		ToolCallID: i.CallID,
		ToolName:   i.ToolName,
		Args:       i.Args,
		State:      i.State(),
	}
	if v.Args == nil {
		v.Args = map[string]any{}
	}
	if r, ok := i.Result(); ok {
		v.Result = r
	}
	return json.Marshal(v)
}

func (i *Invocation) UnmarshalJSON(data []byte) error {
	var v struct {
		invocationJSON
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	*i = Called(v.ToolCallID, v.ToolName, v.Args)
	switch v.State {
	case StateCalled, "":
	case StateResulted:
		var result any
		if len(v.Result) > 0 {
			if err := json.Unmarshal(v.Result, &result); err != nil {
				return err
			}
		}
		*i = i.Resolved(result)
	default:
		return fmt.Errorf("toolx: unknown invocation state %q", v.State)
	}
	return nil
}
