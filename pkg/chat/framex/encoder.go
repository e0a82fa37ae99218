package framex

import (
	"encoding/json"
	"fmt"
	"io"
)

// Encoder writes frames in the backend's wire format, one line per frame.
type Encoder struct {
	w io.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes f as a single newline-terminated line.
func (e *Encoder) Encode(f Frame) error {
	line, err := MarshalLine(f)
	if err != nil {
		return err
	}
	_, err = e.w.Write(line)
	return err
}

// MarshalLine renders f as "<prefix><json>\n".
func MarshalLine(f Frame) ([]byte, error) {
	var (
		prefix  string
		payload any
	)
	switch v := f.(type) {
	case TextDelta:
		prefix, payload = PrefixTextDelta, v.Text
	case ToolCall:
		args := v.Args
		if args == nil {
			args = map[string]any{}
		}
		prefix, payload = PrefixToolCall, toolCallPayload{ToolCallID: v.CallID, ToolName: v.ToolName, Args: args}
	case ToolResult:
		prefix, payload = PrefixToolResult, toolResultPayload{ToolCallID: v.CallID, Result: v.Result}
	case Finish:
		prefix, payload = PrefixFinish, finishPayload{FinishReason: v.Reason}
	default:
		return nil, fmt.Errorf("framex: cannot encode frame %T", f)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("framex: marshal %s frame: %w", f.Kind(), err)
	}

	line := make([]byte, 0, len(prefix)+len(body)+1)
	line = append(line, prefix...)
	line = append(line, body...)
	return append(line, '\n'), nil
}
