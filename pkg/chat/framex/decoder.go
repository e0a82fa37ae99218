package framex

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Abraxas-365/debelu/pkg/logx"
)

// Stats counts what the decoder consumed. It is internal diagnostics only;
// nothing here is ever surfaced to the buyer.
type Stats struct {
	Lines         int
	Frames        int
	Blank         int
	Malformed     int
	UnknownPrefix int
	TrailingBytes int
}

// Decoder turns an incrementally delivered byte source into an ordered
// sequence of frames. A Decoder is single-use: once Next has returned
// io.EOF (or a read error) it keeps returning that error.
type Decoder struct {
	r     *bufio.Reader
	err   error
	stats Stats
	log   *logx.Logger
}

// NewDecoder returns a decoder reading from r. Chunks may split lines at
// any byte; only lines terminated by '\n' are decoded.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:   bufio.NewReader(r),
		log: logx.GetDefaultLogger(),
	}
}

// WithLogger routes drop diagnostics to l instead of the default logger.
func (d *Decoder) WithLogger(l *logx.Logger) *Decoder {
	d.log = l
	return d
}

// Stats returns a copy of the decoder's counters.
func (d *Decoder) Stats() Stats {
	return d.stats
}

// Next returns the next frame. It returns io.EOF when the byte source is
// exhausted and any other error when reading from it fails. Malformed
// lines, blank lines and unknown prefixes are skipped without error.
func (d *Decoder) Next() (Frame, error) {
	for {
		if d.err != nil {
			return nil, d.err
		}

		line, err := d.r.ReadBytes('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				// no terminating newline: not a complete line
				if len(line) > 0 {
					d.stats.TrailingBytes += len(line)
					d.log.WithField("bytes", len(line)).Debug("framex: discarding unterminated trailing line")
				}
				d.err = io.EOF
			} else {
				d.err = fmt.Errorf("framex: read stream: %w", err)
			}
			return nil, d.err
		}

		d.stats.Lines++
		frame, ok := d.decodeLine(line)
		if ok {
			d.stats.Frames++
			return frame, nil
		}
	}
}

// Frames drains the decoder, returning every frame up to end-of-stream.
// A read error is returned together with the frames decoded before it.
func (d *Decoder) Frames() ([]Frame, error) {
	var frames []Frame
	for {
		f, err := d.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return frames, nil
			}
			return frames, err
		}
		frames = append(frames, f)
	}
}

func (d *Decoder) decodeLine(raw []byte) (Frame, bool) {
	line := bytes.TrimSuffix(bytes.TrimSuffix(raw, []byte("\n")), []byte("\r"))
	if len(bytes.TrimSpace(line)) == 0 {
		d.stats.Blank++
		return nil, false
	}

	if len(line) < 2 || line[1] != ':' {
		d.stats.UnknownPrefix++
		return nil, false
	}

	prefix, payload := string(line[:2]), line[2:]
	frame, err := decodePayload(prefix, payload)
	if err != nil {
		if errors.Is(err, errUnknownPrefix) {
			d.stats.UnknownPrefix++
			d.log.WithField("prefix", prefix).Debug("framex: ignoring unknown prefix")
			return nil, false
		}
		d.stats.Malformed++
		d.log.WithFields(logx.Fields{"prefix": prefix, "bytes": len(payload)}).
			WithError(err).Debug("framex: dropping malformed frame")
		return nil, false
	}
	return frame, true
}

var (
	errUnknownPrefix = errors.New("unknown prefix")
	errMissingCallID = errors.New("missing toolCallId")
)

func decodePayload(prefix string, payload []byte) (Frame, error) {
	switch prefix {
	case PrefixTextDelta:
		var text string
		if err := json.Unmarshal(payload, &text); err != nil {
			return nil, err
		}
		return TextDelta{Text: text}, nil

	case PrefixToolCall:
		var p toolCallPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		if p.ToolCallID == "" {
			return nil, errMissingCallID
		}
		if p.Args == nil {
			p.Args = map[string]any{}
		}
		return ToolCall{CallID: p.ToolCallID, ToolName: p.ToolName, Args: p.Args}, nil

	case PrefixToolResult:
		var p toolResultPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		if p.ToolCallID == "" {
			return nil, errMissingCallID
		}
		return ToolResult{CallID: p.ToolCallID, Result: p.Result}, nil

	case PrefixFinish:
		var p finishPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		return Finish{Reason: p.FinishReason}, nil
	}
	return nil, errUnknownPrefix
}
