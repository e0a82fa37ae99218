package framex_test

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/Abraxas-365/debelu/pkg/chat/framex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenario = `0:"Here are some laptops:"
9:{"toolCallId":"c1","toolName":"search_marketplace","args":{"query":"laptop"}}
a:{"toolCallId":"c1","result":[{"id":"1","name":"A"},{"id":"2","name":"B"},{"id":"3","name":"C"},{"id":"4","name":"D"}]}
d:{"finishReason":"stop"}
`

// chunkedReader delivers its payload in pieces split at the given offsets.
type chunkedReader struct {
	chunks []string
}

func newChunkedReader(s string, cuts ...int) *chunkedReader {
	var chunks []string
	prev := 0
	for _, c := range cuts {
		if c <= prev || c >= len(s) {
			continue
		}
		chunks = append(chunks, s[prev:c])
		prev = c
	}
	chunks = append(chunks, s[prev:])
	return &chunkedReader{chunks: chunks}
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks[0] = r.chunks[0][n:]
	if r.chunks[0] == "" {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

func decodeAll(t *testing.T, r io.Reader) []framex.Frame {
	t.Helper()
	frames, err := framex.NewDecoder(r).Frames()
	require.NoError(t, err)
	return frames
}

func TestDecoder_Scenario(t *testing.T) {
	frames := decodeAll(t, strings.NewReader(scenario))

	require.Len(t, frames, 4)
	assert.Equal(t, framex.TextDelta{Text: "Here are some laptops:"}, frames[0])

	call, ok := frames[1].(framex.ToolCall)
	require.True(t, ok)
	assert.Equal(t, "c1", call.CallID)
	assert.Equal(t, "search_marketplace", call.ToolName)
	assert.Equal(t, map[string]any{"query": "laptop"}, call.Args)

	result, ok := frames[2].(framex.ToolResult)
	require.True(t, ok)
	assert.Equal(t, "c1", result.CallID)
	assert.Len(t, result.Result, 4)

	assert.Equal(t, framex.Finish{Reason: "stop"}, frames[3])
}

func TestDecoder_ChunkingInvariance(t *testing.T) {
	want := decodeAll(t, strings.NewReader(scenario))

	// every single split point
	for cut := 1; cut < len(scenario); cut++ {
		got := decodeAll(t, newChunkedReader(scenario, cut))
		require.Equal(t, want, got, "split at byte %d", cut)
	}

	// one byte at a time
	assert.Equal(t, want, decodeAll(t, iotest.OneByteReader(strings.NewReader(scenario))))

	// a handful of multi-split layouts
	for _, cuts := range [][]int{{3, 40, 41, 120}, {1, 2, 3, 4, 5}, {30, 60, 90, 150, 200, 250}} {
		assert.Equal(t, want, decodeAll(t, newChunkedReader(scenario, cuts...)), "cuts %v", cuts)
	}
}

func TestDecoder_MultiByteTextSplitAcrossChunks(t *testing.T) {
	payload := "0:\"café ñandú 🛒\"\n"
	want := []framex.Frame{framex.TextDelta{Text: "café ñandú 🛒"}}

	for cut := 1; cut < len(payload); cut++ {
		assert.Equal(t, want, decodeAll(t, newChunkedReader(payload, cut)))
	}
}

func TestDecoder_MalformedLineDoesNotHaltStream(t *testing.T) {
	input := "0:{\"incomplete\n0:\"ok\"\n"

	dec := framex.NewDecoder(strings.NewReader(input))
	frames, err := dec.Frames()

	require.NoError(t, err)
	assert.Equal(t, []framex.Frame{framex.TextDelta{Text: "ok"}}, frames)
	assert.Equal(t, 1, dec.Stats().Malformed)
}

func TestDecoder_SkipsBlankAndUnknownLines(t *testing.T) {
	input := "\n\r\n   \nx:{\"future\":true}\nno-colon-here\n2:[\"data\"]\n0:\"kept\"\n"

	dec := framex.NewDecoder(strings.NewReader(input))
	frames, err := dec.Frames()

	require.NoError(t, err)
	assert.Equal(t, []framex.Frame{framex.TextDelta{Text: "kept"}}, frames)
	stats := dec.Stats()
	assert.Equal(t, 3, stats.Blank)
	assert.Equal(t, 3, stats.UnknownPrefix)
	assert.Equal(t, 1, stats.Frames)
}

func TestDecoder_CRLFLines(t *testing.T) {
	frames := decodeAll(t, strings.NewReader("0:\"a\"\r\nd:{\"finishReason\":\"stop\"}\r\n"))

	assert.Equal(t, []framex.Frame{framex.TextDelta{Text: "a"}, framex.Finish{Reason: "stop"}}, frames)
}

func TestDecoder_ToolCallArgsDefaultToEmptyObject(t *testing.T) {
	frames := decodeAll(t, strings.NewReader(
		"9:{\"toolCallId\":\"c1\",\"toolName\":\"t\"}\n9:{\"toolCallId\":\"c2\",\"toolName\":\"t\",\"args\":null}\n"))

	require.Len(t, frames, 2)
	for _, f := range frames {
		call := f.(framex.ToolCall)
		assert.NotNil(t, call.Args)
		assert.Empty(t, call.Args)
	}
}

func TestDecoder_RejectsCallFramesWithoutID(t *testing.T) {
	dec := framex.NewDecoder(strings.NewReader(
		"9:{\"toolName\":\"t\",\"args\":{}}\na:{\"result\":[]}\n9:{\"toolCallId\":\"c1\",\"args\":[1]}\n"))
	frames, err := dec.Frames()

	require.NoError(t, err)
	assert.Empty(t, frames)
	assert.Equal(t, 3, dec.Stats().Malformed)
}

func TestDecoder_ToolResultShapes(t *testing.T) {
	frames := decodeAll(t, strings.NewReader(
		"a:{\"toolCallId\":\"c1\",\"result\":null}\na:{\"toolCallId\":\"c2\",\"result\":\"no results\"}\na:{\"toolCallId\":\"c3\",\"result\":{\"panel\":\"cart\"}}\n"))

	require.Len(t, frames, 3)
	assert.Nil(t, frames[0].(framex.ToolResult).Result)
	assert.Equal(t, "no results", frames[1].(framex.ToolResult).Result)
	assert.Equal(t, map[string]any{"panel": "cart"}, frames[2].(framex.ToolResult).Result)
}

func TestDecoder_TrailingPartialLineIsNotAFrame(t *testing.T) {
	dec := framex.NewDecoder(strings.NewReader("0:\"done\"\n0:\"never termin"))
	frames, err := dec.Frames()

	require.NoError(t, err)
	assert.Equal(t, []framex.Frame{framex.TextDelta{Text: "done"}}, frames)
	assert.Equal(t, len("0:\"never termin"), dec.Stats().TrailingBytes)
}

func TestDecoder_IsNotRestartable(t *testing.T) {
	dec := framex.NewDecoder(strings.NewReader("0:\"x\"\n"))

	_, err := dec.Next()
	require.NoError(t, err)
	_, err = dec.Next()
	require.ErrorIs(t, err, io.EOF)
	_, err = dec.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecoder_SurfacesReadErrors(t *testing.T) {
	boom := errors.New("connection reset")
	r := io.MultiReader(strings.NewReader("0:\"partial\"\n"), iotest.ErrReader(boom))

	frames, err := framex.NewDecoder(r).Frames()

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []framex.Frame{framex.TextDelta{Text: "partial"}}, frames)
}
