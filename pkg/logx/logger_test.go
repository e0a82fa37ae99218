package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(format Format, level Level) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cfg := DefaultConfig()
	cfg.Format = format
	cfg.Level = level
	cfg.EnableColors = false
	cfg.Output = buf
	return NewLogger(cfg), buf
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	l, buf := newTestLogger(FormatConsole, LevelWarn)

	l.WithField("k", "v").Info("hidden")
	assert.Empty(t, buf.String())

	l.WithField("k", "v").Warn("shown")
	assert.Contains(t, buf.String(), "[WARN ] shown k=v")
}

func TestLogger_JSONIncludesFieldsAndError(t *testing.T) {
	l, buf := newTestLogger(FormatJSON, LevelDebug)

	l.WithFields(Fields{"session_id": "s1"}).WithError(errors.New("boom")).Debug("dropped frame")

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "DEBUG", got["level"])
	assert.Equal(t, "dropped frame", got["message"])
	assert.Equal(t, "s1", got["session_id"])
	assert.Equal(t, "boom", got["error"])
}

func TestLogger_FatalUsesExitFunc(t *testing.T) {
	l, buf := newTestLogger(FormatConsole, LevelInfo)
	code := -1
	l.exitFunc = func(c int) { code = c }

	l.WithField("a", 1).Fatal("bye")

	assert.Equal(t, 1, code)
	assert.True(t, strings.Contains(buf.String(), "bye"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelDebug, ParseLevel(" debug "))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
}
