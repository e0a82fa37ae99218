package chatapi_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Abraxas-365/debelu/pkg/chat"
	"github.com/Abraxas-365/debelu/pkg/chat/chatapi"
	"github.com/Abraxas-365/debelu/pkg/chat/chatinfra"
	"github.com/Abraxas-365/debelu/pkg/chat/panelx"
	"github.com/Abraxas-365/debelu/pkg/errx/errxfiber"
	"github.com/Abraxas-365/debelu/pkg/iam/auth"
	"github.com/Abraxas-365/debelu/pkg/iam/scopes"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const laptopStream = `0:"Here are some laptops:"
9:{"toolCallId":"c1","toolName":"search_marketplace","args":{"query":"laptop"}}
a:{"toolCallId":"c1","result":[{"id":"1","name":"A"},{"id":"2","name":"B"},{"id":"3","name":"C"},{"id":"4","name":"D"}]}
d:{"finishReason":"stop"}
`

type backendFunc func(ctx context.Context, messages []chat.Message) (io.ReadCloser, error)

func (f backendFunc) Submit(ctx context.Context, messages []chat.Message) (io.ReadCloser, error) {
	return f(ctx, messages)
}

func streamOf(s string) backendFunc {
	return func(context.Context, []chat.Message) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(s)), nil
	}
}

type harness struct {
	app     *fiber.App
	service *chat.Service
	token   string
}

func newHarness(t *testing.T, backend chat.Backend) *harness {
	t.Helper()
	tokens := auth.NewJWTService("secret", time.Minute, "debelu")
	token, err := tokens.GenerateAccessToken("u1", map[string]any{"scopes": scopes.BuyerDefault})
	require.NoError(t, err)

	svc := chat.NewService(backend, chatinfra.NewMemoryStore(), panelx.NewMemoryBoard())
	app := fiber.New(fiber.Config{ErrorHandler: errxfiber.NewErrorHandler(errxfiber.Config{})})
	chatapi.NewChatHandlers(svc).RegisterRoutes(app, auth.NewAuthMiddleware(tokens, nil))

	return &harness{app: app, service: svc, token: token}
}

func (h *harness) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Authorization", "Bearer "+h.token)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readEvents(t *testing.T, r io.Reader) []chatapi.Event {
	t.Helper()
	var events []chatapi.Event
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		var ev chatapi.Event
		require.NoError(t, json.Unmarshal(sc.Bytes(), &ev))
		events = append(events, ev)
	}
	require.NoError(t, sc.Err())
	return events
}

func TestSendMessage_StreamsTurn(t *testing.T) {
	h := newHarness(t, streamOf(laptopStream))

	resp := h.do(t, "POST", "/api/v1/chat/sessions/s1/messages", `{"content":"show me laptops"}`)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/x-ndjson", resp.Header.Get("Content-Type"))

	events := readEvents(t, resp.Body)
	var types []chatapi.EventType
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []chatapi.EventType{
		chatapi.EventSnapshot,
		chatapi.EventSnapshot,
		chatapi.EventSnapshot,
		chatapi.EventPanel,
		chatapi.EventMessage,
	}, types)

	assert.Equal(t, "Here are some laptops:", events[0].Snapshot.Content)
	assert.Equal(t, panelx.KindIntelligence, events[3].Panel.Kind)

	final := events[4].Message
	require.NotNil(t, final)
	assert.Equal(t, chat.RoleAssistant, final.Role)
	require.Len(t, final.ToolInvocations, 1)
	result, ok := final.ToolInvocations[0].Result()
	require.True(t, ok)
	assert.Len(t, result, 4)
}

func TestHistoryAndPanel(t *testing.T) {
	h := newHarness(t, streamOf(laptopStream))
	resp := h.do(t, "POST", "/api/v1/chat/sessions/s1/messages", `{"content":"laptops"}`)
	_, _ = io.ReadAll(resp.Body)

	resp = h.do(t, "GET", "/api/v1/chat/sessions/s1/messages", "")
	require.Equal(t, 200, resp.StatusCode)
	var history chatapi.HistoryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	assert.Equal(t, "s1", history.SessionID)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, chat.RoleBuyer, history.Messages[0].Role)

	resp = h.do(t, "GET", "/api/v1/chat/sessions/s1/panel", "")
	require.Equal(t, 200, resp.StatusCode)
	var act panelx.Activation
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&act))
	assert.Equal(t, panelx.KindIntelligence, act.Kind)

	resp = h.do(t, "DELETE", "/api/v1/chat/sessions/s1/panel", "")
	assert.Equal(t, 204, resp.StatusCode)

	resp = h.do(t, "GET", "/api/v1/chat/sessions/s1/panel", "")
	assert.Equal(t, 204, resp.StatusCode)

	// sessions are private to their owner
	resp = h.do(t, "GET", "/api/v1/chat/sessions/s2/messages", "")
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	assert.Empty(t, history.Messages)
}

func TestSendMessage_BackendFailureIsAMessage(t *testing.T) {
	h := newHarness(t, backendFunc(func(context.Context, []chat.Message) (io.ReadCloser, error) {
		return nil, io.ErrUnexpectedEOF
	}))

	resp := h.do(t, "POST", "/api/v1/chat/sessions/s1/messages", `{"content":"hi"}`)
	require.Equal(t, 200, resp.StatusCode)

	events := readEvents(t, resp.Body)
	require.Len(t, events, 2)
	assert.Equal(t, chatapi.EventSnapshot, events[0].Type)
	assert.Equal(t, chatapi.EventMessage, events[1].Type)
	assert.Equal(t, chat.FailurePrefix+"unexpected EOF", events[1].Message.Content)
}

func TestSendMessage_BusySession(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	h := newHarness(t, backendFunc(func(context.Context, []chat.Message) (io.ReadCloser, error) {
		close(started)
		<-release
		return io.NopCloser(strings.NewReader("")), nil
	}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = h.service.Append(context.Background(), "u1/s1", "first", nil)
	}()
	<-started

	resp := h.do(t, "POST", "/api/v1/chat/sessions/s1/messages", `{"content":"second"}`)
	assert.Equal(t, 409, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "CHAT_TURN_IN_PROGRESS", body["code"])

	close(release)
	<-done
}

func TestSendMessage_Validation(t *testing.T) {
	h := newHarness(t, streamOf(""))

	cases := []struct {
		name, path, body string
		status           int
	}{
		{"blank content", "/api/v1/chat/sessions/s1/messages", `{"content":"  "}`, 400},
		{"bad json", "/api/v1/chat/sessions/s1/messages", `{"content":`, 400},
		{"bad session id", "/api/v1/chat/sessions/s.1/messages", `{"content":"hi"}`, 400},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := h.do(t, "POST", tc.path, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestRoutesRequireToken(t *testing.T) {
	h := newHarness(t, streamOf(""))

	req := httptest.NewRequest("GET", "/api/v1/chat/sessions/s1/messages", nil)
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 401, resp.StatusCode)
}
