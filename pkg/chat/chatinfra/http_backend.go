package chatinfra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Abraxas-365/debelu/pkg/asyncx"
	"github.com/Abraxas-365/debelu/pkg/chat"
	"github.com/Abraxas-365/debelu/pkg/logx"
)

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 512

// HTTPBackendConfig configures the LLM backend client.
type HTTPBackendConfig struct {
	URL      string
	APIKey   string
	Timeout  time.Duration // time to first response byte
	Attempts int
	Backoff  time.Duration
}

// HTTPBackend submits conversations to the LLM backend over HTTP and hands
// back the streamed response body.
type HTTPBackend struct {
	cfg    HTTPBackendConfig
	client *http.Client
}

var _ chat.Backend = (*HTTPBackend)(nil)

func NewHTTPBackend(cfg HTTPBackendConfig) *HTTPBackend {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cfg.Timeout

	// no client timeout: it would cut long streams off mid-reply
	return &HTTPBackend{
		cfg:    cfg,
		client: &http.Client{Transport: transport},
	}
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type submitRequest struct {
	Messages []wireMessage `json:"messages"`
}

// wireRole maps chat roles onto the backend's vocabulary.
func wireRole(r chat.Role) string {
	if r == chat.RoleBuyer {
		return "user"
	}
	return string(r)
}

func (b *HTTPBackend) Submit(ctx context.Context, messages []chat.Message) (io.ReadCloser, error) {
	req := submitRequest{Messages: make([]wireMessage, 0, len(messages))}
	for _, m := range messages {
		req.Messages = append(req.Messages, wireMessage{Role: wireRole(m.Role), Content: m.Content})
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, backendErrors.NewWithCause(ErrBackendEncode, err)
	}

	attempt := 0
	return asyncx.RetryWithBackoff(ctx, b.cfg.Attempts, b.cfg.Backoff, func(ctx context.Context) (io.ReadCloser, error) {
		attempt++
		body, err := b.do(ctx, payload)
		if err != nil && ctx.Err() == nil {
			logx.WithFields(logx.Fields{"attempt": attempt, "url": b.cfg.URL}).
				WithError(err).Warn("LLM backend submit failed")
		}
		return body, err
	})
}

// do performs one round trip. Client errors are permanent; transport
// failures, 429 and 5xx responses are retried.
func (b *HTTPBackend) do(ctx context.Context, payload []byte) (io.ReadCloser, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, asyncx.Permanent(backendErrors.NewWithCause(ErrBackendRequest, err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/plain")
	if b.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+b.cfg.APIKey)
	}

	resp, err := b.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, asyncx.Permanent(ctx.Err())
		}
		return nil, backendErrors.NewWithMessage(ErrBackendRequest,
			fmt.Sprintf("LLM backend request failed: %v", err)).WithCause(err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.Body, nil
	}

	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()

	statusErr := backendErrors.NewWithMessage(ErrBackendStatus,
		fmt.Sprintf("LLM backend responded with %s", resp.Status)).
		WithDetail("status", resp.StatusCode).
		WithDetail("body", string(excerpt))

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, statusErr
	}
	return nil, asyncx.Permanent(statusErr)
}
