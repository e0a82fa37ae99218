// Package chatapi exposes chat turns over HTTP with Fiber.
package chatapi

import (
	"bufio"
	"context"
	"regexp"
	"strings"

	"github.com/Abraxas-365/debelu/pkg/chat"
	"github.com/Abraxas-365/debelu/pkg/iam"
	"github.com/Abraxas-365/debelu/pkg/iam/auth"
	"github.com/Abraxas-365/debelu/pkg/iam/scopes"
	"github.com/Abraxas-365/debelu/pkg/kernel"
	"github.com/Abraxas-365/debelu/pkg/logx"
	"github.com/gofiber/fiber/v2"
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// ChatHandlers serves the buyer chat endpoints
type ChatHandlers struct {
	service *chat.Service
}

func NewChatHandlers(service *chat.Service) *ChatHandlers {
	return &ChatHandlers{service: service}
}

// RegisterRoutes mounts the chat API under /api/v1/chat.
func (h *ChatHandlers) RegisterRoutes(app fiber.Router, mw *auth.TokenMiddleware) {
	sessions := app.Group("/api/v1/chat/sessions", mw.Authenticate())

	sessions.Post("/:sessionID/messages", mw.RequireScope(scopes.ChatWrite), h.SendMessage)
	sessions.Get("/:sessionID/messages", mw.RequireScope(scopes.ChatRead), h.History)
	sessions.Get("/:sessionID/panel", mw.RequireScope(scopes.ChatRead), h.GetPanel)
	sessions.Delete("/:sessionID/panel", mw.RequireScope(scopes.ChatWrite), h.ClosePanel)
}

// SendMessage runs one turn and streams its progress as NDJSON events:
// snapshot after every change, panel when one opens, then a final message
// or error event. A disconnecting client cancels the turn.
func (h *ChatHandlers) SendMessage(c *fiber.Ctx) error {
	sessionID, err := scopedSession(c)
	if err != nil {
		return err
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apiErrors.NewWithCause(ErrInvalidBody, err)
	}
	if err := chat.ValidateContent(req.Content); err != nil {
		return err
	}
	if h.service.Busy(sessionID) {
		return chat.NewError(chat.ErrTurnInProgress).WithDetail("session_id", c.Params("sessionID"))
	}

	content := strings.Clone(req.Content)
	requestID := strings.Clone(c.GetRespHeader(fiber.HeaderXRequestID))

	c.Set(fiber.HeaderContentType, "application/x-ndjson")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ew := &eventWriter{w: w, cancel: cancel}
		msg, err := h.service.Append(ctx, sessionID, content, ew.update)
		if err != nil {
			if !chat.IsCancelled(err) {
				logx.WithFields(logx.Fields{
					"session_id": sessionID.String(),
					"request_id": requestID,
				}).WithError(err).Warn("chat turn ended with error")
			}
			ew.fail(err, requestID)
			return
		}
		ew.message(msg)
	})
	return nil
}

// History returns the session's committed messages.
func (h *ChatHandlers) History(c *fiber.Ctx) error {
	sessionID, err := scopedSession(c)
	if err != nil {
		return err
	}
	msgs, err := h.service.History(c.UserContext(), sessionID)
	if err != nil {
		return err
	}
	return c.JSON(HistoryResponse{SessionID: c.Params("sessionID"), Messages: msgs})
}

// GetPanel returns the active panel, or 204 when none is shown.
func (h *ChatHandlers) GetPanel(c *fiber.Ctx) error {
	sessionID, err := scopedSession(c)
	if err != nil {
		return err
	}
	act, ok, err := h.service.ActivePanel(c.UserContext(), sessionID)
	if err != nil {
		return err
	}
	if !ok {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(act)
}

func (h *ChatHandlers) ClosePanel(c *fiber.Ctx) error {
	sessionID, err := scopedSession(c)
	if err != nil {
		return err
	}
	if err := h.service.ClosePanel(c.UserContext(), sessionID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// scopedSession namespaces the path's session id under the caller so one
// buyer can never address another buyer's conversation.
func scopedSession(c *fiber.Ctx) (kernel.SessionID, error) {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return "", iam.ErrUnauthorized()
	}
	raw := c.Params("sessionID")
	if !sessionIDPattern.MatchString(raw) {
		return "", apiErrors.New(ErrInvalidSession).WithDetail("session_id", raw)
	}
	return kernel.ScopedSessionID(authContext.UserID, raw), nil
}
