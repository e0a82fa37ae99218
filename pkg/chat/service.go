package chat

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/Abraxas-365/debelu/pkg/chat/framex"
	"github.com/Abraxas-365/debelu/pkg/chat/panelx"
	"github.com/Abraxas-365/debelu/pkg/errx"
	"github.com/Abraxas-365/debelu/pkg/kernel"
	"github.com/Abraxas-365/debelu/pkg/logx"
)

// FailurePrefix starts the assistant message that replaces a failed turn.
const FailurePrefix = "Sorry, something went wrong: "

// Service runs chat turns. At most one turn is in flight per session.
type Service struct {
	backend    Backend
	store      Store
	board      panelx.Board
	dispatcher *panelx.Dispatcher
	log        *logx.Logger

	mu   sync.Mutex
	busy map[kernel.SessionID]struct{}
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithDispatcher replaces the default tool → panel dispatch table.
func WithDispatcher(d *panelx.Dispatcher) ServiceOption {
	return func(s *Service) {
		s.dispatcher = d
	}
}

func WithLogger(l *logx.Logger) ServiceOption {
	return func(s *Service) {
		s.log = l
	}
}

func NewService(backend Backend, store Store, board panelx.Board, opts ...ServiceOption) *Service {
	s := &Service{
		backend:    backend,
		store:      store,
		board:      board,
		dispatcher: panelx.DefaultDispatcher(),
		log:        logx.GetDefaultLogger(),
		busy:       make(map[kernel.SessionID]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append submits a buyer message and streams the assistant reply.
//
// onUpdate (optional) receives a snapshot after every frame that changed the
// reply. The finalized assistant message is committed to the store and
// returned. Backend and stream failures do not surface as errors: the
// partial reply is replaced by an apology carrying the failure reason,
// which is committed instead. Cancelling ctx stops the stream and discards
// the partial reply; nothing is committed for it and ErrTurnCancelled is
// returned. A second Append for a session with a turn in flight fails with
// ErrTurnInProgress.
func (s *Service) Append(ctx context.Context, sessionID kernel.SessionID, content string, onUpdate UpdateFunc) (Message, error) {
	if err := ValidateContent(content); err != nil {
		return Message{}, err
	}
	if onUpdate == nil {
		onUpdate = func(Update) {}
	}

	if !s.acquire(sessionID) {
		return Message{}, chatErrors.New(ErrTurnInProgress).WithDetail("session_id", sessionID.String())
	}
	defer s.release(sessionID)

	history, err := s.store.Messages(ctx, sessionID)
	if err != nil {
		return Message{}, chatErrors.NewWithCause(ErrHistory, err).WithDetail("session_id", sessionID.String())
	}

	buyer := NewBuyerMessage(content)
	if err := s.store.AddMessage(ctx, sessionID, buyer); err != nil {
		return Message{}, chatErrors.NewWithCause(ErrPersist, err).WithDetail("session_id", sessionID.String())
	}

	turn := NewTurn(s.dispatcher)
	err = s.stream(ctx, sessionID, append(history, buyer), turn, onUpdate)

	switch {
	case err == nil:
		msg := turn.Finalize()
		return msg, s.commit(ctx, sessionID, msg)

	case ctx.Err() != nil:
		turn.Discard()
		s.log.WithField("session_id", sessionID.String()).Info("chat turn cancelled, partial reply discarded")
		return Message{}, chatErrors.NewWithCause(ErrTurnCancelled, ctx.Err()).WithDetail("session_id", sessionID.String())

	default:
		turn.Discard()
		s.log.WithField("session_id", sessionID.String()).WithError(err).Error("chat turn failed")

		msg := NewAssistantMessage(failureText(err), nil)
		onUpdate(Update{Snapshot: Snapshot{Content: msg.Content, ToolInvocations: msg.ToolInvocations}})
		return msg, s.commit(ctx, sessionID, msg)
	}
}

// stream submits the conversation and folds the reply into turn until the
// byte source ends, fails, or ctx is cancelled.
func (s *Service) stream(ctx context.Context, sessionID kernel.SessionID, messages []Message, turn *Turn, onUpdate UpdateFunc) error {
	body, err := s.backend.Submit(ctx, messages)
	if err != nil {
		return err
	}
	defer body.Close()

	// unblock a pending read when the caller goes away
	stop := context.AfterFunc(ctx, func() { body.Close() })
	defer stop()

	dec := framex.NewDecoder(body).WithLogger(s.log)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		changed, act := turn.Apply(frame)
		if act != nil {
			s.activate(ctx, sessionID, *act)
		}
		if changed {
			onUpdate(Update{Snapshot: turn.Snapshot(), Panel: act})
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	stats := dec.Stats()
	s.log.WithFields(logx.Fields{
		"session_id":     sessionID.String(),
		"frames":         stats.Frames,
		"malformed":      stats.Malformed,
		"unknown_prefix": stats.UnknownPrefix,
		"trailing_bytes": stats.TrailingBytes,
		"orphan_results": turn.Orphans(),
		"finished":       turn.Finished(),
	}).Debug("chat stream drained")
	return nil
}

// activate publishes a panel. Failures are logged and never abort the turn.
func (s *Service) activate(ctx context.Context, sessionID kernel.SessionID, act panelx.Activation) {
	if s.board == nil {
		return
	}
	if err := s.board.Activate(ctx, sessionID, act.Kind, act.Payload); err != nil {
		s.log.WithFields(logx.Fields{
			"session_id": sessionID.String(),
			"panel":      string(act.Kind),
		}).WithError(err).Warn("panel activation failed")
	}
}

func (s *Service) commit(ctx context.Context, sessionID kernel.SessionID, msg Message) error {
	if err := s.store.AddMessage(ctx, sessionID, msg); err != nil {
		return chatErrors.NewWithCause(ErrPersist, err).
			WithDetail("session_id", sessionID.String()).
			WithDetail("message_id", msg.ID)
	}
	return nil
}

// History returns the committed messages of a session in order.
func (s *Service) History(ctx context.Context, sessionID kernel.SessionID) ([]Message, error) {
	msgs, err := s.store.Messages(ctx, sessionID)
	if err != nil {
		return nil, chatErrors.NewWithCause(ErrHistory, err).WithDetail("session_id", sessionID.String())
	}
	if msgs == nil {
		msgs = []Message{}
	}
	return msgs, nil
}

// ActivePanel returns the panel currently shown for a session.
func (s *Service) ActivePanel(ctx context.Context, sessionID kernel.SessionID) (panelx.Activation, bool, error) {
	if s.board == nil {
		return panelx.Activation{}, false, nil
	}
	act, ok, err := s.board.Active(ctx, sessionID)
	if err != nil {
		return panelx.Activation{}, false, chatErrors.NewWithCause(ErrPanel, err).WithDetail("session_id", sessionID.String())
	}
	return act, ok, nil
}

// ClosePanel hides the session's panel.
func (s *Service) ClosePanel(ctx context.Context, sessionID kernel.SessionID) error {
	if s.board == nil {
		return nil
	}
	if err := s.board.Clear(ctx, sessionID); err != nil {
		return chatErrors.NewWithCause(ErrPanel, err).WithDetail("session_id", sessionID.String())
	}
	return nil
}

// Busy reports whether a turn is in flight for the session.
func (s *Service) Busy(sessionID kernel.SessionID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.busy[sessionID]
	return ok
}

func (s *Service) acquire(sessionID kernel.SessionID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.busy[sessionID]; ok {
		return false
	}
	s.busy[sessionID] = struct{}{}
	return true
}

func (s *Service) release(sessionID kernel.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.busy, sessionID)
}

// ValidateContent rejects blank buyer messages.
func ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return chatErrors.New(ErrEmptyMessage)
	}
	return nil
}

func failureText(err error) string {
	var e *errx.Error
	if errx.As(err, &e) {
		return FailurePrefix + e.Message
	}
	return FailurePrefix + err.Error()
}
