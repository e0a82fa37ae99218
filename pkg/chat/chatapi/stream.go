package chatapi

import (
	"bufio"
	"encoding/json"

	"github.com/Abraxas-365/debelu/pkg/chat"
	"github.com/Abraxas-365/debelu/pkg/errx"
	"github.com/Abraxas-365/debelu/pkg/logx"
)

// eventWriter serialises turn events as NDJSON onto a streamed response.
// The first failed write means the client is gone: it cancels the turn and
// drops every later event.
type eventWriter struct {
	w      *bufio.Writer
	cancel func()
	broken bool
}

func (ew *eventWriter) write(ev Event) {
	if ew.broken {
		return
	}
	line, err := json.Marshal(ev)
	if err != nil {
		logx.WithError(err).Error("chatapi: encode stream event")
		return
	}
	line = append(line, '\n')
	if _, err := ew.w.Write(line); err == nil {
		err = ew.w.Flush()
		if err == nil {
			return
		}
	}
	ew.broken = true
	ew.cancel()
}

func (ew *eventWriter) update(u chat.Update) {
	snap := u.Snapshot
	ew.write(Event{Type: EventSnapshot, Snapshot: &snap})
	if u.Panel != nil {
		act := *u.Panel
		ew.write(Event{Type: EventPanel, Panel: &act})
	}
}

func (ew *eventWriter) message(msg chat.Message) {
	ew.write(Event{Type: EventMessage, Message: &msg})
}

func (ew *eventWriter) fail(err error, requestID string) {
	var e *errx.Error
	if !errx.As(err, &e) {
		e = errx.Wrap(err, "Internal Server Error", errx.TypeInternal)
	}
	resp := e.ToHTTPResponse(requestID)
	ew.write(Event{Type: EventError, Error: &resp})
}
