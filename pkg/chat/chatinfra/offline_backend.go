package chatinfra

import (
	"bytes"
	"context"
	"io"

	"github.com/Abraxas-365/debelu/pkg/chat"
	"github.com/Abraxas-365/debelu/pkg/chat/framex"
)

// OfflineReply is the text the offline backend answers every message with.
const OfflineReply = "The Debelu assistant is offline right now. Browse the marketplace or try again later."

// OfflineBackend answers without a language model, for local development
// when no backend URL is configured.
type OfflineBackend struct{}

var _ chat.Backend = OfflineBackend{}

func (OfflineBackend) Submit(ctx context.Context, _ []chat.Message) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := framex.NewEncoder(&buf)
	if err := enc.Encode(framex.TextDelta{Text: OfflineReply}); err != nil {
		return nil, err
	}
	if err := enc.Encode(framex.Finish{Reason: "stop"}); err != nil {
		return nil, err
	}
	return io.NopCloser(&buf), nil
}
