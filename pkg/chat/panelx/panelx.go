// Package panelx decides which side panel a resolved tool invocation opens
// and keeps the per-session panel state that the chat UI renders.
package panelx

import (
	"context"

	"github.com/Abraxas-365/debelu/pkg/errx"
	"github.com/Abraxas-365/debelu/pkg/kernel"
)

// Kind names a side panel. The set is open: open_ui_panel may name any kind.
type Kind string

const (
	KindCompare      Kind = "compare"
	KindIntelligence Kind = "intelligence"
)

// Activation is the panel shown for a session and the data it shows.
type Activation struct {
	Kind    Kind `json:"panelKind"`
	Payload any  `json:"payload"`
}

// ProductsPayload is the payload of the compare and intelligence panels.
type ProductsPayload struct {
	Products []any `json:"products"`
}

// Activator is the write side of panel state. The turn processor is its
// only caller.
type Activator interface {
	Activate(ctx context.Context, sessionID kernel.SessionID, kind Kind, payload any) error
}

// Board is panel state shared between one writer and many readers.
// The last activation wins.
type Board interface {
	Activator
	Active(ctx context.Context, sessionID kernel.SessionID) (Activation, bool, error)
	Clear(ctx context.Context, sessionID kernel.SessionID) error
}

var panelErrors = errx.NewRegistry("PANEL")

var ErrInvalidKind = panelErrors.Register("INVALID_KIND", errx.TypeValidation, 400, "Panel kind is required")

// ValidateKind rejects the empty panel kind.
func ValidateKind(kind Kind) error {
	if kind == "" {
		return panelErrors.New(ErrInvalidKind)
	}
	return nil
}
