package chat

import "github.com/Abraxas-365/debelu/pkg/errx"

var chatErrors = errx.NewRegistry("CHAT")

var (
	ErrEmptyMessage   = chatErrors.Register("EMPTY_MESSAGE", errx.TypeValidation, 400, "Message content is required")
	ErrTurnInProgress = chatErrors.Register("TURN_IN_PROGRESS", errx.TypeConflict, 409, "A reply is already being generated for this session")
	ErrTurnCancelled  = chatErrors.Register("TURN_CANCELLED", errx.TypeCanceled, 499, "The reply was cancelled")
	ErrHistory        = chatErrors.Register("HISTORY", errx.TypeExternal, 500, "Failed to load conversation history")
	ErrPersist        = chatErrors.Register("PERSIST", errx.TypeExternal, 500, "Failed to save message")
	ErrPanel          = chatErrors.Register("PANEL", errx.TypeExternal, 500, "Failed to access panel state")
)

// NewError builds an error for one of the chat codes above.
func NewError(code *errx.ErrorCode) *errx.Error {
	return chatErrors.New(code)
}

// IsCancelled reports whether err is a turn abandoned by its caller.
func IsCancelled(err error) bool {
	return errx.HasCode(err, ErrTurnCancelled)
}
