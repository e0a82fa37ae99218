package chatinfra

import "github.com/Abraxas-365/debelu/pkg/errx"

var storeErrors = errx.NewRegistry("CHATSTORE")

var (
	ErrAppend    = storeErrors.Register("APPEND", errx.TypeExternal, 500, "Failed to append message")
	ErrLoad      = storeErrors.Register("LOAD", errx.TypeExternal, 500, "Failed to load messages")
	ErrConflict  = storeErrors.Register("CONFLICT", errx.TypeConflict, 409, "Concurrent write to the same session")
	ErrSchema    = storeErrors.Register("SCHEMA", errx.TypeInternal, 500, "Failed to prepare chat schema")
	ErrMarshal   = storeErrors.Register("MARSHAL", errx.TypeInternal, 500, "Failed to marshal message")
	ErrUnmarshal = storeErrors.Register("UNMARSHAL", errx.TypeInternal, 500, "Failed to unmarshal message")
)

var backendErrors = errx.NewRegistry("CHATBACKEND")

var (
	ErrBackendRequest = backendErrors.Register("REQUEST", errx.TypeExternal, 502, "LLM backend request failed")
	ErrBackendStatus  = backendErrors.Register("STATUS", errx.TypeExternal, 502, "LLM backend returned an error")
	ErrBackendEncode  = backendErrors.Register("ENCODE", errx.TypeInternal, 500, "Failed to encode LLM backend request")
)
