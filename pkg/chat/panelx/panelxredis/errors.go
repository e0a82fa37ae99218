package panelxredis

import "github.com/Abraxas-365/debelu/pkg/errx"

var redisErrors = errx.NewRegistry("PANEL_REDIS")

var (
	ErrActivate  = redisErrors.Register("ACTIVATE", errx.TypeExternal, 500, "Redis panel activate failed")
	ErrGet       = redisErrors.Register("GET", errx.TypeExternal, 500, "Redis panel get failed")
	ErrClear     = redisErrors.Register("CLEAR", errx.TypeExternal, 500, "Redis panel clear failed")
	ErrMarshal   = redisErrors.Register("MARSHAL", errx.TypeInternal, 500, "Failed to marshal panel activation")
	ErrUnmarshal = redisErrors.Register("UNMARSHAL", errx.TypeInternal, 500, "Failed to unmarshal panel activation")
)
