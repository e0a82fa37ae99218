package iamcontainer

import (
	"github.com/Abraxas-365/debelu/pkg/config"
	"github.com/Abraxas-365/debelu/pkg/iam/auth"
	"github.com/Abraxas-365/debelu/pkg/iam/auth/authinfra"
	"github.com/Abraxas-365/debelu/pkg/logx"
)

// ---------------------------------------------------------------------------
// Deps: explicit external dependencies this bounded context requires.
// ---------------------------------------------------------------------------

type Deps struct {
	Cfg *config.Config
}

// ---------------------------------------------------------------------------
// Container: the public surface of the IAM module.
// ---------------------------------------------------------------------------

type Container struct {
	TokenService   auth.TokenService
	AuthMiddleware *auth.TokenMiddleware
}

func New(deps Deps) *Container {
	logx.Info("🔧 Initializing IAM container...")

	tokens := auth.NewJWTService(
		deps.Cfg.Auth.JWTSecret,
		deps.Cfg.Auth.AccessTokenTTL,
		deps.Cfg.Auth.JWTIssuer,
	)

	c := &Container{
		TokenService:   tokens,
		AuthMiddleware: auth.NewAuthMiddleware(tokens, authinfra.NewLogxAuditService()),
	}

	logx.Info("✅ IAM container initialized")
	return c
}
