package auth

import (
	"net/http"
	"time"

	"github.com/Abraxas-365/debelu/pkg/errx"
	"github.com/Abraxas-365/debelu/pkg/kernel"
)

// TokenClaims is the validated content of an access token.
type TokenClaims struct {
	UserID    kernel.UserID `json:"user_id"`
	Email     string        `json:"email"`
	Name      string        `json:"name"`
	Scopes    []string      `json:"scopes"`
	IssuedAt  time.Time     `json:"iat"`
	ExpiresAt time.Time     `json:"exp"`
}

// AuthContext converts the claims into the request-scoped identity.
func (c *TokenClaims) AuthContext() *kernel.AuthContext {
	return &kernel.AuthContext{
		UserID: c.UserID,
		Email:  c.Email,
		Name:   c.Name,
		Scopes: c.Scopes,
	}
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("AUTH")

var (
	CodeTokenGenerationFailed = ErrRegistry.Register("TOKEN_GENERATION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to generate token")
	CodeTokenValidationFailed = ErrRegistry.Register("TOKEN_VALIDATION_FAILED", errx.TypeAuthorization, http.StatusUnauthorized, "Token validation failed")
)

func ErrTokenGenerationFailed() *errx.Error {
	return ErrRegistry.New(CodeTokenGenerationFailed)
}

func ErrTokenValidationFailed() *errx.Error {
	return ErrRegistry.New(CodeTokenValidationFailed)
}
