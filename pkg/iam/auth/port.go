package auth

import "github.com/Abraxas-365/debelu/pkg/kernel"

// TokenService issues and validates buyer access tokens
type TokenService interface {
	GenerateAccessToken(userID kernel.UserID, claims map[string]any) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
}

// AuditService records authentication outcomes
type AuditService interface {
	LogAuthenticated(userID kernel.UserID, path, ip string)
	LogRejected(reason, path, ip, userAgent string)
}
