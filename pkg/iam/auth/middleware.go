package auth

import (
	"strings"

	"github.com/Abraxas-365/debelu/pkg/iam"
	"github.com/Abraxas-365/debelu/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

// TokenMiddleware authenticates Fiber requests with buyer access tokens
type TokenMiddleware struct {
	tokenService TokenService
	audit        AuditService
}

func NewAuthMiddleware(tokenService TokenService, audit AuditService) *TokenMiddleware {
	return &TokenMiddleware{
		tokenService: tokenService,
		audit:        audit,
	}
}

// Authenticate validates the bearer token (or the access_token cookie) and
// stores the resulting *kernel.AuthContext in Locals.
func (am *TokenMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get("Authorization"))
		if token == "" {
			token = c.Cookies("access_token")
		}
		if token == "" {
			am.reject(c, "missing token")
			return iam.ErrUnauthorized()
		}

		claims, err := am.tokenService.ValidateAccessToken(token)
		if err != nil {
			am.reject(c, "invalid token")
			return err
		}

		c.Locals(kernel.AuthContextKey, claims.AuthContext())
		if am.audit != nil {
			am.audit.LogAuthenticated(claims.UserID, c.Path(), c.IP())
		}
		return c.Next()
	}
}

// RequireScope rejects authenticated requests lacking scope.
func (am *TokenMiddleware) RequireScope(scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authContext, ok := GetAuthContext(c)
		if !ok {
			return iam.ErrUnauthorized()
		}
		if !authContext.HasScope(scope) {
			am.reject(c, "missing scope "+scope)
			return iam.ErrAccessDenied().WithDetail("required_scope", scope)
		}
		return c.Next()
	}
}

// GetAuthContext returns the identity stored by Authenticate.
func GetAuthContext(c *fiber.Ctx) (*kernel.AuthContext, bool) {
	authContext, ok := c.Locals(kernel.AuthContextKey).(*kernel.AuthContext)
	if !ok || !authContext.IsValid() {
		return nil, false
	}
	return authContext, true
}

func (am *TokenMiddleware) reject(c *fiber.Ctx, reason string) {
	if am.audit != nil {
		am.audit.LogRejected(reason, c.Path(), c.IP(), c.Get("User-Agent"))
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
