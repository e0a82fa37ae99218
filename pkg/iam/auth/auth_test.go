package auth_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Abraxas-365/debelu/pkg/errx"
	"github.com/Abraxas-365/debelu/pkg/errx/errxfiber"
	"github.com/Abraxas-365/debelu/pkg/iam"
	"github.com/Abraxas-365/debelu/pkg/iam/auth"
	"github.com/Abraxas-365/debelu/pkg/iam/scopes"
	"github.com/Abraxas-365/debelu/pkg/kernel"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type auditRecorder struct {
	authenticated []kernel.UserID
	rejected      []string
}

func (a *auditRecorder) LogAuthenticated(userID kernel.UserID, _, _ string) {
	a.authenticated = append(a.authenticated, userID)
}

func (a *auditRecorder) LogRejected(reason, _, _, _ string) {
	a.rejected = append(a.rejected, reason)
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := auth.NewJWTService("secret", time.Minute, "debelu")

	token, err := svc.GenerateAccessToken("u1", map[string]any{
		"email":  "ana@campus.edu",
		"name":   "Ana",
		"scopes": scopes.BuyerDefault,
	})
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, kernel.UserID("u1"), claims.UserID)
	assert.Equal(t, "ana@campus.edu", claims.Email)
	assert.Equal(t, scopes.BuyerDefault, claims.Scopes)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
}

func TestJWTService_Rejects(t *testing.T) {
	svc := auth.NewJWTService("secret", time.Minute, "debelu")

	other, err := auth.NewJWTService("other-secret", time.Minute, "debelu").GenerateAccessToken("u1", nil)
	require.NoError(t, err)
	foreignIssuer, err := auth.NewJWTService("secret", time.Minute, "someone-else").GenerateAccessToken("u1", nil)
	require.NoError(t, err)
	expired, err := auth.NewJWTService("secret", -time.Minute, "debelu").GenerateAccessToken("u1", nil)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"wrong key":    other,
		"wrong issuer": foreignIssuer,
		"expired":      expired,
		"garbage":      "not-a-jwt",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateAccessToken(token)
			assert.True(t, errx.HasCode(err, auth.CodeTokenValidationFailed))
		})
	}
}

func newApp(t *testing.T, audit auth.AuditService) (*fiber.App, *auth.JWTService) {
	t.Helper()
	tokens := auth.NewJWTService("secret", time.Minute, "debelu")
	mw := auth.NewAuthMiddleware(tokens, audit)

	app := fiber.New(fiber.Config{ErrorHandler: errxfiber.NewErrorHandler(errxfiber.Config{})})
	app.Get("/me", mw.Authenticate(), mw.RequireScope(scopes.ChatRead), func(c *fiber.Ctx) error {
		ac, ok := auth.GetAuthContext(c)
		if !ok {
			return iam.ErrUnauthorized()
		}
		return c.SendString(ac.UserID.String())
	})
	return app, tokens
}

func TestMiddleware_Authenticate(t *testing.T) {
	audit := &auditRecorder{}
	app, tokens := newApp(t, audit)

	token, err := tokens.GenerateAccessToken("u1", map[string]any{"scopes": []string{scopes.ChatAll}})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, []kernel.UserID{"u1"}, audit.authenticated)

	cookieReq := httptest.NewRequest("GET", "/me", nil)
	cookieReq.Header.Set("Cookie", "access_token="+token)
	resp, err = app.Test(cookieReq)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestMiddleware_Rejections(t *testing.T) {
	audit := &auditRecorder{}
	app, tokens := newApp(t, audit)

	noScope, err := tokens.GenerateAccessToken("u1", map[string]any{"scopes": []string{"orders:read"}})
	require.NoError(t, err)

	cases := map[string]struct {
		header string
		status int
	}{
		"missing":   {"", 401},
		"malformed": {"Bearer nope", 401},
		"scope":     {"Bearer " + noScope, 403},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
	assert.Len(t, audit.rejected, 3)
}
