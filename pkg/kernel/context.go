package kernel

// AuthContext is injected into every authenticated request
type AuthContext struct {
	UserID UserID   `json:"user_id"`
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	Scopes []string `json:"scopes"`
}

// IsValid reports whether the context identifies a user
func (ac *AuthContext) IsValid() bool {
	return ac != nil && !ac.UserID.IsEmpty()
}

// HasScope checks for an exact scope, "*", or a "prefix:*" wildcard
func (ac *AuthContext) HasScope(scope string) bool {
	for _, s := range ac.Scopes {
		if s == scope || s == "*" {
			return true
		}
		if len(s) > 2 && s[len(s)-2:] == ":*" {
			prefix := s[:len(s)-1]
			if len(scope) > len(prefix) && scope[:len(prefix)] == prefix {
				return true
			}
		}
	}
	return false
}

type ContextKey string

const (
	// AuthContextKey is the fiber Locals key holding *AuthContext
	AuthContextKey ContextKey = "auth_context"

	RequestIDKey ContextKey = "request_id"
)
