package auth

import (
	"fmt"
	"time"

	"github.com/Abraxas-365/debelu/pkg/kernel"
	"github.com/golang-jwt/jwt/v5"
)

const audience = "debelu-api"

// JWTService implements TokenService with HS256-signed JWTs
type JWTService struct {
	secretKey      []byte
	accessTokenTTL time.Duration
	issuer         string
}

func NewJWTService(secretKey string, accessTokenTTL time.Duration, issuer string) *JWTService {
	if accessTokenTTL == 0 {
		accessTokenTTL = 15 * time.Minute
	}
	if issuer == "" {
		issuer = "debelu"
	}

	return &JWTService{
		secretKey:      []byte(secretKey),
		accessTokenTTL: accessTokenTTL,
		issuer:         issuer,
	}
}

// JWTClaims is the token payload
type JWTClaims struct {
	UserID kernel.UserID `json:"user_id"`
	Email  string        `json:"email"`
	Name   string        `json:"name"`
	Scopes []string      `json:"scopes"`
	jwt.RegisteredClaims
}

// GenerateAccessToken signs an access token. Recognised claims: email,
// name and scopes.
func (j *JWTService) GenerateAccessToken(userID kernel.UserID, claims map[string]any) (string, error) {
	now := time.Now()

	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	scopes, _ := claims["scopes"].([]string)
	if scopes == nil {
		scopes = []string{}
	}

	jwtClaims := JWTClaims{
		UserID: userID,
		Email:  email,
		Name:   name,
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   userID.String(),
			Audience:  []string{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTokenTTL)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims)

	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", ErrTokenGenerationFailed().WithDetail("error", err.Error())
	}

	return tokenString, nil
}

// ValidateAccessToken verifies signature, issuer, audience and lifetime.
func (j *JWTService) ValidateAccessToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	}, jwt.WithIssuer(j.issuer), jwt.WithAudience(audience), jwt.WithExpirationRequired())

	if err != nil {
		return nil, ErrTokenValidationFailed().WithDetail("error", err.Error())
	}

	jwtClaims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenValidationFailed().WithDetail("error", "invalid claims")
	}
	if jwtClaims.UserID.IsEmpty() {
		return nil, ErrTokenValidationFailed().WithDetail("error", "missing user_id")
	}

	return &TokenClaims{
		UserID:    jwtClaims.UserID,
		Email:     jwtClaims.Email,
		Name:      jwtClaims.Name,
		Scopes:    jwtClaims.Scopes,
		IssuedAt:  jwtClaims.IssuedAt.Time,
		ExpiresAt: jwtClaims.ExpiresAt.Time,
	}, nil
}
