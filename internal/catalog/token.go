package catalog

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource supplies the bearer token for each request.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a pre-issued bearer token.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token() (string, error) {
	return string(s), nil
}

// JWTTokenSource signs a short-lived HS256 token per request.
type JWTTokenSource struct {
	secret  []byte
	subject string
	ttl     time.Duration
	now     func() time.Time
}

// NewJWTTokenSource creates a JWTTokenSource.
func NewJWTTokenSource(secret []byte, subject string, ttl time.Duration) *JWTTokenSource {
	return &JWTTokenSource{
		secret:  secret,
		subject: subject,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Token implements TokenSource.
func (s *JWTTokenSource) Token() (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("jwt secret is empty")
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   s.subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
