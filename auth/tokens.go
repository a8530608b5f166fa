// Package auth issues and validates the HS256 bearer tokens that guard the
// control plane API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/agentpress/control-plane/middleware"
	"github.com/agentpress/control-plane/services"
)

// tokenClaims is the on-wire claim set.
type tokenClaims struct {
	Role    string `json:"role,omitempty"`
	AgentID string `json:"agent_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs and validates API tokens. It implements
// middleware.TokenValidator.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenService creates a new TokenService instance
func NewTokenService(secret []byte, issuer string, ttl time.Duration) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("token signing secret must not be empty")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenService{
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
	}, nil
}

// Issue signs a token for a caller. Role is "operator" for management access
// or "agent" for decision-only access; agentID scopes agent tokens and may be
// empty for operators.
func (s *TokenService) Issue(subject, role, agentID string) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Role:    role,
		AgentID: agentID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token, returning the middleware claims.
func (s *TokenService) ValidateToken(_ context.Context, tokenString string) (*middleware.Claims, error) {
	var claims tokenClaims

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, services.ErrTokenExpired
		}
		return nil, services.NewDomainError(services.ErrorTypeUnauthorized, "invalid authentication token", err)
	}
	if !token.Valid {
		return nil, services.ErrInvalidToken
	}

	out := &middleware.Claims{
		Sub:     claims.Subject,
		Role:    claims.Role,
		AgentID: claims.AgentID,
		Iss:     claims.Issuer,
	}
	if claims.ExpiresAt != nil {
		out.Exp = claims.ExpiresAt.Unix()
	}
	if claims.IssuedAt != nil {
		out.Iat = claims.IssuedAt.Unix()
	}
	return out, nil
}
