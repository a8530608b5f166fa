package middleware

import (
	"context"

	"github.com/google/uuid"
)

// Context key type to avoid collisions
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"

	// ClaimsKey is the context key for JWT claims
	ClaimsKey contextKey = "claims"

	// AgentIDKey is the context key for the authenticated agent ID
	AgentIDKey contextKey = "agent_id"
)

// Claims represents JWT claims extracted from the token
type Claims struct {
	Sub     string `json:"sub"`                // Subject (caller identity)
	Role    string `json:"role,omitempty"`     // operator or agent
	AgentID string `json:"agent_id,omitempty"` // Set for agent-scoped tokens
	Iss     string `json:"iss"`                // Issuer
	Exp     int64  `json:"exp"`                // Expiration
	Iat     int64  `json:"iat"`                // Issued at
}

// GetRequestIDFromContext retrieves the request ID from context
func GetRequestIDFromContext(ctx context.Context) string {
	if val := ctx.Value(RequestIDKey); val != nil {
		if requestID, ok := val.(string); ok {
			return requestID
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetClaimsFromContext retrieves JWT claims from context
func GetClaimsFromContext(ctx context.Context) *Claims {
	if val := ctx.Value(ClaimsKey); val != nil {
		if claims, ok := val.(*Claims); ok {
			return claims
		}
	}
	return nil
}

// WithClaims adds JWT claims to the context
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// GetAgentIDFromContext retrieves the authenticated agent ID from context
func GetAgentIDFromContext(ctx context.Context) uuid.UUID {
	if val := ctx.Value(AgentIDKey); val != nil {
		if agentID, ok := val.(uuid.UUID); ok {
			return agentID
		}
	}
	return uuid.Nil
}

// WithAgentID adds an agent ID to the context
func WithAgentID(ctx context.Context, agentID uuid.UUID) context.Context {
	return context.WithValue(ctx, AgentIDKey, agentID)
}
